package azb

import (
	"math"
	"testing"
	"time"
)

func TestTripleChannelVoting(t *testing.T) {
	c := NewTripleChannel[int]("alt")
	c.Set(0, 42)
	c.Set(1, 42)
	c.Set(2, 99)
	v, ok := c.Vote()
	if !ok || v != 42 {
		t.Fatalf("majority vote fail: %d %v", v, ok)
	}
	if c.CheckHealth() != StatusWarning {
		t.Fatal("a disagreeing channel must degrade to warning")
	}

	c.Set(2, 42)
	if c.CheckHealth() != StatusNominal {
		t.Fatal("full agreement must be nominal")
	}

	// No consensus at all: take-first.
	c.Set(0, 1)
	c.Set(1, 2)
	c.Set(2, 3)
	if v, ok = c.Vote(); !ok || v != 1 {
		t.Fatalf("no-consensus vote fail: %d %v", v, ok)
	}

	c.Drop(1)
	c.Drop(2)
	if c.CheckHealth() != StatusFault {
		t.Fatal("a single surviving channel is a fault")
	}
	v, ok = c.Vote()
	if !ok || v != 1 {
		t.Fatal("a single channel still votes")
	}

	c.Drop(0)
	if c.CheckHealth() != StatusCritical {
		t.Fatal("no channels left must be critical")
	}
	if _, ok = c.Vote(); ok {
		t.Fatal("no channels left must not vote")
	}
}

func TestWatchdog(t *testing.T) {
	w := NewWatchdog("test", 10*time.Millisecond)
	if w.Check() {
		t.Fatal("a fresh watchdog must not trigger")
	}
	time.Sleep(20 * time.Millisecond)
	if !w.Check() {
		t.Fatal("watchdog must trigger after the timeout")
	}
	w.Kick()
	if w.Check() {
		t.Fatal("a kick must clear the trigger")
	}
}

func TestFDIRRecoveryBudget(t *testing.T) {
	f := NewFDIR(nil)
	if !f.Operational() {
		t.Fatal("must start operational")
	}
	for i := 0; i < 3; i++ {
		f.HandleFault("test fault")
		if !f.Operational() {
			t.Fatalf("fault %d must still be recoverable", i+1)
		}
	}
	f.HandleFault("test fault")
	if f.Operational() {
		t.Fatal("must go critical once the recovery budget is spent")
	}
	if f.FaultCount() != 4 {
		t.Fatalf("fault count = %d", f.FaultCount())
	}
}

func TestMTBF(t *testing.T) {
	if MTBF(0.001) != 1000 {
		t.Fatalf("MTBF(0.001) = %f", MTBF(0.001))
	}
	if !math.IsInf(MTBF(0), 1) {
		t.Fatal("a zero failure rate never fails")
	}
}
