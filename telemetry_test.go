package azb

import (
	"strings"
	"testing"
)

func TestPacketChecksum(t *testing.T) {
	p := NewPacket(1, SubsysGNC, Navigation{})
	if !p.Validate() {
		t.Fatal("a fresh packet must validate")
	}
	p.CRC++
	if p.Validate() {
		t.Fatal("a corrupted CRC must not validate")
	}
	p.CRC--
	p.ID = 7
	if p.Validate() {
		t.Fatal("a tampered header must not validate")
	}
}

func TestPacketJulianDate(t *testing.T) {
	p := NewPacket(1, SubsysGNC, Navigation{})
	if p.JD < 2450000 {
		t.Fatalf("implausible Julian date %f", p.JD)
	}
}

func TestPacketBytes(t *testing.T) {
	p := NewPacket(3, SubsysPropulsion, Navigation{
		Position: [3]float64{1, 2, 3},
		Velocity: [3]float64{4, 5, 6},
	})
	b := p.Bytes()
	// Header (8+4+1), tag, six float64, trailing CRC.
	if len(b) != 8+4+1+1+48+8 {
		t.Fatalf("frame length %d", len(b))
	}
	if b[12] != byte(SubsysPropulsion) || b[13] != 0x01 {
		t.Fatalf("subsystem or tag byte fail: %x %x", b[12], b[13])
	}

	msg := "go for landing"
	e := NewPacket(4, SubsysComm, Event{Code: 1001, Message: msg})
	if got := len(e.Bytes()); got != 8+4+1+1+2+2+len(msg)+8 {
		t.Fatalf("event frame length %d", got)
	}
}

func TestTelemetryStore(t *testing.T) {
	ts := NewTelemetryStore()
	ts.LogNavigation([]float64{1, 2, 3}, []float64{4, 5, 6})
	ts.LogStatus(Descent, 42.5, 100)
	ts.LogEvent(SubsysGNC, 2001, "landed")

	packets := ts.Packets()
	if len(packets) != 3 {
		t.Fatalf("expected 3 packets, got %d", len(packets))
	}
	for i, p := range packets {
		if p.ID != uint32(i+1) {
			t.Fatalf("packet %d has ID %d", i, p.ID)
		}
		if !p.Validate() {
			t.Fatalf("packet %d does not validate", i)
		}
	}
	if packets[1].Subsystem != SubsysFDIR {
		t.Fatal("status frames downlink on the FDIR subsystem")
	}

	sum := ts.Summary()
	if !strings.Contains(sum, "Total packets: 3") || !strings.Contains(sum, "landed") {
		t.Fatalf("summary fail:\n%s", sum)
	}
}

func TestSubsystemString(t *testing.T) {
	for id, want := range map[SubsystemID]string{
		SubsysGNC: "GNC", SubsysFDIR: "FDIR", SubsysPropulsion: "PROP",
		SubsysThermal: "THERM", SubsysPower: "POWER", SubsysComm: "COMM",
	} {
		if id.String() != want {
			t.Fatalf("%d stringifies as %s", id, id)
		}
	}
}
