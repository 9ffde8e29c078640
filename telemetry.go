package azb

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc64"
	"strings"
	"time"

	"github.com/soniakeys/meeus/julian"
)

// SubsystemID identifies the subsystem a telemetry packet originates from.
type SubsystemID uint8

const (
	// SubsysGNC is guidance, navigation and control.
	SubsysGNC SubsystemID = iota + 1
	// SubsysFDIR is fault management.
	SubsysFDIR
	// SubsysPropulsion is the main engine.
	SubsysPropulsion
	// SubsysThermal is thermal control.
	SubsysThermal
	// SubsysPower is the electrical power system.
	SubsysPower
	// SubsysComm is the communication system.
	SubsysComm
)

func (s SubsystemID) String() string {
	switch s {
	case SubsysGNC:
		return "GNC"
	case SubsysFDIR:
		return "FDIR"
	case SubsysPropulsion:
		return "PROP"
	case SubsysThermal:
		return "THERM"
	case SubsysPower:
		return "POWER"
	case SubsysComm:
		return "COMM"
	}
	panic("cannot stringify unknown subsystem")
}

var crcTable = crc64.MakeTable(crc64.ECMA)

// Payload is one telemetry payload variant.
type Payload interface {
	tag() byte
	encode(buf *bytes.Buffer)
	String() string
}

// Navigation carries a position and velocity sample.
type Navigation struct {
	Position [3]float64 // m
	Velocity [3]float64 // m/s
}

func (p Navigation) tag() byte { return 0x01 }

func (p Navigation) encode(buf *bytes.Buffer) {
	binary.Write(buf, binary.LittleEndian, p.Position)
	binary.Write(buf, binary.LittleEndian, p.Velocity)
}

func (p Navigation) String() string {
	return fmt.Sprintf("NAV pos=[%.0f, %.0f, %.0f]m vel=[%.1f, %.1f, %.1f]m/s",
		p.Position[0], p.Position[1], p.Position[2], p.Velocity[0], p.Velocity[1], p.Velocity[2])
}

// Status carries the mission phase, remaining fuel and system health.
type Status struct {
	Phase       uint8
	FuelPercent float32
	Health      uint8
}

func (p Status) tag() byte { return 0x02 }

func (p Status) encode(buf *bytes.Buffer) {
	buf.WriteByte(p.Phase)
	binary.Write(buf, binary.LittleEndian, p.FuelPercent)
	buf.WriteByte(p.Health)
}

func (p Status) String() string {
	return fmt.Sprintf("STATUS phase=%d fuel=%.1f%% health=%d", p.Phase, p.FuelPercent, p.Health)
}

// Sensors carries environmental sensor samples.
type Sensors struct {
	Temperature float32 // °C
	Pressure    float32 // kPa
	Radiation   float32 // mSv
}

func (p Sensors) tag() byte { return 0x03 }

func (p Sensors) encode(buf *bytes.Buffer) {
	binary.Write(buf, binary.LittleEndian, p.Temperature)
	binary.Write(buf, binary.LittleEndian, p.Pressure)
	binary.Write(buf, binary.LittleEndian, p.Radiation)
}

func (p Sensors) String() string {
	return fmt.Sprintf("SENSORS temp=%.1f press=%.1f rad=%.2f", p.Temperature, p.Pressure, p.Radiation)
}

// Event carries a discrete event code and message.
type Event struct {
	Code    uint16
	Message string
}

func (p Event) tag() byte { return 0x04 }

func (p Event) encode(buf *bytes.Buffer) {
	binary.Write(buf, binary.LittleEndian, p.Code)
	binary.Write(buf, binary.LittleEndian, uint16(len(p.Message)))
	buf.WriteString(p.Message)
}

func (p Event) String() string {
	return fmt.Sprintf("EVENT [%d] %s", p.Code, p.Message)
}

// Packet is one downlink telemetry frame. The CRC-64 covers the header only, so a
// frame remains verifiable without decoding its payload.
type Packet struct {
	Timestamp uint64  // Unix time in ms
	JD        float64 // Julian date of the timestamp
	ID        uint32
	Subsystem SubsystemID
	Payload   Payload
	CRC       uint64
}

// NewPacket returns a timestamped, checksummed packet.
func NewPacket(id uint32, subsystem SubsystemID, payload Payload) Packet {
	now := time.Now().UTC()
	p := Packet{
		Timestamp: uint64(now.UnixNano() / int64(time.Millisecond)),
		JD:        julian.TimeToJD(now),
		ID:        id,
		Subsystem: subsystem,
		Payload:   payload,
	}
	p.CRC = p.checksum()
	return p
}

// checksum computes the CRC-64/ECMA over the packet header.
func (p Packet) checksum() uint64 {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, p.Timestamp)
	binary.Write(&buf, binary.LittleEndian, p.ID)
	buf.WriteByte(byte(p.Subsystem))
	return crc64.Checksum(buf.Bytes(), crcTable)
}

// Validate returns whether the stored CRC matches the header.
func (p Packet) Validate() bool {
	return p.CRC == p.checksum()
}

// Bytes serializes the packet: header, payload tag and body, trailing CRC, all
// little endian.
func (p Packet) Bytes() []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, p.Timestamp)
	binary.Write(&buf, binary.LittleEndian, p.ID)
	buf.WriteByte(byte(p.Subsystem))
	buf.WriteByte(p.Payload.tag())
	p.Payload.encode(&buf)
	binary.Write(&buf, binary.LittleEndian, p.CRC)
	return buf.Bytes()
}

func (p Packet) String() string {
	return fmt.Sprintf("[%d] #%d %s: %s", p.Timestamp, p.ID, p.Subsystem, p.Payload)
}

// TelemetryStore accumulates packets for the duration of a run.
type TelemetryStore struct {
	packets []Packet
	nextID  uint32
}

// NewTelemetryStore returns an empty store.
func NewTelemetryStore() *TelemetryStore {
	return &TelemetryStore{nextID: 1}
}

// LogNavigation records a position/velocity sample.
func (t *TelemetryStore) LogNavigation(r, v []float64) {
	t.log(SubsysGNC, Navigation{
		Position: [3]float64{r[0], r[1], r[2]},
		Velocity: [3]float64{v[0], v[1], v[2]},
	})
}

// LogStatus records the phase, fuel fraction and health.
func (t *TelemetryStore) LogStatus(phase MissionPhase, fuelPercent float64, health uint8) {
	t.log(SubsysFDIR, Status{uint8(phase), float32(fuelPercent), health})
}

// LogEvent records a discrete event.
func (t *TelemetryStore) LogEvent(subsystem SubsystemID, code uint16, message string) {
	t.log(subsystem, Event{code, message})
}

func (t *TelemetryStore) log(subsystem SubsystemID, payload Payload) {
	t.packets = append(t.packets, NewPacket(t.nextID, subsystem, payload))
	t.nextID++
}

// Packets returns all recorded packets.
func (t *TelemetryStore) Packets() []Packet {
	return t.packets
}

// Summary renders the store as text, one packet per line.
func (t *TelemetryStore) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== TELEMETRY LOG ===\nTotal packets: %d\n\n", len(t.packets))
	for _, p := range t.packets {
		fmt.Fprintf(&b, "%s\n", p)
	}
	return b.String()
}
