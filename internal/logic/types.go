// Package logic contains the pure door/run/bing state machine for the
// microwave controller. This package has NO external dependencies (no GPIO,
// SPI, MQTT, OS, or time.Sleep). Time is a millisecond counter passed into
// every call, so the machine is fully deterministic under test.
package logic

// Millis is a monotonic millisecond counter. It wraps at the uint32 boundary;
// all elapsed-time math in this package is unsigned subtraction, which stays
// correct across the wrap.
type Millis = uint32

// Tunable constants. Durations are in milliseconds, frequencies in Hz.
const (
	// DebounceInterval is the minimum time between recognized door
	// transitions. It also rate-limits the whole state machine: a tick
	// inside the interval is a no-op.
	DebounceInterval Millis = 100

	// OnDurationMin is the cook duration with the potentiometer at zero
	// (or absent).
	OnDurationMin Millis = 2000

	// OnDurationRange is the additional cook duration at full dial.
	OnDurationRange Millis = 18000

	// BingDuration is the length of the completion tone.
	BingDuration Millis = 350

	// BingFreq is the pitch of the completion tone.
	BingFreq uint = 2500

	// CookingFreq is the pitch of the hum played while cooking.
	CookingFreq uint = 80

	// PotMax is the highest potentiometer reading (10-bit ADC).
	PotMax uint16 = 1023
)

// Phase is the derived cooking phase of the controller.
type Phase string

const (
	PhaseIdle    Phase = "IDLE"
	PhaseRunning Phase = "RUNNING"
	PhaseBinging Phase = "BINGING"
)

// LightCmd tells the caller what to do with the cavity light this tick.
// The zero value means "leave it as it is".
type LightCmd string

const (
	LightUnchanged LightCmd = ""
	LightOn        LightCmd = "ON"
	LightOff       LightCmd = "OFF"
)

// ToneCmd tells the caller what the speaker should do this tick.
// The zero value means "leave it as it is".
type ToneCmd string

const (
	ToneUnchanged ToneCmd = ""
	ToneSilence   ToneCmd = "SILENCE"
	ToneCooking   ToneCmd = "COOKING"
	ToneBing      ToneCmd = "BING"
)

// EventType labels a recognized transition, for publishing.
type EventType string

const (
	EventDoorOpen  EventType = "DOOR_OPEN"
	EventCookStart EventType = "COOK_START"
	EventCookDone  EventType = "COOK_DONE"
)

// Event describes a recognized transition.
type Event struct {
	Type       EventType
	Phase      Phase
	DoorClosed bool
	// OnDuration is the computed cook duration in ms. Set for COOK_START.
	OnDuration Millis
}

// Effects describes the desired outputs after a tick. The caller applies
// them to hardware; the state machine never touches pins itself. A zero
// Effects means the tick recognized nothing new.
type Effects struct {
	Light LightCmd
	Tone  ToneCmd
	// ToneFreq and ToneDuration qualify Tone when it is COOKING or BING.
	ToneFreq     uint
	ToneDuration Millis
	// Event is non-nil when the tick recognized a transition.
	Event *Event
}

// None reports whether the tick produced no new commands.
func (e Effects) None() bool {
	return e.Light == LightUnchanged && e.Tone == ToneUnchanged && e.Event == nil
}

// Features records which optional hardware was wired up. A capability that
// is absent narrows the effects the controller will ever emit, so callers
// without the hardware never see commands for it.
type Features struct {
	Light   bool
	Speaker bool
	Timer   bool
}

// AllFeatures is the fully-equipped appliance.
var AllFeatures = Features{Light: true, Speaker: true, Timer: true}

// EventCounts tracks the number of recognized transitions since startup.
type EventCounts struct {
	DoorOpens  int
	CookStarts int
	CooksDone  int
}
