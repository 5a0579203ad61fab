// Package gpio provides the microwave's digital I/O with hardware
// abstraction. The real implementations use the Linux GPIO character device;
// the fakes allow testing without hardware.
package gpio

import "time"

// DoorSwitch reads the door leaf switch.
type DoorSwitch interface {
	// Closed returns true when the leaf switch is pressed, i.e. the door
	// is closed. The raw electrical read is inverted here: the switch
	// shorts the line to ground behind a pull-up, so raw low = closed.
	Closed() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Light drives the cavity light pin.
type Light interface {
	// Set turns the light on or off. Repeating a level is harmless.
	Set(on bool) error

	Close() error
}

// Speaker drives the tone pin.
type Speaker interface {
	// Play starts a tone of the given frequency for the given duration,
	// superseding any tone already playing. It returns immediately; the
	// tone timing is internal to the driver.
	Play(freq uint, d time.Duration) error

	// Stop silences the speaker.
	Stop() error

	Close() error
}

// Pin defaults (BCM numbering).
const (
	DefaultPinDoor    = 26
	DefaultPinLight   = 16
	DefaultPinSpeaker = 13
)
