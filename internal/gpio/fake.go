package gpio

import (
	"errors"
	"time"
)

// FakeDoorSwitch is a test double that returns scripted door readings.
type FakeDoorSwitch struct {
	// Samples contains scripted closed/open values. Each call to Closed
	// consumes the next sample; once exhausted, the last sample repeats.
	Samples []bool

	// index tracks current position in Samples
	index int

	// CloseCalled tracks if Close was called
	CloseCalled bool

	// ReadError, if set, will be returned by Closed()
	ReadError error
}

// NewFakeDoorSwitch creates a FakeDoorSwitch with the given samples.
func NewFakeDoorSwitch(samples []bool) *FakeDoorSwitch {
	return &FakeDoorSwitch{Samples: samples}
}

// Closed returns the next scripted sample.
func (f *FakeDoorSwitch) Closed() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}

	if len(f.Samples) == 0 {
		return false, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// Close marks the switch as released.
func (f *FakeDoorSwitch) Close() error {
	f.CloseCalled = true
	return nil
}

// Reset resets the switch to the beginning of samples.
func (f *FakeDoorSwitch) Reset() {
	f.index = 0
	f.CloseCalled = false
}

// FakeLight records light commands for test assertions.
type FakeLight struct {
	// States contains every level that was set, in order.
	States []bool

	// SetError, if set, will be returned by Set.
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeLight creates a FakeLight.
func NewFakeLight() *FakeLight {
	return &FakeLight{}
}

// Set records the level.
func (f *FakeLight) Set(on bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.States = append(f.States, on)
	return nil
}

// On returns the most recently set level, false if none was set.
func (f *FakeLight) On() bool {
	if len(f.States) == 0 {
		return false
	}
	return f.States[len(f.States)-1]
}

// Close marks the light as closed.
func (f *FakeLight) Close() error {
	f.Closed = true
	return nil
}

// ToneCall records a single Play invocation.
type ToneCall struct {
	Freq     uint
	Duration time.Duration
}

// FakeSpeaker records tone commands for test assertions.
type FakeSpeaker struct {
	// Plays contains every Play call, in order.
	Plays []ToneCall

	// Stops counts Stop calls.
	Stops int

	// PlayError, if set, will be returned by Play.
	PlayError error

	// Closed tracks if Close was called.
	Closed bool

	playing bool
}

// NewFakeSpeaker creates a FakeSpeaker.
func NewFakeSpeaker() *FakeSpeaker {
	return &FakeSpeaker{}
}

// Play records the tone.
func (f *FakeSpeaker) Play(freq uint, d time.Duration) error {
	if f.PlayError != nil {
		return f.PlayError
	}
	f.Plays = append(f.Plays, ToneCall{Freq: freq, Duration: d})
	f.playing = true
	return nil
}

// Stop records the stop.
func (f *FakeSpeaker) Stop() error {
	f.Stops++
	f.playing = false
	return nil
}

// Playing reports whether a tone was started and not yet stopped. The fake
// has no clock, so a tone never expires on its own.
func (f *FakeSpeaker) Playing() bool {
	return f.playing
}

// Close marks the speaker as closed.
func (f *FakeSpeaker) Close() error {
	f.Closed = true
	return nil
}
