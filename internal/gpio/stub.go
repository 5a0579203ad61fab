//go:build !linux

package gpio

import (
	"errors"
	"time"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealDoorSwitch is not available on non-Linux platforms.
type RealDoorSwitch struct{}

// NewRealDoorSwitch returns an error on non-Linux platforms.
func NewRealDoorSwitch(pin int) (*RealDoorSwitch, error) {
	return nil, errUnsupported
}

func (s *RealDoorSwitch) Closed() (bool, error) { return false, errUnsupported }
func (s *RealDoorSwitch) Close() error          { return nil }

// RealLight is not available on non-Linux platforms.
type RealLight struct{}

// NewRealLight returns an error on non-Linux platforms.
func NewRealLight(pin int) (*RealLight, error) {
	return nil, errUnsupported
}

func (l *RealLight) Set(on bool) error { return errUnsupported }
func (l *RealLight) Close() error      { return nil }

// RealSpeaker is not available on non-Linux platforms.
type RealSpeaker struct{}

// NewRealSpeaker returns an error on non-Linux platforms.
func NewRealSpeaker(pin int) (*RealSpeaker, error) {
	return nil, errUnsupported
}

func (s *RealSpeaker) Play(freq uint, d time.Duration) error { return errUnsupported }
func (s *RealSpeaker) Stop() error                           { return errUnsupported }
func (s *RealSpeaker) Close() error                          { return nil }
