//go:build linux

package gpio

import (
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

const chipName = "gpiochip0"

// RealDoorSwitch reads the door switch from actual hardware using the Linux
// GPIO character device.
type RealDoorSwitch struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealDoorSwitch creates a door switch reader for actual Raspberry Pi
// hardware. The switch is wired between the pin and ground, so the line is
// requested with a pull-up.
func NewRealDoorSwitch(pin int) (*RealDoorSwitch, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request door pin %d: %w", pin, err)
	}

	return &RealDoorSwitch{chip: chip, line: line}, nil
}

// Closed returns the logical door position.
// Inverts the raw read: raw low (0) = switch pressed = door closed.
func (s *RealDoorSwitch) Closed() (bool, error) {
	raw, err := s.line.Value()
	if err != nil {
		return false, fmt.Errorf("read door pin: %w", err)
	}
	return raw == 0, nil
}

// Close releases GPIO resources. The pin is reconfigured to input with
// pull-down (the Pi boot default) before closing so a reboot starts from a
// known state.
func (s *RealDoorSwitch) Close() error {
	var errs []error

	if s.line != nil {
		if err := s.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure door pin: %w", err))
		}
		if err := s.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close door pin: %w", err))
		}
	}
	if s.chip != nil {
		if err := s.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealLight drives the cavity light through a GPIO output.
type RealLight struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealLight creates a light driver on the given pin, initially off.
func NewRealLight(pin int) (*RealLight, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request light pin %d: %w", pin, err)
	}

	return &RealLight{chip: chip, line: line}, nil
}

// Set turns the light on or off.
func (l *RealLight) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := l.line.SetValue(v); err != nil {
		return fmt.Errorf("set light pin: %w", err)
	}
	return nil
}

// Close turns the light off and releases GPIO resources.
func (l *RealLight) Close() error {
	var errs []error

	if l.line != nil {
		if err := l.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear light pin: %w", err))
		}
		if err := l.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close light pin: %w", err))
		}
	}
	if l.chip != nil {
		if err := l.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealSpeaker synthesizes a square wave on a GPIO output. The tone runs on
// its own goroutine with a half-period ticker; Play and Stop only swap the
// cancellation channel, so the control loop never blocks on tone timing.
type RealSpeaker struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line

	mu     sync.Mutex
	cancel chan struct{}
}

// NewRealSpeaker creates a speaker driver on the given pin, initially
// silent.
func NewRealSpeaker(pin int) (*RealSpeaker, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request speaker pin %d: %w", pin, err)
	}

	return &RealSpeaker{chip: chip, line: line}, nil
}

// Play starts a tone, superseding any tone already playing.
func (s *RealSpeaker) Play(freq uint, d time.Duration) error {
	if freq == 0 {
		return fmt.Errorf("speaker: zero frequency")
	}

	s.mu.Lock()
	if s.cancel != nil {
		close(s.cancel)
	}
	cancel := make(chan struct{})
	s.cancel = cancel
	s.mu.Unlock()

	go s.squareWave(freq, d, cancel)
	return nil
}

// Stop silences the speaker.
func (s *RealSpeaker) Stop() error {
	s.mu.Lock()
	if s.cancel != nil {
		close(s.cancel)
		s.cancel = nil
	}
	s.mu.Unlock()
	return nil
}

func (s *RealSpeaker) squareWave(freq uint, d time.Duration, cancel <-chan struct{}) {
	half := time.Second / time.Duration(2*freq)
	tick := time.NewTicker(half)
	defer tick.Stop()
	deadline := time.NewTimer(d)
	defer deadline.Stop()

	level := 0
	for {
		select {
		case <-cancel:
			s.line.SetValue(0)
			return
		case <-deadline.C:
			s.line.SetValue(0)
			return
		case <-tick.C:
			level ^= 1
			// A missed edge only distorts the tone; not worth surfacing.
			s.line.SetValue(level)
		}
	}
}

// Close silences the speaker and releases GPIO resources.
func (s *RealSpeaker) Close() error {
	s.Stop()

	var errs []error

	if s.line != nil {
		if err := s.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear speaker pin: %w", err))
		}
		if err := s.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close speaker pin: %w", err))
		}
	}
	if s.chip != nil {
		if err := s.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
