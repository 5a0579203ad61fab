package logic

// Controller is the door/run/bing state machine. It is owned by the polling
// loop and mutated only by Tick; it needs no locking.
type Controller struct {
	features Features

	// doorClosed is the current debounced door position; wasClosed is the
	// position as of the previous tick, sampled before the update in the
	// current tick. A raw change is therefore recognized one tick after it
	// is first seen, on top of the debounce gate.
	doorClosed bool
	wasClosed  bool

	// running is true while the cook timer is active; binging from the
	// moment the bing is issued until its duration has elapsed. Never both.
	running bool
	binging bool

	// stateChangeAt is the time of the last recognized door transition.
	// The debounce gate measures from it, and because a cook always starts
	// at a close, so does elapsed cook time.
	stateChangeAt Millis

	// onDuration is computed once per door-closing event and read-only on
	// every other tick.
	onDuration Millis

	counts EventCounts
}

// NewController creates a controller with the given feature set. The door is
// assumed closed and the appliance idle; if the door is actually open at
// boot, the first real reading corrects it after one debounce interval.
func NewController(features Features) *Controller {
	return &Controller{
		features:   features,
		doorClosed: true,
		wasClosed:  true,
	}
}

// Tick advances the state machine. now is a wrapping millisecond counter,
// rawDoorClosed the current switch reading (true = leaf switch pressed),
// pot the current 0..1023 dial reading (pass 0 when no timer hardware is
// wired; the cook duration then defaults to the minimum).
func (c *Controller) Tick(now Millis, rawDoorClosed bool, pot uint16) Effects {
	// Debounce gate. Unsigned subtraction keeps this correct across
	// counter wraparound.
	if now-c.stateChangeAt < DebounceInterval {
		return Effects{}
	}

	c.wasClosed = c.doorClosed
	c.doorClosed = rawDoorClosed

	if c.wasClosed {
		elapsed := now - c.stateChangeAt

		if !c.doorClosed {
			// Door just opened. Any tone stops immediately; the light
			// stays on while the interior is inspected.
			c.running = false
			c.binging = false
			c.stateChangeAt = now
			c.counts.DoorOpens++
			return c.narrow(Effects{
				Light: LightOn,
				Tone:  ToneSilence,
				Event: &Event{Type: EventDoorOpen, Phase: PhaseIdle, DoorClosed: false},
			})
		}

		if c.running && elapsed > c.onDuration {
			// Cook timer expired. The bing is fire-and-forget: issued
			// once for a bounded duration, never actively stopped.
			c.running = false
			c.binging = true
			c.counts.CooksDone++
			return c.narrow(Effects{
				Light:        LightOff,
				Tone:         ToneBing,
				ToneFreq:     BingFreq,
				ToneDuration: BingDuration,
				Event:        &Event{Type: EventCookDone, Phase: PhaseBinging, DoorClosed: true},
			})
		}

		if !c.running && c.binging && elapsed > c.onDuration+BingDuration {
			// Bing has played out; the tone expired on its own.
			c.binging = false
		}

		return Effects{}
	}

	if c.doorClosed {
		// Door just closed: the only point the cook duration is computed.
		c.onDuration = c.cookDuration(pot)
		c.stateChangeAt = now
		c.running = true
		c.binging = false
		c.counts.CookStarts++
		return c.narrow(Effects{
			Light:        LightOn,
			Tone:         ToneCooking,
			ToneFreq:     CookingFreq,
			ToneDuration: c.onDuration,
			Event: &Event{
				Type:       EventCookStart,
				Phase:      PhaseRunning,
				DoorClosed: true,
				OnDuration: c.onDuration,
			},
		})
	}

	// Door open last tick and still open.
	return Effects{}
}

// cookDuration maps the dial reading linearly onto
// [OnDurationMin, OnDurationMin+OnDurationRange].
func (c *Controller) cookDuration(pot uint16) Millis {
	if !c.features.Timer {
		return OnDurationMin
	}
	if pot > PotMax {
		pot = PotMax
	}
	return OnDurationMin + Millis(pot)*OnDurationRange/Millis(PotMax)
}

// narrow strips effects for capabilities that were not wired up.
func (c *Controller) narrow(e Effects) Effects {
	if !c.features.Light {
		e.Light = LightUnchanged
	}
	if !c.features.Speaker {
		e.Tone = ToneUnchanged
		e.ToneFreq = 0
		e.ToneDuration = 0
	}
	return e
}

// DoorClosed returns the current debounced door position.
func (c *Controller) DoorClosed() bool {
	return c.doorClosed
}

// Phase returns the derived cooking phase.
func (c *Controller) Phase() Phase {
	switch {
	case c.running:
		return PhaseRunning
	case c.binging:
		return PhaseBinging
	default:
		return PhaseIdle
	}
}

// Remaining returns how much cook time is left at now, zero when not
// running.
func (c *Controller) Remaining(now Millis) Millis {
	if !c.running {
		return 0
	}
	elapsed := now - c.stateChangeAt
	if elapsed >= c.onDuration {
		return 0
	}
	return c.onDuration - elapsed
}

// OnDuration returns the cook duration computed at the most recent
// door-closing event.
func (c *Controller) OnDuration() Millis {
	return c.onDuration
}

// Counts returns a copy of the transition counters.
func (c *Controller) Counts() EventCounts {
	return c.counts
}
