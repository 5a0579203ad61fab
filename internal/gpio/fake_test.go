package gpio

import (
	"errors"
	"testing"
	"time"
)

func TestFakeDoorSwitchSequence(t *testing.T) {
	f := NewFakeDoorSwitch([]bool{true, true, false})

	want := []bool{true, true, false}
	for i, w := range want {
		got, err := f.Closed()
		if err != nil {
			t.Fatalf("sample %d: unexpected error: %v", i, err)
		}
		if got != w {
			t.Errorf("sample %d: expected %v, got %v", i, w, got)
		}
	}

	// Exhausted samples repeat the last one.
	got, err := f.Closed()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != false {
		t.Error("expected last sample to repeat")
	}
}

func TestFakeDoorSwitchNoSamples(t *testing.T) {
	f := NewFakeDoorSwitch(nil)
	if _, err := f.Closed(); err == nil {
		t.Error("expected error with no samples configured")
	}
}

func TestFakeDoorSwitchReadError(t *testing.T) {
	f := NewFakeDoorSwitch([]bool{true})
	f.ReadError = errors.New("boom")
	if _, err := f.Closed(); err == nil {
		t.Error("expected injected read error")
	}
}

func TestFakeDoorSwitchReset(t *testing.T) {
	f := NewFakeDoorSwitch([]bool{true, false})
	f.Closed()
	f.Closed()
	f.Close()
	f.Reset()

	if f.CloseCalled {
		t.Error("Reset should clear CloseCalled")
	}
	got, _ := f.Closed()
	if got != true {
		t.Error("Reset should rewind to the first sample")
	}
}

func TestFakeLightRecordsLevels(t *testing.T) {
	f := NewFakeLight()
	if f.On() {
		t.Error("new fake light should be off")
	}

	f.Set(true)
	f.Set(true)
	f.Set(false)

	if len(f.States) != 3 {
		t.Fatalf("expected 3 recorded levels, got %d", len(f.States))
	}
	if f.On() {
		t.Error("expected light off after final Set(false)")
	}
}

func TestFakeSpeakerRecordsTones(t *testing.T) {
	f := NewFakeSpeaker()

	f.Play(2500, 350*time.Millisecond)
	if !f.Playing() {
		t.Error("expected playing after Play")
	}
	f.Stop()
	if f.Playing() {
		t.Error("expected silent after Stop")
	}

	if len(f.Plays) != 1 {
		t.Fatalf("expected 1 recorded play, got %d", len(f.Plays))
	}
	if f.Plays[0].Freq != 2500 || f.Plays[0].Duration != 350*time.Millisecond {
		t.Errorf("unexpected recorded tone: %+v", f.Plays[0])
	}
	if f.Stops != 1 {
		t.Errorf("expected 1 recorded stop, got %d", f.Stops)
	}
}
