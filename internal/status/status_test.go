package status

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sweeney/microwave/internal/logic"
)

func testConfig() Config {
	return Config{
		PollMs:      50,
		DebounceMs:  100,
		HeartbeatMs: 900000,
		Broker:      "tcp://192.168.1.200:1883",
		HTTPAddr:    ":8080",
		Features:    logic.AllFeatures,
		PinDoor:     26,
		PinLight:    16,
		PinSpeaker:  13,
	}
}

func TestNewTrackerDefaults(t *testing.T) {
	start := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	tr := NewTracker(start, testConfig())

	snap := tr.Snapshot()
	if !snap.DoorClosed {
		t.Error("tracker should mirror the controller's assumed-closed boot state")
	}
	if snap.Phase != logic.PhaseIdle {
		t.Errorf("expected IDLE, got %s", snap.Phase)
	}
	if !snap.StartTime.Equal(start) {
		t.Errorf("unexpected start time: %v", snap.StartTime)
	}
	if snap.Config.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("unexpected config: %+v", snap.Config)
	}
}

func TestTrackerUpdate(t *testing.T) {
	tr := NewTracker(time.Now(), testConfig())

	tr.Update(false, logic.PhaseRunning, 1500, logic.EventCounts{DoorOpens: 2, CookStarts: 1})
	tr.SetMQTTConnected(true)

	snap := tr.Snapshot()
	if snap.DoorClosed {
		t.Error("expected door open after update")
	}
	if snap.Phase != logic.PhaseRunning {
		t.Errorf("expected RUNNING, got %s", snap.Phase)
	}
	if snap.RemainingMs != 1500 {
		t.Errorf("expected 1500ms remaining, got %d", snap.RemainingMs)
	}
	if snap.Counts.DoorOpens != 2 || snap.Counts.CookStarts != 1 {
		t.Errorf("unexpected counts: %+v", snap.Counts)
	}
	if !snap.MQTTConnected {
		t.Error("expected MQTT connected")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	tr := NewTracker(time.Now(), testConfig())
	snap := tr.Snapshot()

	tr.Update(false, logic.PhaseRunning, 100, logic.EventCounts{})

	if !snap.DoorClosed || snap.Phase != logic.PhaseIdle {
		t.Error("snapshot must not observe later updates")
	}
}

func TestSnapshotDoorText(t *testing.T) {
	s := Snapshot{DoorClosed: true}
	if s.Door() != "CLOSED" {
		t.Errorf("expected CLOSED, got %q", s.Door())
	}
	s.DoorClosed = false
	if s.Door() != "OPEN" {
		t.Errorf("expected OPEN, got %q", s.Door())
	}
}

func TestFormatJSONShape(t *testing.T) {
	tr := NewTracker(time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC), testConfig())
	tr.Update(true, logic.PhaseBinging, 0, logic.EventCounts{CooksDone: 3})

	var got StatusJSON
	if err := json.Unmarshal(FormatJSON(tr.Snapshot()), &got); err != nil {
		t.Fatalf("FormatJSON produced invalid JSON: %v", err)
	}

	if got.Status.Door != "CLOSED" {
		t.Errorf("expected door CLOSED, got %q", got.Status.Door)
	}
	if got.Status.Phase != "BINGING" {
		t.Errorf("expected phase BINGING, got %q", got.Status.Phase)
	}
	if got.Status.Counts.CooksDone != 3 {
		t.Errorf("expected 3 cooks done, got %d", got.Status.Counts.CooksDone)
	}
	if got.Status.Event != "" {
		t.Errorf("web JSON must not carry an event, got %q", got.Status.Event)
	}
	if !got.Status.Config.Features.Speaker {
		t.Error("expected speaker feature in config")
	}
	if got.Status.Network != nil {
		t.Error("network should be omitted when unknown")
	}
}

func TestFormatStatusEvent(t *testing.T) {
	tr := NewTracker(time.Now(), testConfig())
	tr.SetNetwork(&NetworkInfo{Type: "wifi", IP: "192.168.1.42", Status: "connected", SSID: "HomeNet"})

	var got StatusJSON
	if err := json.Unmarshal(FormatStatusEvent(tr.Snapshot(), "SHUTDOWN", "SIGTERM"), &got); err != nil {
		t.Fatalf("FormatStatusEvent produced invalid JSON: %v", err)
	}

	if got.Status.Event != "SHUTDOWN" || got.Status.Reason != "SIGTERM" {
		t.Errorf("unexpected event/reason: %q/%q", got.Status.Event, got.Status.Reason)
	}
	if got.Status.Network == nil || got.Status.Network.SSID != "HomeNet" {
		t.Errorf("expected network info in system event, got %+v", got.Status.Network)
	}
}

func TestUptime(t *testing.T) {
	start := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	s := Snapshot{StartTime: start, Now: start.Add(90 * time.Second)}
	if s.Uptime() != 90*time.Second {
		t.Errorf("expected 90s uptime, got %v", s.Uptime())
	}
}
