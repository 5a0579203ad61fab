// Command microwaved drives a toy microwave: it polls the door switch,
// controls the cavity light and speaker, times the cook interval from the
// potentiometer dial, and publishes state changes to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/microwave/internal/adc"
	"github.com/sweeney/microwave/internal/gpio"
	"github.com/sweeney/microwave/internal/logic"
	"github.com/sweeney/microwave/internal/mqtt"
	"github.com/sweeney/microwave/internal/status"
	"github.com/sweeney/microwave/internal/web"
)

// runConfig collects the daemon's flag-derived settings.
type runConfig struct {
	poll       time.Duration
	heartbeat  time.Duration
	broker     string
	httpAddr   string
	pinDoor    int
	pinLight   int
	pinSpeaker int
	spiDev     string
	adcChannel int
	features   logic.Features
	printState bool
}

func main() {
	poll := flag.Duration("poll", 50*time.Millisecond, "GPIO polling interval")
	broker := flag.String("broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	pinDoor := flag.Int("pin-door", gpio.DefaultPinDoor, "BCM pin number for the door switch")
	pinLight := flag.Int("pin-light", gpio.DefaultPinLight, "BCM pin number for the cavity light")
	pinSpeaker := flag.Int("pin-speaker", gpio.DefaultPinSpeaker, "BCM pin number for the speaker")
	spiDev := flag.String("spi", "", `SPI port for the MCP3008 ("" = first available)`)
	adcChannel := flag.Int("adc-channel", 0, "MCP3008 channel for the cook-time dial")
	noLight := flag.Bool("no-light", false, "No cavity light wired up")
	noSpeaker := flag.Bool("no-speaker", false, "No speaker wired up")
	noTimer := flag.Bool("no-timer", false, "No cook-time dial wired up (cook the minimum duration)")
	printState := flag.Bool("print-state", false, "Print current state and exit")
	httpAddr := flag.String("http", ":80", "HTTP status address (empty to disable)")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	log.SetOutput(os.Stdout)
	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	cfg := runConfig{
		poll:       *poll,
		heartbeat:  *heartbeat,
		broker:     *broker,
		httpAddr:   *httpAddr,
		pinDoor:    *pinDoor,
		pinLight:   *pinLight,
		pinSpeaker: *pinSpeaker,
		spiDev:     *spiDev,
		adcChannel: *adcChannel,
		features: logic.Features{
			Light:   !*noLight,
			Speaker: !*noSpeaker,
			Timer:   !*noTimer,
		},
		printState: *printState,
	}

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg runConfig) error {
	// The door switch is the one input the appliance cannot do without.
	door, err := gpio.NewRealDoorSwitch(cfg.pinDoor)
	if err != nil {
		return fmt.Errorf("init door switch: %w", err)
	}
	defer door.Close()

	// Absent capabilities are never constructed, so no code path can
	// touch the missing hardware.
	var light gpio.Light
	if cfg.features.Light {
		l, err := gpio.NewRealLight(cfg.pinLight)
		if err != nil {
			return fmt.Errorf("init light: %w", err)
		}
		defer l.Close()
		light = l
	}

	var speaker gpio.Speaker
	if cfg.features.Speaker {
		s, err := gpio.NewRealSpeaker(cfg.pinSpeaker)
		if err != nil {
			return fmt.Errorf("init speaker: %w", err)
		}
		defer s.Close()
		speaker = s
	}

	var pot adc.Reader
	if cfg.features.Timer {
		p, err := adc.NewMCP3008(cfg.spiDev, cfg.adcChannel)
		if err != nil {
			return fmt.Errorf("init adc: %w", err)
		}
		defer p.Close()
		pot = p
	}

	// Print state mode
	if cfg.printState {
		closed, err := door.Closed()
		if err != nil {
			return fmt.Errorf("read door: %w", err)
		}
		if pot != nil {
			dial, err := pot.Read()
			if err != nil {
				return fmt.Errorf("read dial: %w", err)
			}
			fmt.Printf("Door: %s, Dial: %d\n", doorString(closed), dial)
			return nil
		}
		fmt.Printf("Door: %s\n", doorString(closed))
		return nil
	}

	// Initialize MQTT
	publisher, err := mqtt.NewBufferedPublisher(cfg.broker)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:      cfg.poll.Milliseconds(),
		DebounceMs:  int64(logic.DebounceInterval),
		HeartbeatMs: cfg.heartbeat.Milliseconds(),
		Broker:      cfg.broker,
		HTTPAddr:    cfg.httpAddr,
		Features:    cfg.features,
		PinDoor:     cfg.pinDoor,
		PinLight:    cfg.pinLight,
		PinSpeaker:  cfg.pinSpeaker,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Warnf("failed to publish startup event: %v", err)
	} else {
		log.Infof("published startup event")
	}

	// Start HTTP status server
	if cfg.httpAddr != "" {
		srv := web.New(cfg.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Errorf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Infof("http status server listening on %s", cfg.httpAddr)
	}

	log.Infof("started: poll=%v heartbeat=%v broker=%s light=%v speaker=%v timer=%v",
		cfg.poll, cfg.heartbeat, cfg.broker,
		cfg.features.Light, cfg.features.Speaker, cfg.features.Timer)

	ticker := time.NewTicker(cfg.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(door, light, speaker, pot, publisher, publisher, tracker,
		cfg.features, cfg.heartbeat, time.Now, ticker.C, sigCh)
}

func runLoop(door gpio.DoorSwitch, light gpio.Light, speaker gpio.Speaker, pot adc.Reader,
	publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker,
	features logic.Features, heartbeat time.Duration,
	now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {

	startTime := now()
	ctrl := logic.NewController(features)

	// The controller runs on a wrapping millisecond counter, not wall
	// time; unsigned subtraction inside keeps elapsed math correct.
	millis := func(t time.Time) logic.Millis {
		return logic.Millis(t.Sub(startTime).Milliseconds())
	}

	var lastDial uint16
	lastHeartbeat := startTime

	for {
		select {
		case s := <-sig:
			log.Infof("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Warnf("failed to publish shutdown event: %v", err)
			} else {
				log.Infof("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			closed, err := door.Closed()
			if err != nil {
				log.Warnf("door read error: %v", err)
				continue
			}

			if pot != nil {
				if dial, err := pot.Read(); err != nil {
					// Reuse the last good reading; a glitchy dial should
					// not stop the appliance.
					log.Warnf("dial read error: %v", err)
				} else {
					lastDial = dial
				}
			}

			nowMs := millis(t)
			effects := ctrl.Tick(nowMs, closed, lastDial)
			applyEffects(effects, light, speaker)

			if e := effects.Event; e != nil {
				log.Infof("event: %s (door=%s phase=%s)", e.Type, doorString(e.DoorClosed), e.Phase)
				if err := publisher.Publish(mqtt.Event{
					Timestamp:  t,
					Type:       e.Type,
					Phase:      e.Phase,
					DoorClosed: e.DoorClosed,
					CookTime:   time.Duration(e.OnDuration) * time.Millisecond,
				}); err != nil {
					log.Warnf("publish error: %v", err)
					// Don't crash on publish failure
				}
			}

			// Check for heartbeat
			if heartbeat > 0 && t.Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = t
				counts := ctrl.Counts()
				log.Infof("heartbeat: uptime=%v opens=%d cooks=%d done=%d",
					t.Sub(startTime).Truncate(time.Second),
					counts.DoorOpens, counts.CookStarts, counts.CooksDone)

				hbEvent := mqtt.SystemEvent{
					Timestamp: t,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					if mqttStatus != nil {
						tracker.SetMQTTConnected(mqttStatus.IsConnected())
					}
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					tracker.Update(ctrl.DoorClosed(), ctrl.Phase(), int64(ctrl.Remaining(nowMs)), counts)
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Warnf("heartbeat publish error: %v", err)
				}
			}

			// Update status tracker for HTTP consumers
			if tracker != nil {
				tracker.Update(ctrl.DoorClosed(), ctrl.Phase(), int64(ctrl.Remaining(nowMs)), ctrl.Counts())
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}
		}
	}
}

// applyEffects pushes the controller's desired outputs to the hardware.
// Output errors are logged and survived; pin levels are idempotent to
// repeat, so the next transition heals any missed write.
func applyEffects(e logic.Effects, light gpio.Light, speaker gpio.Speaker) {
	if e.Light != logic.LightUnchanged && light != nil {
		if err := light.Set(e.Light == logic.LightOn); err != nil {
			log.Warnf("light error: %v", err)
		}
	}

	if speaker == nil {
		return
	}
	switch e.Tone {
	case logic.ToneSilence:
		if err := speaker.Stop(); err != nil {
			log.Warnf("speaker stop error: %v", err)
		}
	case logic.ToneCooking, logic.ToneBing:
		if err := speaker.Play(e.ToneFreq, time.Duration(e.ToneDuration)*time.Millisecond); err != nil {
			log.Warnf("speaker error: %v", err)
		}
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func doorString(closed bool) string {
	if closed {
		return "CLOSED"
	}
	return "OPEN"
}
