// Command led-button toggles an LED from a push button and publishes button
// and LED state changes to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/led-button/internal/actuator"
	"github.com/sweeney/led-button/internal/event"
	"github.com/sweeney/led-button/internal/gpio"
	"github.com/sweeney/led-button/internal/mqtt"
	"github.com/sweeney/led-button/internal/sensor"
	"github.com/sweeney/led-button/internal/status"
	"github.com/sweeney/led-button/internal/web"
)

type config struct {
	driver        string
	chip          string
	ledPin        string
	buttonPin     string
	ledInverted   bool
	activeHigh    bool
	poll          time.Duration
	blinkEvery    time.Duration
	blinkInterval time.Duration
	broker        string
	heartbeat     time.Duration
	httpAddr      string
	printState    bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.driver, "driver", gpio.DriverGPIOCDev, "GPIO driver: gpiocdev, periph or rpio")
	flag.StringVar(&cfg.chip, "chip", "gpiochip0", "GPIO chip (gpiocdev driver only)")
	flag.StringVar(&cfg.ledPin, "led", "18", "LED pin: line offset, BCM number or line name")
	flag.StringVar(&cfg.buttonPin, "button", "15", "Button pin: line offset, BCM number or line name")
	flag.BoolVar(&cfg.ledInverted, "led-inverted", false, "LED is lit when the pin is driven low")
	flag.BoolVar(&cfg.activeHigh, "button-active-high", false, "Button drives the pin high when pressed (uses pull-down)")
	flag.DurationVar(&cfg.poll, "poll", 100*time.Millisecond, "State polling interval")
	flag.DurationVar(&cfg.blinkEvery, "blink-every", 2*time.Second, "Alive blink period (0 to disable)")
	flag.DurationVar(&cfg.blinkInterval, "blink-interval", 100*time.Millisecond, "Alive blink on/off phase")
	flag.StringVar(&cfg.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	flag.DurationVar(&cfg.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.StringVar(&cfg.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	flag.BoolVar(&cfg.printState, "print-state", false, "Print current state and exit")

	flag.Parse()

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config) error {
	// Initialize GPIO
	drv, err := gpio.Open(cfg.driver, cfg.chip)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer drv.Close()

	led, err := actuator.New(drv, gpio.ID(cfg.ledPin), actuator.WithInverted(cfg.ledInverted))
	if err != nil {
		return fmt.Errorf("init led: %w", err)
	}
	defer led.Close()

	button, err := sensor.New(drv, gpio.ID(cfg.buttonPin), sensor.WithActiveLow(!cfg.activeHigh))
	if err != nil {
		return fmt.Errorf("init button: %w", err)
	}
	// Close detaches the interrupt before the pin is released.
	defer button.Close()

	// Print state mode
	if cfg.printState {
		pressed, err := button.IsActive()
		if err != nil {
			return fmt.Errorf("read button: %w", err)
		}
		fmt.Printf("BUTTON: %s, LED: %s\n", buttonString(pressed), onOffString(led.IsOn()))
		return nil
	}

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(cfg.broker)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	tracker := status.NewTracker(time.Now(), status.Config{
		Driver:       cfg.driver,
		Chip:         cfg.chip,
		LEDPin:       cfg.ledPin,
		ButtonPin:    cfg.buttonPin,
		LEDInverted:  cfg.ledInverted,
		ActiveLow:    button.ActiveLow(),
		PollMs:       cfg.poll.Milliseconds(),
		HeartbeatMs:  cfg.heartbeat.Milliseconds(),
		BlinkEveryMs: cfg.blinkEvery.Milliseconds(),
		Broker:       cfg.broker,
		HTTPAddr:     cfg.httpAddr,
	})

	presses, err := subscribePresses(button)
	if err != nil {
		return fmt.Errorf("arm button: %w", err)
	}
	tracker.SetArmed(button.Armed())
	tracker.SetMQTTConnected(publisher.IsConnected())

	// Publish startup event with full status snapshot
	startup := mqtt.SystemEvent{
		Timestamp:  time.Now(),
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(tracker.Snapshot(), "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startup); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	remote, postRemote := mailbox()
	if cfg.httpAddr != "" {
		srv := web.New(cfg.httpAddr, tracker, web.WithToggle(postRemote))
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.httpAddr)
	}

	log.Printf("started: driver=%s led=%s button=%s (edge %s) poll=%v broker=%s",
		cfg.driver, cfg.ledPin, cfg.buttonPin, button.ActiveEdge(), cfg.poll, cfg.broker)

	ticker := time.NewTicker(cfg.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(loop{
		button:        button,
		led:           led,
		publisher:     publisher,
		mqttStatus:    publisher,
		tracker:       tracker,
		heartbeat:     cfg.heartbeat,
		blinkEvery:    cfg.blinkEvery,
		blinkInterval: cfg.blinkInterval,
		now:           time.Now,
		tick:          ticker.C,
		presses:       presses,
		remote:        remote,
		sig:           sigCh,
	})
}

// mailbox returns a one-slot channel and a non-blocking post function.
// Posts made while the slot is full are coalesced and reported as false.
func mailbox() (<-chan struct{}, func() bool) {
	ch := make(chan struct{}, 1)
	return ch, func() bool {
		select {
		case ch <- struct{}{}:
			return true
		default:
			return false
		}
	}
}

// subscribePresses arms the button interrupt so that each press posts to a
// mailbox. The callback runs in the driver's interrupt context and never blocks.
func subscribePresses(button *sensor.Sensor) (<-chan struct{}, error) {
	presses, post := mailbox()
	if err := button.OnActive(func() { post() }); err != nil {
		return nil, err
	}
	return presses, nil
}

// loop holds everything runLoop touches. The LED is only ever driven from
// the runLoop goroutine.
type loop struct {
	button        *sensor.Sensor
	led           *actuator.Actuator
	publisher     mqtt.Publisher
	mqttStatus    mqtt.ConnectionStatus
	tracker       *status.Tracker
	heartbeat     time.Duration
	blinkEvery    time.Duration
	blinkInterval time.Duration
	now           func() time.Time
	tick          <-chan time.Time
	presses       <-chan struct{}
	remote        <-chan struct{} // toggles requested over HTTP
	sig           <-chan os.Signal
}

func runLoop(l loop) error {
	startTime := l.now()
	detector := event.NewDetector(startTime)
	lastBlink := startTime

	toggle := func(source string) {
		if err := l.led.Toggle(); err != nil {
			log.Printf("led toggle error: %v", err)
			return
		}
		log.Printf("%s, LED is now %s", source, onOffString(l.led.IsOn()))
	}
	handlePress := func() {
		detector.RecordInterrupt()
		toggle("button pressed")
	}

	for {
		select {
		case s := <-l.sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			shutdown := mqtt.SystemEvent{
				Timestamp: l.now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if l.tracker != nil {
				l.refreshTracker(detector)
				shutdown.RawPayload = status.FormatStatusEvent(l.tracker.Snapshot(), "SHUTDOWN", signalName)
			}
			if err := l.publisher.PublishSystem(shutdown); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-l.presses:
			handlePress()

		case <-l.remote:
			toggle("remote toggle")

		case <-l.tick:
			// Toggles that raced this tick are applied before sampling.
			select {
			case <-l.presses:
				handlePress()
			default:
			}
			select {
			case <-l.remote:
				toggle("remote toggle")
			default:
			}

			t := l.now()
			pressed, err := l.button.IsActive()
			if err != nil {
				log.Printf("button read error: %v", err)
				continue
			}

			events := detector.Process(event.Input{
				Pressed: pressed,
				LEDOn:   l.led.IsOn(),
				Time:    t,
			})
			for _, e := range events {
				log.Printf("event: %s (button=%s led=%s)", e.Type, e.Button, e.LED)
				if err := l.publisher.Publish(e); err != nil {
					log.Printf("publish error: %v", err)
					// Don't crash on publish failure
				}
			}

			if hb := detector.CheckHeartbeat(t, l.heartbeat); hb != nil {
				log.Printf("heartbeat: uptime=%v presses=%d interrupts=%d",
					hb.Uptime, hb.Counts.Presses, hb.Counts.Interrupts)
				hbEvent := mqtt.SystemEvent{
					Timestamp: hb.Timestamp,
					Event:     "HEARTBEAT",
				}
				if l.tracker != nil {
					l.refreshTracker(detector)
					hbEvent.RawPayload = status.FormatStatusEvent(l.tracker.Snapshot(), "HEARTBEAT", "")
				}
				if err := l.publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			if l.blinkEvery > 0 && t.Sub(lastBlink) >= l.blinkEvery {
				lastBlink = t
				if err := l.led.Blink(1, l.blinkInterval); err != nil {
					log.Printf("blink error: %v", err)
				}
			}

			if l.tracker != nil {
				l.refreshTracker(detector)
			}
		}
	}
}

func (l loop) refreshTracker(detector *event.Detector) {
	button, led := detector.CurrentState()
	l.tracker.Update(button, led, detector.IsBaselined(), detector.Counts())
	l.tracker.SetArmed(l.button.Armed())
	if l.mqttStatus != nil {
		l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
	}
}

func buttonString(pressed bool) string {
	if pressed {
		return string(event.ButtonPressed)
	}
	return string(event.ButtonReleased)
}

func onOffString(on bool) string {
	if on {
		return string(event.LEDOn)
	}
	return string(event.LEDOff)
}
