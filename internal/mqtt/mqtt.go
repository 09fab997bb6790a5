// Package mqtt publishes run summaries to an MQTT broker.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/Mavwarf/appicons/internal/config"
	"github.com/Mavwarf/appicons/internal/icongen"
)

const timeout = 5 * time.Second

// Event is the JSON payload published after a run.
type Event struct {
	Kind      string   `json:"kind"` // "icons" | "release"
	Platform  string   `json:"platform,omitempty"`
	Source    string   `json:"source,omitempty"`
	Attempted int      `json:"attempted,omitempty"`
	Written   int      `json:"written,omitempty"`
	Failed    []string `json:"failed,omitempty"`
	OK        bool     `json:"ok"`
	Error     string   `json:"error,omitempty"`
	Time      string   `json:"time"`
}

// GenerationEvent summarises an icon run. res may be nil when the run
// failed before rendering, in which case runErr describes why.
func GenerationEvent(platform, source string, res *icongen.Result, runErr error) Event {
	ev := Event{
		Kind:     "icons",
		Platform: platform,
		Source:   source,
		Time:     time.Now().Format(time.RFC3339),
	}
	if runErr != nil {
		ev.Error = runErr.Error()
		return ev
	}
	ev.Attempted = res.Attempted
	ev.Written = len(res.Written())
	for _, o := range res.Failed() {
		ev.Failed = append(ev.Failed, o.Path)
	}
	ev.OK = res.OK()
	return ev
}

// ReleaseEvent summarises a release build.
func ReleaseEvent(runErr error) Event {
	ev := Event{Kind: "release", OK: runErr == nil, Time: time.Now().Format(time.RFC3339)}
	if runErr != nil {
		ev.Error = runErr.Error()
	}
	return ev
}

// Publish connects to the configured broker, publishes ev as JSON to the
// configured topic, and disconnects. Each invocation creates a fresh
// connection.
func Publish(cfg config.MQTT, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("mqtt: encode: %w", err)
	}

	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetConnectTimeout(timeout)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	client := pahomqtt.NewClient(opts)
	tok := client.Connect()
	if !tok.WaitTimeout(timeout) {
		return fmt.Errorf("mqtt: connect timeout")
	}
	if tok.Error() != nil {
		return fmt.Errorf("mqtt: connect: %w", tok.Error())
	}
	defer client.Disconnect(250)

	pub := client.Publish(cfg.Topic, byte(cfg.QoS), cfg.Retain, payload)
	if !pub.WaitTimeout(timeout) {
		return fmt.Errorf("mqtt: publish timeout")
	}
	if pub.Error() != nil {
		return fmt.Errorf("mqtt: publish: %w", pub.Error())
	}
	return nil
}
