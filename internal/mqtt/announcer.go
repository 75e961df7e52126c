// Package mqtt publishes device actuations to an MQTT broker so other
// systems on the network can observe what the agent does. The
// announcer uses Eclipse Paho v2's [autopaho] package for connection
// management with automatic reconnection. A will message ensures the
// availability topic transitions to "offline" on unexpected
// disconnects.
package mqtt

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"

	"github.com/hearthd/hearth/internal/config"
	"github.com/hearthd/hearth/internal/devices"
)

// Announcer publishes every recorded device actuation: a retained
// per-device state topic so late joiners see the current state, and a
// non-retained JSON event on the shared events topic.
type Announcer struct {
	cfg    config.MQTTConfig
	logger *slog.Logger
	cm     *autopaho.ConnectionManager
}

// New creates an Announcer but does not connect. Call [Announcer.Start]
// to begin the connection.
func New(cfg config.MQTTConfig, logger *slog.Logger) *Announcer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Announcer{
		cfg:    cfg,
		logger: logger,
	}
}

// Start connects to the MQTT broker and returns once the connection
// manager is running. autopaho keeps retrying in the background if the
// broker is not reachable yet.
func (a *Announcer) Start(ctx context.Context) error {
	brokerURL, err := url.Parse(a.cfg.Broker)
	if err != nil {
		return fmt.Errorf("parse mqtt broker URL: %w", err)
	}

	availTopic := a.availabilityTopic()

	pahoCfg := autopaho.ClientConfig{
		ServerUrls:      []*url.URL{brokerURL},
		KeepAlive:       30,
		ConnectUsername: a.cfg.Username,
		ConnectPassword: []byte(a.cfg.Password),
		WillMessage: &paho.WillMessage{
			Topic:   availTopic,
			Payload: []byte("offline"),
			QoS:     1,
			Retain:  true,
		},
		OnConnectionUp: func(cm *autopaho.ConnectionManager, _ *paho.Connack) {
			a.logger.Info("mqtt connected to broker", "broker", a.cfg.Broker)
			a.publishAvailability(ctx, cm, "online")
		},
		OnConnectError: func(err error) {
			a.logger.Warn("mqtt connection error", "error", err)
		},
		ClientConfig: paho.ClientConfig{
			ClientID: "hearth-" + a.cfg.DeviceName,
		},
	}

	// Enable TLS for mqtts:// or ssl:// schemes.
	if brokerURL.Scheme == "mqtts" || brokerURL.Scheme == "ssl" {
		pahoCfg.TlsCfg = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	cm, err := autopaho.NewConnection(ctx, pahoCfg)
	if err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	a.cm = cm

	connCtx, connCancel := context.WithTimeout(ctx, 10*time.Second)
	defer connCancel()
	if err := cm.AwaitConnection(connCtx); err != nil {
		a.logger.Warn("mqtt initial connection timed out, will retry in background", "error", err)
	}
	return nil
}

// Stop gracefully disconnects by publishing an "offline" availability
// message before closing the MQTT connection.
func (a *Announcer) Stop(ctx context.Context) error {
	if a.cm == nil {
		return nil
	}
	a.publishAvailability(ctx, a.cm, "offline")
	return a.cm.Disconnect(ctx)
}

// actionEvent is the JSON payload published for each actuation.
type actionEvent struct {
	ID        string `json:"id"`
	Room      string `json:"room"`
	Device    string `json:"device"`
	State     string `json:"state"`
	Timestamp string `json:"timestamp"`
}

// Announce publishes one actuation. Failures are logged, never
// returned; a broker outage must not break the actuation path.
func (a *Announcer) Announce(ctx context.Context, action devices.Action) {
	if a.cm == nil {
		return
	}

	// Retained current state, so subscribers joining later still see it.
	if _, err := a.cm.Publish(ctx, &paho.Publish{
		Topic:   a.stateTopic(action.Room, action.Device),
		Payload: []byte(action.State),
		QoS:     1,
		Retain:  true,
	}); err != nil {
		a.logger.Warn("mqtt state publish failed",
			"room", action.Room, "device", action.Device, "error", err)
	}

	payload, err := json.Marshal(actionEvent{
		ID:        action.ID,
		Room:      action.Room,
		Device:    action.Device,
		State:     action.State,
		Timestamp: action.Timestamp.Format(time.RFC3339),
	})
	if err != nil {
		a.logger.Error("mqtt marshal action event", "error", err)
		return
	}

	if _, err := a.cm.Publish(ctx, &paho.Publish{
		Topic:   a.eventsTopic(),
		Payload: payload,
		QoS:     1,
	}); err != nil {
		a.logger.Warn("mqtt event publish failed",
			"room", action.Room, "device", action.Device, "error", err)
	} else {
		a.logger.Debug("mqtt action announced",
			"room", action.Room, "device", action.Device, "state", action.State)
	}
}

// --- Topic helpers ---

func (a *Announcer) baseTopic() string {
	return "hearth/" + a.cfg.DeviceName
}

func (a *Announcer) availabilityTopic() string {
	return a.baseTopic() + "/availability"
}

func (a *Announcer) eventsTopic() string {
	return a.baseTopic() + "/events"
}

func (a *Announcer) stateTopic(room, device string) string {
	return a.baseTopic() + "/" + room + "/" + device + "/state"
}

func (a *Announcer) publishAvailability(ctx context.Context, cm *autopaho.ConnectionManager, status string) {
	if _, err := cm.Publish(ctx, &paho.Publish{
		Topic:   a.availabilityTopic(),
		Payload: []byte(status),
		QoS:     1,
		Retain:  true,
	}); err != nil {
		a.logger.Warn("mqtt availability publish failed",
			"status", status, "error", err)
	} else {
		a.logger.Info("mqtt availability published", "status", status)
	}
}
