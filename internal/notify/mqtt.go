/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	defaultConnectTimeout = 10 * time.Second
	publishTimeout        = 5 * time.Second
	// DefaultTopic is used when no topic is configured.
	DefaultTopic = "venueplan/notifications"
)

// ErrConnectionFailed is returned when the broker cannot be reached.
var ErrConnectionFailed = errors.New("mqtt connection failed")

// Publisher is the subset of the paho client used for notifications.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
}

// MQTTOptions configures the broker connection.
type MQTTOptions struct {
	Broker   string
	ClientID string
	Topic    string
	Username string
	Password string
	// Scope is added to every payload, typically venue[/line].
	Scope string
}

type mqttPayload struct {
	Kind    Kind      `json:"kind"`
	Message string    `json:"message"`
	Scope   string    `json:"scope,omitempty"`
	TS      time.Time `json:"ts"`
}

// MQTT publishes notifications as JSON to a broker topic so other consumers
// (a floor staff display, an audit log) can follow plan saves.
type MQTT struct {
	pub    Publisher
	client pahomqtt.Client
	topic  string
	scope  string
	log    *slog.Logger
	now    func() time.Time
}

// ConnectMQTT dials the broker and returns a notifier publishing on opts.Topic.
func ConnectMQTT(opts MQTTOptions, logger *slog.Logger) (*MQTT, error) {
	if opts.Broker == "" {
		return nil, fmt.Errorf("%w: no broker configured", ErrConnectionFailed)
	}
	co := pahomqtt.NewClientOptions()
	co.AddBroker(opts.Broker)
	if opts.ClientID == "" {
		opts.ClientID = fmt.Sprintf("venueplan-%d", time.Now().UnixNano())
	}
	co.SetClientID(opts.ClientID)
	if opts.Username != "" {
		co.SetUsername(opts.Username)
		co.SetPassword(opts.Password)
	}
	co.SetAutoReconnect(true)
	co.SetCleanSession(true)
	co.SetConnectTimeout(defaultConnectTimeout)

	client := pahomqtt.NewClient(co)
	token := client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	n := NewMQTT(client, opts.Topic, opts.Scope, logger)
	n.client = client
	return n, nil
}

// NewMQTT wraps an already connected publisher.
func NewMQTT(pub Publisher, topic, scope string, logger *slog.Logger) *MQTT {
	if topic == "" {
		topic = DefaultTopic
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MQTT{pub: pub, topic: topic, scope: scope, log: logger, now: time.Now}
}

// Notify publishes at QoS 1 and waits up to publishTimeout for the ack.
// Failures are logged, never returned.
func (m *MQTT) Notify(kind Kind, message string) {
	payload, err := json.Marshal(mqttPayload{Kind: kind, Message: message, Scope: m.scope, TS: m.now().UTC()})
	if err != nil {
		m.log.Warn("mqtt notify encode failed", slog.String("component", "notify"), slog.Any("err", err))
		return
	}
	token := m.pub.Publish(m.topic, 1, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		m.log.Warn("mqtt notify timed out", slog.String("component", "notify"), slog.String("topic", m.topic))
		return
	}
	if err := token.Error(); err != nil {
		m.log.Warn("mqtt notify failed", slog.String("component", "notify"), slog.String("topic", m.topic), slog.Any("err", err))
	}
}

// Close disconnects a client created by ConnectMQTT.
func (m *MQTT) Close() {
	if m.client != nil {
		m.client.Disconnect(250)
	}
}
