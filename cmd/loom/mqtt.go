/* Copyright 2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/loomery/loom/source"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTIO is a source.Dialer (each source name is a topic to
// subscribe) and an output sink (each merged record is published).
type MQTTIO struct {
	Client  mqtt.Client
	QoS     byte
	Quiesce uint

	// OutTopic is where merged records go.  Empty disables
	// publishing.
	OutTopic string
	Retain   bool
}

// NewMQTTIO makes an MQTTIO from mosquitto_sub-style args.
//
// With nil args, just returns the FlagSet (for usage messages).
func NewMQTTIO(args []string) (*MQTTIO, *flag.FlagSet) {
	var (
		fs = flag.NewFlagSet("mq", flag.ExitOnError)

		broker    = fs.String("h", "tcp://localhost", "Broker hostname")
		clientId  = fs.String("i", "", "Client id")
		port      = fs.Int("p", 1883, "Broker port")
		keepAlive = fs.Int("k", 10, "Keep-alive in seconds")
		userName  = fs.String("u", "", "Username")
		password  = fs.String("P", "", "Password")
		reconnect = fs.Bool("reconnect", true, "Automatically attempt to reconnect")
		clean     = fs.Bool("c", true, "Clean session")
		quiesce   = fs.Int("quiesce", 100, "Disconnection quiescence (in milliseconds)")
		qos       = fs.Int("qos", 0, "QoS for subscriptions and publications")

		outTopic = fs.String("out", "", "Topic for merged records")
		retain   = fs.Bool("retain", false, "Retain published records")
	)

	if args == nil {
		return nil, fs
	}

	fs.Parse(args)

	mqtt.ERROR = log.New(log.Writer(), "mqtt.error", 0)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("%s:%d", *broker, *port))
	opts.SetClientID(*clientId)
	opts.SetKeepAlive(time.Second * time.Duration(*keepAlive))
	opts.Username = *userName
	opts.Password = *password
	opts.AutoReconnect = *reconnect
	opts.CleanSession = *clean

	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Printf("MQTT connection lost")
	}

	io := &MQTTIO{
		QoS:      byte(*qos),
		Quiesce:  uint(*quiesce),
		OutTopic: *outTopic,
		Retain:   *retain,
	}
	io.Client = mqtt.NewClient(opts)

	return io, fs
}

// Start connects to the broker.
func (m *MQTTIO) Start(ctx context.Context) error {
	log.Printf("Attempting to connect to broker")
	if token := m.Client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("Connected to broker")
	return nil
}

// Stop disconnects from the broker.
func (m *MQTTIO) Stop(ctx context.Context) error {
	m.Client.Disconnect(m.Quiesce)
	return nil
}

// Dial subscribes to the topic and caches the latest payload for
// polling.
func (m *MQTTIO) Dial(ctx context.Context, name string) (source.Conn, error) {
	c := &mqttConn{
		client: m.Client,
		topic:  name,
	}
	if t := m.Client.Subscribe(name, m.QoS, c.handler); t.Wait() && t.Error() != nil {
		return nil, t.Error()
	}
	log.Printf("Subscribed to %s (%d)", name, m.QoS)
	return c, nil
}

// Emit publishes one merged record as JSON (if an out topic is
// configured).
func (m *MQTTIO) Emit(ctx context.Context, rec []interface{}) error {
	if m.OutTopic == "" {
		return nil
	}
	js, err := json.Marshal(&rec)
	if err != nil {
		return err
	}
	if t := m.Client.Publish(m.OutTopic, m.QoS, m.Retain, js); t.Wait() && t.Error() != nil {
		return t.Error()
	}
	return nil
}

// mqttConn caches the most recent payload from one topic.
type mqttConn struct {
	client mqtt.Client
	topic  string

	sync.Mutex
	v     interface{}
	fresh bool
}

// handler is a Paho publish handler: it parses the payload as JSON
// (falling back to the raw string) and caches it.
func (c *mqttConn) handler(client mqtt.Client, msg mqtt.Message) {
	var x interface{}
	payload := msg.Payload()
	if err := json.Unmarshal(payload, &x); err != nil {
		log.Printf("Couldn't JSON-parse payload on %s: %s", c.topic, payload)
		x = string(payload)
	}

	c.Lock()
	c.v = x
	c.fresh = true
	c.Unlock()
}

func (c *mqttConn) Poll() (interface{}, bool, error) {
	c.Lock()
	defer c.Unlock()
	if !c.fresh {
		return nil, false, nil
	}
	c.fresh = false
	return c.v, true, nil
}

func (c *mqttConn) Close() error {
	if t := c.client.Unsubscribe(c.topic); t.Wait() && t.Error() != nil {
		return t.Error()
	}
	return nil
}
