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
	"fmt"
	"log"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTCoupling connects the service to an MQTT broker.
//
// Every message arriving on a subscribed topic is processed.
// Out-bound messages routed to "mqtt" are published, to the message's
// own "topic" if given or to OutTopic otherwise.
type MQTTCoupling struct {
	Client mqtt.Client

	// Quiesce is the disconnection quiescence in milliseconds.
	Quiesce uint

	// SubTopics is a comma-separated list of subscription topics,
	// each optionally of the form TOPIC:QOS.
	SubTopics string

	// OutTopic is the default topic for out-bound messages.
	OutTopic string
}

// NewMQTTCoupling makes a coupling for the given broker.  In-bound
// messages go through the service's ops protocol as process
// operations.
func (s *Service) NewMQTTCoupling(ctx context.Context, broker, clientId, subTopics, outTopic string) *MQTTCoupling {
	c := &MQTTCoupling{
		Quiesce:   100,
		SubTopics: subTopics,
		OutTopic:  outTopic,
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientId)
	opts.SetKeepAlive(10 * time.Second)

	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Printf("MQTT connection lost")
	}

	opts.DefaultPublishHandler = func(client mqtt.Client, msg mqtt.Message) {
		c.inHandler(ctx, s, msg)
	}

	c.Client = mqtt.NewClient(opts)

	return c
}

// inHandler is a Paho publish handler, which is used to handle
// messages sent to us from the MQTT broker due to our subscriptions.
func (c *MQTTCoupling) inHandler(ctx context.Context, s *Service, msg mqtt.Message) {
	Logf("MQTT incoming: %s %s", msg.Topic(), msg.Payload())

	var x interface{}
	payload := msg.Payload()

	if err := json.Unmarshal(payload, &x); err != nil {
		log.Printf("MQTT couldn't JSON-parse payload: %s", payload)
		x = string(payload)
	} else if m, is := x.(map[string]interface{}); is {
		m["topic"] = msg.Topic()
	}

	op := SOp{
		BOp: &BOp{
			Process: &OpProcess{
				Message: x,
			},
		},
	}

	if err := op.Do(ctx, s); err != nil {
		s.err(err)
	}
}

// Start creates the MQTT session and subscribes.
func (c *MQTTCoupling) Start(ctx context.Context) error {
	log.Printf("MQTT connecting")
	if token := c.Client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("MQTT connected")

	for _, topic := range strings.Split(c.SubTopics, ",") {
		topic, qos := parseTopic(topic)
		if topic == "" {
			continue
		}
		log.Printf("MQTT subscribing to %s (%d)", topic, qos)
		if t := c.Client.Subscribe(topic, qos, nil); t.Wait() && t.Error() != nil {
			return t.Error()
		}
	}

	go func() {
		<-ctx.Done()
		c.Stop(context.Background())
	}()

	return nil
}

// Stop terminates the MQTT session.
func (c *MQTTCoupling) Stop(ctx context.Context) error {
	log.Printf("MQTT disconnecting")
	c.Client.Disconnect(c.Quiesce)
	return nil
}

// toMQTT publishes the message, to its own "topic" if given.
func (s *Service) toMQTT(ctx context.Context, msg interface{}) error {
	if s.mqtt == nil {
		return fmt.Errorf("no MQTT coupling")
	}

	topic, qos := parseTopic(s.mqtt.OutTopic)

	m, is := msg.(map[string]interface{})
	if is {
		delete(m, "to")
		if t, have := m["topic"]; have {
			if str, is := t.(string); is {
				topic = str
			}
			delete(m, "topic")
		}
		if n, have := m["qos"]; have {
			if f, is := n.(float64); is {
				qos = byte(f)
			} else {
				log.Printf("warning: ignoring qos %#v %T", n, n)
			}
			delete(m, "qos")
		}
		msg = m
	}

	js, err := json.Marshal(&msg)
	if err != nil {
		return err
	}

	token := s.mqtt.Client.Publish(topic, qos, false, js)
	token.Wait()
	return token.Error()
}

// parseTopic can extract QoS from a topic name of the form TOPIC:QOS.
func parseTopic(s string) (string, byte) {
	var topic string
	var qos byte
	if _, err := fmt.Sscanf(strings.Replace(s, ":", " ", 1), "%s %d", &topic, &qos); err != nil {
		return s, 0
	}
	return topic, qos
}
