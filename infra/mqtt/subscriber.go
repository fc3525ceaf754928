package mqtt

import (
	"fmt"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/pvrouter/core/receiver"
	"github.com/kilianp07/pvrouter/infra/logger"
)

// LoadListener feeds received load bitmasks into a receiver.
type LoadListener struct {
	cli pahoClient
	log logger.Logger
}

// NewLoadListener connects and subscribes the receiver to the load topic.
func NewLoadListener(cfg Config, rcv *receiver.Receiver) (*LoadListener, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("mqtt config: %w", err)
	}
	log := logger.New("mqtt_receiver")
	cli, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	handler := func(_ paho.Client, msg paho.Message) {
		payload := msg.Payload()
		if len(payload) != 1 {
			log.Warnf("dropping malformed load message (%d bytes)", len(payload))
			return
		}
		rcv.OnMessage(payload[0])
	}
	if token := cli.Subscribe(cfg.LoadTopic, 0, handler); token.Wait() && token.Error() != nil {
		cli.Disconnect(250)
		return nil, fmt.Errorf("subscribe %s: %w", cfg.LoadTopic, token.Error())
	}
	log.Infof("listening on %s", cfg.LoadTopic)
	return &LoadListener{cli: cli, log: log}, nil
}

// Close disconnects from the broker.
func (l *LoadListener) Close() error {
	if l.cli != nil && l.cli.IsConnected() {
		l.cli.Disconnect(250)
	}
	return nil
}

// OverrideListener forwards externally requested forced-on bitmasks to the
// control loop.
type OverrideListener struct {
	cli pahoClient
	log logger.Logger
}

// NewOverrideListener connects and subscribes to the override topic. Each
// message is a single byte, one bit per load; set bits are passed to fn.
func NewOverrideListener(cfg Config, fn func(mask uint8)) (*OverrideListener, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("mqtt config: %w", err)
	}
	log := logger.New("mqtt_override")
	cli, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	handler := func(_ paho.Client, msg paho.Message) {
		payload := msg.Payload()
		if len(payload) != 1 {
			log.Warnf("dropping malformed override message (%d bytes)", len(payload))
			return
		}
		fn(payload[0])
	}
	if token := cli.Subscribe(cfg.OverrideTopic, 0, handler); token.Wait() && token.Error() != nil {
		cli.Disconnect(250)
		return nil, fmt.Errorf("subscribe %s: %w", cfg.OverrideTopic, token.Error())
	}
	return &OverrideListener{cli: cli, log: log}, nil
}

// Close disconnects from the broker.
func (l *OverrideListener) Close() error {
	if l.cli != nil && l.cli.IsConnected() {
		l.cli.Disconnect(250)
	}
	return nil
}
