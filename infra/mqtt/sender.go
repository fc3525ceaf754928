package mqtt

import (
	"fmt"

	"github.com/kilianp07/pvrouter/core/radio"
	"github.com/kilianp07/pvrouter/infra/logger"
)

// PahoSender implements radio.Sender over MQTT. Messages are a single byte
// published at QoS 0 without retry: the receiver's failsafe handles lost
// messages, and minimum latency matters more than delivery here.
type PahoSender struct {
	cli   pahoClient
	topic string
	log   logger.Logger
}

// NewPahoSender connects to the broker.
func NewPahoSender(cfg Config) (*PahoSender, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("mqtt config: %w", err)
	}
	log := logger.New("mqtt_sender")
	cli, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	log.Infof("connected to %s", cfg.Broker)
	return &PahoSender{cli: cli, topic: cfg.LoadTopic, log: log}, nil
}

// SendLoadStates publishes the remote-load byte.
func (p *PahoSender) SendLoadStates(mask uint8) error {
	if !p.cli.IsConnected() {
		return radio.ErrNotConnected
	}
	token := p.cli.Publish(p.topic, 0, false, []byte{mask})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("publish: %w", token.Error())
	}
	return nil
}

// Close disconnects from the broker.
func (p *PahoSender) Close() error {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
	return nil
}
