package mqtt

import (
	"DrowsyWatch/internal/entity"
	"DrowsyWatch/pkg/utils"
	"errors"
	"fmt"
	"golang.org/x/net/context"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	jsoniter "github.com/json-iterator/go"
)

const DefaultVerdictTopic = "drowsiness/{device_id}/verdict"

var ErrPublishTimeout = errors.New("mqtt publish timed out")

type IPublisher interface {
	PublishVerdict(ctx context.Context, verdict entity.Verdict) error
	Close()
}

type Publisher struct {
	client       mqtt.Client
	topicPattern string
	qos          byte
	timeout      time.Duration
}

func NewPublisher(client mqtt.Client, topicPattern string) *Publisher {
	if topicPattern == "" {
		topicPattern = DefaultVerdictTopic
	}
	return &Publisher{
		client:       client,
		topicPattern: topicPattern,
		qos:          1,
		timeout:      5 * time.Second,
	}
}

func (p *Publisher) PublishVerdict(ctx context.Context, verdict entity.Verdict) error {
	payload, err := jsoniter.Marshal(verdict)
	if err != nil {
		return fmt.Errorf("failed to marshal verdict: %w", err)
	}

	topic := formatTopic(p.topicPattern, verdict.DeviceID)
	token := p.client.Publish(topic, p.qos, false, payload)

	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.timeout):
		return ErrPublishTimeout
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish verdict to %s: %w", topic, err)
	}
	return nil
}

func (p *Publisher) Close() {
	p.client.Disconnect(250)
}

// formatTopic replaces {device_id} with a topic-safe form of the device id.
func formatTopic(topicPattern, deviceID string) string {
	return strings.ReplaceAll(topicPattern, "{device_id}", utils.Slug(deviceID))
}
