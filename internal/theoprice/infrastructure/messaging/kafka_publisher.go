package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"
	"github.com/wyfcoding/theoprice/pkg/logger"
)

// ErrPublisherOpen 熔断打开，事件被丢弃
var ErrPublisherOpen = errors.New("event publisher circuit open")

// MessageSender pkg/mq.KafkaProducer 的发送能力
type MessageSender interface {
	SendMessage(ctx context.Context, topic string, key string, value any, headers ...kafka.Header) error
}

// KafkaEventPublisher 将比对事件写入单一 topic，事件类型放在 header
// 连续失败后熔断，避免 broker 故障拖慢整次比对
type KafkaEventPublisher struct {
	sender  MessageSender
	topic   string
	breaker *gobreaker.CircuitBreaker
}

// NewKafkaEventPublisher 创建发布器
func NewKafkaEventPublisher(sender MessageSender, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{
		sender: sender,
		topic:  topic,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "theoprice-events",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn(context.Background(), "event publisher circuit state changed",
					"name", name, "from", from.String(), "to", to.String())
			},
		}),
	}
}

// Publish 实现 domain.EventPublisher
func (p *KafkaEventPublisher) Publish(ctx context.Context, eventType string, key string, event any) error {
	_, err := p.breaker.Execute(func() (any, error) {
		return nil, p.sender.SendMessage(ctx, p.topic, key, event,
			kafka.Header{Key: "event_type", Value: []byte(eventType)})
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s", ErrPublisherOpen, eventType)
	}
	return err
}
