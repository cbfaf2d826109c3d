package watermillnotifier

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	log "github.com/sirupsen/logrus"
	"github.com/spinwheel-network/spinwheel/internal/core/domain"
	"github.com/spinwheel-network/spinwheel/internal/core/ports"
)

const outputBufferSize = 64

type pubsub interface {
	message.Publisher
	message.Subscriber
}

type notifier struct {
	pubsub pubsub
}

func NewNotifier() ports.Notifier {
	return &notifier{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{
				OutputChannelBuffer:            outputBufferSize,
				BlockPublishUntilSubscriberAck: true,
			},
			watermill.NopLogger{},
		),
	}
}

func (n *notifier) Notify(_ context.Context, events ...domain.RoundEvent) error {
	msgs := make([]*message.Message, 0, len(events))
	for _, event := range events {
		payload, err := domain.MarshalRoundEvent(event)
		if err != nil {
			return fmt.Errorf("failed to serialize event %s: %w", event.GetType(), err)
		}
		msg := message.NewMessage(watermill.NewUUID(), payload)
		msg.Metadata.Set("type", event.GetType().String())
		msg.Metadata.Set("round_id", fmt.Sprintf("%d", event.GetRoundId()))
		msgs = append(msgs, msg)
	}
	return n.pubsub.Publish(domain.RoundTopic, msgs...)
}

// Subscribe returns a channel of round events that is closed once ctx is
// done. Events are dropped for subscribers that fall behind.
func (n *notifier) Subscribe(ctx context.Context) (<-chan domain.RoundEvent, error) {
	msgs, err := n.pubsub.Subscribe(ctx, domain.RoundTopic)
	if err != nil {
		return nil, err
	}

	ch := make(chan domain.RoundEvent, outputBufferSize)
	go func() {
		defer close(ch)
		for msg := range msgs {
			event, err := domain.UnmarshalRoundEvent(msg.Payload)
			msg.Ack()
			if err != nil {
				log.WithError(err).Warn("failed to deserialize round event")
				continue
			}
			select {
			case <-ctx.Done():
				return
			case ch <- event:
			default:
				log.WithField("round_id", event.GetRoundId()).Warnf(
					"dropped %s event for slow subscriber", event.GetType(),
				)
			}
		}
	}()
	return ch, nil
}

func (n *notifier) Close() {
	if err := n.pubsub.Close(); err != nil {
		log.WithError(err).Warn("failed to close event notifier")
	}
}
