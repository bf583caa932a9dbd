package producer

import (
	"context"

	"github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/events"
	"github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/messaging/kafka"

	kafkago "github.com/segmentio/kafka-go"
)

// publishDecision keys the message by leave id so all decisions for one
// request land on the same partition.
func publishDecision(ctx context.Context, writer *kafkago.Writer, event kafka.OutboxEvent) error {
	msg := kafkago.Message{
		Topic: events.LeaveDecisionTopic,
		Key:   []byte(event.LeaveID),
		Value: event.Payload,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "request_id", Value: []byte(event.RequestID)},
		},
	}

	return writer.WriteMessages(ctx, msg)
}
