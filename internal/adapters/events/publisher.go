package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"hotel_rooms/internal/domain"
)

const TypeBookingCreated = "booking.created"

// BookingEvent is the wire form of a ledger change.
type BookingEvent struct {
	Type       string    `json:"type"`
	BookingID  int64     `json:"booking_id"`
	RoomID     int64     `json:"room_id"`
	CheckIn    string    `json:"check_in"`
	CheckOut   string    `json:"check_out"`
	GuestCount int       `json:"guest_count"`
	OccurredAt time.Time `json:"occurred_at"`
}

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Publisher struct {
	w     messageWriter
	topic string
	now   func() time.Time
}

func NewKafkaPublisher(brokers []string, topic string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // same room, same partition
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
		Logger:       kafka.LoggerFunc(func(msg string, args ...any) {}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			log.Error().Str("component", "kafka").Msg(fmt.Sprintf(msg, args...))
		}),
	}
	return newPublisher(w, topic), nil
}

func newPublisher(w messageWriter, topic string) *Publisher {
	return &Publisher{w: w, topic: topic, now: func() time.Time { return time.Now().UTC() }}
}

func (p *Publisher) BookingCreated(ctx context.Context, b domain.Booking) error {
	msg, err := p.message(b)
	if err != nil {
		return err
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s to %s: %w", TypeBookingCreated, p.topic, err)
	}
	return nil
}

func (p *Publisher) message(b domain.Booking) (kafka.Message, error) {
	ev := BookingEvent{
		Type:       TypeBookingCreated,
		BookingID:  b.ID,
		RoomID:     b.RoomID,
		CheckIn:    b.Stay.CheckIn.Format(domain.DateLayout),
		CheckOut:   b.Stay.CheckOut.Format(domain.DateLayout),
		GuestCount: b.GuestCount,
		OccurredAt: p.now(),
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(b.RoomID, 10)),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(TypeBookingCreated)},
		},
	}, nil
}

func (p *Publisher) Close() error { return p.w.Close() }
