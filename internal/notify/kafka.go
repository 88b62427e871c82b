package notify

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// MessageWriter is the part of *kafka.Writer the dispatcher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaDispatcher publishes events from a buffered queue on a background
// goroutine. Writes go through a circuit breaker so a dead broker costs one
// fast failure per event instead of a full write timeout.
type KafkaDispatcher struct {
	w            MessageWriter
	cb           *gobreaker.CircuitBreaker[struct{}]
	log          *zap.Logger
	queue        chan Event
	writeTimeout time.Duration

	once sync.Once
	done chan struct{}
}

// NewWriter builds the writer for topic from a comma separated broker list.
func NewWriter(brokersCSV, topic string) *kafka.Writer {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

func NewKafkaDispatcher(w MessageWriter, log *zap.Logger, buffer int) *KafkaDispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	d := &KafkaDispatcher{
		w:            w,
		log:          log,
		queue:        make(chan Event, buffer),
		writeTimeout: 5 * time.Second,
		done:         make(chan struct{}),
	}
	d.cb = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "notify-kafka",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 5 },
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state", zap.String("name", name),
				zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})
	go d.run()
	return d
}

// Enqueue hands ev to the publisher goroutine. It fails with ErrQueueFull
// rather than wait.
func (d *KafkaDispatcher) Enqueue(_ context.Context, ev Event) error {
	select {
	case d.queue <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *KafkaDispatcher) run() {
	defer close(d.done)
	for ev := range d.queue {
		if err := d.publish(ev); err != nil {
			d.log.Error("publish notification failed",
				zap.String("event_id", ev.ID), zap.Int64("order_id", ev.OrderID), zap.Error(err))
		}
	}
}

func (d *KafkaDispatcher) publish(ev Event) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.OrderID, 10)),
		Value: value,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
		},
	}
	_, err = d.cb.Execute(func() (struct{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), d.writeTimeout)
		defer cancel()
		return struct{}{}, d.w.WriteMessages(ctx, msg)
	})
	return err
}

// Close drains the queue and closes the writer. Enqueue must not be called
// after Close.
func (d *KafkaDispatcher) Close() error {
	d.once.Do(func() { close(d.queue) })
	<-d.done
	return d.w.Close()
}
