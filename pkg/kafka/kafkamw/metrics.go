package kafkamw

import (
	"context"
	"sync"
	"time"

	"evcharge/pkg/kafka"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	messages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "evcharge",
			Subsystem: "kafka",
			Name:      "messages_total",
			Help:      "Kafka messages by direction, topic and result.",
		},
		[]string{"direction", "topic", "result"},
	)

	duration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "evcharge",
			Subsystem: "kafka",
			Name:      "message_duration_seconds",
			Help:      "Time spent publishing or handling a Kafka message.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"direction", "topic"},
	)
)

// Register registers Kafka metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(messages, duration)
	})
}

func observe(direction, topic string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	messages.WithLabelValues(direction, topic, result).Inc()
	duration.WithLabelValues(direction, topic).Observe(time.Since(start).Seconds())
}

func MetricsProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		observe("publish", msg.Topic, start, err)
		return err
	}
}

func MetricsConsumerMiddleware() kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		observe("consume", msg.Topic, start, err)
		return err
	}
}
