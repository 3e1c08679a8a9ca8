package kafkamw

import (
	"evcharge/pkg/kafka"
	"evcharge/pkg/kafka/kafkaconfig"
	"evcharge/pkg/logger"
)

// NewPublisher returns a producer backed publisher on topic with logging and
// metrics middleware installed.
func NewPublisher(cfg *kafkaconfig.Config, topic, source string, log *logger.Logger) (*kafka.ProducerPublisher, error) {
	producer, err := kafka.NewProducer(cfg, topic, log)
	if err != nil {
		return nil, err
	}
	Register()
	producer.Use(MetricsProducerMiddleware())
	producer.Use(LoggingProducerMiddleware(log))
	return kafka.NewProducerPublisher(producer, source), nil
}

// NewConsumer is kafka.NewConsumer with the same middleware as NewPublisher.
func NewConsumer(cfg *kafkaconfig.Config, topic, groupID string, handler kafka.MessageHandler, log *logger.Logger) (*kafka.Consumer, error) {
	consumer, err := kafka.NewConsumer(cfg, topic, groupID, handler, log)
	if err != nil {
		return nil, err
	}
	Register()
	consumer.Use(MetricsConsumerMiddleware())
	consumer.Use(LoggingConsumerMiddleware(log))
	return consumer, nil
}
