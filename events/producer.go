package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/flowlet/billingkit/checkout"
	"github.com/flowlet/billingkit/logger"
	"go.uber.org/zap"
)

type kafkaPublisher struct {
	logger logger.Logger
	topic  string

	p *kafka.Producer

	wg       sync.WaitGroup
	done     chan struct{}
	doneOnce sync.Once
}

// stop signals the delivery report loop to exit. Safe to call from both the
// loop itself (broker failure) and Close.
func (kp *kafkaPublisher) stop() {
	kp.doneOnce.Do(func() { close(kp.done) })
}

// NewPublisher creates a Kafka-backed publisher. The broker connection is
// validated up front so a misconfigured cluster fails at startup.
func NewPublisher(log logger.Logger, config *Config) (Publisher, error) {
	if config == nil {
		config = DefaultConfig()
	} else {
		config = config.MergeDefaults()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	if err := validateCluster(log, config.Brokers); err != nil {
		return nil, err
	}

	configMap := config.BuildConfigMap()

	var producer *kafka.Producer
	var err error

	maxRetries := 3
	retryDelay := 3 * time.Second
	for i := 0; i < maxRetries; i++ {
		producer, err = kafka.NewProducer(configMap)
		if err == nil {
			break
		}

		if i < maxRetries-1 {
			log.Warn("failed to create kafka producer, retrying...",
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("max_retries", maxRetries),
			)
			time.Sleep(retryDelay)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("events: creating kafka producer after %d retries: %w", maxRetries, err)
	}

	kp := &kafkaPublisher{
		logger: log,
		topic:  config.Topic,
		p:      producer,
		done:   make(chan struct{}),
	}

	kp.wg.Add(1)
	go kp.handleDeliveryReports()

	log.Info("checkout event publisher initialized",
		zap.Strings("brokers", config.Brokers),
		zap.String("topic", config.Topic),
	)
	return kp, nil
}

// handleDeliveryReports drains the producer's event channel
func (kp *kafkaPublisher) handleDeliveryReports() {
	defer kp.wg.Done()

	for {
		select {
		case <-kp.done:
			return
		case e := <-kp.p.Events():
			switch ev := e.(type) {
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					kp.logger.Error("failed to deliver checkout event",
						zap.Error(ev.TopicPartition.Error),
						zap.String("topic", *ev.TopicPartition.Topic),
					)
				} else {
					kp.logger.Debug("checkout event delivered",
						zap.String("topic", *ev.TopicPartition.Topic),
						zap.Int32("partition", ev.TopicPartition.Partition),
						zap.Int64("offset", int64(ev.TopicPartition.Offset)),
					)
				}
			case kafka.Error:
				kp.logger.Error("kafka producer error",
					zap.Int("code", int(ev.Code())),
					zap.String("error", ev.String()),
				)
				if ev.Code() == kafka.ErrAllBrokersDown {
					kp.logger.Error("all kafka brokers are down", zap.Error(ev))
					kp.stop()
					return
				}
			default:
				kp.logger.Debug("received unknown event", zap.String("type", fmt.Sprintf("%T", ev)))
			}
		}
	}
}

// PublishCompleted publishes one completed checkout, keyed by session ID so
// deliveries for the same session stay ordered per partition
func (kp *kafkaPublisher) PublishCompleted(ctx context.Context, e checkout.CompletedEvent) error {
	value, err := json.Marshal(e)
	if err != nil {
		return ErrEncode(err)
	}

	message := &kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &kp.topic,
			Partition: kafka.PartitionAny,
		},
		Key:   []byte(e.SessionID),
		Value: value,
	}

	return kp.p.Produce(message, nil)
}

// Close flushes outstanding messages and shuts the producer down
func (kp *kafkaPublisher) Close() error {
	kp.stop()
	kp.wg.Wait()

	remaining := kp.p.Flush(10000) // 10 seconds
	if remaining > 0 {
		kp.logger.Warn("undelivered checkout events at shutdown", zap.Int("remaining", remaining))
	}

	kp.p.Close()
	return nil
}
