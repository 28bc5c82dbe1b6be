package events

import (
	"fmt"
	"strings"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/flowlet/billingkit/logger"
	"go.uber.org/zap"
)

// metadataTimeout bounds the metadata probe against the cluster
const metadataTimeout = 10 * time.Second

// validateCluster verifies the kafka cluster is reachable before the
// producer is created
func validateCluster(log logger.Logger, brokers []string) error {
	configMap := &kafka.ConfigMap{
		"bootstrap.servers":  strings.Join(brokers, ","),
		"request.timeout.ms": int(metadataTimeout.Milliseconds()),
	}

	maxRetries := 3
	retryDelay := 2 * time.Second

	var adminClient *kafka.AdminClient
	var err error

	for i := 0; i < maxRetries; i++ {
		adminClient, err = kafka.NewAdminClient(configMap)
		if err == nil {
			break
		}

		if i < maxRetries-1 {
			log.Warn("failed to create kafka admin client, retrying...",
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("max_retries", maxRetries),
			)
			time.Sleep(retryDelay)
		}
	}

	if err != nil {
		return fmt.Errorf("events: creating kafka admin client after %d retries: %w", maxRetries, err)
	}

	defer adminClient.Close()

	// fetch cluster metadata to verify the connection; GetMetadata takes
	// its timeout in milliseconds
	_, err = adminClient.GetMetadata(nil, false, int(metadataTimeout.Milliseconds()))
	if err != nil {
		return ErrConnection(err)
	}

	log.Info("kafka brokers connection validated", zap.Strings("brokers", brokers))
	return nil
}
