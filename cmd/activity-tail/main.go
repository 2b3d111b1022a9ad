package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pathway-finder/webclient/pkg/common/config"
	"github.com/pathway-finder/webclient/pkg/common/kafka"
	"github.com/pathway-finder/webclient/pkg/common/logger"
	"github.com/pathway-finder/webclient/pkg/common/models"
)

// activity-tail follows the activity topic and logs each event, for
// operators checking what the web client is doing.
func main() {
	logger.Init()
	cfg := config.Load()

	if !cfg.ActivityEnabled() {
		logger.Log.Fatal("KAFKA_BROKERS and ACTIVITY_TOPIC must be set")
	}

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.ActivityTopic, cfg.KafkaGroupID)
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Log.Info("Shutting down activity tail...")
		cancel()
	}()

	logger.Log.WithFields(map[string]interface{}{
		"brokers": cfg.KafkaBrokers,
		"topic":   cfg.ActivityTopic,
		"group":   cfg.KafkaGroupID,
	}).Info("Activity tail started")

	if err := consumer.Consume(ctx, logEvent); err != nil && ctx.Err() == nil {
		logger.Log.WithError(err).Fatal("Consumer error")
	}

	logger.Log.Info("Activity tail stopped")
}

func logEvent(ctx context.Context, event models.Event) error {
	logger.Log.WithFields(map[string]interface{}{
		"event_id":   event.ID,
		"event_type": event.Type,
		"source":     event.Source,
		"timestamp":  event.Timestamp,
		"data":       event.Data,
	}).Info("activity")
	return nil
}
