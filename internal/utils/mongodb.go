package utils

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const connectAttempts = 3

// NewMongoDBConnection connects to MongoDB with a bounded retry: 3 attempts
// with a linearly increasing delay between them.
func NewMongoDBConnection(uri string, log *zap.Logger) (*mongo.Client, error) {
	var lastErr error

	for attempt := 1; attempt <= connectAttempts; attempt++ {
		client, err := connect(uri)
		if err == nil {
			return client, nil
		}
		lastErr = err

		log.Warn("mongodb connection attempt failed",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		if attempt < connectAttempts {
			time.Sleep(time.Duration(attempt) * 2 * time.Second)
		}
	}

	return nil, fmt.Errorf("failed to connect to MongoDB after %d attempts: %w", connectAttempts, lastErr)
}

func connect(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	return client, nil
}
