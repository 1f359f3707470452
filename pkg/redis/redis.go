package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection settings.
type Config struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

var client *redis.Client

// Init connects to Redis and verifies the connection.
func Init(cfg *Config) error {
	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, err := client.Ping(ctx).Result()
	return err
}

// GetClient returns the Redis client, or nil when Redis is not initialized.
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection.
func Close() error {
	if client != nil {
		return client.Close()
	}
	return nil
}
