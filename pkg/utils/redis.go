package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"cvforge/internal/config"
	"cvforge/internal/logging"
	"cvforge/pkg/models"
)

const resultTTL = 24 * time.Hour

// RedisClient wraps the Redis client with workflow result persistence
type RedisClient struct {
	client *redis.Client
	config *config.Config
	logger logging.Logger
}

// NewRedisClient creates a new Redis client instance
func NewRedisClient(cfg *config.Config) *RedisClient {
	// Parse Redis URL
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		// Fallback to default configuration
		opts = &redis.Options{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
		}
	}

	// Configure timeouts
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	return &RedisClient{
		client: client,
		config: cfg,
		logger: logging.GetGlobalLogger(),
	}
}

// Ping tests the Redis connection
func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// SaveWorkflowResult stores a completed workflow result keyed by task ID.
// Results expire after 24 hours.
func (r *RedisClient) SaveWorkflowResult(ctx context.Context, taskID string, result *models.WorkflowResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow result: %w", err)
	}

	key := r.getResultKey(taskID)
	if err := r.client.Set(ctx, key, resultJSON, resultTTL).Err(); err != nil {
		r.logger.Error("Failed to save workflow result", map[string]interface{}{
			"task_id": taskID,
			"error":   err.Error(),
		})
		return fmt.Errorf("failed to save workflow result: %w", err)
	}

	return nil
}

// GetWorkflowResult retrieves a stored workflow result by task ID.
func (r *RedisClient) GetWorkflowResult(ctx context.Context, taskID string) (*models.WorkflowResult, error) {
	key := r.getResultKey(taskID)

	resultJSON, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("workflow result not found for task %s", taskID)
		}
		return nil, fmt.Errorf("failed to get workflow result: %w", err)
	}

	var result models.WorkflowResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow result: %w", err)
	}

	return &result, nil
}

// DeleteWorkflowResult removes a stored workflow result.
func (r *RedisClient) DeleteWorkflowResult(ctx context.Context, taskID string) error {
	return r.client.Del(ctx, r.getResultKey(taskID)).Err()
}

// getResultKey generates the Redis key for a workflow result
func (r *RedisClient) getResultKey(taskID string) string {
	return fmt.Sprintf("cvforge:results:%s", taskID)
}

// IsHealthy checks if Redis is connected and healthy
func (r *RedisClient) IsHealthy(ctx context.Context) error {
	return r.Ping(ctx)
}
