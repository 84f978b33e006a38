package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	model "go_capture_proxy/internal/domain/model/endpoint"
	configs "go_capture_proxy/internal/infra/config"
	"go_capture_proxy/utils"

	"github.com/go-redis/redis/v8"
)

const (
	endpointKeyPrefix = "mock_endpoint:"
	indexKeyPrefix    = "mock_endpoint_index:"
)

type redisEndpointStorageImpl struct {
	redisClient *redis.Client
}

func NewRedisClient(c *configs.AppConfig) (*redis.Client, error) {
	rc := c.RedisConfig
	client := redis.NewClient(&redis.Options{
		Addr:         rc.Addr(),
		Password:     rc.Password,
		DB:           rc.Database,
		PoolSize:     rc.PoolSize,
		MinIdleConns: rc.MinIdleConns,
		MaxRetries:   rc.MaxRetries,
		DialTimeout:  rc.DialTimeout,
		ReadTimeout:  rc.ReadTimeout,
		WriteTimeout: rc.WriteTimeout,
		PoolTimeout:  rc.PoolTimeout,
		IdleTimeout:  rc.IdleTimeout,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis %s: %w", rc.Addr(), err)
	}

	utils.GetLogger().Infof("connected to redis %s", rc.Addr())
	return client, nil
}

func NewRedisEndpointStorageImpl(redisClient *redis.Client) RedisEndpointCacheIface {
	return &redisEndpointStorageImpl{redisClient: redisClient}
}

var _ RedisEndpointCacheIface = (*redisEndpointStorageImpl)(nil)

// GetIndexCache returns endpoint ids under indexKey, oldest first.
func (r *redisEndpointStorageImpl) GetIndexCache(ctx context.Context, indexKey string) ([]string, error) {
	utils.GetLogger().Debugf("getting index members for key: %s", indexKey)
	members, err := r.redisClient.ZRange(ctx, indexKeyPrefix+indexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get index members: %w", err)
	}
	return members, nil
}

// SetIndexCache adds the endpoint to the index scored by creation time.
func (r *redisEndpointStorageImpl) SetIndexCache(ctx context.Context, indexKey string, ep *model.Endpoint) error {
	err := r.redisClient.ZAdd(ctx, indexKeyPrefix+indexKey, &redis.Z{
		Score:  float64(ep.CreatedAt),
		Member: ep.ID,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to add endpoint to index: %w", err)
	}
	return nil
}

func (r *redisEndpointStorageImpl) UpdateIndexCache(ctx context.Context, ep *model.Endpoint) error {
	indexKey := ep.MatchIndex
	if indexKey == "" {
		indexKey = model.BuildMatchIndexKeyFromEndpoint(ep)
	}
	return r.SetIndexCache(ctx, indexKey, ep)
}

func (r *redisEndpointStorageImpl) RemoveFromIndex(ctx context.Context, ep *model.Endpoint) error {
	indexKey := model.BuildMatchIndexKeyFromEndpoint(ep)
	if err := r.redisClient.ZRem(ctx, indexKeyPrefix+indexKey, ep.ID).Err(); err != nil {
		return fmt.Errorf("failed to remove endpoint from index: %w", err)
	}
	return nil
}

func (r *redisEndpointStorageImpl) SetEndpointToCache(ctx context.Context, ep *model.Endpoint) error {
	epJSON, err := json.Marshal(ep)
	if err != nil {
		return fmt.Errorf("failed to marshal endpoint to JSON: %w", err)
	}

	if err := r.redisClient.Set(ctx, endpointKeyPrefix+ep.ID, epJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set endpoint to redis: %w", err)
	}
	return nil
}

func (r *redisEndpointStorageImpl) DeleteEndpointFromCache(ctx context.Context, endpointID string) error {
	if err := r.redisClient.Del(ctx, endpointKeyPrefix+endpointID).Err(); err != nil {
		return fmt.Errorf("failed to delete endpoint from redis: %w", err)
	}
	return nil
}

// GetEndpointFromCache returns ErrEndpointNotFound on a cache miss.
func (r *redisEndpointStorageImpl) GetEndpointFromCache(ctx context.Context, endpointID string) (*model.Endpoint, error) {
	epJSON, err := r.redisClient.Get(ctx, endpointKeyPrefix+endpointID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrEndpointNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get endpoint from redis: %w", err)
	}

	ep := &model.Endpoint{}
	if err := json.Unmarshal(epJSON, ep); err != nil {
		return nil, fmt.Errorf("failed to unmarshal endpoint from JSON: %w", err)
	}
	return ep, nil
}
