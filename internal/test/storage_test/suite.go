package storagetest

import (
	"go_capture_proxy/internal/infra/storage"

	"github.com/go-redis/redis/v8"
)

type StorageTestSuite struct {
	storage storage.EndpointDBStorageIface
}

func NewStorageTestSuite(s storage.EndpointDBStorageIface) *StorageTestSuite {
	return &StorageTestSuite{storage: s}
}

type RedisTestSuite struct {
	client *redis.Client
	cache  storage.RedisEndpointCacheIface
}

func NewRedisTestSuite(client *redis.Client, cache storage.RedisEndpointCacheIface) *RedisTestSuite {
	return &RedisTestSuite{client: client, cache: cache}
}
