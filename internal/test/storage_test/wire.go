//go:build wireinject
// +build wireinject

package storagetest

import (
	configs "go_capture_proxy/internal/infra/config"
	"go_capture_proxy/internal/infra/storage"

	"github.com/google/wire"
)

func InitializeStorageTest(c *configs.AppConfig) (*StorageTestSuite, error) {
	wire.Build(storage.NewDBClient, storage.NewDBEndpointStorage, NewStorageTestSuite)
	return &StorageTestSuite{}, nil
}

func InitializeRedisTest(c *configs.AppConfig) (*RedisTestSuite, error) {
	wire.Build(storage.NewRedisClient, storage.NewRedisEndpointStorageImpl, NewRedisTestSuite)
	return &RedisTestSuite{}, nil
}
