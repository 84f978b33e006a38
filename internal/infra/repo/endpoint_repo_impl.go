package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	model "go_capture_proxy/internal/domain/model/endpoint"
	configs "go_capture_proxy/internal/infra/config"
	"go_capture_proxy/internal/infra/storage"
	"go_capture_proxy/utils"

	"github.com/avast/retry-go/v4"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/singleflight"
)

// endpointRepoImpl 实现了 EndpointRepositoryIface (singleflight, retry-go, ants pool)
type endpointRepoImpl struct {
	dbStorage  storage.EndpointDBStorageIface
	redisCache storage.RedisEndpointCacheIface
	config     *configs.EndpointRepoConfig
	taskPool   *ants.Pool
	sfGroup    singleflight.Group
}

var _ EndpointRepositoryIface = (*endpointRepoImpl)(nil)

type indexUpdateRequest struct {
	ctx           context.Context
	endpoint      *model.Endpoint
	operationType indexOperationType
}

type indexOperationType string

const (
	indexOperationTypeUpdate indexOperationType = "update"
	indexOperationTypeRemove indexOperationType = "remove"
)

type pagedEndpoints struct {
	endpoints []*model.Endpoint
	total     int64
}

func NewEndpointRepoImpl(dbStorage storage.EndpointDBStorageIface, redisCache storage.RedisEndpointCacheIface, config *configs.EndpointRepoConfig) EndpointRepositoryIface {
	taskPool, err := ants.NewPool(config.IndexUpdatePoolSize)
	if err != nil {
		panic(fmt.Errorf("failed to create ants pool: %w", err))
	}

	return &endpointRepoImpl{
		dbStorage:  dbStorage,
		redisCache: redisCache,
		config:     config,
		taskPool:   taskPool,
	}
}

func (r *endpointRepoImpl) ListEndpointsWithPage(ctx context.Context, filter *model.EndpointFilter, page, pageSize int) ([]*model.Endpoint, int64, error) {
	key := "list_endpoints_" + filterKey(filter, page, pageSize)
	data, err, _ := r.sfGroup.Do(key, func() (interface{}, error) {
		eps, total, err := r.dbStorage.ListEndpointsWithPage(ctx, filter, page, pageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to list endpoints from db: %w", err)
		}
		return pagedEndpoints{endpoints: eps, total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}

	result := data.(pagedEndpoints)
	return result.endpoints, result.total, nil
}

// FindByID 先查缓存，未命中再查数据库并回填缓存
func (r *endpointRepoImpl) FindByID(ctx context.Context, endpointID string) (*model.Endpoint, error) {
	ep, err := r.redisCache.GetEndpointFromCache(ctx, endpointID)
	if err == nil {
		utils.GetLogger().Debugf("endpoint found in cache: %s", endpointID)
		return ep, nil
	}

	data, err, _ := r.sfGroup.Do("find_endpoint_by_id_"+endpointID, func() (interface{}, error) {
		ep, err := r.dbStorage.GetEndpointFromDB(ctx, endpointID)
		if err != nil {
			return nil, fmt.Errorf("failed to get endpoint from db: %w", err)
		}

		err = retry.Do(
			func() error {
				return r.redisCache.SetEndpointToCache(ctx, ep)
			},
			retry.Attempts(attempts(r.config.RedisCacheRetryCount)),
			retry.Delay(r.config.RedisCacheRetryDelay),
		)
		if err != nil {
			utils.GetLogger().Warnf("failed to set endpoint cache [%s]: %v", endpointID, err)
		}
		return ep, nil
	})
	if err != nil {
		return nil, err
	}
	return data.(*model.Endpoint), nil
}

// GetIndexEndpoints loads every endpoint under indexKey, reading the redis
// index first and falling back to the database.
func (r *endpointRepoImpl) GetIndexEndpoints(ctx context.Context, indexKey string) ([]*model.Endpoint, error) {
	log := utils.GetLogger()

	ids, err := r.redisCache.GetIndexCache(ctx, indexKey)
	if err != nil || len(ids) == 0 {
		log.Debugf("index cache miss for key: %s, now get data from db", indexKey)
		eps, err := r.dbStorage.ListEndpoints(ctx, &model.EndpointFilter{MatchIndex: &indexKey})
		if err != nil {
			return nil, fmt.Errorf("failed to get endpoints from db: %w", err)
		}
		if len(eps) > 0 {
			r.submit(ctx, "refresh index "+indexKey, func(ctx context.Context) error {
				for _, ep := range eps {
					if err := r.redisCache.UpdateIndexCache(ctx, ep); err != nil {
						return err
					}
					if err := r.redisCache.SetEndpointToCache(ctx, ep); err != nil {
						return err
					}
				}
				return nil
			})
		}
		return eps, nil
	}

	eps := make([]*model.Endpoint, 0, len(ids))
	missIDs := make([]string, 0)
	for _, id := range ids {
		ep, err := r.redisCache.GetEndpointFromCache(ctx, id)
		if err != nil {
			missIDs = append(missIDs, id)
			continue
		}
		eps = append(eps, ep)
	}

	if len(missIDs) > 0 {
		dbEps, err := r.dbStorage.BatchGetEndpoints(ctx, missIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to batch get endpoints from db: %w", err)
		}
		eps = append(eps, dbEps...)
		// cache hits and refilled misses interleave in storage order
		model.SortByStoredOrder(eps)

		r.submit(ctx, "refill endpoint cache", func(ctx context.Context) error {
			for _, ep := range dbEps {
				if err := r.redisCache.SetEndpointToCache(ctx, ep); err != nil {
					return err
				}
			}
			return nil
		})
	}

	return eps, nil
}

// FindCandidates 根据请求的匹配索引查询候选 endpoint，只返回 active 的
func (r *endpointRepoImpl) FindCandidates(ctx context.Context, req model.Request) ([]*model.Endpoint, error) {
	matchIndex := model.BuildMatchIndexKeyFromRequest(req)

	data, err, _ := r.sfGroup.Do("find_candidates_"+matchIndex, func() (interface{}, error) {
		utils.GetLogger().Debugf("finding candidates for index: %s", matchIndex)
		return r.GetIndexEndpoints(ctx, matchIndex)
	})
	if err != nil {
		return nil, err
	}

	all := data.([]*model.Endpoint)
	active := make([]*model.Endpoint, 0, len(all))
	for _, ep := range all {
		if ep.Status == model.EndpointStatusActive {
			active = append(active, ep)
		}
	}
	return active, nil
}

// SaveEndpoint 保存 endpoint，数据库写入成功后异步更新缓存和索引
func (r *endpointRepoImpl) SaveEndpoint(ctx context.Context, ep *model.Endpoint) error {
	_, err, _ := r.sfGroup.Do("save_endpoint_"+ep.ID, func() (interface{}, error) {
		err := retry.Do(
			func() error {
				return r.dbStorage.SaveEndpointToDB(ctx, ep)
			},
			retry.Attempts(attempts(r.config.SaveDBRetryCount)),
			retry.Delay(r.config.SaveDBRetryDelay),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to save endpoint to db: %w", err)
		}

		cached := *ep
		r.submit(ctx, "cache endpoint "+ep.ID, func(ctx context.Context) error {
			if err := r.redisCache.SetEndpointToCache(ctx, &cached); err != nil {
				return err
			}
			r.handleIndexUpdate(&indexUpdateRequest{
				ctx:           ctx,
				endpoint:      &cached,
				operationType: indexOperationTypeUpdate,
			})
			return nil
		})
		return ep, nil
	})
	return err
}

// DeleteEndpoint 删除 endpoint，同时删除缓存和索引
func (r *endpointRepoImpl) DeleteEndpoint(ctx context.Context, endpointID string) error {
	_, err, _ := r.sfGroup.Do("delete_endpoint_"+endpointID, func() (interface{}, error) {
		ep, err := r.dbStorage.GetEndpointFromDB(ctx, endpointID)
		if err != nil {
			return nil, fmt.Errorf("failed to get endpoint before delete: %w", err)
		}

		if err := r.dbStorage.DeleteEndpointFromDB(ctx, endpointID); err != nil {
			return nil, fmt.Errorf("failed to delete endpoint from db: %w", err)
		}

		bg := context.WithoutCancel(ctx)
		if err := r.taskPool.Submit(func() {
			r.handleIndexUpdate(&indexUpdateRequest{
				ctx:           bg,
				endpoint:      ep,
				operationType: indexOperationTypeRemove,
			})
		}); err != nil {
			return nil, fmt.Errorf("failed to submit index update task: %w", err)
		}

		err = retry.Do(
			func() error {
				return r.redisCache.DeleteEndpointFromCache(ctx, endpointID)
			},
			retry.Attempts(attempts(r.config.RedisCacheRetryCount)),
			retry.Delay(r.config.RedisCacheRetryDelay),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to delete endpoint cache: %w", err)
		}
		return nil, nil
	})
	return err
}

// submit runs fn on the task pool with cache retries. The request context
// may end before the task runs, so fn gets a context without cancellation.
func (r *endpointRepoImpl) submit(ctx context.Context, name string, fn func(ctx context.Context) error) {
	log := utils.GetLogger()
	bg := context.WithoutCancel(ctx)
	err := r.taskPool.Submit(func() {
		err := retry.Do(
			func() error { return fn(bg) },
			retry.Attempts(attempts(r.config.RedisCacheRetryCount)),
			retry.Delay(r.config.RedisCacheRetryDelay),
		)
		if err != nil {
			log.Errorf("async task %q failed: %v", name, err)
		}
	})
	if err != nil {
		log.Errorf("failed to submit async task %q: %v", name, err)
	}
}

func (r *endpointRepoImpl) handleIndexUpdate(req *indexUpdateRequest) {
	err := retry.Do(
		func() error {
			switch req.operationType {
			case indexOperationTypeUpdate:
				return r.redisCache.UpdateIndexCache(req.ctx, req.endpoint)
			case indexOperationTypeRemove:
				return r.redisCache.RemoveFromIndex(req.ctx, req.endpoint)
			default:
				return fmt.Errorf("unknown index operation type: %s", req.operationType)
			}
		},
		retry.Attempts(attempts(r.config.IndexUpdateRetryCount)),
		retry.Delay(r.config.IndexUpdateRetryDelay),
	)
	if err != nil {
		utils.GetLogger().Errorf("failed to update index: %v", err)
	}
}

// attempts guards against retry-go treating 0 as "retry forever".
func attempts(n int) uint {
	if n < 1 {
		return 1
	}
	return uint(n)
}

// IsNotFound reports whether err comes from a missing endpoint.
func IsNotFound(err error) bool {
	return errors.Is(err, storage.ErrEndpointNotFound)
}

func filterKey(filter *model.EndpointFilter, page, pageSize int) string {
	var parts []string
	if filter != nil {
		if filter.EndpointID != nil {
			parts = append(parts, "id:"+*filter.EndpointID)
		}
		if filter.Method != nil {
			parts = append(parts, "method:"+*filter.Method)
		}
		if filter.Status != nil {
			parts = append(parts, "status:"+filter.Status.String())
		}
		if filter.Source != nil {
			parts = append(parts, "source:"+string(*filter.Source))
		}
		if filter.URIContains != nil {
			parts = append(parts, "uri:"+*filter.URIContains)
		}
		if filter.MatchIndex != nil {
			parts = append(parts, "idx:"+*filter.MatchIndex)
		}
	}
	parts = append(parts, fmt.Sprintf("page:%d", page), fmt.Sprintf("size:%d", pageSize))
	return strings.Join(parts, "_")
}
