package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	model "go_capture_proxy/internal/domain/model/endpoint"
	configs "go_capture_proxy/internal/infra/config"
	"go_capture_proxy/utils"

	"github.com/go-redis/redis/v8"
)

const captureStateKey = "capture_proxy:capture_state"

// MemoryCaptureStateRepo keeps the capture state in a single atomic cell.
type MemoryCaptureStateRepo struct {
	current atomic.Pointer[model.CaptureState]
}

func NewMemoryCaptureStateRepo() *MemoryCaptureStateRepo {
	return &MemoryCaptureStateRepo{}
}

var _ CaptureStateRepositoryIface = (*MemoryCaptureStateRepo)(nil)

func (m *MemoryCaptureStateRepo) GetCurrent() (model.CaptureState, bool) {
	p := m.current.Load()
	if p == nil {
		return model.CaptureState{}, false
	}
	return *p, true
}

func (m *MemoryCaptureStateRepo) Save(_ context.Context, state model.CaptureState) error {
	m.current.Store(&state)
	return nil
}

// redisCaptureStateRepo mirrors writes to redis so the switch survives
// restarts and is shared between proxy instances. Reads stay in memory.
type redisCaptureStateRepo struct {
	mem    *MemoryCaptureStateRepo
	client *redis.Client
}

// NewCaptureStateRepo loads the persisted state, falling back to the
// configured seed. With neither present the repository stays empty.
func NewCaptureStateRepo(client *redis.Client, api *configs.ApiConfig) CaptureStateRepositoryIface {
	repo := &redisCaptureStateRepo{mem: NewMemoryCaptureStateRepo(), client: client}

	ctx := context.Background()
	state, found, err := repo.load(ctx)
	switch {
	case err != nil:
		utils.GetLogger().WithError(err).Warn("failed to load capture state, using configured value")
	case found:
		_ = repo.mem.Save(ctx, state)
		return repo
	}

	if api != nil && api.Capture != nil {
		_ = repo.mem.Save(ctx, model.CaptureState{Enabled: *api.Capture})
	}
	return repo
}

func (r *redisCaptureStateRepo) load(ctx context.Context) (model.CaptureState, bool, error) {
	raw, err := r.client.Get(ctx, captureStateKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.CaptureState{}, false, nil
	}
	if err != nil {
		return model.CaptureState{}, false, fmt.Errorf("failed to get capture state: %w", err)
	}

	var state model.CaptureState
	if err := json.Unmarshal(raw, &state); err != nil {
		return model.CaptureState{}, false, fmt.Errorf("failed to decode capture state: %w", err)
	}
	return state, true, nil
}

func (r *redisCaptureStateRepo) GetCurrent() (model.CaptureState, bool) {
	return r.mem.GetCurrent()
}

func (r *redisCaptureStateRepo) Save(ctx context.Context, state model.CaptureState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode capture state: %w", err)
	}
	if err := r.client.Set(ctx, captureStateKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to persist capture state: %w", err)
	}
	return r.mem.Save(ctx, state)
}
