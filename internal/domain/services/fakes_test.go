package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	model "go_capture_proxy/internal/domain/model/endpoint"
	configs "go_capture_proxy/internal/infra/config"
	"go_capture_proxy/internal/infra/storage"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

// fakeEndpointRepo keeps endpoints in insertion order.
type fakeEndpointRepo struct {
	mu        sync.Mutex
	endpoints []*model.Endpoint
	findErr   error
	saveErr   error
	saved     int
}

func (f *fakeEndpointRepo) SaveEndpoint(_ context.Context, ep *model.Endpoint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved++
	for i, existing := range f.endpoints {
		if existing.ID == ep.ID {
			f.endpoints[i] = ep
			return nil
		}
	}
	f.endpoints = append(f.endpoints, ep)
	return nil
}

func (f *fakeEndpointRepo) DeleteEndpoint(_ context.Context, endpointID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, ep := range f.endpoints {
		if ep.ID == endpointID {
			f.endpoints = append(f.endpoints[:i], f.endpoints[i+1:]...)
			return nil
		}
	}
	return storage.ErrEndpointNotFound
}

func (f *fakeEndpointRepo) FindByID(_ context.Context, endpointID string) (*model.Endpoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ep := range f.endpoints {
		if ep.ID == endpointID {
			return ep, nil
		}
	}
	return nil, storage.ErrEndpointNotFound
}

func (f *fakeEndpointRepo) FindCandidates(ctx context.Context, req model.Request) ([]*model.Endpoint, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	all, err := f.GetIndexEndpoints(ctx, model.BuildMatchIndexKeyFromRequest(req))
	if err != nil {
		return nil, err
	}
	active := make([]*model.Endpoint, 0, len(all))
	for _, ep := range all {
		if ep.Status == model.EndpointStatusActive {
			active = append(active, ep)
		}
	}
	return active, nil
}

func (f *fakeEndpointRepo) GetIndexEndpoints(_ context.Context, indexKey string) ([]*model.Endpoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Endpoint
	for _, ep := range f.endpoints {
		if model.BuildMatchIndexKeyFromEndpoint(ep) == indexKey {
			out = append(out, ep)
		}
	}
	return out, nil
}

func (f *fakeEndpointRepo) ListEndpointsWithPage(_ context.Context, _ *model.EndpointFilter, page, pageSize int) ([]*model.Endpoint, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := int64(len(f.endpoints))
	start := (page - 1) * pageSize
	if start >= len(f.endpoints) {
		return nil, total, nil
	}
	end := min(start+pageSize, len(f.endpoints))
	return append([]*model.Endpoint(nil), f.endpoints[start:end]...), total, nil
}

func stored(id string, req model.Request, body string) *model.Endpoint {
	return &model.Endpoint{
		ID:       id,
		Request:  req,
		Response: model.ResponseTemplate{StatusCode: http.StatusOK, Body: body},
		Status:   model.EndpointStatusActive,
		Source:   model.EndpointSourceManual,
	}
}

type proxyFixture struct {
	proxy    *ProxyService
	repo     *fakeEndpointRepo
	state    *storage.MemoryCaptureStateRepo
	upstream *httptest.Server
	hits     *atomic.Int32
	hook     *test.Hook
}

func boolPtr(b bool) *bool { return &b }

// newProxyFixture wires a proxy against an upstream that answers 200 "live".
func newProxyFixture(t *testing.T, api configs.ApiConfig) *proxyFixture {
	t.Helper()

	hits := &atomic.Int32{}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"from":"live"}`))
	}))
	t.Cleanup(upstream.Close)

	if api.Host == "" {
		api.Host = upstream.URL
	}
	state := storage.NewMemoryCaptureStateRepo()
	resolver, err := NewRouteResolver(&api, state)
	require.NoError(t, err)

	fwdConfig := &configs.ForwardConfig{Timeout: 2 * time.Second, RetryCount: 1, DropHeaders: []string{"Host", "Content-Length"}}
	forwarder := NewForwardingService(resolver, NewHeaderFilter(fwdConfig), fwdConfig)

	repo := &fakeEndpointRepo{}
	proxy := NewProxyService(resolver, NewMockMatchService(repo), forwarder, repo, &api)

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	proxy.logger = logger
	forwarder.logger = logger

	return &proxyFixture{proxy: proxy, repo: repo, state: state, upstream: upstream, hits: hits, hook: hook}
}
