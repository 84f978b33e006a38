package endpointrepotest

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	model "go_capture_proxy/internal/domain/model/endpoint"
	configs "go_capture_proxy/internal/infra/config"
	"go_capture_proxy/internal/infra/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoSuite(t *testing.T) *RepoEndpointTestSuite {
	t.Helper()
	c := &configs.AppConfig{
		DatabaseConfig: configs.DatabaseConfig{
			Driver: configs.DriverSQLite,
			Path:   fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		},
		DatabaseOptionConfig: configs.DatabaseOptionConfig{MaxIdleConns: 1, MaxOpenConns: 1, LogLevel: "silent"},
		EndpointRepoConfig: configs.EndpointRepoConfig{
			RedisCacheRetryCount:  2,
			SaveDBRetryCount:      2,
			IndexUpdateRetryCount: 2,
			IndexUpdatePoolSize:   4,
		},
	}
	ts, err := InitializeRepoTest(c)
	require.NoError(t, err)
	return ts
}

func endpoint(id string, req model.Request) *model.Endpoint {
	return &model.Endpoint{
		ID:       id,
		Name:     id,
		Request:  req,
		Response: model.ResponseTemplate{StatusCode: http.StatusOK, Body: id},
		Status:   model.EndpointStatusActive,
		Source:   model.EndpointSourceManual,
	}
}

func TestSaveEndpoint(t *testing.T) {
	ts := newRepoSuite(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ep := endpoint("save-1", model.NewRequest(model.MethodPost, "/api/v1/users").WithBody(`{"name":"ann"}`))
	require.NoError(t, ts.Repo.SaveEndpoint(ctx, ep))

	assert.Eventually(t, func() bool {
		return ts.Cache.has("save-1") && ts.Cache.indexed(ep.MatchIndex, "save-1")
	}, 2*time.Second, 10*time.Millisecond, "cache and index are refreshed asynchronously")

	got, err := ts.Repo.FindByID(ctx, "save-1")
	require.NoError(t, err)
	assert.True(t, got.Request.Equal(ep.Request))
}

func TestFindByID_CacheMissFallsBackToDB(t *testing.T) {
	ts := newRepoSuite(t)
	ctx := context.Background()

	ep := endpoint("db-only", model.NewRequest(model.MethodGet, "/orders"))
	require.NoError(t, ts.Repo.SaveEndpoint(ctx, ep))
	assert.Eventually(t, func() bool { return ts.Cache.has("db-only") }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, ts.Cache.DeleteEndpointFromCache(ctx, "db-only"))

	got, err := ts.Repo.FindByID(ctx, "db-only")
	require.NoError(t, err)
	assert.Equal(t, "db-only", got.ID)
	assert.True(t, ts.Cache.has("db-only"), "lookup refills the cache")

	_, err = ts.Repo.FindByID(ctx, "missing")
	assert.True(t, repo.IsNotFound(err))
}

func TestFindCandidates(t *testing.T) {
	ts := newRepoSuite(t)
	ctx := context.Background()

	inactive := endpoint("inactive", model.NewRequest(model.MethodGet, "/orders/1"))
	inactive.Status = model.EndpointStatusInactive

	for _, ep := range []*model.Endpoint{
		endpoint("o1", model.NewRequest(model.MethodGet, "/orders/1")),
		endpoint("o2", model.NewRequest(model.MethodGet, "/orders/2").WithQuery(map[string]string{"id": "6"})),
		endpoint("post", model.NewRequest(model.MethodPost, "/orders/1")),
		endpoint("users", model.NewRequest(model.MethodGet, "/users/1")),
		inactive,
	} {
		require.NoError(t, ts.Repo.SaveEndpoint(ctx, ep))
	}

	ids := func(eps []*model.Endpoint) []string {
		out := make([]string, 0, len(eps))
		for _, ep := range eps {
			out = append(out, ep.ID)
		}
		return out
	}

	req := model.NewRequest(model.MethodGet, "/orders/9")
	index := model.BuildMatchIndexKeyFromRequest(req)
	warm := func() bool {
		return ts.Cache.indexed(index, "o1") && ts.Cache.indexed(index, "o2") && ts.Cache.indexed(index, "inactive")
	}
	assert.Eventually(t, warm, 2*time.Second, 10*time.Millisecond)

	// cold index: candidates come from the database and the index is rebuilt
	ts.Cache.dropIndex()
	got, err := ts.Repo.FindCandidates(ctx, req)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"o1", "o2"}, ids(got))
	assert.Eventually(t, warm, 2*time.Second, 10*time.Millisecond)

	got, err = ts.Repo.FindCandidates(ctx, req)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"o1", "o2"}, ids(got))

	got, err = ts.Repo.FindCandidates(ctx, model.NewRequest(model.MethodDelete, "/nothing"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindCandidates_Concurrent(t *testing.T) {
	ts := newRepoSuite(t)
	ctx := context.Background()
	require.NoError(t, ts.Repo.SaveEndpoint(ctx, endpoint("c1", model.NewRequest(model.MethodGet, "/c/1"))))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := ts.Repo.FindCandidates(ctx, model.NewRequest(model.MethodGet, "/c/1"))
			assert.NoError(t, err)
			assert.Len(t, got, 1)
		}()
	}
	wg.Wait()
}

func TestDeleteEndpoint(t *testing.T) {
	ts := newRepoSuite(t)
	ctx := context.Background()

	ep := endpoint("del-1", model.NewRequest(model.MethodGet, "/orders/5"))
	require.NoError(t, ts.Repo.SaveEndpoint(ctx, ep))
	assert.Eventually(t, func() bool { return ts.Cache.indexed(ep.MatchIndex, "del-1") }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, ts.Repo.DeleteEndpoint(ctx, "del-1"))
	assert.False(t, ts.Cache.has("del-1"))
	assert.Eventually(t, func() bool { return !ts.Cache.indexed(ep.MatchIndex, "del-1") }, 2*time.Second, 10*time.Millisecond)

	_, err := ts.Repo.FindByID(ctx, "del-1")
	assert.True(t, repo.IsNotFound(err))

	err = ts.Repo.DeleteEndpoint(ctx, "del-1")
	assert.True(t, repo.IsNotFound(err))
}

func TestListEndpointsWithPage(t *testing.T) {
	ts := newRepoSuite(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ep := endpoint(fmt.Sprintf("page-%d", i), model.NewRequest(model.MethodGet, fmt.Sprintf("/p/%d", i)))
		ep.CreatedAt = int64(1000 + i)
		require.NoError(t, ts.Repo.SaveEndpoint(ctx, ep))
	}

	eps, total, err := ts.Repo.ListEndpointsWithPage(ctx, nil, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, eps, 2)
	assert.Equal(t, "page-0", eps[0].ID)
}

func TestFindCandidates_EvictedEntryKeepsStoredOrder(t *testing.T) {
	ts := newRepoSuite(t)
	ctx := context.Background()

	older := endpoint("older", model.NewRequest(model.MethodGet, "/tie"))
	older.CreatedAt = 1000
	newer := endpoint("newer", model.NewRequest(model.MethodGet, "/tie"))
	newer.CreatedAt = 2000
	require.NoError(t, ts.Repo.SaveEndpoint(ctx, newer))
	require.NoError(t, ts.Repo.SaveEndpoint(ctx, older))

	req := model.NewRequest(model.MethodGet, "/tie")
	index := model.BuildMatchIndexKeyFromRequest(req)
	assert.Eventually(t, func() bool {
		return ts.Cache.indexed(index, "older") && ts.Cache.indexed(index, "newer") &&
			ts.Cache.has("older") && ts.Cache.has("newer")
	}, 2*time.Second, 10*time.Millisecond)

	// the older endpoint falls out of the cache but stays indexed
	require.NoError(t, ts.Cache.DeleteEndpointFromCache(ctx, "older"))

	got, err := ts.Repo.FindCandidates(ctx, req)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "older", got[0].ID)
	assert.Equal(t, "newer", got[1].ID)

	// a re-save keeps the original creation time
	resaved := endpoint("older", model.NewRequest(model.MethodGet, "/tie"))
	resaved.CreatedAt = 9000
	require.NoError(t, ts.Repo.SaveEndpoint(ctx, resaved))
	assert.EqualValues(t, 1000, resaved.CreatedAt)
}
