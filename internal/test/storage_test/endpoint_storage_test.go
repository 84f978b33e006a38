package storagetest

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	model "go_capture_proxy/internal/domain/model/endpoint"
	configs "go_capture_proxy/internal/infra/config"
	"go_capture_proxy/internal/infra/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteSuite(t *testing.T) *StorageTestSuite {
	t.Helper()
	c := &configs.AppConfig{
		DatabaseConfig: configs.DatabaseConfig{
			Driver: configs.DriverSQLite,
			Path:   fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		},
		DatabaseOptionConfig: configs.DatabaseOptionConfig{MaxIdleConns: 1, MaxOpenConns: 1, LogLevel: "silent"},
	}
	s, err := InitializeStorageTest(c)
	require.NoError(t, err)
	return s
}

func newEndpoint(id string, req model.Request, createdAt int64) *model.Endpoint {
	return &model.Endpoint{
		ID:      id,
		Name:    "endpoint " + id,
		Request: req,
		Response: model.ResponseTemplate{
			StatusCode: http.StatusOK,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       `{"id":"` + id + `"}`,
		},
		Status:    model.EndpointStatusActive,
		Source:    model.EndpointSourceManual,
		CreatedAt: createdAt,
	}
}

func TestSaveEndpoint(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteSuite(t)

	req := model.NewRequest(model.MethodPost, "/api/v1/users/42").
		WithQuery(map[string]string{}).
		WithBody(`{"name":"ann"}`)
	ep := newEndpoint("ep-1", req, 0)

	require.NoError(t, store.storage.SaveEndpointToDB(ctx, ep))

	saved, err := store.storage.GetEndpointFromDB(ctx, ep.ID)
	require.NoError(t, err)
	assert.True(t, saved.Request.Equal(req), "presence flags survive the round trip")
	assert.Equal(t, ep.Response.Body, saved.Response.Body)
	assert.Equal(t, "application/json", saved.Response.Headers["Content-Type"])
	assert.Equal(t, "POST", saved.Method)
	assert.Equal(t, "/api/v1/users/42", saved.URI)
	assert.Equal(t, "http_post_/api/v1/users/*", saved.MatchIndex)
	assert.NotZero(t, saved.CreatedAt)
}

func TestSaveEndpoint_Upsert(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteSuite(t)

	ep := newEndpoint("ep-1", model.NewRequest(model.MethodGet, "/orders"), 1000)
	require.NoError(t, store.storage.SaveEndpointToDB(ctx, ep))

	replaced := newEndpoint("ep-1", model.NewRequest(model.MethodGet, "/orders"), 5000)
	replaced.Response.Body = "replaced"
	require.NoError(t, store.storage.SaveEndpointToDB(ctx, replaced))

	all, err := store.storage.ListEndpoints(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "replaced", all[0].Response.Body)
	assert.EqualValues(t, 1000, all[0].CreatedAt, "creation time is kept on replace")
	assert.EqualValues(t, 1000, replaced.CreatedAt, "the saved struct carries the stored creation time")
}

func TestSaveEndpoint_BinaryBody(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteSuite(t)

	ep := newEndpoint("bin", model.NewRequest(model.MethodGet, "/logo.png"), 0)
	ep.Response.Body = ""
	ep.Response.BodyBytes = []byte{0x89, 'P', 'N', 'G', 0x00, 0xff}
	require.NoError(t, store.storage.SaveEndpointToDB(ctx, ep))

	saved, err := store.storage.GetEndpointFromDB(ctx, "bin")
	require.NoError(t, err)
	assert.Equal(t, ep.Response.BodyBytes, saved.Response.BodyBytes)
}

func TestGetAndDeleteMissing(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteSuite(t)

	_, err := store.storage.GetEndpointFromDB(ctx, "nope")
	assert.ErrorIs(t, err, storage.ErrEndpointNotFound)

	err = store.storage.DeleteEndpointFromDB(ctx, "nope")
	assert.ErrorIs(t, err, storage.ErrEndpointNotFound)
}

func TestDeleteEndpoint(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteSuite(t)

	require.NoError(t, store.storage.SaveEndpointToDB(ctx, newEndpoint("gone", model.NewRequest(model.MethodGet, "/x"), 0)))
	require.NoError(t, store.storage.DeleteEndpointFromDB(ctx, "gone"))

	_, err := store.storage.GetEndpointFromDB(ctx, "gone")
	assert.ErrorIs(t, err, storage.ErrEndpointNotFound)
}

func TestListEndpoints_Filter(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteSuite(t)

	inactive := newEndpoint("c", model.NewRequest(model.MethodGet, "/orders/3"), 3000)
	inactive.Status = model.EndpointStatusInactive
	captured := newEndpoint("d", model.NewRequest(model.MethodPost, "/orders"), 4000)
	captured.Source = model.EndpointSourceCapture

	for _, ep := range []*model.Endpoint{
		newEndpoint("b", model.NewRequest(model.MethodGet, "/orders/2"), 2000),
		newEndpoint("a", model.NewRequest(model.MethodGet, "/orders/1"), 1000),
		inactive,
		captured,
	} {
		require.NoError(t, store.storage.SaveEndpointToDB(ctx, ep))
	}

	ids := func(eps []*model.Endpoint) string {
		out := make([]string, 0, len(eps))
		for _, ep := range eps {
			out = append(out, ep.ID)
		}
		return strings.Join(out, ",")
	}

	index := model.BuildMatchIndexKey("GET", "/orders/7")
	active := model.EndpointStatusActive
	capture := model.EndpointSourceCapture
	post := "POST"
	part := "/orders/"

	tests := []struct {
		name   string
		filter *model.EndpointFilter
		want   string
	}{
		{name: "all in creation order", filter: nil, want: "a,b,c,d"},
		{name: "by match index", filter: &model.EndpointFilter{MatchIndex: &index}, want: "a,b,c"},
		{name: "by index and status", filter: &model.EndpointFilter{MatchIndex: &index, Status: &active}, want: "a,b"},
		{name: "by source", filter: &model.EndpointFilter{Source: &capture}, want: "d"},
		{name: "by method", filter: &model.EndpointFilter{Method: &post}, want: "d"},
		{name: "by uri", filter: &model.EndpointFilter{URIContains: &part}, want: "a,b,c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.storage.ListEndpoints(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}

	batch, err := store.storage.BatchGetEndpoints(ctx, []string{"d", "a", "missing"})
	require.NoError(t, err)
	assert.Equal(t, "a,d", ids(batch))

	empty, err := store.storage.BatchGetEndpoints(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestListEndpointsWithPage(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteSuite(t)

	for i := 1; i <= 5; i++ {
		ep := newEndpoint("ep-"+strconv.Itoa(i), model.NewRequest(model.MethodGet, "/p/"+strconv.Itoa(i)), int64(i*1000))
		require.NoError(t, store.storage.SaveEndpointToDB(ctx, ep))
	}

	page, total, err := store.storage.ListEndpointsWithPage(ctx, nil, 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, "ep-3", page[0].ID)
	assert.Equal(t, "ep-4", page[1].ID)

	page, _, err = store.storage.ListEndpointsWithPage(ctx, nil, 3, 2)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestRedisEndpointCache(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	host, portStr, _ := strings.Cut(addr, ":")
	port, _ := strconv.Atoi(portStr)

	suite, err := InitializeRedisTest(&configs.AppConfig{RedisConfig: configs.RedisConfig{Host: host, Port: port}})
	require.NoError(t, err)
	defer suite.client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id := fmt.Sprintf("redis-test-%d", time.Now().UnixNano())
	ep := newEndpoint(id, model.NewRequest(model.MethodGet, "/redis/1").WithBody(`{"a":1}`), time.Now().UnixMilli())
	ep.MatchIndex = model.BuildMatchIndexKeyFromEndpoint(ep)

	require.NoError(t, suite.cache.SetEndpointToCache(ctx, ep))
	got, err := suite.cache.GetEndpointFromCache(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.Request.Equal(ep.Request))

	require.NoError(t, suite.cache.UpdateIndexCache(ctx, ep))
	ids, err := suite.cache.GetIndexCache(ctx, ep.MatchIndex)
	require.NoError(t, err)
	assert.Contains(t, ids, id)

	require.NoError(t, suite.cache.RemoveFromIndex(ctx, ep))
	ids, err = suite.cache.GetIndexCache(ctx, ep.MatchIndex)
	require.NoError(t, err)
	assert.NotContains(t, ids, id)

	require.NoError(t, suite.cache.DeleteEndpointFromCache(ctx, id))
	_, err = suite.cache.GetEndpointFromCache(ctx, id)
	assert.ErrorIs(t, err, storage.ErrEndpointNotFound)
}
