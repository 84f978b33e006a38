package http_mock_app

import (
	"errors"
	"net/http"
	"runtime/debug"
	"strconv"

	"go_capture_proxy/internal/domain/iface"
	model "go_capture_proxy/internal/domain/model/endpoint"
	"go_capture_proxy/internal/domain/services"
	"go_capture_proxy/internal/infra/repo"
	"go_capture_proxy/utils"

	rf "github.com/go-chassis/go-chassis/v2/server/restful"
	"github.com/sirupsen/logrus"
)

const adminRequestCounter = "request_counter"

type EndpointController struct {
	EndpointService iface.EndpointService
}

func NewEndpointController(endpointService iface.EndpointService) *EndpointController {
	return &EndpointController{
		EndpointService: endpointService,
	}
}

type messageBody struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

func writeJSON(b *rf.Context, status int, v interface{}) {
	if err := b.WriteHeaderAndJSON(status, v, "application/json"); err != nil {
		utils.GetLogger().Errorf("write response err: %v", err)
	}
}

// begin records the request and installs the panic guard. The returned
// func must be deferred.
func begin(b *rf.Context, op string) (logrus.FieldLogger, func()) {
	logger := utils.GetLogger().WithField("op", op)
	logger.Info(op + " Begin")

	if err := counterAdd(adminRequestCounter, 1, map[string]string{
		"method":   b.ReadRequest().Method,
		"endpoint": op,
	}); err != nil {
		logger.Debugf("record metric: %v", err)
	}

	return logger, func() {
		if err := recover(); err != nil {
			logger.WithFields(logrus.Fields{
				"panic": err,
				"stack": string(debug.Stack()),
			}).Error("handle request panic")
			writeJSON(b, http.StatusInternalServerError, errorBody{Error: "Internal server error"})
		}
	}
}

func (c *EndpointController) CreateEndpoint(b *rf.Context) {
	logger, guard := begin(b, "CreateEndpoint")
	defer guard()

	var req CreateEndpointRequest
	if err := b.ReadEntity(&req); err != nil {
		logger.Errorf("read request body err: %v", err)
		writeJSON(b, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		logger.Errorf("validate request err: %v", err)
		writeJSON(b, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	ep, err := req.ConvertToEndpoint()
	if err != nil {
		logger.Errorf("convert request to model err: %v", err)
		writeJSON(b, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	if err := c.EndpointService.CreateEndpoint(b.Ctx, ep); err != nil {
		logger.Errorf("create endpoint err: %v", err)
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrInvalidEndpoint) {
			status = http.StatusBadRequest
		}
		writeJSON(b, status, errorBody{Error: err.Error()})
		return
	}

	writeJSON(b, http.StatusCreated, messageBody{Message: "success", ID: ep.ID})
}

func (c *EndpointController) GetEndpoint(b *rf.Context) {
	logger, guard := begin(b, "GetEndpoint")
	defer guard()

	ep, err := c.EndpointService.GetEndpoint(b.Ctx, b.ReadPathParameter("id"))
	if err != nil {
		c.writeLookupError(b, logger, err)
		return
	}
	writeJSON(b, http.StatusOK, ep)
}

func (c *EndpointController) DeleteEndpoint(b *rf.Context) {
	logger, guard := begin(b, "DeleteEndpoint")
	defer guard()

	if err := c.EndpointService.DeleteEndpoint(b.Ctx, b.ReadPathParameter("id")); err != nil {
		c.writeLookupError(b, logger, err)
		return
	}
	writeJSON(b, http.StatusOK, messageBody{Message: "success"})
}

func (c *EndpointController) ListEndpoints(b *rf.Context) {
	logger, guard := begin(b, "ListEndpoints")
	defer guard()

	page, pageSize := readPaging(b.ReadQueryParameter("page"), b.ReadQueryParameter("pageSize"))
	filter := readFilter(b)

	eps, total, err := c.EndpointService.ListEndpoints(b.Ctx, filter, page, pageSize)
	if err != nil {
		logger.Errorf("list endpoints err: %v", err)
		writeJSON(b, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}
	if eps == nil {
		eps = []*model.Endpoint{}
	}
	writeJSON(b, http.StatusOK, EndpointListResponse{Items: eps, Total: total, Page: page, PageSize: pageSize})
}

func (c *EndpointController) writeLookupError(b *rf.Context, logger logrus.FieldLogger, err error) {
	if repo.IsNotFound(err) {
		writeJSON(b, http.StatusNotFound, errorBody{Error: err.Error()})
		return
	}
	logger.Errorf("endpoint lookup err: %v", err)
	writeJSON(b, http.StatusInternalServerError, errorBody{Error: err.Error()})
}

// readPaging falls back to page 1 / 20 items on missing or bad values.
func readPaging(rawPage, rawSize string) (int, int) {
	page, err := strconv.Atoi(rawPage)
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(rawSize)
	if err != nil || size < 1 {
		size = 20
	}
	if size > 200 {
		size = 200
	}
	return page, size
}

func readFilter(b *rf.Context) *model.EndpointFilter {
	var filter model.EndpointFilter
	set := false
	if v := b.ReadQueryParameter("method"); v != "" {
		filter.Method = &v
		set = true
	}
	if v := b.ReadQueryParameter("status"); v != "" {
		s := model.EndpointStatus(v)
		filter.Status = &s
		set = true
	}
	if v := b.ReadQueryParameter("source"); v != "" {
		s := model.EndpointSource(v)
		filter.Source = &s
		set = true
	}
	if v := b.ReadQueryParameter("uri"); v != "" {
		filter.URIContains = &v
		set = true
	}
	if !set {
		return nil
	}
	return &filter
}

func (c *EndpointController) URLPatterns() []rf.Route {
	return []rf.Route{
		{Method: http.MethodPost, Path: "/mock/endpoints", ResourceFunc: c.CreateEndpoint,
			Returns: []*rf.Returns{{Code: http.StatusCreated}}},
		{Method: http.MethodGet, Path: "/mock/endpoints", ResourceFunc: c.ListEndpoints,
			Returns: []*rf.Returns{{Code: http.StatusOK}}},
		{Method: http.MethodGet, Path: "/mock/endpoints/{id}", ResourceFunc: c.GetEndpoint,
			Returns: []*rf.Returns{{Code: http.StatusOK}, {Code: http.StatusNotFound}}},
		{Method: http.MethodDelete, Path: "/mock/endpoints/{id}", ResourceFunc: c.DeleteEndpoint,
			Returns: []*rf.Returns{{Code: http.StatusOK}, {Code: http.StatusNotFound}}},
	}
}
