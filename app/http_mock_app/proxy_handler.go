package http_mock_app

import (
	"errors"
	"net/http"
	"runtime/debug"

	"go_capture_proxy/internal/domain/iface"
	model "go_capture_proxy/internal/domain/model/endpoint"
	"go_capture_proxy/utils"

	"github.com/go-chassis/go-chassis/v2/pkg/metrics"
	"github.com/sirupsen/logrus"
)

const proxyRequestCounter = "capture_proxy_requests_total"

// counterAdd is swapped out in tests, where no metrics registry exists.
var counterAdd = metrics.CounterAdd

// ProxyHandler is the catch-all HTTP entry point of the proxy.
type ProxyHandler struct {
	proxy  iface.ProxyService
	logger logrus.FieldLogger
}

func NewProxyHandler(proxy iface.ProxyService) *ProxyHandler {
	return &ProxyHandler{
		proxy:  proxy,
		logger: utils.GetLogger().WithField("component", "proxy_handler"),
	}
}

func (h *ProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	outcome := "error"
	defer func() {
		if err := recover(); err != nil {
			h.logger.WithFields(logrus.Fields{
				"panic": err,
				"stack": string(debug.Stack()),
			}).Error("handle request panic")
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		if err := counterAdd(proxyRequestCounter, 1, map[string]string{
			"method":  r.Method,
			"outcome": outcome,
		}); err != nil {
			h.logger.Debugf("record metric: %v", err)
		}
	}()

	req, err := model.NewRequestFromHTTP(r)
	if err != nil {
		if errors.Is(err, model.ErrUnknownMethod) {
			outcome = "rejected"
			writeError(w, http.StatusMethodNotAllowed, err.Error())
			return
		}
		outcome = "rejected"
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.proxy.Handle(r.Context(), req)
	if err != nil {
		h.logger.WithError(err).Errorf("handle %s %s", r.Method, r.URL.Path)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if out == nil {
		outcome = "unavailable"
		writeError(w, http.StatusBadGateway, "no mock matched and the upstream did not respond")
		return
	}

	outcome = string(out.Source)
	writeResponse(w, out.Response, out.Source)
}
