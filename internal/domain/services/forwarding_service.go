package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	model "go_capture_proxy/internal/domain/model/endpoint"
	configs "go_capture_proxy/internal/infra/config"
	"go_capture_proxy/utils"

	"github.com/avast/retry-go/v4"
	"github.com/sirupsen/logrus"
)

// ForwardingService issues the live upstream call for a request.
type ForwardingService struct {
	resolver *RouteResolver
	headers  *HeaderFilter
	client   *http.Client
	config   *configs.ForwardConfig
	logger   logrus.FieldLogger
}

func NewForwardingService(resolver *RouteResolver, headers *HeaderFilter, config *configs.ForwardConfig) *ForwardingService {
	return &ForwardingService{
		resolver: resolver,
		headers:  headers,
		client: &http.Client{
			Timeout: config.Timeout,
			// redirects go back to the caller untouched
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		config: config,
		logger: utils.GetLogger().WithField("component", "forwarding"),
	}
}

// Execute resolves the route for req and forwards it.
func (s *ForwardingService) Execute(ctx context.Context, req model.Request) (*model.ForwardingResult, bool) {
	return s.Forward(ctx, req, s.resolver.Resolve(req.URI()))
}

// Forward calls route.Host + uri + query with the inbound verb, body and
// filtered headers. Transport failures are logged once and reported as
// (nil, false). Any upstream status, including 5xx, is a result.
func (s *ForwardingService) Forward(ctx context.Context, req model.Request, route model.RouteConfiguration) (*model.ForwardingResult, bool) {
	url := route.Host + req.URI() + BuildQueryString(req)
	inHeaders, _ := req.Headers()
	headers, hasHeaders := s.headers.Request(inHeaders)
	body, hasBody := req.Body()

	log := s.logger.WithFields(logrus.Fields{
		"method": req.Method().String(),
		"url":    url,
		"route":  route.String(),
	})
	log.Info("forwarding to external api")

	var resp *model.Response
	err := retry.Do(
		func() error {
			var reader io.Reader
			if hasBody {
				reader = strings.NewReader(body)
			}
			out, err := http.NewRequestWithContext(ctx, req.Method().String(), url, reader)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("build outbound request: %w", err))
			}
			if hasHeaders {
				out.Header = headers.Clone()
			}

			r, err := s.client.Do(out)
			if err != nil {
				return err
			}
			defer r.Body.Close()

			payload, err := io.ReadAll(io.LimitReader(r.Body, model.MaxBodySize))
			if err != nil {
				return fmt.Errorf("read upstream body: %w", err)
			}
			resp = &model.Response{
				StatusCode: r.StatusCode,
				Headers:    s.headers.Response(r.Header),
				Body:       payload,
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(s.attemptsFor(req.Method())),
		retry.Delay(s.config.RetryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		log.WithError(err).Error("external api call failed")
		return nil, false
	}

	log.WithField("status", resp.StatusCode).Debug("external api responded")
	return &model.ForwardingResult{Response: resp, Route: route}, true
}

// attemptsFor limits retries to idempotent verbs; a POST or PATCH that
// failed in transit may still have reached the upstream.
func (s *ForwardingService) attemptsFor(m model.Method) uint {
	switch m {
	case model.MethodPost, model.MethodPatch:
		return 1
	default:
		return attempts(s.config.RetryCount)
	}
}

func attempts(n int) uint {
	if n < 1 {
		return 1
	}
	return uint(n)
}
