package services

import (
	"context"
	"errors"
	"time"

	"go_capture_proxy/internal/domain/iface"
	model "go_capture_proxy/internal/domain/model/endpoint"
	configs "go_capture_proxy/internal/infra/config"
	"go_capture_proxy/internal/infra/repo"
	"go_capture_proxy/utils"

	"github.com/sirupsen/logrus"
)

// ProxyService drives a request through
// RECEIVED -> ROUTED -> (MOCKED | FORWARDED) -> COMPLETED, or FAILED.
type ProxyService struct {
	resolver     *RouteResolver
	matcher      iface.MockMatchService
	forwarder    *ForwardingService
	endpointRepo repo.EndpointRepositoryIface
	captureMode  model.CaptureMode
	logger       logrus.FieldLogger
}

var _ iface.ProxyService = (*ProxyService)(nil)

func NewProxyService(resolver *RouteResolver, matcher iface.MockMatchService, forwarder *ForwardingService,
	endpointRepo repo.EndpointRepositoryIface, api *configs.ApiConfig) *ProxyService {
	mode := model.CaptureMode(api.CaptureMode)
	if mode == "" {
		mode = model.CaptureModeMiss
	}
	return &ProxyService{
		resolver:     resolver,
		matcher:      matcher,
		forwarder:    forwarder,
		endpointRepo: endpointRepo,
		captureMode:  mode,
		logger:       utils.GetLogger().WithField("component", "proxy"),
	}
}

// Handle returns the mocked or forwarded response for req. Only a broken
// stored endpoint is reported as an error; an upstream failure gives a nil
// outcome.
func (s *ProxyService) Handle(ctx context.Context, req model.Request) (*model.ProxyOutcome, error) {
	log := s.logger.WithFields(logrus.Fields{"method": req.Method().String(), "uri": req.URI()})
	log.WithField("stage", model.StageReceived).Debug(req.String())

	route := s.resolver.Resolve(req.URI())
	log = log.WithField("route", route.String())
	log.WithField("stage", model.StageRouted).Debug("route resolved")

	if !s.forcesLiveCall(route) {
		outcome, err := s.mock(ctx, req, route, log)
		if err != nil {
			if ctx.Err() != nil {
				log.WithField("stage", model.StageFailed).Debug("request cancelled")
				return nil, nil
			}
			log.WithField("stage", model.StageFailed).WithError(err).Error("stored endpoint is broken")
			return nil, err
		}
		if outcome != nil {
			log.WithFields(logrus.Fields{"stage": model.StageCompleted, "endpoint": outcome.Endpoint.ID}).Info("served from mock")
			return outcome, nil
		}
	}

	result, ok := s.forwarder.Forward(ctx, req, route)
	if !ok {
		log.WithField("stage", model.StageFailed).Warn("no response available")
		return nil, nil
	}
	log.WithFields(logrus.Fields{"stage": model.StageForwarded, "status": result.Response.StatusCode}).Debug("upstream responded")

	outcome := &model.ProxyOutcome{
		Source:   model.StageForwarded,
		Response: result.Response,
		Route:    result.Route,
	}
	if result.Route.CaptureEnabled {
		outcome.Captured = s.capture(ctx, req, result.Response, log)
	}

	log.WithFields(logrus.Fields{"stage": model.StageCompleted, "captured": outcome.Captured}).Info("served from upstream")
	return outcome, nil
}

func (s *ProxyService) forcesLiveCall(route model.RouteConfiguration) bool {
	return route.CaptureEnabled && s.captureMode == model.CaptureModeAlways
}

// mock returns nil, nil on a miss. Lookup failures count as a miss.
func (s *ProxyService) mock(ctx context.Context, req model.Request, route model.RouteConfiguration, log logrus.FieldLogger) (*model.ProxyOutcome, error) {
	ep, err := s.matcher.MatchEndpoint(ctx, req)
	if err != nil {
		if errors.Is(err, model.ErrMalformedTemplate) {
			return nil, err
		}
		log.WithError(err).Warn("endpoint lookup failed, treating as miss")
		return nil, nil
	}
	if ep == nil {
		return nil, nil
	}

	resp, err := ep.Respond(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := wait(ctx, ep.Response.Delay); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{"stage": model.StageMocked, "endpoint": ep.ID}).Debug("endpoint matched")
	return &model.ProxyOutcome{
		Source:   model.StageMocked,
		Response: resp,
		Route:    route,
		Endpoint: ep,
	}, nil
}

// capture records the exchange as a replayable endpoint. Failures are
// logged and reported as false.
func (s *ProxyService) capture(ctx context.Context, req model.Request, resp *model.Response, log logrus.FieldLogger) bool {
	ep, err := model.NewCapturedEndpoint(req.WithoutHeaders(), resp)
	if err != nil {
		log.WithError(err).Error("failed to build captured endpoint")
		return false
	}
	if err := ep.ValidateTemplate(); err != nil {
		log.WithError(err).WithField("endpoint", ep.ID).Warn("captured exchange cannot be replayed, skipping")
		return false
	}
	if err := s.endpointRepo.SaveEndpoint(ctx, ep); err != nil {
		log.WithError(err).WithField("endpoint", ep.ID).Error("failed to persist capture")
		return false
	}
	log.WithField("endpoint", ep.ID).Info("exchange captured")
	return true
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
