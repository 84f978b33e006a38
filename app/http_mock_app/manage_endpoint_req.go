package http_mock_app

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	model "go_capture_proxy/internal/domain/model/endpoint"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type CreateEndpointRequest struct {
	Name    string              `json:"name" validate:"max=100"`
	Method  string              `json:"method" validate:"required,oneof=GET POST PUT DELETE PATCH HEAD OPTIONS TRACE"`
	URI     string              `json:"uri" validate:"required,startswith=/,max=255"`
	Headers map[string][]string `json:"headers,omitempty"`
	Query   map[string]string   `json:"query,omitempty"`
	// Body is a pointer so an empty body stays distinguishable from none.
	Body     *string             `json:"body,omitempty"`
	Response ResponseTemplateDTO `json:"response" validate:"required"`
	Status   string              `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

type ResponseTemplateDTO struct {
	StatusCode   int               `json:"statusCode" validate:"required,min=100,max=599"`
	Headers      map[string]string `json:"headers,omitempty"`
	Body         string            `json:"body,omitempty"`
	BodyBase64   string            `json:"bodyBase64,omitempty" validate:"omitempty,base64"`
	Template     bool              `json:"template,omitempty"`
	TemplateData map[string]any    `json:"templateData,omitempty"`
	// Delay is a Go duration string, e.g. "250ms".
	Delay string `json:"delay,omitempty"`
}

// Validate performs validation on CreateEndpointRequest
func (req *CreateEndpointRequest) Validate() error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	if req.Response.Delay != "" {
		d, err := time.ParseDuration(req.Response.Delay)
		if err != nil {
			return fmt.Errorf("invalid response delay: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("invalid response delay: %s is negative", req.Response.Delay)
		}
	}
	return nil
}

// ConvertToEndpoint converts the DTO into an endpoint model. The id is
// left empty for the service to assign.
func (req *CreateEndpointRequest) ConvertToEndpoint() (*model.Endpoint, error) {
	method, err := model.ParseMethod(req.Method)
	if err != nil {
		return nil, err
	}

	r := model.NewRequest(method, req.URI)
	if len(req.Headers) > 0 {
		h := make(http.Header, len(req.Headers))
		for k, vs := range req.Headers {
			for _, v := range vs {
				h.Add(k, v)
			}
		}
		r = r.WithHeaders(h)
	}
	if req.Query != nil {
		r = r.WithQuery(req.Query)
	}
	if req.Body != nil {
		r = r.WithBody(*req.Body)
	}

	resp := model.ResponseTemplate{
		StatusCode:   req.Response.StatusCode,
		Headers:      req.Response.Headers,
		Body:         req.Response.Body,
		Template:     req.Response.Template,
		TemplateData: req.Response.TemplateData,
	}
	if req.Response.BodyBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.Response.BodyBase64)
		if err != nil {
			return nil, fmt.Errorf("decode bodyBase64: %w", err)
		}
		resp.BodyBytes = decoded
	}
	if req.Response.Delay != "" {
		d, err := time.ParseDuration(req.Response.Delay)
		if err != nil {
			return nil, fmt.Errorf("invalid response delay: %w", err)
		}
		resp.Delay = d
	}

	return &model.Endpoint{
		Name:     req.Name,
		Request:  r,
		Response: resp,
		Status:   model.EndpointStatus(req.Status),
		Source:   model.EndpointSourceManual,
	}, nil
}

// EndpointListResponse is one page of endpoints.
type EndpointListResponse struct {
	Items    []*model.Endpoint `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}
