package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"text/template"
	"time"
)

// Response is a concrete HTTP response, either rendered from a stored
// template or read from the upstream.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

func (r *Response) String() string {
	return fmt.Sprintf("Status: %d, Headers: %v, Body: %dB", r.StatusCode, r.Headers, len(r.Body))
}

// ResponseTemplate is the stored half of an endpoint.
type ResponseTemplate struct {
	StatusCode   int                    `json:"statusCode,omitempty"`
	Headers      map[string]string      `json:"headers,omitempty"`
	Body         string                 `json:"body,omitempty"`
	BodyBytes    []byte                 `json:"-" gorm:"-"`
	BodyBase64   string                 `json:"bodyBase64,omitempty"`
	Template     bool                   `json:"template,omitempty"`
	TemplateData map[string]interface{} `json:"templateData,omitempty"`
	Delay        time.Duration          `json:"delay,omitempty"`
}

func (r ResponseTemplate) MarshalJSON() ([]byte, error) {
	type Alias ResponseTemplate
	aux := Alias(r)

	// binary payloads travel as base64
	if len(r.BodyBytes) > 0 {
		aux.BodyBase64 = base64.StdEncoding.EncodeToString(r.BodyBytes)
		aux.Body = ""
	}
	return json.Marshal(aux)
}

func (r *ResponseTemplate) UnmarshalJSON(data []byte) error {
	type Alias ResponseTemplate
	aux := &struct {
		*Alias
	}{
		Alias: (*Alias)(r),
	}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	if aux.BodyBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(aux.BodyBase64)
		if err != nil {
			return fmt.Errorf("decode bodyBase64: %w", err)
		}
		r.BodyBytes = decoded
	}
	return nil
}

func (r *ResponseTemplate) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return r.UnmarshalJSON(v)
	case string:
		return r.UnmarshalJSON([]byte(v))
	default:
		return errors.New("unsupported response column type")
	}
}

func (r ResponseTemplate) Value() (driver.Value, error) {
	b, err := r.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (r *ResponseTemplate) Validate() error {
	if r.StatusCode != 0 && (r.StatusCode < 100 || r.StatusCode > 599) {
		return errors.New("invalid status code")
	}
	if r.Template {
		if _, err := template.New("response").Parse(r.Body); err != nil {
			return fmt.Errorf("invalid response template: %w", err)
		}
	}
	return nil
}

// Render produces the response for req. Binary bodies win over templates,
// templates over the raw text body.
func (r *ResponseTemplate) Render(req Request) (*Response, error) {
	resp := &Response{
		StatusCode: r.StatusCode,
		Headers:    make(http.Header, len(r.Headers)),
	}
	if resp.StatusCode == 0 {
		resp.StatusCode = http.StatusOK
	}
	for k, v := range r.Headers {
		resp.Headers.Set(k, v)
	}

	switch {
	case len(r.BodyBytes) > 0:
		resp.Body = bytes.Clone(r.BodyBytes)
	case r.Template:
		rendered, err := r.renderTemplate(req)
		if err != nil {
			return nil, fmt.Errorf("render response template: %w", err)
		}
		resp.Body = rendered
	default:
		resp.Body = []byte(r.Body)
	}
	return resp, nil
}

func (r *ResponseTemplate) renderTemplate(req Request) ([]byte, error) {
	tpl, err := template.New("response").Parse(r.Body)
	if err != nil {
		return nil, err
	}

	query, _ := req.Query()
	body, _ := req.Body()
	var bodyJSON map[string]interface{}
	_ = json.Unmarshal([]byte(body), &bodyJSON)

	data := mergeMaps(r.TemplateData, map[string]interface{}{
		"Request": map[string]interface{}{
			"Method": req.Method().String(),
			"URI":    req.URI(),
			"Query":  query,
			"Body":   bodyJSON,
		},
	})

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// mergeMaps merges extra into base, recursing into nested maps.
func mergeMaps(base, extra map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		if existing, ok := merged[k]; ok {
			if existingMap, ok1 := existing.(map[string]interface{}); ok1 {
				if vMap, ok2 := v.(map[string]interface{}); ok2 {
					merged[k] = mergeMaps(existingMap, vMap)
					continue
				}
			}
		}
		merged[k] = v
	}
	return merged
}
