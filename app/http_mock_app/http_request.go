package http_mock_app

import (
	"encoding/json"
	"net/http"

	model "go_capture_proxy/internal/domain/model/endpoint"
)

// SourceHeader tells the client whether a response was mocked or forwarded.
const SourceHeader = "X-Capture-Proxy-Source"

// writeResponse copies resp onto w. Content-Length is recomputed by
// net/http from the body actually written.
func writeResponse(w http.ResponseWriter, resp *model.Response, source model.Stage) {
	h := w.Header()
	for k, vs := range resp.Headers {
		if http.CanonicalHeaderKey(k) == "Content-Length" {
			continue
		}
		for _, v := range vs {
			h.Add(k, v)
		}
	}
	h.Set(SourceHeader, string(source))

	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write(resp.Body)
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: msg})
}
