// Package handlers provides HTTP handlers for the ollamanode server.
//
// The generate endpoint follows the node contract: once the body parses,
// the response is always 200 with the node's text, which may be an
// "API Error: ..." string. Only malformed HTTP requests get typed JSON
// errors.
package handlers

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/teilomillet/ollamanode/errors"
	"github.com/teilomillet/ollamanode/node"
	"github.com/teilomillet/ollamanode/server/metrics"
	"github.com/teilomillet/ollamanode/server/middleware"
)

// maxBodyBytes bounds generate bodies. Five full-resolution float tensors
// are large, so this is generous.
const maxBodyBytes = 512 << 20

// Runner is the part of *node.Node the handlers use.
type Runner interface {
	Run(ctx context.Context, in node.Inputs) (string, error)
	Models(ctx context.Context) []string
	Presets() []string
	Schema(ctx context.Context) node.Schema
}

// GenerateResponse is the body of a generate response.
type GenerateResponse struct {
	Text string `json:"text"`
	// ErrorType is set when Text is an error string.
	ErrorType errors.ErrorType `json:"error_type,omitempty"`
}

// NodeHandler serves the node over HTTP.
type NodeHandler struct {
	node    Runner
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewNodeHandler creates a handler. m may be nil; a nil logger means
// errors.DefaultLogger.
func NewNodeHandler(n Runner, m *metrics.Metrics, logger *zap.Logger) *NodeHandler {
	if logger == nil {
		logger = errors.DefaultLogger
	}
	return &NodeHandler{node: n, metrics: m, logger: logger}
}

// Generate handles POST /v1/generate. The body is decoded on top of
// node.DefaultInputs, so omitted fields keep their defaults.
func (h *NodeHandler) Generate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		errors.WriteError(w, errors.NewValidationError(
			requestID,
			"Content-Type header required",
			map[string]interface{}{
				"required_content_type": "application/json",
			},
		))
		return
	}

	in := node.DefaultInputs()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		errors.WriteError(w, errors.NewValidationError(
			requestID,
			"Invalid request body",
			map[string]interface{}{
				"error": err.Error(),
			},
		))
		return
	}

	start := time.Now()
	text, err := h.node.Run(r.Context(), in)
	resp := GenerateResponse{Text: text}
	outcome := "ok"

	if err != nil {
		errors.LogError(h.logger, err, requestID)
		resp.Text = errors.Display(err)
		resp.ErrorType = errors.TypeOf(err)
		outcome = string(resp.ErrorType)
	}

	if h.metrics != nil {
		h.metrics.GenerationsTotal.WithLabelValues(outcome).Inc()
		h.metrics.GenerationDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
		if in.InputType == node.InputImage {
			h.metrics.ImagesTotal.Add(float64(len(in.Images)))
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Models handles GET /v1/models.
func (h *NodeHandler) Models(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"models": h.node.Models(r.Context()),
	})
}

// Presets handles GET /v1/presets.
func (h *NodeHandler) Presets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"presets": h.node.Presets(),
	})
}

// Schema handles GET /v1/schema.
func (h *NodeHandler) Schema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.node.Schema(r.Context()))
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
