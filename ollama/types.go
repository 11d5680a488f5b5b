// Package ollama is a small client for the two Ollama endpoints the node
// uses: /api/tags for model discovery and /api/generate for one-shot,
// non-streaming generation.
package ollama

import (
	"encoding/json"
	"time"
)

const (
	// TagsPath lists locally available models.
	TagsPath = "/api/tags"

	// GeneratePath produces a completion for a single prompt.
	GeneratePath = "/api/generate"
)

// ModelsResponse is the body of GET /api/tags.
type ModelsResponse struct {
	Models []Model `json:"models"`
}

// Model describes one locally available model. Only Name is required by
// the node; the rest is passed through for the models listing.
type Model struct {
	Name       string       `json:"name"`
	Model      string       `json:"model,omitempty"`
	ModifiedAt time.Time    `json:"modified_at"`
	Size       int64        `json:"size"`
	Digest     string       `json:"digest"`
	Details    ModelDetails `json:"details"`
}

// Families is the list of model families, tolerant of a JSON null.
type Families []string

// ModelDetails carries the format and quantization of a model.
type ModelDetails struct {
	Format            string   `json:"format"`
	Family            string   `json:"family"`
	Families          Families `json:"families"`
	ParameterSize     string   `json:"parameter_size"`
	QuantizationLevel string   `json:"quantization_level"`
}

// UnmarshalJSON treats null as an empty list.
func (f *Families) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Families{}
		return nil
	}

	var families []string
	if err := json.Unmarshal(data, &families); err != nil {
		return err
	}
	*f = Families(families)
	return nil
}

// GenerateRequest is the body of POST /api/generate.
//
// System and Images are omitted when empty so the server applies the model's
// own defaults.
type GenerateRequest struct {
	Model     string   `json:"model"`
	Prompt    string   `json:"prompt"`
	Stream    bool     `json:"stream"`
	KeepAlive string   `json:"keep_alive"`
	System    string   `json:"system,omitempty"`
	Images    []string `json:"images,omitempty"`
}

// GenerateResponse is the non-streaming body of POST /api/generate.
// A body without a response field decodes to an empty Response.
type GenerateResponse struct {
	Model              string    `json:"model"`
	CreatedAt          time.Time `json:"created_at"`
	Response           string    `json:"response"`
	Done               bool      `json:"done"`
	DoneReason         string    `json:"done_reason,omitempty"`
	TotalDuration      int64     `json:"total_duration,omitempty"`
	LoadDuration       int64     `json:"load_duration,omitempty"`
	PromptEvalCount    int       `json:"prompt_eval_count,omitempty"`
	PromptEvalDuration int64     `json:"prompt_eval_duration,omitempty"`
	EvalCount          int       `json:"eval_count,omitempty"`
	EvalDuration       int64     `json:"eval_duration,omitempty"`
}

// errorBody is what Ollama returns alongside non-2xx statuses.
type errorBody struct {
	Error string `json:"error"`
}
