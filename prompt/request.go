package prompt

import (
	"fmt"

	"github.com/teilomillet/ollamanode/ollama"
)

// ImagePromptPrefix frames the prompt when images are attached.
const ImagePromptPrefix = "Analyze these image(s): "

// Params are the resolved inputs of one generation request.
type Params struct {
	Model  string
	Prompt string
	// System is sent only when non-empty.
	System string
	// KeepAlive is in minutes.
	KeepAlive int
	// Images are base64 PNG strings, in order.
	Images []string
	// PrefixImages prepends ImagePromptPrefix when Images is non-empty.
	PrefixImages bool
}

// KeepAlive formats minutes the way Ollama expects, e.g. 5 -> "5m".
func KeepAlive(minutes int) string {
	return fmt.Sprintf("%dm", minutes)
}

// BuildRequest assembles a non-streaming /api/generate body.
func BuildRequest(p Params) *ollama.GenerateRequest {
	req := &ollama.GenerateRequest{
		Model:     p.Model,
		Prompt:    p.Prompt,
		Stream:    false,
		KeepAlive: KeepAlive(p.KeepAlive),
		System:    p.System,
	}

	if len(p.Images) > 0 {
		req.Images = append([]string(nil), p.Images...)
		if p.PrefixImages {
			req.Prompt = ImagePromptPrefix + req.Prompt
		}
	}
	return req
}
