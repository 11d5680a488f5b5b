// Package node adapts the prompt pipeline to a node-graph host: a declarative
// input schema and a single generate entry point that always yields text.
//
// The host never sees a Go error. Every failure, from a rejected input to an
// unreachable server, comes back as an "API Error: ..." string in the text
// output.
package node

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/teilomillet/ollamanode/config"
	"github.com/teilomillet/ollamanode/errors"
	"github.com/teilomillet/ollamanode/ollama"
	"github.com/teilomillet/ollamanode/pixels"
	"github.com/teilomillet/ollamanode/presets"
	"github.com/teilomillet/ollamanode/prompt"
)

// Generator sends a generate request. *ollama.Client implements it.
type Generator interface {
	Generate(ctx context.Context, req *ollama.GenerateRequest) (*ollama.GenerateResponse, error)
}

// ModelSource lists model choices. *ollama.Discovery implements it.
type ModelSource interface {
	Models(ctx context.Context) []string
}

// Options tune a Node.
type Options struct {
	// PromptsDir holds the *.txt presets.
	PromptsDir string

	// DefaultModel is used when Inputs.Model is empty.
	DefaultModel string

	// PrefixImages frames the prompt with prompt.ImagePromptPrefix when
	// images are sent.
	PrefixImages bool

	// MaxKeepAlive bounds Inputs.KeepAlive. Zero disables the bound.
	MaxKeepAlive int
}

// OptionsFromConfig maps the service configuration onto node options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		PromptsDir:   cfg.Prompts.Dir,
		DefaultModel: cfg.Node.DefaultModel,
		PrefixImages: cfg.Node.ImagePromptPrefix,
		MaxKeepAlive: cfg.Node.MaxKeepAlive,
	}
}

// Node is the generate_content implementation.
type Node struct {
	gen      Generator
	models   ModelSource
	opts     Options
	validate *validator.Validate
	logger   *zap.Logger
}

// New creates a Node. A nil logger means errors.DefaultLogger.
func New(gen Generator, models ModelSource, opts Options, logger *zap.Logger) *Node {
	if logger == nil {
		logger = errors.DefaultLogger
	}
	return &Node{
		gen:      gen,
		models:   models,
		opts:     opts,
		validate: newValidator(opts.MaxKeepAlive),
		logger:   logger,
	}
}

// Models returns the current model choices.
func (n *Node) Models(ctx context.Context) []string {
	return n.models.Models(ctx)
}

// Presets returns the current preset choices, None first.
func (n *Node) Presets() []string {
	return presets.Choices(n.opts.PromptsDir)
}

// Generate runs the node and returns its text output. Failures are rendered
// with errors.Display instead of being returned.
func (n *Node) Generate(ctx context.Context, in Inputs) string {
	text, err := n.Run(ctx, in)
	if err != nil {
		n.logger.Warn("generation failed",
			zap.String("error_type", string(errors.TypeOf(err))),
			zap.Error(err),
		)
		return errors.Display(err)
	}
	return text
}

// Run is Generate with the error kept separate. The returned error is always
// a *errors.NodeError.
func (n *Node) Run(ctx context.Context, in Inputs) (string, error) {
	if in.Model == "" {
		in.Model = n.opts.DefaultModel
	}

	if err := n.validate.Struct(in); err != nil {
		msg, details := describe(err)
		return "", errors.NewValidationError("", msg, details)
	}

	system, err := n.systemPrompt(in)
	if err != nil {
		return "", err
	}

	text := in.Prompt
	if t, ok := prompt.Detect(text, in.PromptStructure); ok {
		n.logger.Debug("applying prompt template", zap.String("template", t.Name))
		text = prompt.ApplyTemplate(text, in.PromptStructure)
	}
	if in.StructureOutput {
		n.logger.Debug("requesting structured output", zap.String("model", in.Model))
		text = prompt.WithStructure(text, in.StructureFormat)
	}

	images, err := n.encodeImages(in)
	if err != nil {
		return "", err
	}

	req := prompt.BuildRequest(prompt.Params{
		Model:        in.Model,
		Prompt:       text,
		System:       system,
		KeepAlive:    in.KeepAlive,
		Images:       images,
		PrefixImages: n.opts.PrefixImages,
	})

	resp, err := n.gen.Generate(ctx, req)
	if err != nil {
		return "", errors.NewProviderError("", "generation failed", err)
	}

	return prompt.FormatOutput(resp.Response, prompt.OutputFormat(in.OutputFormat), in.PromptStructure), nil
}

// systemPrompt picks the preset when one is selected, otherwise the literal
// system prompt.
func (n *Node) systemPrompt(in Inputs) (string, error) {
	if in.Preset == "" || in.Preset == presets.None {
		return in.SystemPrompt, nil
	}

	content, err := presets.Resolve(n.opts.PromptsDir, in.Preset)
	if err != nil {
		if stderrors.Is(err, presets.ErrPresetNotFound) {
			return "", errors.NewNotFoundError("", "preset", in.Preset)
		}
		return "", errors.NewError(errors.ConfigError, "failed to load presets", http.StatusInternalServerError, "", nil, err)
	}
	return content, nil
}

// encodeImages returns the base64 PNGs to send. Images are only considered
// for the image input type.
func (n *Node) encodeImages(in Inputs) ([]string, error) {
	if in.InputType != InputImage || len(in.Images) == 0 {
		if len(in.Images) > 0 {
			n.logger.Debug("ignoring images for text input", zap.Int("images", len(in.Images)))
		}
		return nil, nil
	}

	n.logger.Debug("encoding images", zap.Int("images", len(in.Images)))
	out := make([]string, 0, len(in.Images))
	for i, t := range in.Images {
		s, err := pixels.Encode(t)
		if err != nil {
			return nil, errors.NewEncodingError("", i+1, err)
		}
		out = append(out, s)
	}
	return out, nil
}
