package node

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/teilomillet/ollamanode/pixels"
	"github.com/teilomillet/ollamanode/presets"
	"github.com/teilomillet/ollamanode/prompt"
)

// Input type choices.
const (
	InputText  = "text"
	InputImage = "image"
)

// MaxImages is the number of optional image sockets.
const MaxImages = 5

// DefaultPrompt is the prompt shown in a freshly added node.
const DefaultPrompt = "What is the meaning of life?"

// Inputs are the arguments of one generate_content call. JSON names match
// the schema field names.
type Inputs struct {
	Prompt          string          `json:"prompt"`
	InputType       string          `json:"input_type" validate:"required,oneof=text image"`
	Model           string          `json:"ollama_model" validate:"required"`
	KeepAlive       int             `json:"keep_alive" validate:"gte=0"`
	StructureOutput bool            `json:"structure_output"`
	PromptStructure string          `json:"prompt_structure" validate:"prompt_structure"`
	StructureFormat string          `json:"structure_format"`
	OutputFormat    string          `json:"output_format" validate:"required,oneof=raw_text json"`
	SystemPrompt    string          `json:"system_prompt,omitempty"`
	Preset          string          `json:"preset,omitempty"`
	Images          []pixels.Tensor `json:"images,omitempty" validate:"max=5"`
}

// DefaultInputs returns the inputs a new node starts with. Model is left
// empty; the node fills in its configured default.
func DefaultInputs() Inputs {
	return Inputs{
		Prompt:          DefaultPrompt,
		InputType:       InputText,
		KeepAlive:       0,
		StructureOutput: false,
		PromptStructure: prompt.Custom,
		StructureFormat: prompt.DefaultStructureFormat,
		OutputFormat:    string(prompt.RawText),
		Preset:          presets.None,
	}
}

// newValidator builds the input validator. Field names in errors use the
// JSON names so messages match what the caller sent.
func newValidator(maxKeepAlive int) *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("prompt_structure", func(fl validator.FieldLevel) bool {
		return prompt.IsStructure(fl.Field().String())
	})

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		in := sl.Current().Interface().(Inputs)
		if maxKeepAlive > 0 && in.KeepAlive > maxKeepAlive {
			sl.ReportError(in.KeepAlive, "keep_alive", "KeepAlive", "lte", fmt.Sprint(maxKeepAlive))
		}
	}, Inputs{})

	return v
}

// describe turns validator errors into a one-line message and a details map
// keyed by field name.
func describe(err error) (string, map[string]interface{}) {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err.Error(), nil
	}

	details := make(map[string]interface{}, len(verrs))
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		details[fe.Field()] = rule

		got := fe.Value()
		if rv := reflect.ValueOf(got); rv.Kind() == reflect.Slice {
			got = fmt.Sprintf("%d items", rv.Len())
		}
		parts = append(parts, fmt.Sprintf("%s failed %s (got %v)", fe.Field(), rule, got))
	}
	return "invalid inputs: " + strings.Join(parts, "; "), details
}
