package node

import (
	"context"
	"fmt"

	"github.com/teilomillet/ollamanode/presets"
	"github.com/teilomillet/ollamanode/prompt"
)

// Socket types understood by the host.
const (
	TypeString  = "STRING"
	TypeInt     = "INT"
	TypeBoolean = "BOOLEAN"
	TypeImage   = "IMAGE"
	TypeChoice  = "CHOICE"
)

// Host registration constants.
const (
	FunctionName = "generate_content"
	Category     = "Ollama"
	DisplayName  = "Basic Ollama"
)

// Field declares one input socket.
type Field struct {
	Name      string      `json:"name"`
	Type      string      `json:"type"`
	Default   interface{} `json:"default,omitempty"`
	Min       *int        `json:"min,omitempty"`
	Max       *int        `json:"max,omitempty"`
	Step      *int        `json:"step,omitempty"`
	Choices   []string    `json:"choices,omitempty"`
	Multiline bool        `json:"multiline,omitempty"`
}

// Schema is the declarative surface the host renders as a form.
type Schema struct {
	Required    []Field  `json:"required"`
	Optional    []Field  `json:"optional"`
	ReturnTypes []string `json:"return_types"`
	ReturnNames []string `json:"return_names"`
	Function    string   `json:"function"`
	Category    string   `json:"category"`
	DisplayName string   `json:"display_name"`
}

func intp(v int) *int { return &v }

// Schema describes the node's inputs. Model choices come from discovery
// and preset choices from the prompts directory, both read on every call.
func (n *Node) Schema(ctx context.Context) Schema {
	d := DefaultInputs()

	models := n.Models(ctx)
	var defaultModel interface{}
	switch {
	case n.opts.DefaultModel != "":
		defaultModel = n.opts.DefaultModel
	case len(models) > 0:
		defaultModel = models[0]
	}

	maxKeepAlive := n.opts.MaxKeepAlive
	if maxKeepAlive <= 0 {
		maxKeepAlive = 60
	}

	s := Schema{
		Required: []Field{
			{Name: "prompt", Type: TypeString, Default: d.Prompt, Multiline: true},
			{Name: "input_type", Type: TypeChoice, Default: d.InputType, Choices: []string{InputText, InputImage}},
			{Name: "ollama_model", Type: TypeChoice, Default: defaultModel, Choices: models},
			{Name: "keep_alive", Type: TypeInt, Default: d.KeepAlive, Min: intp(0), Max: intp(maxKeepAlive), Step: intp(1)},
			{Name: "structure_output", Type: TypeBoolean, Default: d.StructureOutput},
			{Name: "prompt_structure", Type: TypeChoice, Default: d.PromptStructure, Choices: prompt.Structures()},
			{Name: "structure_format", Type: TypeString, Default: d.StructureFormat, Multiline: true},
			{Name: "output_format", Type: TypeChoice, Default: d.OutputFormat, Choices: prompt.OutputFormats()},
		},
		Optional: []Field{
			{Name: "system_prompt", Type: TypeString, Default: "", Multiline: true},
			{Name: "preset", Type: TypeChoice, Default: presets.None, Choices: n.Presets()},
		},
		ReturnTypes: []string{TypeString},
		ReturnNames: []string{"text"},
		Function:    FunctionName,
		Category:    Category,
		DisplayName: DisplayName,
	}

	for i := 1; i <= MaxImages; i++ {
		s.Optional = append(s.Optional, Field{Name: fmt.Sprintf("image%d", i), Type: TypeImage})
	}
	return s
}
