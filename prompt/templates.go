package prompt

import "strings"

// Custom is the structure choice that applies no template of its own.
// Prompts that mention a template name are still augmented.
const Custom = "Custom"

// Template is a named instruction block.
type Template struct {
	Name string
	Text string
}

// templates is ordered: auto-detection picks the first name found.
var templates = []Template{
	{Name: "VideoGen", Text: videoGenTemplate},
	{Name: "FLUX.1-dev", Text: flux1DevTemplate},
	{Name: "SDXL", Text: sdxlTemplate},
	{Name: "FLUXKontext", Text: fluxKontextTemplate},
	{Name: "Imagen4", Text: imagen4Template},
	{Name: "GeminiNanaBananaEdit", Text: geminiNanaBananaEditTemplate},
}

// Templates returns the built-in templates in declaration order.
func Templates() []Template {
	out := make([]Template, len(templates))
	copy(out, templates)
	return out
}

// Structures returns the prompt_structure choices: Custom first, then each
// template name.
func Structures() []string {
	names := make([]string, 0, len(templates)+1)
	names = append(names, Custom)
	for _, t := range templates {
		names = append(names, t.Name)
	}
	return names
}

// IsStructure reports whether name is a valid prompt_structure choice.
func IsStructure(name string) bool {
	if name == Custom {
		return true
	}
	_, ok := lookup(name)
	return ok
}

func lookup(name string) (Template, bool) {
	for _, t := range templates {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}

// Detect returns the template ApplyTemplate would use. An explicit template
// structure wins; otherwise the prompt is scanned case-insensitively for a
// template name.
func Detect(prompt, structure string) (Template, bool) {
	if structure != Custom {
		if t, ok := lookup(structure); ok {
			return t, true
		}
	}

	lower := strings.ToLower(prompt)
	for _, t := range templates {
		if strings.Contains(lower, strings.ToLower(t.Name)) {
			return t, true
		}
	}
	return Template{}, false
}

// ApplyTemplate appends the selected template to prompt after a blank line.
// The prompt is returned unchanged when no template applies.
func ApplyTemplate(prompt, structure string) string {
	t, ok := Detect(prompt, structure)
	if !ok {
		return prompt
	}
	return prompt + "\n\n" + t.Text
}
