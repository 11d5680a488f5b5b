package prompt

import (
	"bytes"
	"encoding/json"
	"strings"
)

// OutputFormat selects how cleaned text is returned.
type OutputFormat string

const (
	RawText OutputFormat = "raw_text"
	JSON    OutputFormat = "json"
)

// OutputFormats lists the output_format choices.
func OutputFormats() []string {
	return []string{string(RawText), string(JSON)}
}

// DefaultStructureFormat is appended when structured output is requested and
// the caller did not supply its own instruction.
const DefaultStructureFormat = "Return only the prompt text itself. No explanations or formatting."

// WithStructure appends a formatting instruction after a blank line.
func WithStructure(prompt, format string) string {
	return prompt + "\n\n" + format
}

// JSONKey names the single field of JSON output: "prompt" for Custom,
// otherwise the structure lowercased with '.' and '-' turned into '_' and
// suffixed with "_prompt" ("FLUX.1-dev" -> "flux_1_dev_prompt").
func JSONKey(structure string) string {
	if structure == Custom {
		return "prompt"
	}
	r := strings.NewReplacer(".", "_", "-", "_")
	return r.Replace(strings.ToLower(structure)) + "_prompt"
}

// FormatOutput cleans raw and shapes it per format. Whitespace-only text is
// returned untouched in either format.
func FormatOutput(raw string, format OutputFormat, structure string) string {
	if strings.TrimSpace(raw) == "" {
		return raw
	}

	text := Clean(raw)
	if format != JSON {
		return text
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	// A map with one string value always encodes.
	_ = enc.Encode(map[string]string{JSONKey(structure): text})
	return strings.TrimSuffix(buf.String(), "\n")
}
