// Package presets loads system prompt presets from a directory of text
// files. Each *.txt file is one preset named after its stem.
//
// Nothing is cached: every call re-reads the directory, so presets added,
// edited or removed on disk are visible on the next call.
package presets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// None is the preset choice meaning "use the literal system prompt".
const None = "None"

// Ext is the extension of preset files.
const Ext = ".txt"

// ErrPresetNotFound is returned by Resolve for unknown names.
var ErrPresetNotFound = errors.New("preset not found")

// Load returns preset name to trimmed content for every regular *.txt file
// in dir. A missing directory yields an empty map and no error.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read presets dir: %w", err)
	}

	out := make(map[string]string, len(entries))
	for _, e := range entries {
		name, ok := presetName(e)
		if !ok {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read preset %q: %w", name, err)
		}
		out[name] = strings.TrimSpace(string(data))
	}
	return out, nil
}

// presetName reports the preset name of a directory entry, if it is one.
func presetName(e fs.DirEntry) (string, bool) {
	if !e.Type().IsRegular() {
		return "", false
	}
	if filepath.Ext(e.Name()) != Ext {
		return "", false
	}
	name := strings.TrimSuffix(e.Name(), Ext)
	if name == "" {
		return "", false
	}
	return name, true
}

// Names returns the sorted preset names in dir. Unreadable directories
// yield no names.
func Names(dir string) []string {
	presets, err := Load(dir)
	if err != nil {
		return []string{}
	}
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Choices returns None followed by Names(dir).
func Choices(dir string) []string {
	return append([]string{None}, Names(dir)...)
}

// Resolve returns the content of the named preset.
func Resolve(dir, name string) (string, error) {
	presets, err := Load(dir)
	if err != nil {
		return "", err
	}
	content, ok := presets[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrPresetNotFound, name)
	}
	return content, nil
}
