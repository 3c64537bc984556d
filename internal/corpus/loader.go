package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/ziadkadry99/promptsuite/internal/types"
)

// fileEnvelope is the object form of a corpus file.
type fileEnvelope struct {
	Entries []types.CorpusEntry `json:"entries" yaml:"entries"`
}

// LoadFiles expands doublestar globs and reads every matched JSON or YAML
// file. A file holds either an array of entries or {"entries": [...]}.
// Entries without a source are attributed to their file.
func LoadFiles(patterns []string) ([]types.CorpusEntry, error) {
	var files []string
	seen := make(map[string]bool)
	for _, p := range patterns {
		matches, err := doublestar.FilepathGlob(p)
		if err != nil {
			return nil, fmt.Errorf("bad corpus pattern %q: %w", p, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	var out []types.CorpusEntry
	for _, f := range files {
		entries, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		out = append(out, entries...)
	}
	return out, nil
}

// LoadFile reads one corpus file.
func LoadFile(path string) ([]types.CorpusEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus file: %w", err)
	}

	var entries []types.CorpusEntry
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		entries, err = decodeJSON(data)
	case ".yaml", ".yml":
		entries, err = decodeYAML(data)
	default:
		return nil, fmt.Errorf("unsupported corpus file type: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	for i := range entries {
		if entries[i].Source == "" {
			entries[i].Source = filepath.Base(path)
		}
	}
	return entries, nil
}

func decodeJSON(data []byte) ([]types.CorpusEntry, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var entries []types.CorpusEntry
		err := json.Unmarshal(data, &entries)
		return entries, err
	}
	var env fileEnvelope
	err := json.Unmarshal(data, &env)
	return env.Entries, err
}

func decodeYAML(data []byte) ([]types.CorpusEntry, error) {
	var entries []types.CorpusEntry
	if err := yaml.Unmarshal(data, &entries); err == nil {
		return entries, nil
	}
	var env fileEnvelope
	err := yaml.Unmarshal(data, &env)
	return env.Entries, err
}
