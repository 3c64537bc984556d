// Package corpus stores harvested example prompts and matches them to
// expert patterns as few-shot grounding.
package corpus

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/ziadkadry99/promptsuite/internal/types"
)

// prefixRunes is how much of the content takes part in the dedup key.
const prefixRunes = 100

// ErrEmptyEntry is returned for entries without a title or content.
var ErrEmptyEntry = errors.New("corpus entry needs a title and content")

// Key returns the dedup key of an entry: its title plus the first 100
// characters of its content.
func Key(e types.CorpusEntry) string {
	content := []rune(strings.TrimSpace(e.Content))
	if len(content) > prefixRunes {
		content = content[:prefixRunes]
	}
	h := sha256.Sum256([]byte(strings.TrimSpace(e.Title) + "\x00" + string(content)))
	return hex.EncodeToString(h[:])
}

// Validate reports ErrEmptyEntry for unusable entries.
func Validate(e types.CorpusEntry) error {
	if strings.TrimSpace(e.Title) == "" || strings.TrimSpace(e.Content) == "" {
		return ErrEmptyEntry
	}
	return nil
}

// Dedupe drops entries whose key was already seen, keeping first occurrences.
func Dedupe(entries []types.CorpusEntry) []types.CorpusEntry {
	seen := make(map[string]bool, len(entries))
	out := make([]types.CorpusEntry, 0, len(entries))
	for _, e := range entries {
		k := Key(e)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	return out
}
