package pipeline

import (
	"encoding/json"
	"strings"

	"github.com/ziadkadry99/promptsuite/internal/textparse"
	"github.com/ziadkadry99/promptsuite/internal/types"
)

// ParseSections decodes the combined generation response. Sections that
// are missing or malformed are reported in failed; the others are returned
// even when siblings failed.
func ParseSections(raw string) (parsed map[types.SectionKind]types.PromptSection, failed []types.SectionKind, strategy textparse.Strategy) {
	parsed = make(map[types.SectionKind]types.PromptSection, len(types.SectionKinds))

	var envelope map[string]json.RawMessage
	res := textparse.Decode(raw, &envelope)
	if !res.OK() {
		return parsed, append(failed, types.SectionKinds...), res.Strategy
	}

	for _, kind := range types.SectionKinds {
		sec, ok := decodeSection(envelope[string(kind)])
		if !ok {
			failed = append(failed, kind)
			continue
		}
		parsed[kind] = sec
	}
	return parsed, failed, res.Strategy
}

func decodeSection(raw json.RawMessage) (types.PromptSection, bool) {
	if len(raw) == 0 {
		return types.PromptSection{}, false
	}

	// A bare string is taken as the prompt itself.
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		text = strings.TrimSpace(text)
		return types.PromptSection{Prompt: text}, text != ""
	}

	var sec types.PromptSection
	if err := json.Unmarshal(raw, &sec); err != nil {
		return types.PromptSection{}, false
	}
	sec.Prompt = strings.TrimSpace(sec.Prompt)
	sec.Fallback = false
	return sec, sec.Prompt != ""
}
