// Package textparse decodes structured payloads out of free-form model output.
//
// Model responses are not trusted to be well-formed. Decode tries a fixed
// list of strategies in order and reports which one succeeded together with
// a confidence value, so callers can decide whether to accept the result or
// take their own fallback.
package textparse

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Strategy names one decoding attempt.
type Strategy string

const (
	StrategyDirect     Strategy = "direct"
	StrategyCodeFence  Strategy = "code_fence"
	StrategyBraceMatch Strategy = "brace_match"
	StrategyNone       Strategy = "none"
)

// ErrNoJSON is returned when no strategy produced a decodable object.
var ErrNoJSON = errors.New("no decodable JSON object in response")

// Result describes the outcome of a Decode call.
type Result struct {
	Strategy   Strategy
	Confidence float64
	Err        error
}

// OK reports whether decoding succeeded.
func (r Result) OK() bool { return r.Err == nil }

type attempt struct {
	strategy   Strategy
	confidence float64
	extract    func(string) (string, bool)
}

var attempts = []attempt{
	{StrategyDirect, 1.0, func(s string) (string, bool) { return s, s != "" }},
	{StrategyCodeFence, 0.9, stripCodeFence},
	{StrategyBraceMatch, 0.7, FirstObject},
}

// Decode unmarshals raw into v using the first strategy that works.
func Decode(raw string, v any) Result {
	raw = strings.TrimSpace(raw)
	var lastErr error
	for _, a := range attempts {
		candidate, ok := a.extract(raw)
		if !ok {
			continue
		}
		if err := json.Unmarshal([]byte(candidate), v); err != nil {
			lastErr = err
			continue
		}
		return Result{Strategy: a.strategy, Confidence: a.confidence}
	}
	if lastErr != nil {
		return Result{Strategy: StrategyNone, Err: fmt.Errorf("%w: %v", ErrNoJSON, lastErr)}
	}
	return Result{Strategy: StrategyNone, Err: ErrNoJSON}
}

// stripCodeFence removes a surrounding markdown fence such as ```json ... ```.
func stripCodeFence(s string) (string, bool) {
	start := strings.Index(s, "```")
	if start < 0 {
		return "", false
	}
	body := s[start+3:]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		return "", false
	}
	end := strings.Index(body, "```")
	if end < 0 {
		return "", false
	}
	body = strings.TrimSpace(body[:end])
	return body, body != ""
}

// FirstObject returns the first balanced {...} substring of s. Braces inside
// JSON string literals are ignored.
func FirstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
