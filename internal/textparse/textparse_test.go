package textparse

import (
	"encoding/json"
	"errors"
	"testing"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestDecodeStrategies(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		strategy Strategy
	}{
		{"direct", `{"name":"a","count":1}`, StrategyDirect},
		{"fenced", "```json\n{\"name\":\"a\",\"count\":1}\n```", StrategyCodeFence},
		{"prose around object", `Sure! Here it is: {"name":"a","count":1} Hope that helps.`, StrategyBraceMatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p payload
			res := Decode(tt.raw, &p)
			if !res.OK() {
				t.Fatalf("Decode failed: %v", res.Err)
			}
			if res.Strategy != tt.strategy {
				t.Errorf("strategy = %q, want %q", res.Strategy, tt.strategy)
			}
			if p.Name != "a" || p.Count != 1 {
				t.Errorf("decoded %+v", p)
			}
		})
	}
}

func TestDecodeConfidenceDecreasesWithEachTier(t *testing.T) {
	var p payload
	direct := Decode(`{"name":"a"}`, &p)
	brace := Decode(`x {"name":"a"} y`, &p)
	if direct.Confidence <= brace.Confidence {
		t.Errorf("direct confidence %v should exceed brace confidence %v", direct.Confidence, brace.Confidence)
	}
}

func TestDecodeFailure(t *testing.T) {
	for _, raw := range []string{"", "no json here", "{ broken", `{"name": }`} {
		var p payload
		res := Decode(raw, &p)
		if res.OK() {
			t.Errorf("Decode(%q) should fail", raw)
		}
		if !errors.Is(res.Err, ErrNoJSON) {
			t.Errorf("Decode(%q) error = %v, want ErrNoJSON", raw, res.Err)
		}
		if res.Strategy != StrategyNone {
			t.Errorf("Decode(%q) strategy = %q", raw, res.Strategy)
		}
	}
}

func TestFirstObjectIgnoresBracesInStrings(t *testing.T) {
	got, ok := FirstObject(`prefix {"a":"}{","b":{"c":1}} suffix {"d":2}`)
	if !ok {
		t.Fatal("expected an object")
	}
	want := `{"a":"}{","b":{"c":1}}`
	if got != want {
		t.Errorf("FirstObject = %q, want %q", got, want)
	}
}

func TestNumberAcceptsQuotedValues(t *testing.T) {
	var v struct {
		A, B, C, D Number
	}
	if err := json.Unmarshal([]byte(`{"A":7.5,"B":"80","C":null,"D":""}`), &v); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if v.A != 7.5 || v.B != 80 || v.C != 0 || v.D != 0 {
		t.Errorf("got %+v", v)
	}
	if err := json.Unmarshal([]byte(`{"A":"high"}`), &v); err == nil {
		t.Error("expected error for non-numeric string")
	}
}
