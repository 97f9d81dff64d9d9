package config

import (
	"reflect"
	"testing"
)

func TestExpandEnvFullMatchOnly(t *testing.T) {
	env := map[string]string{"API_KEY": "sk-test"}

	if got := ExpandEnv("${API_KEY}", env); got != "sk-test" {
		t.Errorf("full match: %v", got)
	}
	// Partial references are literal.
	if got := ExpandEnv("prefix-${API_KEY}", env); got != "prefix-${API_KEY}" {
		t.Errorf("partial match should stay literal: %v", got)
	}
	if got := ExpandEnv("plain", env); got != "plain" {
		t.Errorf("plain string: %v", got)
	}
}

func TestExpandEnvMissingVariable(t *testing.T) {
	if got := ExpandEnv("${UNSET_VARIABLE}", map[string]string{}); got != nil {
		t.Errorf("missing variable should expand to nil, got %v", got)
	}
}

func TestExpandEnvRecursion(t *testing.T) {
	env := map[string]string{"MODEL": "gpt-4o-mini", "KEY": "sk-1"}

	in := map[string]any{
		"model": "${MODEL}",
		"nested": map[string]any{
			"api_key": "${KEY}",
			"list":    []any{"${MODEL}", "literal", 42},
		},
		"count": 3,
	}

	want := map[string]any{
		"model": "gpt-4o-mini",
		"nested": map[string]any{
			"api_key": "sk-1",
			"list":    []any{"gpt-4o-mini", "literal", 42},
		},
		"count": 3,
	}

	if got := ExpandEnv(in, env); !reflect.DeepEqual(got, want) {
		t.Errorf("expanded: %#v", got)
	}
}

func TestExpandEnvDoesNotMutateInput(t *testing.T) {
	in := map[string]any{"model": "${MODEL}"}
	ExpandEnv(in, map[string]string{"MODEL": "x"})
	if in["model"] != "${MODEL}" {
		t.Error("input mapping was mutated")
	}
}
