// Package config loads the YAML configuration files the generator consumes:
// provider settings for the completion client and prompt content. Every file
// goes through the same pipeline: decode, expand ${NAME} environment
// references, validate against a fixed schema that rejects unknown fields,
// then map onto the typed struct.
package config

import (
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/labelforge/pkg/labelforge/internalerr"
)

// DefaultMaxTokens caps completion length when max_tokens is not configured.
const DefaultMaxTokens = 1024

// LLMConfig holds completion-provider settings. These are fixed at client
// construction and never varied per call.
type LLMConfig struct {
	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key"`
	APIBase   string `yaml:"api_base"`
	MaxTokens int    `yaml:"max_tokens"`
}

var llmSchema = jsonschema.MustCompileString("llm-config.json", `{
	"type": "object",
	"additionalProperties": false,
	"required": ["model"],
	"properties": {
		"model":      {"type": "string", "minLength": 1},
		"api_key":    {"type": ["string", "null"]},
		"api_base":   {"type": ["string", "null"]},
		"max_tokens": {"type": "integer", "minimum": 1}
	}
}`)

// LoadLLM reads, expands and validates an LLM configuration file.
func LoadLLM(path string, env map[string]string) (LLMConfig, error) {
	var cfg LLMConfig
	if err := loadValidated(path, env, llmSchema, &cfg); err != nil {
		return LLMConfig{}, err
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	return cfg, nil
}

// Message is a single prompt message.
type Message struct {
	Role    string `yaml:"role"`
	Content string `yaml:"content"`
}

// PromptConfig is the message-pair form of prompt content: a system message
// to set behavior and a user message carrying the task instruction.
type PromptConfig struct {
	System Message `yaml:"system"`
	User   Message `yaml:"user"`
}

var promptSchema = jsonschema.MustCompileString("prompt-config.json", `{
	"type": "object",
	"additionalProperties": false,
	"required": ["system", "user"],
	"properties": {
		"system": {"$ref": "#/$defs/message"},
		"user":   {"$ref": "#/$defs/message"}
	},
	"$defs": {
		"message": {
			"type": "object",
			"additionalProperties": false,
			"required": ["role", "content"],
			"properties": {
				"role":    {"enum": ["system", "user", "assistant"]},
				"content": {"type": "string", "minLength": 1}
			}
		}
	}
}`)

// LoadPrompt reads, expands and validates a message-pair prompt file.
func LoadPrompt(path string, env map[string]string) (PromptConfig, error) {
	var cfg PromptConfig
	if err := loadValidated(path, env, promptSchema, &cfg); err != nil {
		return PromptConfig{}, err
	}
	return cfg, nil
}

// loadValidated is the shared decode→expand→validate→map pipeline. The
// expanded value is validated first, so schema errors mention the resolved
// values the program would actually use.
func loadValidated(path string, env map[string]string, schema *jsonschema.Schema, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}

	expanded := ExpandEnv(raw, env)

	if err := schema.Validate(expanded); err != nil {
		return fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}

	// Round-trip through yaml to map the validated value onto the struct.
	buf, err := yaml.Marshal(expanded)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	if err := yaml.Unmarshal(buf, out); err != nil {
		return fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	return nil
}
