// Package prompt renders per-task prompt pairs from structured YAML specs.
//
// A spec describes what the model should produce (entity labels or
// categories, domain, tone, length, language, constraints, few-shot
// examples); the embedded templates turn it into the system/user pair the
// completion client consumes. Template lookup goes through a closed
// registry keyed by task name, mirroring the annotate registry.
package prompt

import (
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/labelforge/pkg/labelforge/config"
	"github.com/cognicore/labelforge/pkg/labelforge/internalerr"
)

// Spec is a structured prompt specification for one task.
type Spec interface {
	TaskName() string
}

// NERExample is a few-shot annotated sample.
type NERExample struct {
	Text        string `yaml:"text"`
	Explanation string `yaml:"explanation"`
}

// NERSpec drives NER prompt rendering. Entities is the label inventory the
// model is asked to annotate; at least one is required.
type NERSpec struct {
	Task        string       `yaml:"task"`
	Entities    []string     `yaml:"entities"`
	Domain      string       `yaml:"domain"`
	Tone        string       `yaml:"tone"`
	Length      string       `yaml:"length"`
	Language    string       `yaml:"language"`
	Temperature float64      `yaml:"temperature"`
	Constraints []string     `yaml:"constraints"`
	Examples    []NERExample `yaml:"examples"`
}

func (NERSpec) TaskName() string { return "ner" }

// Category names one classification target.
type Category struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// TextCatExample is a few-shot classified sample.
type TextCatExample struct {
	Text     string `yaml:"text"`
	Category string `yaml:"category"`
}

// TextCatSpec drives text-classification prompt rendering. At least two
// categories are required; a single category carries no signal.
type TextCatSpec struct {
	Task        string           `yaml:"task"`
	Categories  []Category       `yaml:"categories"`
	Domain      string           `yaml:"domain"`
	Tone        string           `yaml:"tone"`
	Length      string           `yaml:"length"`
	Language    string           `yaml:"language"`
	Temperature float64          `yaml:"temperature"`
	Constraints []string         `yaml:"constraints"`
	Examples    []TextCatExample `yaml:"examples"`
}

func (TextCatSpec) TaskName() string { return "textcat" }

var nerSpecSchema = jsonschema.MustCompileString("ner-spec.json", `{
	"type": "object",
	"additionalProperties": false,
	"required": ["task", "entities", "domain"],
	"properties": {
		"task":     {"const": "ner"},
		"entities": {"type": "array", "minItems": 1, "items": {"type": "string", "minLength": 1}},
		"domain":   {"type": "string", "minLength": 1},
		"tone":     {"type": "string"},
		"length":   {"type": "string"},
		"language": {"type": "string"},
		"temperature": {"type": "number", "minimum": 0, "maximum": 2},
		"constraints": {"type": "array", "items": {"type": "string"}},
		"examples": {
			"type": "array",
			"items": {
				"type": "object",
				"additionalProperties": false,
				"required": ["text"],
				"properties": {
					"text":        {"type": "string", "minLength": 1},
					"explanation": {"type": "string"}
				}
			}
		}
	}
}`)

var textcatSpecSchema = jsonschema.MustCompileString("textcat-spec.json", `{
	"type": "object",
	"additionalProperties": false,
	"required": ["task", "categories", "domain"],
	"properties": {
		"task": {"const": "textcat"},
		"categories": {
			"type": "array",
			"minItems": 2,
			"items": {
				"type": "object",
				"additionalProperties": false,
				"required": ["name"],
				"properties": {
					"name":        {"type": "string", "minLength": 1},
					"description": {"type": "string"}
				}
			}
		},
		"domain":   {"type": "string", "minLength": 1},
		"tone":     {"type": "string"},
		"length":   {"type": "string"},
		"language": {"type": "string"},
		"temperature": {"type": "number", "minimum": 0, "maximum": 2},
		"constraints": {"type": "array", "items": {"type": "string"}},
		"examples": {
			"type": "array",
			"items": {
				"type": "object",
				"additionalProperties": false,
				"required": ["text", "category"],
				"properties": {
					"text":     {"type": "string", "minLength": 1},
					"category": {"type": "string", "minLength": 1}
				}
			}
		}
	}
}`)

// LoadSpec reads a structured prompt spec, expanding ${NAME} references and
// validating against the task's schema. The task field in the file selects
// the spec shape.
func LoadSpec(path string, env map[string]string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	expanded := config.ExpandEnv(raw, env)

	task := peekTask(expanded)
	switch task {
	case "ner":
		var spec NERSpec
		if err := decodeSpec(path, expanded, nerSpecSchema, &spec); err != nil {
			return nil, err
		}
		spec.applyDefaults()
		return spec, nil
	case "textcat":
		var spec TextCatSpec
		if err := decodeSpec(path, expanded, textcatSpecSchema, &spec); err != nil {
			return nil, err
		}
		spec.applyDefaults()
		return spec, nil
	default:
		return nil, fmt.Errorf("%w: %q in %s (supported: ner, textcat)",
			internalerr.ErrUnsupportedTask, task, path)
	}
}

// HasTask reports whether a decoded YAML value carries a task field, which
// distinguishes a structured spec from a plain message-pair prompt file.
func HasTask(value any) bool {
	return peekTask(value) != ""
}

func peekTask(value any) string {
	m, ok := value.(map[string]any)
	if !ok {
		return ""
	}
	task, _ := m["task"].(string)
	return task
}

func decodeSpec(path string, value any, schema *jsonschema.Schema, out any) error {
	if err := schema.Validate(value); err != nil {
		return fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	buf, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	if err := yaml.Unmarshal(buf, out); err != nil {
		return fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	return nil
}

func (s *NERSpec) applyDefaults() {
	applyStyleDefaults(&s.Tone, &s.Length, &s.Language, &s.Temperature)
}

func (s *TextCatSpec) applyDefaults() {
	applyStyleDefaults(&s.Tone, &s.Length, &s.Language, &s.Temperature)
}

func applyStyleDefaults(tone, length, language *string, temperature *float64) {
	if *tone == "" {
		*tone = "neutral"
	}
	if *length == "" {
		*length = "2-3 sentences"
	}
	if *language == "" {
		*language = "en"
	}
	if *temperature == 0 {
		*temperature = 0.7
	}
}
