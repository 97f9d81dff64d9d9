package prompt

import (
	"embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/labelforge/pkg/labelforge/config"
	"github.com/cognicore/labelforge/pkg/labelforge/internalerr"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// templatePair names the system and user templates for one task. The map is
// closed: adding a task means adding template files and an entry here.
type templatePair struct {
	system string
	user   string
}

var taskTemplates = map[string]templatePair{
	"ner":     {system: "ner_system.tmpl", user: "ner_user.tmpl"},
	"textcat": {system: "textcat_system.tmpl", user: "textcat_user.tmpl"},
}

// Render executes the spec's template pair and returns the system and user
// prompt texts.
func Render(spec Spec) (system, user string, err error) {
	pair, ok := taskTemplates[spec.TaskName()]
	if !ok {
		return "", "", fmt.Errorf("%w: no templates for task %q",
			internalerr.ErrUnsupportedTask, spec.TaskName())
	}

	system, err = execute(pair.system, spec)
	if err != nil {
		return "", "", err
	}
	user, err = execute(pair.user, spec)
	if err != nil {
		return "", "", err
	}
	return system, user, nil
}

func execute(name string, spec Spec) (string, error) {
	var buf strings.Builder
	if err := templates.ExecuteTemplate(&buf, name, spec); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()) + "\n", nil
}

// LoadPair resolves a prompt file of either form into the final system/user
// pair. A file carrying a task field is a structured spec rendered through
// the task templates; anything else is the plain message-pair form.
func LoadPair(path string, env map[string]string) (system, user string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return "", "", fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}

	if HasTask(raw) {
		spec, err := LoadSpec(path, env)
		if err != nil {
			return "", "", err
		}
		return Render(spec)
	}

	cfg, err := config.LoadPrompt(path, env)
	if err != nil {
		return "", "", err
	}
	return cfg.System.Content, cfg.User.Content, nil
}
