package annotate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cognicore/labelforge/pkg/labelforge/internalerr"
)

// Handler pairs a task's parser with its builder.
type Handler struct {
	Parser  Parser
	Builder Builder
}

// handlers is the closed task table. Adding a task means adding one entry
// here (plus its Parser/Builder pair); no other code branches on task names.
var handlers = map[string]Handler{
	"ner":     {Parser: NERParser{}, Builder: NERBuilder{}},
	"textcat": {Parser: TextCatParser{}, Builder: TextCatBuilder{}},
}

// Lookup returns the handler for a task name.
func Lookup(task string) (Handler, error) {
	h, ok := handlers[task]
	if !ok {
		return Handler{}, fmt.Errorf("%w: %q (supported: %s)",
			internalerr.ErrUnsupportedTask, task, strings.Join(Tasks(), ", "))
	}
	return h, nil
}

// Tasks returns the supported task names, sorted.
func Tasks() []string {
	names := make([]string, 0, len(handlers))
	for name := range handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
