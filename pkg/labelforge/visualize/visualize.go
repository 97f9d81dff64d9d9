// Package visualize renders annotated documents as HTML and serves them for
// inspection in a browser: highlighted entity spans for NER datasets,
// per-document category score lists for classified datasets.
package visualize

import (
	"context"
	"fmt"
	"html"
	"io"
	"log"
	"net"
	"net/http"
	"sort"
	"strings"

	"github.com/cognicore/labelforge/pkg/labelforge/doc"
	"github.com/cognicore/labelforge/pkg/labelforge/docpack"
	"github.com/cognicore/labelforge/pkg/labelforge/internalerr"
)

// DefaultSamples is how many documents are shown when unspecified.
const DefaultSamples = 5

// DefaultPort is the serving port when unspecified.
const DefaultPort = 5002

const pageStyle = `body { font-family: Arial, sans-serif; padding: 20px; background: #f5f5f5; }
h1 { color: #333; }
.sample { margin: 20px 0; padding: 15px; border: 1px solid #ddd; background: white; border-radius: 5px; }
.sample h3 { margin-top: 0; color: #555; }
.text { font-size: 14px; line-height: 1.6; margin: 10px 0; }
mark.entity { background: #7aecec; padding: 2px 4px; border-radius: 3px; }
mark.entity .label { font-size: 10px; font-weight: bold; margin-left: 4px; vertical-align: middle; }
.positive { color: green; font-weight: bold; }
.negative { color: #999; }`

// RenderNER produces a page with each document's entity spans wrapped in
// highlighted marks.
func RenderNER(docs []doc.Document) string {
	var b strings.Builder
	writeHeader(&b, "Named Entity Samples")

	for i, d := range docs {
		fmt.Fprintf(&b, `<div class="sample"><h3>Sample %d</h3><div class="text">`, i+1)
		writeMarkedText(&b, d)
		b.WriteString("</div></div>")
	}

	writeFooter(&b)
	return b.String()
}

// writeMarkedText interleaves escaped text segments with marked entity
// spans. Ents are ordered and non-overlapping per doc.Document.Validate.
func writeMarkedText(b *strings.Builder, d doc.Document) {
	cursor := 0
	for _, ent := range d.Ents {
		b.WriteString(html.EscapeString(d.Text[cursor:ent.Start]))
		fmt.Fprintf(b, `<mark class="entity">%s<span class="label">%s</span></mark>`,
			html.EscapeString(d.Text[ent.Start:ent.End]), html.EscapeString(ent.Label))
		cursor = ent.End
	}
	b.WriteString(html.EscapeString(d.Text[cursor:]))
}

// RenderTextCat produces a page listing each document with its category
// scores, highest first. Scores above 0.5 are styled as positive.
func RenderTextCat(docs []doc.Document) string {
	var b strings.Builder
	writeHeader(&b, "Text Classification Samples")

	for i, d := range docs {
		fmt.Fprintf(&b, `<div class="sample"><h3>Sample %d</h3>`, i+1)
		fmt.Fprintf(&b, `<div class="text"><strong>Text:</strong> %s</div>`, html.EscapeString(d.Text))
		b.WriteString(`<div class="categories"><strong>Categories:</strong></div><ul>`)
		for _, label := range labelsByScore(d.Cats) {
			class := "negative"
			if d.Cats[label] > 0.5 {
				class = "positive"
			}
			fmt.Fprintf(&b, `<li class="%s">%s: %.2f</li>`, class, html.EscapeString(label), d.Cats[label])
		}
		b.WriteString("</ul></div>")
	}

	writeFooter(&b)
	return b.String()
}

func labelsByScore(cats map[string]float64) []string {
	labels := make([]string, 0, len(cats))
	for label := range cats {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if cats[labels[i]] != cats[labels[j]] {
			return cats[labels[i]] > cats[labels[j]]
		}
		return labels[i] < labels[j]
	})
	return labels
}

func writeHeader(b *strings.Builder, title string) {
	fmt.Fprintf(b, "<html><head><style>%s</style></head><body><h1>%s</h1>", pageStyle, title)
}

func writeFooter(b *strings.Builder) {
	b.WriteString("</body></html>")
}

// Options configures a visualization run.
type Options struct {
	// InputPath is the artifact to visualize.
	InputPath string
	// Task forces the page style. Empty means detect from the first
	// document's annotations.
	Task string
	// Samples caps how many documents are shown. Defaults to DefaultSamples.
	Samples int
	// Port is the listening port. Defaults to DefaultPort.
	Port int

	// Logger announces the serving address. Defaults to the standard logger.
	Logger *log.Logger
}

// Run loads the dataset, renders the first Samples documents and serves the
// page until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	page, err := BuildPage(ctx, &opts)
	if err != nil {
		return err
	}
	return Serve(ctx, opts, page)
}

// BuildPage loads the dataset and renders the HTML without serving it.
// Defaults are filled into opts.
func BuildPage(ctx context.Context, opts *Options) (string, error) {
	if opts.Samples <= 0 {
		opts.Samples = DefaultSamples
	}
	if opts.Port <= 0 {
		opts.Port = DefaultPort
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	docs, _, err := docpack.Read(ctx, opts.InputPath, nil)
	if err != nil {
		return "", err
	}

	task := opts.Task
	if task == "" {
		task, err = detectTask(docs)
		if err != nil {
			return "", err
		}
	}
	if len(docs) > opts.Samples {
		docs = docs[:opts.Samples]
	}

	switch task {
	case "ner":
		return RenderNER(docs), nil
	case "textcat":
		return RenderTextCat(docs), nil
	default:
		return "", fmt.Errorf("%w: %q (supported: ner, textcat)", internalerr.ErrUnsupportedTask, task)
	}
}

func detectTask(docs []doc.Document) (string, error) {
	if len(docs) == 0 {
		return "", fmt.Errorf("%w: dataset is empty, cannot detect task", internalerr.ErrInvalidInput)
	}
	if len(docs[0].Ents) > 0 {
		return "ner", nil
	}
	if len(docs[0].Cats) > 0 {
		return "textcat", nil
	}
	return "", fmt.Errorf("%w: first document has neither entities nor categories", internalerr.ErrInvalidInput)
}

// Serve answers every request with the rendered page until ctx is
// cancelled. Request logging is suppressed.
func Serve(ctx context.Context, opts Options, page string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	})

	server := &http.Server{
		Addr:     fmt.Sprintf(":%d", opts.Port),
		Handler:  mux,
		ErrorLog: log.New(io.Discard, "", 0),
	}

	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("visualize: %w", err)
	}

	if opts.Logger != nil {
		opts.Logger.Printf("serving visualization at http://localhost:%d", opts.Port)
	}

	done := make(chan error, 1)
	go func() { done <- server.Serve(listener) }()

	select {
	case <-ctx.Done():
		server.Shutdown(context.Background())
		return ctx.Err()
	case err := <-done:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
