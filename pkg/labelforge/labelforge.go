// Package labelforge orchestrates dataset generation: it asks a completion
// backend for annotated samples, parses the inline markup into documents and
// persists the collection as a single artifact.
package labelforge

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/labelforge/pkg/labelforge/annotate"
	"github.com/cognicore/labelforge/pkg/labelforge/doc"
	"github.com/cognicore/labelforge/pkg/labelforge/docpack"
	"github.com/cognicore/labelforge/pkg/labelforge/internalerr"
	"github.com/cognicore/labelforge/pkg/labelforge/token"
)

// Completer produces one assistant response for a system/user prompt pair.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// PromptPair is the resolved prompt content sent on every generation round.
type PromptPair struct {
	System string
	User   string
}

// Options configures a generation run.
type Options struct {
	// Task selects the annotation grammar: "ner" or "textcat".
	Task string
	// Samples is the number of generation rounds to request.
	Samples int
	// Prompt is sent unchanged on every round.
	Prompt PromptPair
	// Completer produces the raw annotated text.
	Completer Completer
	// Tokenizer segments document text. Defaults to the whitespace tokenizer.
	Tokenizer *token.Tokenizer
	// OutputPath is where the document collection artifact is written.
	OutputPath string
	// ContinueOnError skips rounds whose output cannot be parsed instead of
	// aborting the run.
	ContinueOnError bool

	// Logger receives per-round progress. Defaults to the standard logger.
	Logger *log.Logger
}

// Generator runs generation rounds for one task.
type Generator struct {
	opts    Options
	handler annotate.Handler
	entropy *ulid.MonotonicEntropy
}

// Summary reports what a run produced.
type Summary struct {
	RunID      string
	Task       string
	Requested  int
	Generated  int
	Skipped    int
	OutputPath string
}

// New validates options and resolves the task handler, so an unsupported
// task fails before any completion call is made.
func New(opts Options) (*Generator, error) {
	handler, err := annotate.Lookup(opts.Task)
	if err != nil {
		return nil, err
	}
	if opts.Completer == nil {
		return nil, fmt.Errorf("%w: completer required", internalerr.ErrInvalidInput)
	}
	if opts.Samples < 0 {
		return nil, fmt.Errorf("%w: samples must not be negative, got %d", internalerr.ErrInvalidInput, opts.Samples)
	}
	if opts.OutputPath == "" {
		return nil, fmt.Errorf("%w: output path required", internalerr.ErrInvalidInput)
	}
	if opts.Tokenizer == nil {
		opts.Tokenizer = token.NewTokenizer()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Generator{
		opts:    opts,
		handler: handler,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}, nil
}

// Run executes the generation rounds sequentially and writes the artifact.
// Nothing is persisted when the run aborts or the context is cancelled.
func (g *Generator) Run(ctx context.Context) (Summary, error) {
	runID := ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy).String()
	summary := Summary{
		RunID:      runID,
		Task:       g.opts.Task,
		Requested:  g.opts.Samples,
		OutputPath: g.opts.OutputPath,
	}

	docs := make([]doc.Document, 0, g.opts.Samples)
	for round := 1; round <= g.opts.Samples; round++ {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		document, err := g.generateOne(ctx)
		if err != nil {
			if g.opts.ContinueOnError && !isAbort(err) {
				summary.Skipped++
				g.opts.Logger.Printf("round %d/%d skipped: %v", round, g.opts.Samples, err)
				continue
			}
			return summary, fmt.Errorf("round %d/%d: %w", round, g.opts.Samples, err)
		}

		docs = append(docs, document)
		summary.Generated++
		g.opts.Logger.Printf("round %d/%d ok (%d docs)", round, g.opts.Samples, len(docs))
	}

	meta := map[string]string{
		"run_id":     runID,
		"task":       g.opts.Task,
		"created_at": time.Now().UTC().Format(time.RFC3339),
	}
	if err := docpack.Write(ctx, g.opts.OutputPath, docs, meta); err != nil {
		return summary, err
	}
	return summary, nil
}

func (g *Generator) generateOne(ctx context.Context) (doc.Document, error) {
	raw, err := g.opts.Completer.Complete(ctx, g.opts.Prompt.System, g.opts.Prompt.User)
	if err != nil {
		return doc.Document{}, err
	}

	parsed, err := g.handler.Parser.Parse(raw)
	if err != nil {
		return doc.Document{}, err
	}
	return g.handler.Builder.Build(parsed, g.opts.Tokenizer)
}

// isAbort reports errors that end the run even under ContinueOnError:
// cancellation is the caller's decision, not a bad sample.
func isAbort(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
