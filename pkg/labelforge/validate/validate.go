// Package validate computes quality statistics over a generated dataset and
// writes them as a JSON report: document and entity counts, token length
// distributions and label distributions.
package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/cognicore/labelforge/pkg/labelforge/doc"
	"github.com/cognicore/labelforge/pkg/labelforge/docpack"
	"github.com/cognicore/labelforge/pkg/labelforge/internalerr"
	"github.com/cognicore/labelforge/pkg/labelforge/token"
)

// Stats summarizes a list of counts.
type Stats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
}

// DatasetInfo identifies the dataset a report describes.
type DatasetInfo struct {
	Path         string `json:"path"`
	NumDocuments int    `json:"num_documents"`
	NumTokens    int    `json:"num_tokens"`
	NumEntities  int    `json:"num_entities,omitempty"`
}

// NERReport is the report shape for entity-annotated datasets.
type NERReport struct {
	Dataset   DatasetInfo `json:"dataset"`
	Documents struct {
		TokensPerDoc   Stats `json:"tokens_per_doc"`
		EntitiesPerDoc Stats `json:"entities_per_doc"`
	} `json:"documents"`
	Entities struct {
		Total              int            `json:"total"`
		ByLabel            map[string]int `json:"by_label"`
		EntityLengthTokens Stats          `json:"entity_length_tokens"`
	} `json:"entities"`
}

// TextCatReport is the report shape for classified datasets. A document
// counts toward a label when its score is above 0.5.
type TextCatReport struct {
	Dataset   DatasetInfo `json:"dataset"`
	Documents struct {
		TokensPerDoc Stats `json:"tokens_per_doc"`
	} `json:"documents"`
	Labels struct {
		TotalUnique  int            `json:"total_unique"`
		Distribution map[string]int `json:"distribution"`
	} `json:"labels"`
}

// Options configures a validation run.
type Options struct {
	// DatasetPath is the artifact to analyze.
	DatasetPath string
	// OutputDir receives the report; it is created if absent.
	OutputDir string
	// Task forces the report shape. Empty means detect from the first
	// document's annotations.
	Task string
	// Tokenizer segments document text. Defaults to the whitespace tokenizer.
	Tokenizer *token.Tokenizer
}

// Run analyzes the dataset and writes <stem>_report.json into the output
// directory, returning the report path.
func Run(ctx context.Context, opts Options) (string, error) {
	tok := opts.Tokenizer
	if tok == nil {
		tok = token.NewTokenizer()
	}

	docs, _, err := docpack.Read(ctx, opts.DatasetPath, tok)
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

	var report any
	switch task {
	case "ner":
		report = buildNERReport(opts.DatasetPath, docs)
	case "textcat":
		report = buildTextCatReport(opts.DatasetPath, docs)
	default:
		return "", fmt.Errorf("%w: %q (supported: ner, textcat)", internalerr.ErrUnsupportedTask, task)
	}

	return writeReport(opts.DatasetPath, opts.OutputDir, report)
}

// detectTask inspects the first document: entities mean NER, categories mean
// text classification.
func detectTask(docs []doc.Document) (string, error) {
	if len(docs) == 0 {
		return "", fmt.Errorf("%w: dataset is empty, cannot detect task", internalerr.ErrInvalidInput)
	}
	first := docs[0]
	if len(first.Ents) > 0 {
		return "ner", nil
	}
	if len(first.Cats) > 0 {
		return "textcat", nil
	}
	return "", fmt.Errorf("%w: first document has neither entities nor categories", internalerr.ErrInvalidInput)
}

func buildNERReport(path string, docs []doc.Document) NERReport {
	var docLengths, entsPerDoc, entityLengths []int
	byLabel := map[string]int{}
	totalTokens, totalEntities := 0, 0

	for _, d := range docs {
		docLengths = append(docLengths, len(d.Tokens))
		entsPerDoc = append(entsPerDoc, len(d.Ents))
		totalTokens += len(d.Tokens)
		totalEntities += len(d.Ents)

		for _, ent := range d.Ents {
			if first, last, ok := token.Align(d.Tokens, ent.Start, ent.End); ok {
				entityLengths = append(entityLengths, last-first+1)
			}
			byLabel[ent.Label]++
		}
	}

	var report NERReport
	report.Dataset = DatasetInfo{
		Path:         path,
		NumDocuments: len(docs),
		NumTokens:    totalTokens,
		NumEntities:  totalEntities,
	}
	report.Documents.TokensPerDoc = summarize(docLengths)
	report.Documents.EntitiesPerDoc = summarize(entsPerDoc)
	report.Entities.Total = totalEntities
	report.Entities.ByLabel = byLabel
	report.Entities.EntityLengthTokens = summarize(entityLengths)
	return report
}

func buildTextCatReport(path string, docs []doc.Document) TextCatReport {
	var docLengths []int
	distribution := map[string]int{}
	totalTokens := 0

	for _, d := range docs {
		docLengths = append(docLengths, len(d.Tokens))
		totalTokens += len(d.Tokens)
		for label, score := range d.Cats {
			if score > 0.5 {
				distribution[label]++
			}
		}
	}

	var report TextCatReport
	report.Dataset = DatasetInfo{
		Path:         path,
		NumDocuments: len(docs),
		NumTokens:    totalTokens,
	}
	report.Documents.TokensPerDoc = summarize(docLengths)
	report.Labels.TotalUnique = len(distribution)
	report.Labels.Distribution = distribution
	return report
}

// summarize computes min/max/mean over counts, with the mean rounded to two
// decimal places. An empty input yields all zeros.
func summarize(values []int) Stats {
	if len(values) == 0 {
		return Stats{}
	}
	min, max, sum := values[0], values[0], 0
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	mean := math.Round(float64(sum)/float64(len(values))*100) / 100
	return Stats{Min: min, Max: max, Mean: mean}
}

func writeReport(datasetPath, outputDir string, report any) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("validate: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(datasetPath), filepath.Ext(datasetPath))
	reportPath := filepath.Join(outputDir, stem+"_report.json")

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("validate: %w", err)
	}
	if err := os.WriteFile(reportPath, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("validate: %w", err)
	}
	return reportPath, nil
}
