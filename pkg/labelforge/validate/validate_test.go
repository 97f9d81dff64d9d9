package validate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/labelforge/pkg/labelforge/doc"
	"github.com/cognicore/labelforge/pkg/labelforge/docpack"
	"github.com/cognicore/labelforge/pkg/labelforge/internalerr"
	"github.com/cognicore/labelforge/pkg/labelforge/token"
)

func writeDataset(t *testing.T, docs []doc.Document) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dummy.docpack")
	if err := docpack.Write(context.Background(), path, docs, nil); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return path
}

func nerDocs(t *testing.T, n int) []doc.Document {
	t.Helper()
	tok := token.NewTokenizer()
	docs := make([]doc.Document, 0, n)
	for i := 0; i < n; i++ {
		entity := fmt.Sprintf("TEST%d", i)
		text := fmt.Sprintf("Document %d with entity %s", i, entity)
		start := strings.Index(text, entity)
		docs = append(docs, doc.Document{
			Text:   text,
			Tokens: tok.Tokenize(text),
			Ents:   []doc.Span{{Start: start, End: start + len(entity), Label: "TEST"}},
		})
	}
	return docs
}

func TestRunNERReport(t *testing.T) {
	dataset := writeDataset(t, nerDocs(t, 5))
	outDir := filepath.Join(t.TempDir(), "reports")

	reportPath, err := Run(context.Background(), Options{DatasetPath: dataset, OutputDir: outDir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if filepath.Base(reportPath) != "dummy_report.json" {
		t.Errorf("report path: %s", reportPath)
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var report NERReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}

	if report.Dataset.NumDocuments != 5 {
		t.Errorf("num_documents: %d", report.Dataset.NumDocuments)
	}
	if report.Dataset.NumEntities != 5 {
		t.Errorf("num_entities: %d", report.Dataset.NumEntities)
	}
	if report.Entities.ByLabel["TEST"] != 5 {
		t.Errorf("by_label: %v", report.Entities.ByLabel)
	}
	// Every doc is "Document N with entity TESTN": 5 tokens, 1-token entity.
	if report.Documents.TokensPerDoc != (Stats{Min: 5, Max: 5, Mean: 5}) {
		t.Errorf("tokens_per_doc: %+v", report.Documents.TokensPerDoc)
	}
	if report.Entities.EntityLengthTokens != (Stats{Min: 1, Max: 1, Mean: 1}) {
		t.Errorf("entity_length_tokens: %+v", report.Entities.EntityLengthTokens)
	}
}

func TestRunTextCatReport(t *testing.T) {
	docs := []doc.Document{
		{Text: "My invoice is wrong.", Cats: map[string]float64{"BILLING": 1.0}},
		{Text: "The app crashes on start.", Cats: map[string]float64{"TECHNICAL": 1.0}},
		{Text: "Crashes again after update.", Cats: map[string]float64{"TECHNICAL": 1.0, "BILLING": 0.2}},
	}
	dataset := writeDataset(t, docs)

	reportPath, err := Run(context.Background(), Options{
		DatasetPath: dataset,
		OutputDir:   t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var report TextCatReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}

	if report.Dataset.NumDocuments != 3 {
		t.Errorf("num_documents: %d", report.Dataset.NumDocuments)
	}
	// The 0.2 score is below the positive threshold.
	if report.Labels.Distribution["BILLING"] != 1 || report.Labels.Distribution["TECHNICAL"] != 2 {
		t.Errorf("distribution: %v", report.Labels.Distribution)
	}
	if report.Labels.TotalUnique != 2 {
		t.Errorf("total_unique: %d", report.Labels.TotalUnique)
	}
}

func TestRunExplicitTaskOnEmptyDataset(t *testing.T) {
	dataset := writeDataset(t, nil)

	reportPath, err := Run(context.Background(), Options{
		DatasetPath: dataset,
		OutputDir:   t.TempDir(),
		Task:        "ner",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var report NERReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Dataset.NumDocuments != 0 || report.Dataset.NumEntities != 0 {
		t.Errorf("dataset: %+v", report.Dataset)
	}
	if report.Documents.TokensPerDoc != (Stats{}) {
		t.Errorf("empty stats: %+v", report.Documents.TokensPerDoc)
	}
}

func TestRunDetectFailures(t *testing.T) {
	empty := writeDataset(t, nil)
	if _, err := Run(context.Background(), Options{DatasetPath: empty, OutputDir: t.TempDir()}); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("empty dataset: expected ErrInvalidInput, got %v", err)
	}

	bare := writeDataset(t, []doc.Document{{Text: "nothing annotated here"}})
	if _, err := Run(context.Background(), Options{DatasetPath: bare, OutputDir: t.TempDir()}); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("unannotated dataset: expected ErrInvalidInput, got %v", err)
	}
}

func TestRunUnsupportedTask(t *testing.T) {
	dataset := writeDataset(t, nerDocs(t, 1))
	_, err := Run(context.Background(), Options{DatasetPath: dataset, OutputDir: t.TempDir(), Task: "parsing"})
	if !errors.Is(err, internalerr.ErrUnsupportedTask) {
		t.Fatalf("expected ErrUnsupportedTask, got %v", err)
	}
}
