// Package docpack persists an ordered document collection as a single
// sqlite artifact. The writer produces the file in one shot — one
// transaction against a temp file, renamed into place — so a partially
// written run never appears at the destination path. Readers reconstruct
// documents with byte-identical text and identical span/category data;
// tokens are re-derived, not stored, since the blank tokenizer is
// deterministic over the text.
package docpack

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"github.com/cognicore/labelforge/pkg/labelforge/doc"
	"github.com/cognicore/labelforge/pkg/labelforge/token"
)

// FormatVersion is stamped into every artifact's meta table.
const FormatVersion = "1"

const schema = `
CREATE TABLE meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE docs (
	ord INTEGER PRIMARY KEY,
	text TEXT NOT NULL
);

CREATE TABLE ents (
	doc_ord INTEGER NOT NULL,
	span_start INTEGER NOT NULL,
	span_end INTEGER NOT NULL,
	label TEXT NOT NULL,
	FOREIGN KEY(doc_ord) REFERENCES docs(ord) ON DELETE CASCADE
);

CREATE TABLE cats (
	doc_ord INTEGER NOT NULL,
	label TEXT NOT NULL,
	score REAL NOT NULL,
	UNIQUE(doc_ord, label),
	FOREIGN KEY(doc_ord) REFERENCES docs(ord) ON DELETE CASCADE
);

CREATE TABLE doc_meta (
	doc_ord INTEGER NOT NULL,
	key TEXT NOT NULL,
	value TEXT NOT NULL,
	UNIQUE(doc_ord, key),
	FOREIGN KEY(doc_ord) REFERENCES docs(ord) ON DELETE CASCADE
);
`

// Write persists the collection to path. meta may be nil; the format
// version is always recorded. The artifact appears atomically: it is built
// as path+".tmp" and renamed over the destination on success.
func Write(ctx context.Context, path string, docs []doc.Document, meta map[string]string) error {
	tmp := path + ".tmp"
	if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("docpack write: %w", err)
	}

	if err := writeFile(ctx, tmp, docs, meta); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("docpack write: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("docpack write: %w", err)
	}
	return nil
}

func writeFile(ctx context.Context, path string, docs []doc.Document, meta map[string]string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?)`, "format_version", FormatVersion); err != nil {
		return err
	}
	for key, value := range meta {
		if key == "format_version" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO meta (key, value) VALUES (?, ?)`, key, value); err != nil {
			return err
		}
	}

	for ord, d := range docs {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("doc %d: %w", ord, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO docs (ord, text) VALUES (?, ?)`, ord, d.Text); err != nil {
			return err
		}
		for _, ent := range d.Ents {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO ents (doc_ord, span_start, span_end, label) VALUES (?, ?, ?, ?)`,
				ord, ent.Start, ent.End, ent.Label); err != nil {
				return err
			}
		}
		for label, score := range d.Cats {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO cats (doc_ord, label, score) VALUES (?, ?, ?)`,
				ord, label, score); err != nil {
				return err
			}
		}
		for key, value := range d.Meta {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO doc_meta (doc_ord, key, value) VALUES (?, ?, ?)`,
				ord, key, value); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// Read loads the collection from path in its original order. When tok is
// non-nil each document's token sequence is rebuilt from its text.
func Read(ctx context.Context, path string, tok *token.Tokenizer) ([]doc.Document, map[string]string, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, fmt.Errorf("docpack read: %w", err)
	}
	defer db.Close()

	meta, err := readMeta(ctx, db)
	if err != nil {
		return nil, nil, fmt.Errorf("docpack read: %w", err)
	}
	if v := meta["format_version"]; v != FormatVersion {
		return nil, nil, fmt.Errorf("docpack read: unsupported format version %q", v)
	}

	docs, err := readDocs(ctx, db, tok)
	if err != nil {
		return nil, nil, fmt.Errorf("docpack read: %w", err)
	}
	return docs, meta, nil
}

func readMeta(ctx context.Context, db *sql.DB) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT key, value FROM meta`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		meta[key] = value
	}
	return meta, rows.Err()
}

func readDocs(ctx context.Context, db *sql.DB, tok *token.Tokenizer) ([]doc.Document, error) {
	rows, err := db.QueryContext(ctx, `SELECT ord, text FROM docs ORDER BY ord`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []doc.Document{}
	byOrd := map[int64]int{}
	for rows.Next() {
		var ord int64
		var text string
		if err := rows.Scan(&ord, &text); err != nil {
			return nil, err
		}
		d := doc.Document{Text: text}
		if tok != nil {
			d.Tokens = tok.Tokenize(text)
		}
		byOrd[ord] = len(docs)
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := loadEnts(ctx, db, docs, byOrd); err != nil {
		return nil, err
	}
	if err := loadCats(ctx, db, docs, byOrd); err != nil {
		return nil, err
	}
	if err := loadDocMeta(ctx, db, docs, byOrd); err != nil {
		return nil, err
	}
	return docs, nil
}

func loadEnts(ctx context.Context, db *sql.DB, docs []doc.Document, byOrd map[int64]int) error {
	rows, err := db.QueryContext(ctx,
		`SELECT doc_ord, span_start, span_end, label FROM ents ORDER BY doc_ord, span_start`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var ord int64
		var ent doc.Span
		if err := rows.Scan(&ord, &ent.Start, &ent.End, &ent.Label); err != nil {
			return err
		}
		idx, ok := byOrd[ord]
		if !ok {
			return fmt.Errorf("ent references unknown doc %d", ord)
		}
		docs[idx].Ents = append(docs[idx].Ents, ent)
	}
	return rows.Err()
}

func loadCats(ctx context.Context, db *sql.DB, docs []doc.Document, byOrd map[int64]int) error {
	rows, err := db.QueryContext(ctx, `SELECT doc_ord, label, score FROM cats`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var ord int64
		var label string
		var score float64
		if err := rows.Scan(&ord, &label, &score); err != nil {
			return err
		}
		idx, ok := byOrd[ord]
		if !ok {
			return fmt.Errorf("category references unknown doc %d", ord)
		}
		if docs[idx].Cats == nil {
			docs[idx].Cats = make(map[string]float64)
		}
		docs[idx].Cats[label] = score
	}
	return rows.Err()
}

func loadDocMeta(ctx context.Context, db *sql.DB, docs []doc.Document, byOrd map[int64]int) error {
	rows, err := db.QueryContext(ctx, `SELECT doc_ord, key, value FROM doc_meta`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var ord int64
		var key, value string
		if err := rows.Scan(&ord, &key, &value); err != nil {
			return err
		}
		idx, ok := byOrd[ord]
		if !ok {
			return fmt.Errorf("doc meta references unknown doc %d", ord)
		}
		if docs[idx].Meta == nil {
			docs[idx].Meta = make(map[string]string)
		}
		docs[idx].Meta[key] = value
	}
	return rows.Err()
}
