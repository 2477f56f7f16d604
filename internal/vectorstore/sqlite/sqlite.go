// Package sqlite is a file-backed vector store. Embeddings are kept as JSON
// arrays and searched by brute force, which suits the few hundred offers a
// session accumulates.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"pricecompare/internal/domain"
	"pricecompare/internal/vectorstore"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	document   TEXT NOT NULL,
	embedding  TEXT NOT NULL,
	metadata   TEXT NOT NULL,
	PRIMARY KEY (collection, id)
)`

// Storage keeps one collection inside a SQLite database.
type Storage struct {
	db         *sql.DB
	collection string
}

// Open opens (creating if needed) the database at path. Use ":memory:" for tests.
func Open(path, collection string) (*Storage, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// a single connection keeps ":memory:" databases shared across calls
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Storage{db: db, collection: collection}, nil
}

func (s *Storage) Close() error { return s.db.Close() }

func (s *Storage) Add(ctx context.Context, docs []domain.IndexedDocument) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO documents (collection, id, document, embedding, metadata)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET
			document = excluded.document,
			embedding = excluded.embedding,
			metadata = excluded.metadata`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, d := range docs {
		if d.ID == "" {
			return errors.New("document id is required")
		}
		emb, err := json.Marshal(d.Embedding)
		if err != nil {
			return err
		}
		meta, err := json.Marshal(d.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata for %s: %w", d.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, s.collection, d.ID, d.Text, string(emb), string(meta)); err != nil {
			return fmt.Errorf("insert %s: %w", d.ID, err)
		}
	}
	return tx.Commit()
}

func (s *Storage) Query(ctx context.Context, embedding []float64, k int) ([]vectorstore.Hit, error) {
	if k <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document, embedding, metadata FROM documents WHERE collection = ? ORDER BY rowid`, s.collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var docs []domain.IndexedDocument
	for rows.Next() {
		var (
			d         domain.IndexedDocument
			emb, meta string
		)
		if err := rows.Scan(&d.ID, &d.Text, &emb, &meta); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(emb), &d.Embedding); err != nil {
			return nil, fmt.Errorf("decode embedding for %s: %w", d.ID, err)
		}
		if err := json.Unmarshal([]byte(meta), &d.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata for %s: %w", d.ID, err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return vectorstore.Nearest(docs, embedding, k), nil
}

func (s *Storage) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE collection = ?`, s.collection).Scan(&n)
	return n, err
}

func (s *Storage) DeleteCollection(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = ?`, s.collection)
	return err
}
