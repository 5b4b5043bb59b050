package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/kommunelab/lovassistent/internal/model"
)

type ParagraphRepo struct {
	db *sqlx.DB
}

func NewParagraphRepo(db *sqlx.DB) *ParagraphRepo {
	return &ParagraphRepo{db: db}
}

// Insert stores one paragraph record. paragraph_id carries no uniqueness
// constraint; re-ingestion always starts from a truncate.
func (r *ParagraphRepo) Insert(ctx context.Context, p *model.Paragraph) error {
	blob, err := json.Marshal(p.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	const query = `
		INSERT INTO paragraphs (paragraph_id, law_id, paragraph_number, text, metadata, embedding)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.db.ExecContext(ctx, query,
		p.ParagraphID,
		p.LawID,
		p.ParagraphNumber,
		p.Text,
		blob,
		pgvector.NewVector(p.Embedding),
	)
	return err
}

// SearchByEmbedding returns the k paragraphs nearest to the query vector.
// A non-empty lawIDs set restricts the search to those laws; otherwise the
// whole corpus is searched.
func (r *ParagraphRepo) SearchByEmbedding(ctx context.Context, embedding []float32, lawIDs []string, k int) ([]model.ParagraphHit, error) {
	query := `
		SELECT paragraph_id, paragraph_number, text, metadata, law_id,
		       embedding <=> $1 AS distance
		FROM paragraphs
	`
	args := []interface{}{pgvector.NewVector(embedding)}
	if len(lawIDs) > 0 {
		query += ` WHERE law_id = ANY($2) ORDER BY embedding <=> $1, id LIMIT $3`
		args = append(args, pq.Array(lawIDs), k)
	} else {
		query += ` ORDER BY embedding <=> $1, id LIMIT $2`
		args = append(args, k)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []model.ParagraphHit
	for rows.Next() {
		var hit model.ParagraphHit
		var blob []byte
		if err := rows.Scan(&hit.ParagraphID, &hit.ParagraphNumber, &hit.Text, &blob, &hit.LawID, &hit.Distance); err != nil {
			return nil, err
		}
		if len(blob) > 0 {
			if err := json.Unmarshal(blob, &hit.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata for %s: %w", hit.ParagraphID, err)
			}
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}
