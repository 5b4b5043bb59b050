package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"

	"github.com/kommunelab/lovassistent/internal/model"
)

type LawRepo struct {
	db *sqlx.DB
}

func NewLawRepo(db *sqlx.DB) *LawRepo {
	return &LawRepo{db: db}
}

// Insert stores one law record. A duplicate law_id surfaces as an error so
// the ingestion batch can log it and move on; the corpus is rebuilt from a
// truncate, so conflicts only happen on operator mistakes.
func (r *LawRepo) Insert(ctx context.Context, law *model.Law) error {
	blob, err := json.Marshal(law.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	const query = `
		INSERT INTO laws (law_id, text, metadata, embedding)
		VALUES ($1, $2, $3, $4)
	`
	_, err = r.db.ExecContext(ctx, query,
		law.LawID,
		law.Text,
		blob,
		pgvector.NewVector(law.Embedding),
	)
	return err
}

// SearchByEmbedding returns the k laws nearest to the query vector by
// cosine distance. Insertion id breaks ties so fixtures order stably.
func (r *LawRepo) SearchByEmbedding(ctx context.Context, embedding []float32, k int) ([]model.LawHit, error) {
	const query = `
		SELECT law_id, metadata
		FROM laws
		WHERE text IS NOT NULL
		ORDER BY embedding <=> $1, id
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, pgvector.NewVector(embedding), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []model.LawHit
	for rows.Next() {
		var hit model.LawHit
		var blob []byte
		if err := rows.Scan(&hit.LawID, &blob); err != nil {
			return nil, err
		}
		if len(blob) > 0 {
			if err := json.Unmarshal(blob, &hit.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata for %s: %w", hit.LawID, err)
			}
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

// ClearCorpus truncates both corpus tables, paragraphs first. There is no
// FK between them, the ordering just mirrors the logical dependency.
func ClearCorpus(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, `TRUNCATE TABLE paragraphs`); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `TRUNCATE TABLE laws`); err != nil {
		return err
	}
	return nil
}
