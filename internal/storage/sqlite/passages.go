package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"

	"github.com/sandevgo/edabot/internal/core"
	"github.com/sandevgo/edabot/pkg/log"
)

type PassagesRepo struct {
	db *sql.DB
}

func NewPassagesRepo(db *sql.DB) *PassagesRepo {
	return &PassagesRepo{db: db}
}

// SearchTopK scans the index and returns the k passages closest to the
// query vector by cosine similarity, non-increasing by score. Ties keep
// rowid order so results are stable within one index snapshot.
func (r *PassagesRepo) SearchTopK(ctx context.Context, vector []float32, k int) ([]core.Passage, error) {
	query := `SELECT id, content, embedding FROM passages ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query passages: %w", err)
	}
	defer rows.Close()

	type scored struct {
		id      int64
		passage core.Passage
	}

	var candidates []scored
	for rows.Next() {
		var id int64
		var content string
		var blob []byte
		if err := rows.Scan(&id, &content, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan passage: %w", err)
		}

		emb, err := deserializeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("passage %d: %w", id, err)
		}

		candidates = append(candidates, scored{
			id: id,
			passage: core.Passage{
				Content: content,
				Score:   cosineSimilarity(vector, emb),
			},
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].passage.Score > candidates[j].passage.Score
	})

	if k > len(candidates) {
		k = len(candidates)
	}

	results := make([]core.Passage, 0, k)
	for _, c := range candidates[:k] {
		results = append(results, c.passage)
	}

	log.FromCtx(ctx).Debug().Int("candidates", len(candidates)).Int("returned", len(results)).Msg("passage search complete")
	return results, nil
}

// AddPassage exists for the offline builder and for tests; the serving
// path never writes.
func (r *PassagesRepo) AddPassage(ctx context.Context, source, content string, embedding []float32) error {
	blob, err := serializeVector(embedding)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO passages (source, content, embedding) VALUES (?, ?, ?)`,
		source, content, blob,
	)
	if err != nil {
		return fmt.Errorf("failed to insert passage: %w", err)
	}
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
