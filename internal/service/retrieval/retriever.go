// Package retrieval answers "which passages ground this query" by
// embedding the query and running similarity search over the pre-built
// index.
package retrieval

import (
	"context"
	"fmt"

	"github.com/sandevgo/edabot/internal/core"
	"github.com/sandevgo/edabot/pkg/log"
)

const DefaultTopK = 50

type Retriever struct {
	embedder core.QueryEmbedder
	index    core.PassageIndex
	topK     int
}

func NewRetriever(embedder core.QueryEmbedder, index core.PassageIndex, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{
		embedder: embedder,
		index:    index,
		topK:     topK,
	}
}

// Search returns up to topK passages ordered by non-increasing score.
// Collaborator outages surface as errors; retrying is the caller's
// decision, not this component's.
func (r *Retriever) Search(ctx context.Context, query string) ([]core.Passage, error) {
	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	passages, err := r.index.SearchTopK(ctx, vector, r.topK)
	if err != nil {
		return nil, fmt.Errorf("index search failed: %w", err)
	}

	log.FromCtx(ctx).Debug().Int("passages", len(passages)).Msg("retrieval complete")
	return passages, nil
}
