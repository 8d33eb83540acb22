package core

import "context"

// Generator is the text-generation collaborator. The messages carry the
// fully assembled prompt: system policy, prior turns, retrieved context
// and the current query.
type Generator interface {
	Generate(ctx context.Context, messages []Turn) (Generation, error)
}

// QueryEmbedder turns free text into a query vector for similarity
// search against the passage index.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Retriever returns the most relevant index passages for a query,
// ordered by non-increasing score.
type Retriever interface {
	Search(ctx context.Context, query string) ([]Passage, error)
}
