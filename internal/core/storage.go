package core

import "context"

// PassageIndex is the pre-built document index. Population happens in an
// offline pipeline; this process only queries it.
type PassageIndex interface {
	SearchTopK(ctx context.Context, vector []float32, k int) ([]Passage, error)
}
