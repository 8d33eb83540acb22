package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/sandevgo/edabot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	return f.vector, f.err
}

type fakeIndex struct {
	passages []core.Passage
	err      error
	gotK     int
}

func (f *fakeIndex) SearchTopK(ctx context.Context, vector []float32, k int) ([]core.Passage, error) {
	f.gotK = k
	return f.passages, f.err
}

func TestRetriever_Search(t *testing.T) {
	passages := []core.Passage{
		{Content: "rice harvest 2023", Score: 0.92},
		{Content: "rice harvest 2022", Score: 0.88},
		{Content: "corn harvest 2023", Score: 0.61},
	}

	embedder := &fakeEmbedder{vector: []float32{1, 0}}
	index := &fakeIndex{passages: passages}
	r := NewRetriever(embedder, index, 50)

	got, err := r.Search(context.Background(), "rice harvest")
	require.NoError(t, err)
	assert.Equal(t, passages, got)
	assert.Equal(t, 50, index.gotK)

	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score, "scores must be non-increasing")
	}
}

func TestRetriever_EmbedFailure(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("quota exceeded")}
	r := NewRetriever(embedder, &fakeIndex{}, 50)

	_, err := r.Search(context.Background(), "anything")
	require.Error(t, err)
	assert.Equal(t, 1, embedder.calls, "no internal retry")
}

func TestRetriever_IndexFailure(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{1}}
	index := &fakeIndex{err: errors.New("disk gone")}
	r := NewRetriever(embedder, index, 50)

	_, err := r.Search(context.Background(), "anything")
	require.Error(t, err)
}

func TestRetriever_DefaultTopK(t *testing.T) {
	index := &fakeIndex{}
	r := NewRetriever(&fakeEmbedder{vector: []float32{1}}, index, 0)

	_, err := r.Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, DefaultTopK, index.gotK)
}
