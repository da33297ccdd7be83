package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedEmbedder maps known texts to fixed vectors.
type fixedEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (f *fixedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, ok := f.vectors[t]
		if !ok {
			return nil, errors.New("unknown text " + t)
		}
		cp := make([]float32, len(v))
		copy(cp, v)
		out[i] = cp
	}
	return out, nil
}

func (f *fixedEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	out, err := f.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (f *fixedEmbedder) Model() string  { return "fixed" }
func (f *fixedEmbedder) Dimension() int { return 2 }

func TestBandFilter(t *testing.T) {
	docs := []string{"a", "b", "c", "d", "e"}

	tests := []struct {
		name string
		hits []Neighbor
		want []int
	}{
		{
			name: "keeps hits inside the band",
			hits: []Neighbor{{0, 0.10}, {1, 0.12}, {2, 0.30}},
			want: []int{0, 1},
		},
		{
			name: "boundary is inclusive",
			hits: []Neighbor{{3, 0.25}, {4, 0.30}},
			want: []int{3, 4},
		},
		{
			name: "single hit",
			hits: []Neighbor{{2, 1.4}},
			want: []int{2},
		},
		{
			name: "no hits",
			hits: nil,
			want: []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BandFilter(tt.hits, 0.05, docs)
			ids := make([]int, len(got))
			for i, m := range got {
				ids[i] = m.ID
				assert.Equal(t, docs[m.ID], m.Document)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestRetriever_Retrieve(t *testing.T) {
	emb := &fixedEmbedder{vectors: map[string][]float32{
		"query": {3, 4}, // normalized to (0.6, 0.8)
	}}
	idx, err := NewFlatIndex([][]float32{
		{0.6, 0.8},
		{0.8, 0.6},
		{0.62, 0.78},
		{0, 1},
	})
	require.NoError(t, err)

	r, err := NewRetriever(idx, []string{"exact", "far", "near", "farther"}, emb, Options{})
	require.NoError(t, err)

	docs, err := r.Documents(context.Background(), "query")
	require.NoError(t, err)
	assert.Equal(t, []string{"exact", "near"}, docs)
}

func TestRetriever_EmptyIndex(t *testing.T) {
	idx, err := NewFlatIndex(nil)
	require.NoError(t, err)

	r, err := NewRetriever(idx, nil, &fixedEmbedder{err: errors.New("must not be called")}, Options{})
	require.NoError(t, err)

	matches, err := r.Retrieve(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestRetriever_EmbedError(t *testing.T) {
	idx, err := NewFlatIndex([][]float32{{1, 0}})
	require.NoError(t, err)

	r, err := NewRetriever(idx, []string{"a"}, &fixedEmbedder{err: errors.New("down")}, Options{TopK: 1})
	require.NoError(t, err)

	_, err = r.Retrieve(context.Background(), "q")
	require.Error(t, err)
}

func TestNewRetriever_SizeMismatch(t *testing.T) {
	idx, err := NewFlatIndex([][]float32{{1, 0}})
	require.NoError(t, err)

	_, err = NewRetriever(idx, []string{"a", "b"}, &fixedEmbedder{}, Options{})
	require.Error(t, err)
}
