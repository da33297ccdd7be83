package retrieval

import (
	"context"
	"fmt"

	"github.com/cswnn/Capstone-Homefix2/internal/embedding"
)

const (
	// DefaultTopK is the number of neighbours fetched before band filtering.
	DefaultTopK = 5
	// DefaultBand is the distance window kept above the best hit.
	DefaultBand float32 = 0.05
)

// Match is a document that survived band filtering.
type Match struct {
	ID       int
	Distance float32
	Document string
}

// Retriever embeds a query, searches the index and keeps every hit whose
// distance is within Band of the best one.
type Retriever struct {
	index     *FlatIndex
	documents []string
	embedder  embedding.Embedder
	topK      int
	band      float32
}

// Options tunes a Retriever. Zero values select the defaults.
type Options struct {
	TopK int
	Band float32
}

// NewRetriever creates a retriever. documents[i] is the payload for index ID i.
func NewRetriever(index *FlatIndex, documents []string, embedder embedding.Embedder, opts Options) (*Retriever, error) {
	if index.Len() != len(documents) {
		return nil, fmt.Errorf("index holds %d vectors but %d documents were given", index.Len(), len(documents))
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.Band <= 0 {
		opts.Band = DefaultBand
	}
	return &Retriever{
		index:     index,
		documents: documents,
		embedder:  embedder,
		topK:      opts.TopK,
		band:      opts.Band,
	}, nil
}

// Retrieve returns the band-filtered matches for query, nearest first.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]Match, error) {
	if r.index.Len() == 0 {
		return []Match{}, nil
	}

	vec, err := r.embedder.EmbedSingle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	vec = embedding.Normalize(vec)

	hits, err := r.index.Search(vec, r.topK)
	if err != nil {
		return nil, err
	}

	return BandFilter(hits, r.band, r.documents), nil
}

// Documents returns only the document text of Retrieve's matches.
func (r *Retriever) Documents(ctx context.Context, query string) ([]string, error) {
	matches, err := r.Retrieve(ctx, query)
	if err != nil {
		return nil, err
	}
	docs := make([]string, len(matches))
	for i, m := range matches {
		docs[i] = m.Document
	}
	return docs, nil
}

// BandFilter keeps hits with distance <= best+band. hits must be sorted
// nearest first.
func BandFilter(hits []Neighbor, band float32, documents []string) []Match {
	if len(hits) == 0 {
		return []Match{}
	}
	threshold := hits[0].Distance + band

	out := make([]Match, 0, len(hits))
	for _, h := range hits {
		if h.Distance > threshold {
			continue
		}
		out = append(out, Match{ID: h.ID, Distance: h.Distance, Document: documents[h.ID]})
	}
	return out
}
