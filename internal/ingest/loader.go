package ingest

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cswnn/Capstone-Homefix2/internal/domain"
	"github.com/cswnn/Capstone-Homefix2/internal/embedding"
	"github.com/cswnn/Capstone-Homefix2/internal/observability"
	"github.com/cswnn/Capstone-Homefix2/internal/retrieval"
)

// KnowledgeBase is the loaded corpus together with its title index.
type KnowledgeBase struct {
	Records   []Record
	Index     *retrieval.FlatIndex
	Retriever *retrieval.Retriever
}

// Titles returns every record title in corpus order.
func (kb *KnowledgeBase) Titles() []string {
	titles := make([]string, len(kb.Records))
	for i, r := range kb.Records {
		titles[i] = r.Title
	}
	return titles
}

// Bodies returns every record body in corpus order.
func (kb *KnowledgeBase) Bodies() []string {
	bodies := make([]string, len(kb.Records))
	for i, r := range kb.Records {
		bodies[i] = r.Body
	}
	return bodies
}

// LoaderConfig configures Loader.
type LoaderConfig struct {
	Path      string
	BatchSize int
	Retrieval retrieval.Options
	// Progress, if set, is called after each embedded batch.
	Progress func(done, total int)
}

// Loader reads the corpus, embeds titles and builds the index.
type Loader struct {
	embedder embedding.Embedder
	logger   *observability.Logger
	cfg      LoaderConfig
}

// NewLoader creates a knowledge base loader.
func NewLoader(embedder embedding.Embedder, logger *observability.Logger, cfg LoaderConfig) *Loader {
	return &Loader{embedder: embedder, logger: logger, cfg: cfg}
}

// Load reads the corpus file and builds the knowledge base.
func (l *Loader) Load(ctx context.Context) (*KnowledgeBase, error) {
	data, err := os.ReadFile(l.cfg.Path)
	if err != nil {
		return nil, domain.ConfigError("read knowledge base", err)
	}
	return l.Build(ctx, string(data))
}

// Build parses content and indexes it.
func (l *Loader) Build(ctx context.Context, content string) (*KnowledgeBase, error) {
	start := time.Now()
	records := Parse(content)

	titles := make([]string, len(records))
	for i, r := range records {
		titles[i] = r.Title
	}

	vectors, err := embedding.EmbedBatch(ctx, l.embedder, titles, l.cfg.BatchSize, l.cfg.Progress)
	if err != nil {
		return nil, fmt.Errorf("embed titles: %w", err)
	}
	for _, v := range vectors {
		embedding.Normalize(v)
	}

	index, err := retrieval.NewFlatIndex(vectors)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	kb := &KnowledgeBase{Records: records, Index: index}
	kb.Retriever, err = retrieval.NewRetriever(index, kb.Bodies(), l.embedder, l.cfg.Retrieval)
	if err != nil {
		return nil, err
	}

	untitled := 0
	for _, t := range titles {
		if t == "" {
			untitled++
		}
	}

	l.logger.Info().
		Str("path", l.cfg.Path).
		Str("model", l.embedder.Model()).
		Int("records", len(records)).
		Int("untitled", untitled).
		Int("dimension", index.Dimension()).
		Dur("duration", time.Since(start)).
		Msg("knowledge base loaded")

	return kb, nil
}
