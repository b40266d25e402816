package memory

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/habiliai/agenteat/errors"
)

type (
	Embedder interface {
		Embed(ctx context.Context, texts ...string) ([][]float32, error)
		// Dimension is the length of every vector returned by Embed.
		Dimension() int
	}

	GenkitEmbedder struct {
		genkit   *genkit.Genkit
		provider string
		name     string
	}

	// HashEmbedder maps lowercase word tokens into a fixed number of buckets.
	// It needs no model and is deterministic, so equal words always overlap.
	HashEmbedder struct {
		dim int
	}
)

const (
	OpenAIEmbeddingDimension = 1536
	HashEmbeddingDimension   = 256
)

var (
	_ Embedder = (*GenkitEmbedder)(nil)
	_ Embedder = (*HashEmbedder)(nil)
)

// NewGenkitEmbedder uses the embedder registered under model, written as
// "provider/name".
func NewGenkitEmbedder(g *genkit.Genkit, model string) (*GenkitEmbedder, error) {
	provider, name, ok := strings.Cut(model, "/")
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "embedding model must be provider/name, got %q", model)
	}
	if genkit.LookupEmbedder(g, provider, name) == nil {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "embedder %s is not registered", model)
	}

	return &GenkitEmbedder{
		genkit:   g,
		provider: provider,
		name:     name,
	}, nil
}

func (e *GenkitEmbedder) Embed(ctx context.Context, texts ...string) ([][]float32, error) {
	embedder := genkit.LookupEmbedder(e.genkit, e.provider, e.name)

	resp, err := ai.Embed(ctx, embedder, ai.WithTextDocs(texts...))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to embed %d texts", len(texts))
	}

	embeddings := make([][]float32, len(resp.Embeddings))
	for i, embedding := range resp.Embeddings {
		embeddings[i] = embedding.Embedding
	}

	return embeddings, nil
}

func (e *GenkitEmbedder) Dimension() int {
	return OpenAIEmbeddingDimension
}

func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = HashEmbeddingDimension
	}
	return &HashEmbedder{dim: dim}
}

func (e *HashEmbedder) Embed(_ context.Context, texts ...string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = e.embed(text)
	}
	return embeddings, nil
}

func (e *HashEmbedder) embed(text string) []float32 {
	vec := make([]float32, e.dim)
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, token := range tokens {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		vec[h.Sum32()%uint32(e.dim)] += 1
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}

func (e *HashEmbedder) Dimension() int {
	return e.dim
}
