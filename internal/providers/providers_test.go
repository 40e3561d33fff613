package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseProviderList(t *testing.T) {
	refs := ParseProviderList("mock | openai:primary |ollama")
	require.Len(t, refs, 3)
	require.Equal(t, "mock", refs[0].Name)
	require.Equal(t, "openai", refs[1].Name)
	require.Equal(t, "primary", refs[1].KeyAlias)
	require.Equal(t, "ollama", refs[2].Name)

	refs = ParseProviderList("")
	require.Len(t, refs, 1)
	require.Equal(t, "mock", refs[0].Name)
}

func TestMockEmbedDeterministic(t *testing.T) {
	m := NewMockProvider(64)
	ctx := context.Background()

	a, _, err := m.Embed(ctx, EmbedRequest{Inputs: []string{"Mitochondria"}})
	require.NoError(t, err)
	b, _, err := m.Embed(ctx, EmbedRequest{Inputs: []string{"mitochondria"}})
	require.NoError(t, err)
	require.Len(t, a[0], 64)
	require.Equal(t, a[0], b[0], "case variants must embed identically")

	c, _, err := m.Embed(ctx, EmbedRequest{Inputs: []string{"photosynthesis"}})
	require.NoError(t, err)
	require.NotEqual(t, a[0], c[0])

	var norm float64
	for _, x := range a[0] {
		norm += float64(x) * float64(x)
	}
	require.InDelta(t, 1.0, norm, 1e-4, "embeddings must be unit length")
}

func TestCosineBounds(t *testing.T) {
	a := []float32{1, 0, 0}
	require.InDelta(t, 1.0, Cosine(a, a), 1e-6)
	require.InDelta(t, 0.0, Cosine(a, []float32{0, 1, 0}), 1e-6)
	// Opposed vectors clamp to zero rather than going negative.
	require.InDelta(t, 0.0, Cosine(a, []float32{-1, 0, 0}), 1e-6)
	require.Equal(t, 0.0, Cosine(a, []float32{0, 0}))
}

func TestHeuristicCandidates(t *testing.T) {
	h := NewHeuristicConceptSource()
	text := "Cellular respiration in the Krebs Cycle happens inside mitochondria. " +
		"All energy production depends on mitochondria and the energy gradient."
	cands, err := h.Candidates(context.Background(), text)
	require.NoError(t, err)

	terms := map[string]string{}
	for _, c := range cands {
		terms[c.Term] = c.Category
	}
	require.Equal(t, "ENTITY", terms["Krebs Cycle"])
	require.Equal(t, "TERM", terms["mitochondria"])
	require.Equal(t, "TERM", terms["energy"])
}

func TestManagerNoneConceptSource(t *testing.T) {
	m, err := NewManager("mock", "mock", "none", 128, zap.NewNop().Sugar())
	require.NoError(t, err)
	require.NotNil(t, m.LLM())
	require.NotNil(t, m.Embedder())
	require.Nil(t, m.Concepts())
}

func TestManagerUnknownProvider(t *testing.T) {
	_, err := NewManager("carrier-pigeon", "mock", "heuristic", 128, zap.NewNop().Sugar())
	require.Error(t, err)
}
