package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"studyforge/internal/models"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Hour))
	got, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), got)

	_, ok, err = m.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, m.Delete(ctx, "k"))
	_, ok, _ = m.Get(ctx, "k")
	require.False(t, ok)
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))
	_, ok, _ := m.Get(ctx, "k")
	require.True(t, ok)

	now = now.Add(time.Minute + time.Second)
	_, ok, _ = m.Get(ctx, "k")
	require.False(t, ok, "expired entries read as absent")

	// Zero TTL means no expiry.
	require.NoError(t, m.Set(ctx, "forever", []byte("v"), 0))
	now = now.Add(100 * time.Hour)
	_, ok, _ = m.Get(ctx, "forever")
	require.True(t, ok)
}

func TestMemoryStoreClearPattern(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	for _, key := range []string{
		"study_guide:doc-1:brief",
		"study_guide:doc-1:detailed",
		"study_guide:doc-2:brief",
		"parsed_doc:doc-1",
	} {
		require.NoError(t, m.Set(ctx, key, []byte("x"), 0))
	}

	n, err := m.ClearPattern(ctx, "study_guide:doc-1:*")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	_, ok, _ := m.Get(ctx, "study_guide:doc-2:brief")
	require.True(t, ok)
	_, ok, _ = m.Get(ctx, "parsed_doc:doc-1")
	require.True(t, ok)
}

func TestGetOrCompute(t *testing.T) {
	m := NewMemoryStore()
	log := zap.NewNop().Sugar()
	calls := 0
	compute := func(ctx context.Context) (map[string]int, error) {
		calls++
		return map[string]int{"n": 42}, nil
	}

	v, hit, err := GetOrCompute(context.Background(), m, log, "k", time.Hour, compute)
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, 42, v["n"])
	require.Equal(t, 1, calls)

	v, hit, err = GetOrCompute(context.Background(), m, log, "k", time.Hour, compute)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, 42, v["n"])
	require.Equal(t, 1, calls, "hit must short-circuit compute")
}

func TestGetOrComputeErrorNotCached(t *testing.T) {
	m := NewMemoryStore()
	log := zap.NewNop().Sugar()
	calls := 0

	_, _, err := GetOrCompute(context.Background(), m, log, "k", time.Hour, func(ctx context.Context) (int, error) {
		calls++
		return 0, fmt.Errorf("compute exploded")
	})
	require.Error(t, err)

	_, ok, _ := m.Get(context.Background(), "k")
	require.False(t, ok, "failed computations are never cached")

	_, _, err = GetOrCompute(context.Background(), m, log, "k", time.Hour, func(ctx context.Context) (int, error) {
		calls++
		return 7, nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestDocumentCacheKeys(t *testing.T) {
	require.Equal(t, "parsed_doc:d1", ParsedDocKey("d1"))
	require.Equal(t, "analyzed_content:d1", AnalysisKey("d1"))
	require.Equal(t, "study_guide:d1:brief", StudyGuideKey("d1", "brief"))
}

func TestDocumentCacheInvalidate(t *testing.T) {
	dc := NewDocumentCache(NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, dc.SetParsedDocument(ctx, models.NormalizedDocument{DocumentID: "d1"}))
	require.NoError(t, dc.SetAnalysis(ctx, "d1", models.AnalysisResult{Fallback: true}))
	require.NoError(t, dc.SetStudyGuide(ctx, "d1", models.StudyGuideContent{DetailLevel: "brief"}))
	require.NoError(t, dc.SetStudyGuide(ctx, "d1", models.StudyGuideContent{DetailLevel: "detailed"}))

	res, ok, err := dc.GetAnalysis(ctx, "d1")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, res.Fallback)

	n, err := dc.InvalidateDocument(ctx, "d1")
	require.NoError(t, err)
	require.Equal(t, 4, n)

	_, ok, _ = dc.GetParsedDocument(ctx, "d1")
	require.False(t, ok)
	_, ok, _ = dc.GetStudyGuide(ctx, "d1", "brief")
	require.False(t, ok)
}
