package analysis

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"studyforge/internal/cache"
	"studyforge/internal/models"
	"studyforge/internal/providers"
)

// stubEmbedder hands back fixed vectors per term so pair similarity is under
// test control.
type stubEmbedder struct {
	vectors map[string][]float32
}

func (s *stubEmbedder) Embed(ctx context.Context, req providers.EmbedRequest) ([][]float32, providers.ProviderInfo, error) {
	out := make([][]float32, 0, len(req.Inputs))
	for _, in := range req.Inputs {
		v, ok := s.vectors[strings.ToLower(in)]
		if !ok {
			v = []float32{0, 0, 1}
		}
		out = append(out, v)
	}
	return out, providers.ProviderInfo{Name: "stub"}, nil
}

type stubSource struct {
	cands []providers.Candidate
	err   error
}

func (s *stubSource) Candidates(ctx context.Context, text string) ([]providers.Candidate, error) {
	return s.cands, s.err
}

func sectionsOf(contents ...string) models.NormalizedDocument {
	doc := models.NormalizedDocument{DocumentID: "doc-test"}
	for i, c := range contents {
		doc.Sections = append(doc.Sections, models.Section{
			Type:     models.SectionParagraph,
			Content:  c,
			Position: models.Position{Page: 1, Order: i},
		})
	}
	return doc
}

func TestExtractSortedNonEmpty(t *testing.T) {
	doc := sectionsOf(
		"Photosynthesis is the process plants use to make glucose.",
		"Photosynthesis requires light. Glucose stores energy. Photosynthesis and glucose appear together often.",
	)
	src := &stubSource{cands: []providers.Candidate{
		{Term: "glucose", Category: "TERM"},
		{Term: "photosynthesis", Category: "TERM"},
	}}
	ex := NewExtractor(src, zap.NewNop().Sugar())

	concepts, fallback, err := ex.Extract(context.Background(), doc)
	require.NoError(t, err)
	require.False(t, fallback)
	require.NotEmpty(t, concepts)
	for i := 1; i < len(concepts); i++ {
		require.GreaterOrEqual(t, concepts[i-1].ImportanceScore, concepts[i].ImportanceScore)
	}
	for _, c := range concepts {
		require.Greater(t, c.ImportanceScore, 0.1)
		require.LessOrEqual(t, c.ImportanceScore, 1.0)
		require.NotEmpty(t, c.Definition)
	}
}

func TestExtractMultibyteCaseFolding(t *testing.T) {
	// U+212A (kelvin sign) lowercases to a plain one-byte "k", so the
	// lowercased body is shorter in bytes than the original.
	kelvins := strings.Repeat("K", 200)
	doc := sectionsOf("Mitochondria is defined as the powerhouse of the cell. " + kelvins + " Mitochondria supply energy. Mitochondria matter.")
	src := &stubSource{cands: []providers.Candidate{{Term: "mitochondria", Category: "TERM"}}}
	ex := NewExtractor(src, zap.NewNop().Sugar())

	concepts, fallback, err := ex.Extract(context.Background(), doc)
	require.NoError(t, err)
	require.False(t, fallback)
	require.Len(t, concepts, 1)
	require.Contains(t, concepts[0].Definition, "is defined as")

	// Term occurring after the multibyte run, where body and lowercase
	// offsets diverge the most.
	def := findDefinition(kelvins+" mitochondria is defined as the powerhouse of the cell.", "mitochondria")
	require.Contains(t, def, "is defined as")
}

func TestFindDefinitionCueWithinWindow(t *testing.T) {
	// The cue phrase follows the term with words in between.
	body := "Photosynthesis, which is defined as the conversion of light into chemical energy, powers plant growth."
	def := findDefinition(body, "photosynthesis")
	require.Contains(t, def, "is defined as")
	require.True(t, strings.HasPrefix(def, "Photosynthesis"))
}

func TestImportanceScoreBounds(t *testing.T) {
	heading := []string{"the mitochondria is the powerhouse"}
	cases := []struct {
		freq int
		text string
	}{
		{0, "nothing relevant here"},
		{1, "mitochondria at the very start of everything"},
		{1000, "mitochondria " + strings.Repeat("filler ", 50) + "mitochondria"},
	}
	for _, tc := range cases {
		score := importanceScore(tc.text, "mitochondria", tc.freq, heading)
		require.GreaterOrEqual(t, score, 0.0)
		require.LessOrEqual(t, score, 1.0)
	}
}

func TestFrequencyFallbackObservable(t *testing.T) {
	doc := sectionsOf("mitochondria mitochondria mitochondria produce energy energy inside cells cells cells")
	ex := NewExtractor(nil, zap.NewNop().Sugar())

	concepts, fallback, err := ex.Extract(context.Background(), doc)
	require.NoError(t, err)
	require.True(t, fallback)
	require.NotEmpty(t, concepts)

	terms := map[string]bool{}
	for _, c := range concepts {
		terms[c.Term] = true
	}
	require.True(t, terms["mitochondria"])
}

func TestSourceErrorFallsBack(t *testing.T) {
	doc := sectionsOf("mitochondria mitochondria produce energy energy every single day")
	src := &stubSource{err: fmt.Errorf("ner service unavailable")}
	ex := NewExtractor(src, zap.NewNop().Sugar())

	_, fallback, err := ex.Extract(context.Background(), doc)
	require.NoError(t, err)
	require.True(t, fallback)
}

func TestDedupeCandidates(t *testing.T) {
	out := dedupeCandidates([]providers.Candidate{
		{Term: "mitochondria", Category: "TERM"},
		{Term: "mitochondrias", Category: "TERM"},
		{Term: "glucose", Category: "TERM"},
	})
	require.Len(t, out, 2)
	require.Equal(t, "mitochondria", out[0].Term)
	require.Equal(t, "glucose", out[1].Term)
}

func TestClassifyNoSelfNoDuplicatePairs(t *testing.T) {
	doc := sectionsOf("mitochondria produce atp and glucose fuels respiration throughout the cell")
	concepts := []models.Concept{
		{Term: "mitochondria"}, {Term: "atp"}, {Term: "glucose"},
	}
	shared := []float32{1, 0, 0}
	emb := &stubEmbedder{vectors: map[string][]float32{
		"mitochondria": shared, "atp": shared, "glucose": shared,
	}}
	cl := NewClassifier(emb, zap.NewNop().Sugar())

	rels, err := cl.Classify(context.Background(), concepts, doc)
	require.NoError(t, err)
	require.Len(t, rels, 3)

	seen := map[string]bool{}
	for _, r := range rels {
		require.NotEqual(t, r.From, r.To)
		key := r.From + "|" + r.To
		reverse := r.To + "|" + r.From
		require.False(t, seen[key] || seen[reverse])
		seen[key] = true
		require.Greater(t, r.Strength, similarityCutoff)
	}
}

func TestClassifySkipsDissimilarPairs(t *testing.T) {
	doc := sectionsOf("alpha and beta are unrelated topics")
	concepts := []models.Concept{{Term: "alpha"}, {Term: "beta"}}
	emb := &stubEmbedder{vectors: map[string][]float32{
		"alpha": {1, 0, 0},
		"beta":  {0, 1, 0},
	}}
	cl := NewClassifier(emb, zap.NewNop().Sugar())

	rels, err := cl.Classify(context.Background(), concepts, doc)
	require.NoError(t, err)
	require.Empty(t, rels)
}

func TestDetectTypePriority(t *testing.T) {
	cases := []struct {
		text string
		from string
		to   string
		want models.RelationType
	}{
		{"smoking causes cancer in many patients", "smoking", "cancer", models.RelCauses},
		{"cancer is caused by smoking over many years", "smoking", "cancer", models.RelCauses},
		{"the nucleus is part of the cell", "nucleus", "cell", models.RelPartOf},
		{"the cell contains a nucleus", "nucleus", "cell", models.RelPartOf},
		{"a whale is a mammal of the ocean", "whale", "mammal", models.RelIsA},
		{"arteries contrasts with veins in direction of flow", "arteries", "veins", models.RelContrastsWith},
		{"enzymes speed reactions", "enzymes", "reactions", models.RelAssociatedWith},
		{"enzymes " + strings.Repeat("x ", 80) + "reactions", "enzymes", "reactions", models.RelRelatedTo},
	}
	for i, tc := range cases {
		got := detectType(tc.text, tc.from, tc.to)
		require.Equal(t, tc.want, got, "case %d: %s", i, tc.text)
	}

	// Absent terms default to related_to.
	require.Equal(t, models.RelRelatedTo, detectType("no mention of either", "alpha", "beta"))
}

func TestDetectTypeRequiresAnchoredTerms(t *testing.T) {
	// The causal phrase here belongs to stress and headaches, not to the
	// concept pair; proximity still applies.
	got := detectType("the nucleus also matters since stress causes headaches in the cell biology course", "nucleus", "cell")
	require.Equal(t, models.RelAssociatedWith, got)

	// "is an" is not a hyponymy pattern; only "X is a Y" and "X type of Y"
	// count, so this pair falls through to proximity.
	got = detectType("a whale is an enormous mammal of the ocean", "whale", "mammal")
	require.Equal(t, models.RelAssociatedWith, got)
}

func TestBuildConceptMapTopTwenty(t *testing.T) {
	concepts := make([]models.Concept, 30)
	for i := range concepts {
		concepts[i] = models.Concept{
			Term:            fmt.Sprintf("term-%02d", i),
			Definition:      strings.Repeat("d", 150),
			ImportanceScore: 1.0 - float64(i)*0.01,
		}
	}
	rels := []models.Relationship{
		{From: "term-00", To: "term-01", Type: models.RelRelatedTo},
		{From: "term-00", To: "term-25", Type: models.RelRelatedTo},
	}

	cm := BuildConceptMap(concepts, rels)
	require.Len(t, cm.Nodes, 20)
	require.Equal(t, 30, cm.TotalConcepts)
	require.Equal(t, 20, cm.TopConceptsCount)
	// Edge to term-25 is dropped because that endpoint missed the cut.
	require.Len(t, cm.Edges, 1)
	require.Equal(t, 1, cm.RelationshipsCount)
	require.Equal(t, 103, len(cm.Nodes[0].Definition))
	require.True(t, strings.HasSuffix(cm.Nodes[0].Definition, "..."))
}

func TestChunkSingleWhenUnderBudget(t *testing.T) {
	doc := sectionsOf("short first section", "short second section", "short third section")
	chunks := Chunk(doc, 1000)
	require.Len(t, chunks, 1)
	require.Contains(t, chunks[0].Content, "short first section")
	require.Contains(t, chunks[0].Content, "short third section")
	// The final flush carries the last section's position.
	require.Equal(t, 2, chunks[0].Metadata.Position.Order)
}

func TestChunkPerOversizeSection(t *testing.T) {
	big := strings.Repeat("word ", 1200)
	doc := sectionsOf(big, big, big)
	chunks := Chunk(doc, 1000)
	require.Len(t, chunks, 3)
	require.Equal(t, 0, chunks[0].Metadata.Position.Order)
	require.Equal(t, 1, chunks[1].Metadata.Position.Order)
	require.Equal(t, 2, chunks[2].Metadata.Position.Order)
}

func TestChunkEmptyDocument(t *testing.T) {
	require.Empty(t, Chunk(models.NormalizedDocument{}, 1000))
	require.Empty(t, Chunk(sectionsOf("   "), 1000))
}

func TestAnalyzeEndToEnd(t *testing.T) {
	doc := models.NormalizedDocument{
		DocumentID: "doc-mito",
		Sections: []models.Section{
			{Type: models.SectionParagraph, Content: "The mitochondria is the powerhouse of the cell.", Position: models.Position{Page: 1, Order: 0}},
			{Type: models.SectionParagraph, Content: "Mitochondria produce ATP through respiration.", Position: models.Position{Page: 1, Order: 1}},
		},
	}
	log := zap.NewNop().Sugar()
	shared := []float32{1, 0, 0}
	emb := &stubEmbedder{vectors: map[string][]float32{
		"mitochondria": shared, "atp": shared, "the": shared,
	}}
	store := cache.NewMemoryStore()
	an := NewAnalyzer(
		NewExtractor(providers.NewHeuristicConceptSource(), log),
		NewClassifier(emb, log),
		store, 1000, log,
	)

	res, hit, err := an.Analyze(context.Background(), doc)
	require.NoError(t, err)
	require.False(t, hit)
	require.False(t, res.Fallback)

	var mito *models.Concept
	for i := range res.Concepts {
		if strings.Contains(strings.ToLower(res.Concepts[i].Term), "mitochondria") {
			mito = &res.Concepts[i]
			break
		}
	}
	require.NotNil(t, mito, "expected a mitochondria concept")
	require.Greater(t, mito.ImportanceScore, 0.1)
	require.Equal(t, "1", mito.PageReference)

	for _, r := range res.Relationships {
		require.NotEqual(t, r.From, r.To)
	}

	require.Len(t, res.ContentChunks, 1)
	require.Equal(t, 1, res.ContentChunks[0].Metadata.Position.Order)

	require.NotEmpty(t, res.KnowledgeGraph.Nodes)
	require.Equal(t, len(res.Concepts), res.ConceptMap.TotalConcepts)

	// Second call is served from cache.
	res2, hit2, err := an.Analyze(context.Background(), doc)
	require.NoError(t, err)
	require.True(t, hit2)
	require.Equal(t, len(res.Concepts), len(res2.Concepts))
}
