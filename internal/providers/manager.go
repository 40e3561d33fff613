package providers

import (
	"fmt"

	"go.uber.org/zap"
)

// Manager resolves provider lists from configuration into concrete
// implementations. The first entry of each list is used; remaining entries
// are kept as declared fallbacks for operators to rotate to.
type Manager struct {
	llm     LLMProvider
	embed   EmbeddingProvider
	concept ConceptSource
	log     *zap.SugaredLogger
}

// NewManager builds providers from pipe-separated specs. A spec of "none"
// for concepts yields a nil ConceptSource, which downstream analysis treats
// as a signal to run in degraded frequency-only mode.
func NewManager(llmSpec, embedSpec, conceptSpec string, embedDim int, log *zap.SugaredLogger) (*Manager, error) {
	m := &Manager{log: log}

	llmRefs := ParseProviderList(llmSpec)
	if len(llmRefs) == 0 {
		llmRefs = []ProviderRef{{Name: "mock"}}
	}
	llm, err := buildLLM(llmRefs[0], embedDim)
	if err != nil {
		return nil, err
	}
	m.llm = llm

	embedRefs := ParseProviderList(embedSpec)
	if len(embedRefs) == 0 {
		embedRefs = []ProviderRef{{Name: "mock"}}
	}
	emb, err := buildEmbedder(embedRefs[0], embedDim)
	if err != nil {
		return nil, err
	}
	m.embed = emb

	conceptRefs := ParseProviderList(conceptSpec)
	if len(conceptRefs) == 0 {
		conceptRefs = []ProviderRef{{Name: "heuristic"}}
	}
	src, err := buildConceptSource(conceptRefs[0])
	if err != nil {
		return nil, err
	}
	m.concept = src
	if src == nil {
		log.Warnw("concept source disabled, analysis will use frequency fallback")
	}

	return m, nil
}

func (m *Manager) LLM() LLMProvider            { return m.llm }
func (m *Manager) Embedder() EmbeddingProvider { return m.embed }
func (m *Manager) Concepts() ConceptSource     { return m.concept }

func buildLLM(ref ProviderRef, dim int) (LLMProvider, error) {
	switch ref.Name {
	case "mock":
		return NewMockProvider(dim), nil
	case "openai":
		return NewOpenAIProvider(ref.KeyAlias), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", ref.Name)
	}
}

func buildEmbedder(ref ProviderRef, dim int) (EmbeddingProvider, error) {
	switch ref.Name {
	case "mock":
		return NewMockProvider(dim), nil
	case "openai":
		return NewOpenAIProvider(ref.KeyAlias), nil
	case "ollama":
		return NewOllamaProvider(), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", ref.Name)
	}
}

func buildConceptSource(ref ProviderRef) (ConceptSource, error) {
	switch ref.Name {
	case "heuristic":
		return NewHeuristicConceptSource(), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown concept source %q", ref.Name)
	}
}
