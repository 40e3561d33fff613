package providers

import "context"

type ProviderInfo struct {
	Name  string `json:"name"`
	Model string `json:"model"`
	Key   string `json:"key"`
}

type GenerateRequest struct {
	Operation string   `json:"operation"`
	Prompt    string   `json:"prompt"`
	Context   []string `json:"context"`
}

type GenerateResponse struct {
	Text string `json:"text"`
}

type EmbedRequest struct {
	Inputs    []string `json:"inputs"`
	Dimension int      `json:"dimension"`
}

// Candidate is a concept-term candidate supplied by the NER / noun-phrase
// collaborator.
type Candidate struct {
	Term     string `json:"term"`
	Category string `json:"category"`
}

type LLMProvider interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error)
}

type EmbeddingProvider interface {
	Embed(ctx context.Context, req EmbedRequest) ([][]float32, ProviderInfo, error)
}

// ConceptSource supplies concept-term candidates for a text body. When no
// source is configured the extractor switches to its degraded frequency
// fallback, which callers can observe on the analysis result.
type ConceptSource interface {
	Candidates(ctx context.Context, text string) ([]Candidate, error)
}
