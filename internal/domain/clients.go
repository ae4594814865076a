package domain

import "context"

// CompletionRequest is one prompt sent to a completion service.
type CompletionRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// CompletionClient sends prompts to a large-language-model completion service.
// Implementations report failures as *Error with KindAuthenticationFailed,
// KindUnavailable or KindTimeout.
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Retriever returns evidence ordered by descending similarity.
type Retriever interface {
	Search(ctx context.Context, query string, opts SearchOptions) ([]EvidenceItem, error)
}

// Transcriber turns a video URL into a transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, rawURL string) (*Transcript, error)
}

type PaperStore interface {
	Search(ctx context.Context, embedding []float32, opts SearchOptions) ([]EvidenceItem, error)
	InsertChunks(ctx context.Context, chunks []PaperChunk) error
	Stats(ctx context.Context) (*CorpusStats, error)
	Ping(ctx context.Context) error
}
