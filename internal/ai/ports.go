package ai

import "context"

// ChatClient — один запрос к чат-модели.
type ChatClient interface {
	Complete(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

// TokenCounter считает токены текста для модели.
type TokenCounter interface {
	Count(model, text string) int
}

type ChatRequest struct {
	Model       string
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

type ChatResponse struct {
	Content      string
	FinishReason string
}
