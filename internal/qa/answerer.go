package qa

import "context"

// Answerer produces an extractive answer to a question given supporting
// context text.
type Answerer interface {
	Name() string
	Answer(ctx context.Context, question, contextText string) (string, error)
}
