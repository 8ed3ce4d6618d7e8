package embedding

import "context"

// Embedder converts text into numeric vector representations.
// Implementations may require a preparation phase over the corpus before
// the first Encode call.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	// Encode returns one vector per input text, in input order.
	Encode(ctx context.Context, texts []string) ([][]float64, error)
}
