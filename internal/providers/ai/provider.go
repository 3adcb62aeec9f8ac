// Package ai wraps the external generation backends behind small interfaces
// so the workflow layer never touches vendor SDKs directly.
package ai

import "context"

// TextGenerator produces prose for a prompt. Implementations are expected to
// honor ctx cancellation.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, maxTokens int32) (string, error)
}

// ImageGenerator covers the image operations: synthesis from a prompt and the
// two edit operations that take an uploaded file.
type ImageGenerator interface {
	TextToImage(ctx context.Context, prompt string) ([]byte, error)
	RemoveBackground(ctx context.Context, imagePath string) ([]byte, error)
	RemoveObject(ctx context.Context, imagePath, object string) ([]byte, error)
}
