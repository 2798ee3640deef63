package ports

import "context"

// AudioConverter transcodes src into a canonical WAV at dst.
// The returned channel yields exactly one value and is then closed:
// nil once dst is fully written, or the engine error.
type AudioConverter interface {
	Convert(ctx context.Context, src, dst string) <-chan error
}
