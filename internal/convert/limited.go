package convert

import (
	"context"
	"log"

	"golang.org/x/sync/semaphore"
)

// Limited bounds the number of conversions a backend runs at once.
type Limited struct {
	backend Converter
	sem     *semaphore.Weighted
}

// NewLimited wraps backend so that at most maxConcurrent conversions run at a time.
func NewLimited(backend Converter, maxConcurrent int64) *Limited {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Limited{
		backend: backend,
		sem:     semaphore.NewWeighted(maxConcurrent),
	}
}

// Convert waits for a free slot, honoring ctx, then delegates to the backend.
// DOCX output never touches the backend.
func (l *Limited) Convert(ctx context.Context, docx []byte, format Format) ([]byte, error) {
	if format == FormatDOCX {
		return docx, nil
	}

	if err := l.sem.Acquire(ctx, 1); err != nil {
		log.Printf("[CONVERT] Gave up waiting for a conversion slot: %v", err)
		return nil, err
	}
	defer l.sem.Release(1)

	return l.backend.Convert(ctx, docx, format)
}
