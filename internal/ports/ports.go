package ports

import (
	"context"

	"BCVRates/internal/domain"
)

// PageFetcher downloads the statistics page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (domain.FetchResult, error)
}

// DateExtractor finds the publication date in the page markup.
type DateExtractor interface {
	ExtractDate(markup string) domain.DateValue
}

// RateExtractor finds the published reference rates in the page markup.
type RateExtractor interface {
	ExtractRates(markup string) domain.RateTable
}

// Sink receives the final record of a run. Close flushes pending output.
type Sink interface {
	Push(ctx context.Context, record domain.OutputRecord) error
	Close() error
}
