package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"BCVRates/internal/domain"
	"BCVRates/internal/ports"
)

// PipelineDeps wires all driven adapters into the scraping pipeline.
type PipelineDeps struct {
	Fetcher ports.PageFetcher
	Dates   ports.DateExtractor
	Rates   ports.RateExtractor
	Sink    ports.Sink
	Logger  *slog.Logger
}

// Pipeline runs fetch, extraction, assembly and delivery once.
type Pipeline struct {
	fetcher ports.PageFetcher
	dates   ports.DateExtractor
	rates   ports.RateExtractor
	sink    ports.Sink
	logger  *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		fetcher: deps.Fetcher,
		dates:   deps.Dates,
		rates:   deps.Rates,
		sink:    deps.Sink,
		logger:  logger,
	}
}

// Run scrapes url and pushes the resulting record to the sink. When the
// page cannot be fetched nothing is pushed.
func (p *Pipeline) Run(ctx context.Context, url string) (domain.OutputRecord, error) {
	if p.fetcher == nil || p.dates == nil || p.rates == nil || p.sink == nil {
		return domain.OutputRecord{}, fmt.Errorf("pipeline is not fully wired")
	}

	p.logger.Info("requesting page", "url", url)

	page, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return domain.OutputRecord{}, fmt.Errorf("fetch page: %w", err)
	}

	date := p.dates.ExtractDate(page.Body)
	rates := p.rates.ExtractRates(page.Body)

	record, err := Assemble(url, page.TrustMode, date, rates)
	if err != nil {
		return domain.OutputRecord{}, err
	}

	p.logger.Info("output produced",
		"ssl_mode", record.TrustMode,
		"fecha_valor_text", deref(record.DateText),
		"fecha_valor_iso", deref(record.DateISO),
		"rates", record.Rates,
	)

	if err := p.sink.Push(ctx, record); err != nil {
		return domain.OutputRecord{}, fmt.Errorf("push record: %w", err)
	}

	return record, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
