package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"BCVRates/internal/config"
	"BCVRates/internal/domain"
	"BCVRates/internal/infrastructure/fetcher"
	"BCVRates/internal/infrastructure/parser"
	"BCVRates/internal/infrastructure/sink"
	"BCVRates/internal/logging"
	"BCVRates/internal/ports"
	"BCVRates/internal/usecase"
)

// Application owns one scraping run: it runs the pipeline and always
// releases the sink, flushing pending output. The sink is only opened once
// a record is ready, so a failed fetch leaves no output file behind.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	stdout io.Writer
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	return &Application{cfg: cfg, logger: baseLogger, stdout: os.Stdout}
}

// Run performs a single scrape and delivers the record.
func (a *Application) Run(ctx context.Context) (err error) {
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	roots, err := fetcher.LoadRootCAs(a.cfg.Source.CABundle)
	if err != nil {
		return err
	}

	out := &lazySink{open: a.openSink}
	defer func() {
		if closeErr := out.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close sink: %w", closeErr))
		}
	}()

	extractor := parser.NewBCVExtractor(a.logger.With("component", "parser"))
	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Fetcher: fetcher.New(fetcher.Options{
			Timeout: a.cfg.Source.Timeout,
			Headers: a.cfg.Source.Headers(),
			RootCAs: roots,
		}, a.logger.With("component", "fetcher")),
		Dates:  extractor,
		Rates:  extractor,
		Sink:   out,
		Logger: a.logger.With("component", "pipeline"),
	})

	_, err = pipeline.Run(ctx, a.cfg.Source.URL)
	return err
}

func (a *Application) openSink(ctx context.Context) (ports.Sink, error) {
	switch a.cfg.Output.Sink {
	case config.SinkJSONL:
		return sink.OpenJSONL(a.cfg.Output.Path)
	case config.SinkSQLite:
		return sink.OpenSQLite(ctx, a.cfg.Output.Path)
	default:
		return sink.NewStdout(a.stdout), nil
	}
}

// lazySink opens the configured sink on the first Push.
type lazySink struct {
	open func(context.Context) (ports.Sink, error)
	sink ports.Sink
}

func (l *lazySink) Push(ctx context.Context, record domain.OutputRecord) error {
	if l.sink == nil {
		opened, err := l.open(ctx)
		if err != nil {
			return err
		}
		l.sink = opened
	}
	return l.sink.Push(ctx, record)
}

func (l *lazySink) Close() error {
	if l.sink == nil {
		return nil
	}
	return l.sink.Close()
}
