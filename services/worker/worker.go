package worker

import (
	"context"
	"time"

	"github.com/google/uuid"

	"sjsage522/listingtracker/internal/crawler"
	"sjsage522/listingtracker/internal/dataset"
	"sjsage522/listingtracker/internal/listing"
	"sjsage522/listingtracker/internal/reconcile"
	"sjsage522/listingtracker/logger"
	apperrors "sjsage522/listingtracker/pkg/errors"
	"sjsage522/listingtracker/services/mirror"
	"sjsage522/listingtracker/services/publisher"
)

// Walker collects the scraped listings for one pass
type Walker interface {
	Walk(ctx context.Context, filter crawler.SearchFilter) (crawler.WalkResult, error)
}

// Reconciler merges a scrape into the previous dataset
type Reconciler interface {
	Reconcile(ctx context.Context, prior *listing.Dataset, scraped []listing.Record) (*reconcile.Result, error)
}

// Options say where datasets live and what to search for
type Options struct {
	// DataPath is the previous dataset; a missing file is a first run
	DataPath string
	// DataDir switches to snapshot mode: newest .tsv in, dated .tsv out
	DataDir string
	// OutPath overrides where the merged dataset is written
	OutPath string

	Filter   crawler.SearchFilter
	Interval time.Duration
}

// Summary describes one finished pass
type Summary struct {
	RunID          string
	Input          string
	Output         string
	Pages          int
	FailedPages    int
	Scraped        int
	Duplicates     int
	New            int
	Untouched      int
	Flagged        int
	Transitions    int
	EnrichFailures int
	Total          int
	Elapsed        time.Duration
}

// Worker runs pipeline passes: load, walk, reconcile, write, mirror, publish
type Worker struct {
	walker     Walker
	reconciler Reconciler
	mirror     mirror.Mirror
	publisher  publisher.Publisher
	log        *logger.Logger
	opts       Options

	now   func() time.Time
	newID func() string
}

// NewWorker creates a new worker. mirror and pub may be nil.
func NewWorker(
	walker Walker,
	reconciler Reconciler,
	m mirror.Mirror,
	pub publisher.Publisher,
	log *logger.Logger,
	opts Options,
) *Worker {
	if pub == nil {
		pub = publisher.NopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Worker{
		walker:     walker,
		reconciler: reconciler,
		mirror:     m,
		publisher:  pub,
		log:        log,
		opts:       opts,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Start runs passes until ctx is done. With a zero interval it runs exactly
// one pass and returns its error.
func (w *Worker) Start(ctx context.Context) error {
	for {
		_, err := w.RunOnce(ctx)
		if w.opts.Interval <= 0 {
			return err
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.log.Error().Err(err).Msg("Run failed, waiting for next interval")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.opts.Interval):
		}
	}
}

// RunOnce performs a single pass. Nothing is written unless the walk and the
// reconciliation both complete.
func (w *Worker) RunOnce(ctx context.Context) (Summary, error) {
	start := w.now()
	sum := Summary{RunID: w.newID()}
	log := w.log.WithField("run_id", sum.RunID)

	input, err := w.inputPath()
	if err != nil {
		return sum, err
	}
	output, err := w.outputPath(input, start)
	if err != nil {
		return sum, err
	}
	sum.Input, sum.Output = input, output

	prior := listing.NewDataset()
	if input != "" {
		prior, err = dataset.Load(input, log)
		if err != nil {
			return sum, err
		}
	}
	log.Info().Str("input", input).Int("rows", prior.Len()).Msg("Loaded previous dataset")

	walked, err := w.walker.Walk(ctx, w.opts.Filter)
	if err != nil {
		return sum, err
	}
	sum.Pages = walked.Pages
	sum.FailedPages = walked.FailedPages
	sum.Scraped = len(walked.Records)
	sum.Duplicates = walked.Duplicates

	res, err := w.reconciler.Reconcile(ctx, prior, walked.Records)
	if err != nil {
		return sum, err
	}
	if err := ctx.Err(); err != nil {
		return sum, err
	}
	sum.New = res.New
	sum.Untouched = res.Untouched
	sum.Flagged = res.Flagged
	sum.Transitions = len(res.Transitions)
	sum.EnrichFailures = res.EnrichFailures
	sum.Total = res.Dataset.Len()

	if err := dataset.Save(output, res.Dataset); err != nil {
		return sum, err
	}
	log.Info().Str("output", output).Int("rows", sum.Total).Msg("Wrote dataset")

	if w.mirror != nil {
		if n, err := w.mirror.Sync(ctx, res.Dataset); err != nil {
			log.Error().Err(err).Int("rows", n).Msg("Postgres mirror failed")
		}
	}
	w.publish(ctx, log, sum.RunID, start, res)

	sum.Elapsed = w.now().Sub(start)
	log.Info().
		Int("pages", sum.Pages).
		Int("scraped", sum.Scraped).
		Int("new", sum.New).
		Int("untouched", sum.Untouched).
		Int("flagged", sum.Flagged).
		Dur("elapsed", sum.Elapsed).
		Msg("Run complete")
	return sum, nil
}

func (w *Worker) inputPath() (string, error) {
	if w.opts.DataDir == "" {
		return w.opts.DataPath, nil
	}
	return dataset.Latest(w.opts.DataDir)
}

func (w *Worker) outputPath(input string, now time.Time) (string, error) {
	switch {
	case w.opts.OutPath != "":
		return w.opts.OutPath, nil
	case w.opts.DataDir != "":
		return dataset.DatedPath(w.opts.DataDir, now), nil
	case input != "":
		return input, nil
	}
	return "", apperrors.NewConfiguration("no output dataset: set -data, -data-dir or -out", nil)
}

// publish emits one event per fresh record and per flag transition. Failures
// are logged; the dataset on disk is already final.
func (w *Worker) publish(ctx context.Context, log *logger.Logger, runID string, at time.Time, res *reconcile.Result) {
	send := func(topic string, rec listing.Record) {
		msg, err := publisher.NewListingEvent(topic, runID, at, rec).Marshal()
		if err != nil {
			log.Error().Err(err).Str("url", rec.ID).Msg("Failed to encode event")
			return
		}
		if err := w.publisher.Publish(ctx, topic, msg); err != nil {
			log.Error().Err(err).Str("topic", topic).Str("url", rec.ID).Msg("Failed to publish event")
		}
	}

	for _, rec := range res.Fresh {
		send(publisher.TopicNew, rec)
	}
	for _, tr := range res.Transitions {
		topic := publisher.TopicSold
		if tr.Status == reconcile.PolicyDelisted {
			topic = publisher.TopicDelisted
		}
		send(topic, tr.Record)
	}

	// Trim all streams after publishing
	if err := w.publisher.TrimStreams(ctx); err != nil {
		log.Error().Err(err).Msg("Stream trimming failed")
	}
}
