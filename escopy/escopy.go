package escopy

import (
	"context"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"golang.org/x/sync/errgroup"

	"github.com/dataops-tools/escopy/config"
	"github.com/dataops-tools/escopy/log"
	"github.com/dataops-tools/escopy/metrics"
	"github.com/dataops-tools/escopy/pairs"
	"github.com/dataops-tools/escopy/util"
)

// Options control how the Copier reads and writes documents.
type Options struct {
	// BatchSize is the number of documents fetched per scroll page and
	// flushed per bulk request.
	BatchSize int

	// TotalFieldsLimit controls the destination's total-fields limit.
	// config.FieldLimitFromSource copies the source value, a positive
	// value is applied verbatim, and zero leaves the destination default.
	TotalFieldsLimit int

	// ScrollKeepAlive is the lease renewed on every scroll page fetch.
	ScrollKeepAlive time.Duration

	// Parallelism is the number of index pairs copied concurrently.
	Parallelism int
}

// Copier replicates indices from a source cluster to a target cluster.
type Copier struct {
	source  esapi.Transport
	target  esapi.Transport
	options Options
}

func New(source, target esapi.Transport, options Options) *Copier {
	if options.BatchSize <= 0 {
		options.BatchSize = config.DefaultBatchSize
	}

	if options.ScrollKeepAlive <= 0 {
		options.ScrollKeepAlive = config.DefaultScrollKeepAlive
	}

	if options.Parallelism <= 0 {
		options.Parallelism = 1
	}

	return &Copier{
		source:  source,
		target:  target,
		options: options,
	}
}

// Run copies every index pair and collects the outcomes. A failed pair never
// stops the remaining pairs.
func (c *Copier) Run(ctx context.Context, indexPairs []pairs.IndexMapping) *RunStats {
	stats := NewRunStats()

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(c.options.Parallelism)

	for _, pair := range indexPairs {
		grp.Go(func() error {
			stats.Record(c.CopyIndex(grpCtx, pair))

			return nil
		})
	}

	grp.Wait() //nolint:errcheck
	stats.Finish()

	return stats
}

// CopyIndex replicates a single index pair: schema first, then documents.
func (c *Copier) CopyIndex(ctx context.Context, pair pairs.IndexMapping) Outcome {
	lg := log.Ctx(ctx).With(log.Pair(pair.Source, pair.Target))
	ctx = lg.WithContext(ctx)

	lg.Infof("Copying index %s", pair)

	started := time.Now()
	outcome := Outcome{Pair: pair}
	outcome.Err = c.copyIndex(ctx, pair, &outcome)
	outcome.Elapsed = time.Since(started)

	if outcome.Err != nil {
		metrics.IncIndexCopyFailure()
		lg.Error(outcome.Err, "Index copy failed")

		if detail := RemoteDetail(outcome.Err); detail != "" {
			lg.Debugf("Remote response: %s", detail)
		}

		return outcome
	}

	metrics.IncIndexCopySuccess()
	lg.With(log.Count(outcome.Documents), log.Elapsed(outcome.Elapsed)).
		Infof("Copied index %s", pair)

	return outcome
}

func (c *Copier) copyIndex(
	ctx context.Context,
	pair pairs.IndexMapping,
	outcome *Outcome,
) error {
	_, err := c.transferSchema(ctx, pair.Source, pair.Target)
	if err != nil {
		return err
	}

	cursor, err := openCursor(ctx, c.source, pair.Source,
		c.options.BatchSize, c.options.ScrollKeepAlive)
	if err != nil {
		return err
	}

	// The scroll context is released even when the run context is already
	// canceled. The server would expire it anyway, but not for up to the
	// full keep-alive.
	defer func() {
		//nolint:errcheck
		util.WithTimeout(context.WithoutCancel(ctx), config.CloseTimeout,
			func(ctx context.Context) error {
				cursor.Close(ctx)

				return nil
			})
	}()

	loader := newBulkLoader(c.target, pair.Target)
	lg := log.Ctx(ctx)

	for {
		page, err := cursor.Next(ctx)
		if err != nil {
			return err
		}

		if len(page) == 0 {
			return nil
		}

		metrics.IncPagesRead()
		metrics.AddDocumentsRead(len(page))

		outcome.Documents += int64(len(page))

		flushed, err := loader.Flush(ctx, page)
		if err != nil {
			return err
		}

		outcome.Rejected += flushed.failed

		metrics.AddDocumentsIndexed(int(flushed.attempted - flushed.failed))
		metrics.AddDocumentsFailed(int(flushed.failed))

		lg.Debugf("Flushed %d documents (%d rejected), %d total",
			flushed.attempted, flushed.failed, outcome.Documents)
	}
}
