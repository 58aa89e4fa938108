/*
Package import_ provides the import sub command.

An import reads an OSM file, shapes all nodes and ways into rows and writes
them with the row writer of the connection option.
*/
package import_

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/omniscale/osmtables/config"
	"github.com/omniscale/osmtables/database"
	_ "github.com/omniscale/osmtables/database/csv"
	_ "github.com/omniscale/osmtables/database/postgres"
	"github.com/omniscale/osmtables/element"
	"github.com/omniscale/osmtables/logging"
	"github.com/omniscale/osmtables/mapping"
	"github.com/omniscale/osmtables/reader"
	"github.com/omniscale/osmtables/shape"
	"github.com/omniscale/osmtables/stats"
	"github.com/omniscale/osmtables/writer"
)

var log = logging.NewLogger("")

// Import runs a complete import. All rows are discarded (Abort) if any
// step fails.
func Import(ctx context.Context, opts config.Import) (*stats.ElementCounts, error) {
	tagmapping, err := mapping.FromFile(opts.MappingFile)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(opts.DatabaseConfig())
	if err != nil {
		return nil, err
	}
	defer db.Close()

	step := log.StartStep("Initializing tables")
	err = db.Init()
	log.StopStep(step)
	if err != nil {
		return nil, errors.Wrap(err, "initializing tables")
	}

	var progress *stats.Statistics
	if opts.Quiet {
		progress = stats.NewSilentReporter()
	} else {
		progress = stats.NewStatsReporter()
	}

	w := writer.New(db, shape.New(tagmapping), writer.Options{
		Concurrency: opts.Concurrency,
		Audit:       opts.Audit,
		Validate:    opts.Validate,
		Stats:       progress,
	})

	step = log.StartStep("Importing " + opts.Read)
	records := make(chan element.Record, 256)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return reader.Read(gctx, opts.Read, records, reader.Options{
			Progress:    opts.Progress,
			Concurrency: opts.Concurrency,
		})
	})
	g.Go(func() error {
		return w.Run(gctx, records)
	})
	err = g.Wait()
	counts := progress.Stop()
	log.StopStep(step)

	if err != nil {
		if abortErr := db.Abort(); abortErr != nil {
			log.Errorf("aborting import: %s", abortErr)
		}
		return counts, err
	}

	step = log.StartStep("Writing tables")
	err = db.Finish()
	log.StopStep(step)
	if err != nil {
		return counts, errors.Wrap(err, "finishing tables")
	}

	log.Printf("[%s] %s", database.ConnectionType(opts.Connection), counts)
	return counts, nil
}
