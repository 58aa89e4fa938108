/*
Package writer shapes, audits and validates records and inserts the rows
into a database.RowWriter.

Records are processed concurrently but inserted in input order by a single
consumer. All rows of a record are inserted together: the node or way row
first, then the tag rows, then the way node rows in position order.
*/
package writer

import (
	"context"
	"runtime"

	"github.com/destel/rill"
	"github.com/pkg/errors"

	"github.com/omniscale/osmtables/audit"
	"github.com/omniscale/osmtables/database"
	"github.com/omniscale/osmtables/element"
	"github.com/omniscale/osmtables/logging"
	"github.com/omniscale/osmtables/shape"
	"github.com/omniscale/osmtables/stats"
	"github.com/omniscale/osmtables/validate"
)

var log = logging.NewLogger("writer")

type Options struct {
	// Concurrency of the shape/audit/validate workers. Defaults to NumCPU.
	Concurrency int
	// Audit enables the tag auditor of the shaper's mapping.
	Audit bool
	// Validate enables the row validation. Invalid rows abort the import.
	Validate bool
	// Stats receives the counts. Optional.
	Stats *stats.Statistics
}

type Writer struct {
	db        database.RowWriter
	shaper    *shape.Shaper
	auditor   *audit.Auditor
	validator *validate.Validator
	stats     *stats.Statistics
	opts      Options
}

func New(db database.RowWriter, shaper *shape.Shaper, opts Options) *Writer {
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.NumCPU()
	}
	w := &Writer{
		db:     db,
		shaper: shaper,
		stats:  opts.Stats,
		opts:   opts,
	}
	if opts.Audit {
		w.auditor = shaper.Mapping().Auditor
	}
	if opts.Validate {
		w.validator = validate.New()
	}
	return w
}

type result struct {
	shaped  element.Shaped
	skipped int
	dropped int
}

// process runs in the concurrent workers.
func (w *Writer) process(rec element.Record) (result, error) {
	shaped, err := w.shaper.Shape(rec)
	if err != nil {
		return result{}, err
	}
	r := result{shaped: shaped}

	var raw element.Tags
	if rec.Node != nil {
		raw = rec.Node.Tags
	} else {
		raw = rec.Way.Tags
	}
	r.skipped = len(raw) - len(shaped.Tags)

	if w.auditor != nil {
		r.dropped = w.auditor.Dropped(shaped.Tags)
		r.shaped = w.auditor.AuditShaped(shaped)
	}
	if w.validator != nil {
		if err := w.validator.Validate(r.shaped); err != nil {
			return result{}, err
		}
	}
	return r, nil
}

func (w *Writer) insert(r result) error {
	s := &r.shaped
	var err error
	switch {
	case s.Node != nil:
		err = w.db.Insert(element.NodesTable, s.Node.Values())
	case s.Way != nil:
		err = w.db.Insert(element.WaysTable, s.Way.Values())
	}
	if err != nil {
		return errors.Wrapf(err, "inserting %s %s", s.Kind(), s.ID())
	}

	table := s.TagsTable()
	for i := range s.Tags {
		if err := w.db.Insert(table, s.Tags[i].Values()); err != nil {
			return errors.Wrapf(err, "inserting tags of %s %s", s.Kind(), s.ID())
		}
	}
	for i := range s.WayNodes {
		if err := w.db.Insert(element.WayNodesTable, s.WayNodes[i].Values()); err != nil {
			return errors.Wrapf(err, "inserting nodes of way %s", s.ID())
		}
	}

	if w.stats != nil {
		if s.Node != nil {
			w.stats.AddNodes(1)
		} else {
			w.stats.AddWays(1)
			w.stats.AddWayNodes(len(s.WayNodes))
		}
		w.stats.AddTags(len(s.Tags))
		if r.skipped > 0 {
			w.stats.AddSkippedTags(r.skipped)
		}
		if r.dropped > 0 {
			w.stats.AddDroppedTags(r.dropped)
		}
	}
	return nil
}

// Run processes all records until records is closed. It returns the
// first error, or ctx.Err() when ctx is canceled. records is drained in
// the background after an error.
func (w *Writer) Run(ctx context.Context, records <-chan element.Record) error {
	log.Debugf("processing records with %d workers (audit: %v, validate: %v)",
		w.opts.Concurrency, w.opts.Audit, w.opts.Validate)

	in := rill.FromChan(records, nil)
	shaped := rill.OrderedMap(in, w.opts.Concurrency, w.process)
	err := rill.ForEach(shaped, 1, func(r result) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return w.insert(r)
	})
	if err != nil {
		return err
	}
	return ctx.Err()
}
