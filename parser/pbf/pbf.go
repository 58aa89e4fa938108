/*
Package pbf reads nodes and ways from OSM PBF files.

The decoding is done by github.com/omniscale/go-osm/parser/pbf. This
package converts the decoded elements into records with the verbatim string
attributes that the shaper expects.
*/
package pbf

import (
	"context"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/omniscale/go-osm"
	"github.com/omniscale/go-osm/parser/pbf"
	"github.com/omniscale/osmtables/element"
	"github.com/omniscale/osmtables/logging"

	"github.com/pkg/errors"
)

var log = logging.NewLogger("pbf")

// Parse sends all nodes and ways from r to records and closes records
// afterwards. Relations are ignored. The order of nodes and ways depends
// on the concurrency of the block decoders.
func Parse(ctx context.Context, r io.Reader, records chan<- element.Record, concurrency int) error {
	defer close(records)

	nodes := make(chan []osm.Node, 4)
	ways := make(chan []osm.Way, 4)
	p := pbf.New(r, pbf.Config{
		IncludeMetadata: true,
		Nodes:           nodes,
		Ways:            ways,
		Concurrency:     concurrency,
	})

	header, err := p.Header()
	if err != nil {
		return errors.Wrap(err, "reading PBF header")
	}
	if header.Time.IsZero() {
		log.Debugf("PBF header without timestamp")
	} else {
		log.Debugf("PBF from %s", header.Time.UTC().Format(time.RFC3339))
	}

	parseErr := make(chan error, 1)
	go func() {
		parseErr <- p.Parse(ctx)
	}()

	canceled := false
	send := func(rec element.Record) {
		if canceled {
			return
		}
		select {
		case records <- rec:
		case <-ctx.Done():
			canceled = true
		}
	}

	for nodes != nil || ways != nil {
		select {
		case batch, ok := <-nodes:
			if !ok {
				nodes = nil
				continue
			}
			for i := range batch {
				send(element.NodeRecord(convertNode(&batch[i])))
			}
		case batch, ok := <-ways:
			if !ok {
				ways = nil
				continue
			}
			for i := range batch {
				send(element.WayRecord(convertWay(&batch[i])))
			}
		case err := <-parseErr:
			// go-osm keeps the channels open when a block fails to decode
			if err != nil && ctx.Err() == nil {
				return errors.Wrap(err, "parsing PBF")
			}
			parseErr = nil
		}
	}
	if parseErr != nil {
		if err := <-parseErr; err != nil && ctx.Err() == nil {
			return errors.Wrap(err, "parsing PBF")
		}
	}
	return ctx.Err()
}

func convertNode(n *osm.Node) *element.Node {
	return &element.Node{
		ID:   strconv.FormatInt(n.ID, 10),
		Meta: convertMeta(n.Metadata),
		Lat:  formatCoord(n.Lat),
		Long: formatCoord(n.Long),
		Tags: convertTags(n.Tags),
	}
}

func convertWay(w *osm.Way) *element.Way {
	way := &element.Way{
		ID:   strconv.FormatInt(w.ID, 10),
		Meta: convertMeta(w.Metadata),
		Tags: convertTags(w.Tags),
	}
	if len(w.Refs) > 0 {
		way.Refs = make([]string, len(w.Refs))
		for i, ref := range w.Refs {
			way.Refs[i] = strconv.FormatInt(ref, 10)
		}
	}
	return way
}

func convertMeta(m *osm.Metadata) element.Meta {
	if m == nil {
		return element.Meta{}
	}
	meta := element.Meta{
		User:      m.UserName,
		UserID:    strconv.FormatInt(int64(m.UserID), 10),
		Version:   strconv.FormatInt(int64(m.Version), 10),
		Changeset: strconv.FormatInt(m.Changeset, 10),
	}
	if !m.Timestamp.IsZero() {
		meta.Timestamp = m.Timestamp.UTC().Format(time.RFC3339)
	}
	return meta
}

// convertTags returns the tags sorted by key.
func convertTags(tags osm.Tags) element.Tags {
	if len(tags) == 0 {
		return nil
	}
	result := make(element.Tags, 0, len(tags))
	for k, v := range tags {
		result = append(result, element.Tag{Key: k, Value: v})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result
}

// formatCoord formats PBF coordinates with the 7 decimal places of the
// PBF granularity, without trailing zeros.
func formatCoord(v float64) string {
	s := strconv.FormatFloat(v, 'f', 7, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
