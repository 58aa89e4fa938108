// Package sample writes every k-th node and way of an OSM file into a
// smaller OSM XML file.
package sample

import (
	"bufio"
	"context"
	"encoding/xml"
	"io"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/omniscale/osmtables/element"
	"github.com/omniscale/osmtables/logging"
	"github.com/omniscale/osmtables/reader"
)

var log = logging.NewLogger("sample")

const header = xml.Header + `<osm version="0.6" generator="osmtables">` + "\n"

type xmlTag struct {
	XMLName xml.Name `xml:"tag"`
	Key     string   `xml:"k,attr"`
	Value   string   `xml:"v,attr"`
}

type xmlNd struct {
	XMLName xml.Name `xml:"nd"`
	Ref     string   `xml:"ref,attr"`
}

type xmlMeta struct {
	User      string `xml:"user,attr,omitempty"`
	UserID    string `xml:"uid,attr,omitempty"`
	Version   string `xml:"version,attr,omitempty"`
	Changeset string `xml:"changeset,attr,omitempty"`
	Timestamp string `xml:"timestamp,attr,omitempty"`
}

type xmlNode struct {
	XMLName xml.Name `xml:"node"`
	ID      string   `xml:"id,attr"`
	Lat     string   `xml:"lat,attr,omitempty"`
	Lon     string   `xml:"lon,attr,omitempty"`
	xmlMeta
	Tags []xmlTag
}

type xmlWay struct {
	XMLName xml.Name `xml:"way"`
	ID      string   `xml:"id,attr"`
	xmlMeta
	Refs []xmlNd
	Tags []xmlTag
}

func convertMeta(m element.Meta) xmlMeta {
	return xmlMeta{
		User:      m.User,
		UserID:    m.UserID,
		Version:   m.Version,
		Changeset: m.Changeset,
		Timestamp: m.Timestamp,
	}
}

func convertTags(tags element.Tags) []xmlTag {
	result := make([]xmlTag, len(tags))
	for i, t := range tags {
		result[i] = xmlTag{Key: t.Key, Value: t.Value}
	}
	return result
}

// Writer writes the records 0, k, 2k, ... of all added records.
type Writer struct {
	w       io.Writer
	enc     *xml.Encoder
	every   int
	n       int
	written int
	started bool
	closed  bool
}

// New returns a Writer for every k-th record. every <= 1 keeps all
// records.
func New(w io.Writer, every int) *Writer {
	if every < 1 {
		every = 1
	}
	enc := xml.NewEncoder(w)
	enc.Indent("  ", "  ")
	return &Writer{w: w, enc: enc, every: every}
}

func (s *Writer) start() error {
	if s.started {
		return nil
	}
	s.started = true
	_, err := io.WriteString(s.w, header)
	return err
}

func (s *Writer) Add(rec element.Record) error {
	if s.closed {
		return errors.New("sample writer is closed")
	}
	if err := s.start(); err != nil {
		return err
	}
	n := s.n
	s.n++
	if n%s.every != 0 {
		return nil
	}

	var v interface{}
	switch rec.Kind() {
	case element.NodeKind:
		node := rec.Node
		v = xmlNode{ID: node.ID, Lat: node.Lat, Lon: node.Long, xmlMeta: convertMeta(node.Meta), Tags: convertTags(node.Tags)}
	case element.WayKind:
		way := rec.Way
		refs := make([]xmlNd, len(way.Refs))
		for i, ref := range way.Refs {
			refs[i] = xmlNd{Ref: ref}
		}
		v = xmlWay{ID: way.ID, xmlMeta: convertMeta(way.Meta), Refs: refs, Tags: convertTags(way.Tags)}
	default:
		return errors.New("record is neither node nor way")
	}
	if err := s.enc.Encode(v); err != nil {
		return errors.Wrapf(err, "encoding %s %s", rec.Kind(), rec.ID())
	}
	s.written++
	return nil
}

// Written returns the number of sampled records.
func (s *Writer) Written() int {
	return s.written
}

// Close writes the closing osm element. It does not close the
// underlying writer.
func (s *Writer) Close() error {
	if s.closed {
		return nil
	}
	if err := s.start(); err != nil {
		return err
	}
	s.closed = true
	footer := "</osm>\n"
	if s.written > 0 {
		footer = "\n" + footer
	}
	_, err := io.WriteString(s.w, footer)
	return err
}

// Run samples every k-th record of the file in into the new file out.
func Run(ctx context.Context, in, out string, every int, opts reader.Options) error {
	f, err := os.Create(out)
	if err != nil {
		return errors.Wrap(err, "creating sample file")
	}
	defer f.Close()
	buf := bufio.NewWriter(f)
	s := New(buf, every)

	records := make(chan element.Record, 256)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return reader.Read(ctx, in, records, opts)
	})
	g.Go(func() error {
		for rec := range records {
			if err := s.Add(rec); err != nil {
				// keep draining so the parser can return
				for range records {
				}
				return err
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if err := s.Close(); err != nil {
		return errors.Wrap(err, "writing sample file")
	}
	if err := buf.Flush(); err != nil {
		return errors.Wrap(err, "writing sample file")
	}
	log.Printf("wrote %d of %d records to %s", s.written, s.n, out)
	return f.Close()
}
