/*
Package osmxml provides a stream based parser for OSM XML files (.osm).

Only nodes and ways are passed on. Relations and all other elements are
skipped.
*/
package osmxml

import (
	"context"
	"encoding/xml"
	"io"

	"github.com/omniscale/osmtables/element"

	"github.com/pkg/errors"
)

type Config struct {
	// Records specifies the destination for parsed nodes and ways.
	Records chan element.Record

	// KeepOpen specifies whether the Records channel should be kept open
	// after Parse(). By default, the channel is closed after Parse().
	KeepOpen bool
}

type Parser struct {
	reader io.Reader
	conf   Config
	err    error
}

// New creates a new parser for the provided input.
func New(r io.Reader, conf Config) *Parser {
	return &Parser{reader: r, conf: conf}
}

// Error returns the first error that occurred during Parse.
func (p *Parser) Error() error {
	return p.err
}

// Parse reads the complete input. It returns when the input is consumed,
// on the first decoding error or when ctx is canceled.
func (p *Parser) Parse(ctx context.Context) (err error) {
	if p.err != nil {
		return p.err
	}
	defer func() {
		if err != nil {
			p.err = err
		}
	}()
	if !p.conf.KeepOpen {
		defer close(p.conf.Records)
	}

	decoder := xml.NewDecoder(p.reader)
	decoder.Strict = true

	var node *element.Node
	var way *element.Way
	depth := 0

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			if depth > 0 {
				return errors.Errorf("unexpected end of file at offset %d", decoder.InputOffset())
			}
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "decoding XML token at offset %d", decoder.InputOffset())
		}

		switch tok := token.(type) {
		case xml.StartElement:
			depth++
			switch tok.Name.Local {
			case "osm":
				// pass
			case "node":
				if depth != 2 {
					if err := skip(decoder, &depth); err != nil {
						return err
					}
					continue
				}
				node = &element.Node{}
				for _, attr := range tok.Attr {
					switch attr.Name.Local {
					case "id":
						node.ID = attr.Value
					case "lat":
						node.Lat = attr.Value
					case "lon":
						node.Long = attr.Value
					default:
						setMeta(attr, &node.Meta)
					}
				}
			case "way":
				if depth != 2 {
					if err := skip(decoder, &depth); err != nil {
						return err
					}
					continue
				}
				way = &element.Way{}
				for _, attr := range tok.Attr {
					if attr.Name.Local == "id" {
						way.ID = attr.Value
					} else {
						setMeta(attr, &way.Meta)
					}
				}
			case "nd":
				if way != nil {
					for _, attr := range tok.Attr {
						if attr.Name.Local == "ref" {
							way.Refs = append(way.Refs, attr.Value)
						}
					}
				}
			case "tag":
				var tag element.Tag
				for _, attr := range tok.Attr {
					if attr.Name.Local == "k" {
						tag.Key = attr.Value
					} else if attr.Name.Local == "v" {
						tag.Value = attr.Value
					}
				}
				if node != nil {
					node.Tags = append(node.Tags, tag)
				} else if way != nil {
					way.Tags = append(way.Tags, tag)
				}
			default:
				// relation, bounds, changeset, etc.
				if err := skip(decoder, &depth); err != nil {
					return err
				}
			}
		case xml.EndElement:
			depth--
			var rec element.Record
			switch tok.Name.Local {
			case "node":
				if node == nil {
					continue
				}
				rec = element.NodeRecord(node)
				node = nil
			case "way":
				if way == nil {
					continue
				}
				rec = element.WayRecord(way)
				way = nil
			default:
				continue
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case p.conf.Records <- rec:
			}
		}
	}
}

// skip consumes the current element including all children.
func skip(decoder *xml.Decoder, depth *int) error {
	if err := decoder.Skip(); err != nil {
		return errors.Wrapf(err, "skipping XML element at offset %d", decoder.InputOffset())
	}
	*depth--
	return nil
}

func setMeta(attr xml.Attr, meta *element.Meta) {
	switch attr.Name.Local {
	case "user":
		meta.User = attr.Value
	case "uid":
		meta.UserID = attr.Value
	case "version":
		meta.Version = attr.Value
	case "changeset":
		meta.Changeset = attr.Value
	case "timestamp":
		meta.Timestamp = attr.Value
	}
}
