package database

import (
	"strings"

	"github.com/pkg/errors"
)

type Config struct {
	// ConnectionParams selects the writer by its prefix, e.g.
	// csv:/tmp/out or postgres://localhost/osm.
	ConnectionParams string
	// Schema for database writers. Writers have their own default.
	Schema string
	// TablePrefix is prepended to all table (or file) names.
	TablePrefix string
}

// RowWriter stores the rows of the output tables. The columns of each
// row are in the order of element.Tables.
//
// Insert is not safe for concurrent use.
type RowWriter interface {
	// Init creates the tables and removes existing rows.
	Init() error
	Insert(table string, row []interface{}) error
	// Finish flushes and commits all rows.
	Finish() error
	// Abort discards uncommitted rows.
	Abort() error
	Close() error
}

type NewFunc func(Config) (RowWriter, error)

var writers = map[string]NewFunc{}

func Register(name string, f NewFunc) {
	writers[name] = f
}

func Open(conf Config) (RowWriter, error) {
	typ := ConnectionType(conf.ConnectionParams)
	newFunc, ok := writers[typ]
	if !ok {
		return nil, errors.Errorf("unsupported connection type %q", typ)
	}

	w, err := newFunc(conf)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s writer", typ)
	}
	return w, nil
}

// ConnectionType returns the prefix of param. postgresql is returned as
// postgres.
func ConnectionType(param string) string {
	typ := strings.SplitN(param, ":", 2)[0]
	if typ == "postgresql" {
		return "postgres"
	}
	return typ
}

type NullWriter struct{}

func (n *NullWriter) Init() error                        { return nil }
func (n *NullWriter) Insert(string, []interface{}) error { return nil }
func (n *NullWriter) Finish() error                      { return nil }
func (n *NullWriter) Abort() error                       { return nil }
func (n *NullWriter) Close() error                       { return nil }

func NewNullWriter(conf Config) (RowWriter, error) {
	return &NullWriter{}, nil
}

func init() {
	Register("null", NewNullWriter)
}
