// Package csv writes all tables as CSV files into a directory.
//
// The connection is csv:<dir>. Each table is written to
// <dir>/<prefix><table>.csv with a header row.
package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/omniscale/osmtables/database"
	"github.com/omniscale/osmtables/element"
	"github.com/omniscale/osmtables/logging"
)

var log = logging.NewLogger("csv")

type tableFile struct {
	mu   sync.Mutex
	name string
	f    *os.File
	w    *csv.Writer
	rows int64
}

func (t *tableFile) write(row []interface{}) error {
	record := make([]string, len(row))
	for i, v := range row {
		record[i] = toString(v)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.w == nil {
		return errors.Errorf("%s is closed", t.name)
	}
	t.rows++
	return t.w.Write(record)
}

func (t *tableFile) close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.w == nil {
		return nil
	}
	t.w.Flush()
	err := t.w.Error()
	if cerr := t.f.Close(); err == nil {
		err = cerr
	}
	t.w = nil
	return err
}

func toString(v interface{}) string {
	switch v := v.(type) {
	case string:
		return v
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

// Writer is a database.RowWriter for CSV files.
type Writer struct {
	Dir    string
	Prefix string
	tables map[string]*tableFile
}

func New(conf database.Config) (database.RowWriter, error) {
	dir := strings.TrimPrefix(conf.ConnectionParams, "csv:")
	if dir == "" {
		dir = "."
	}
	return &Writer{Dir: dir, Prefix: conf.TablePrefix}, nil
}

// Filename returns the CSV file of table.
func (w *Writer) Filename(table string) string {
	return filepath.Join(w.Dir, w.Prefix+table+".csv")
}

// Init creates or truncates all CSV files and writes the header rows.
func (w *Writer) Init() error {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return errors.Wrap(err, "creating output dir")
	}
	w.tables = make(map[string]*tableFile, len(element.Tables))
	for _, table := range element.Tables {
		filename := w.Filename(table.Name)
		f, err := os.Create(filename)
		if err != nil {
			w.closeAll()
			return errors.Wrap(err, "creating CSV file")
		}
		tf := &tableFile{name: filename, f: f, w: csv.NewWriter(f)}
		if err := tf.w.Write(table.ColumnNames()); err != nil {
			f.Close()
			w.closeAll()
			return errors.Wrapf(err, "writing header of %s", filename)
		}
		w.tables[table.Name] = tf
	}
	return nil
}

func (w *Writer) Insert(table string, row []interface{}) error {
	tf, ok := w.tables[table]
	if !ok {
		return errors.Errorf("unknown table %q", table)
	}
	if err := tf.write(row); err != nil {
		return errors.Wrapf(err, "writing %s", tf.name)
	}
	return nil
}

func (w *Writer) Finish() error {
	if err := w.closeAll(); err != nil {
		return errors.Wrap(err, "closing CSV files")
	}
	for _, table := range element.Tables {
		if tf, ok := w.tables[table.Name]; ok {
			log.Debugf("wrote %d rows to %s", tf.rows, tf.name)
		}
	}
	return nil
}

// Abort closes all files. Rows that were already written are kept.
func (w *Writer) Abort() error {
	return w.closeAll()
}

func (w *Writer) Close() error {
	return w.closeAll()
}

func (w *Writer) closeAll() error {
	var first error
	for _, tf := range w.tables {
		if err := tf.close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func init() {
	database.Register("csv", New)
}
