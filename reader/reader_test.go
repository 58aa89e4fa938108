package reader

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"

	"github.com/omniscale/osmtables/element"
)

const osmDoc = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6">
 <node id="1" lat="39.9" lon="116.4" user="a" uid="1" version="1" changeset="1" timestamp="2010-07-03T08:44:01Z">
  <tag k="amenity" v="cafe"/>
 </node>
 <way id="2" user="a" uid="1" version="1" changeset="1" timestamp="2010-07-03T08:44:01Z">
  <nd ref="1"/>
 </way>
 <relation id="3"/>
</osm>
`

func TestDetect(t *testing.T) {
	for _, tc := range []struct {
		name        string
		format      Format
		compression string
	}{
		{"beijing.osm", XML, NoCompression},
		{"/tmp/Beijing.OSM", XML, NoCompression},
		{"beijing.osm.xml", XML, NoCompression},
		{"beijing.osm.pbf", PBF, NoCompression},
		{"beijing.pbf", PBF, NoCompression},
		{"beijing.osm.gz", XML, Gzip},
		{"beijing.osm.bz2", XML, Bzip2},
		{"beijing.osm.zst", XML, Zstd},
		{"beijing.osm.xz", XML, Xz},
		{"beijing.osm.pbf.lz4", PBF, Lz4},
	} {
		format, compression, err := Detect(tc.name)
		if err != nil {
			t.Errorf("%s: %s", tc.name, err)
			continue
		}
		if format != tc.format || compression != tc.compression {
			t.Errorf("%s: got %v/%q, want %v/%q", tc.name, format, compression, tc.format, tc.compression)
		}
	}

	for _, name := range []string{"beijing.csv", "beijing", "beijing.gz"} {
		if _, _, err := Detect(name); errors.Cause(err) != ErrUnknownFormat {
			t.Errorf("%s: expected ErrUnknownFormat, got %v", name, err)
		}
	}
}

func writeCompressed(t *testing.T, name string, compress func(w io.Writer) io.WriteCloser) string {
	t.Helper()
	buf := &bytes.Buffer{}
	w := compress(buf)
	if _, err := w.Write([]byte(osmDoc)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	filename := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(filename, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return filename
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func TestReadCompressed(t *testing.T) {
	for _, tc := range []struct {
		name     string
		compress func(w io.Writer) io.WriteCloser
	}{
		{"plain.osm", func(w io.Writer) io.WriteCloser { return nopWriteCloser{w} }},
		{"test.osm.gz", func(w io.Writer) io.WriteCloser { return gzip.NewWriter(w) }},
		{"test.osm.xz", func(w io.Writer) io.WriteCloser {
			xw, err := xz.NewWriter(w)
			if err != nil {
				t.Fatal(err)
			}
			return xw
		}},
		{"test.osm.zst", func(w io.Writer) io.WriteCloser {
			zw, err := zstd.NewWriter(w)
			if err != nil {
				t.Fatal(err)
			}
			return zw
		}},
		{"test.osm.lz4", func(w io.Writer) io.WriteCloser { return lz4.NewWriter(w) }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			filename := writeCompressed(t, tc.name, tc.compress)

			records := make(chan element.Record)
			var got []element.Record
			done := make(chan struct{})
			go func() {
				for rec := range records {
					got = append(got, rec)
				}
				close(done)
			}()
			if err := Read(context.Background(), filename, records, Options{}); err != nil {
				t.Fatal(err)
			}
			<-done

			if len(got) != 2 {
				t.Fatalf("expected node and way, got %d records", len(got))
			}
			if got[0].Kind() != element.NodeKind || got[0].ID() != "1" {
				t.Errorf("unexpected first record %#v", got[0])
			}
			if got[0].Node.Tags[0].Value != "cafe" {
				t.Errorf("unexpected tags %v", got[0].Node.Tags)
			}
			if got[1].Kind() != element.WayKind || got[1].Way.Refs[0] != "1" {
				t.Errorf("unexpected second record %#v", got[1])
			}
		})
	}
}

func TestReadMissing(t *testing.T) {
	records := make(chan element.Record)
	err := Read(context.Background(), filepath.Join(t.TempDir(), "missing.osm"), records, Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := <-records; ok {
		t.Error("records not closed")
	}
}

func TestOpenInvalidGzip(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "broken.osm.gz")
	if err := os.WriteFile(filename, []byte("not gzip"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(filename, false); err == nil {
		t.Fatal("expected error")
	}
}
