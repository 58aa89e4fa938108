package sample

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/omniscale/osmtables/element"
	"github.com/omniscale/osmtables/parser/osmxml"
	"github.com/omniscale/osmtables/reader"
)

func parse(t *testing.T, doc string) []element.Record {
	t.Helper()
	records := make(chan element.Record)
	var got []element.Record
	done := make(chan struct{})
	go func() {
		for rec := range records {
			got = append(got, rec)
		}
		close(done)
	}()
	if err := osmxml.New(strings.NewReader(doc), osmxml.Config{Records: records}).Parse(context.Background()); err != nil {
		t.Fatalf("%s\n%s", err, doc)
	}
	<-done
	return got
}

func testRecords(n int) []element.Record {
	var recs []element.Record
	for i := 0; i < n; i++ {
		id := strconv.Itoa(i)
		meta := element.Meta{User: "uboot", UserID: "26299", Version: "2", Changeset: "5288876", Timestamp: "2010-07-22T16:16:51Z"}
		if i%2 == 0 {
			recs = append(recs, element.NodeRecord(&element.Node{
				ID: id, Meta: meta, Lat: "41.9747374", Long: "-87.6920102",
				Tags: element.Tags{{Key: "name", Value: "Shelly's <Tasty> & Freeze"}, {Key: "amenity", Value: "fast_food"}},
			}))
		} else {
			recs = append(recs, element.WayRecord(&element.Way{
				ID: id, Meta: meta,
				Tags: element.Tags{{Key: "building", Value: "yes"}},
				Refs: []string{"2199822281", "2199822390", "2199822281"},
			}))
		}
	}
	return recs
}

func TestWriterEvery(t *testing.T) {
	for _, every := range []int{1, 2, 3, 10} {
		buf := &bytes.Buffer{}
		w := New(buf, every)
		recs := testRecords(7)
		for _, rec := range recs {
			if err := w.Add(rec); err != nil {
				t.Fatal(err)
			}
		}
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}

		got := parse(t, buf.String())
		var want []element.Record
		for i := 0; i < len(recs); i += every {
			want = append(want, recs[i])
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("every %d:\n%s", every, buf.String())
		}
		if w.Written() != len(want) {
			t.Errorf("every %d: written %d != %d", every, w.Written(), len(want))
		}
	}
}

func TestWriterEmpty(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf, 0)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if got := parse(t, buf.String()); len(got) != 0 {
		t.Error(got)
	}
	if err := w.Add(testRecords(1)[0]); err == nil {
		t.Error("expected error after Close")
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.osm")
	out := filepath.Join(dir, "out.osm")

	buf := &bytes.Buffer{}
	w := New(buf, 1)
	for _, rec := range testRecords(6) {
		if err := w.Add(rec); err != nil {
			t.Fatal(err)
		}
	}
	w.Close()
	if err := os.WriteFile(in, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	if err := Run(context.Background(), in, out, 2, reader.Options{}); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	got := parse(t, string(b))
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	for i, rec := range got {
		if rec.ID() != strconv.Itoa(i*2) {
			t.Errorf("unexpected record %d: %s", i, rec.ID())
		}
	}
}
