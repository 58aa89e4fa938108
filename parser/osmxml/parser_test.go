package osmxml

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/omniscale/osmtables/element"
)

const testOSM = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
  <bounds minlat="41.97" minlon="-87.69" maxlat="41.98" maxlon="-87.68"/>
  <node id="757860928" lat="41.9747374" lon="-87.6920102" version="2" timestamp="2010-07-22T16:16:51Z" changeset="5288876" uid="26299" user="uboot">
    <tag k="amenity" v="fast_food"/>
    <tag k="cuisine" v="sausage"/>
    <tag k="name" v="Shelly&apos;s Tasty Freeze"/>
  </node>
  <node id="2199822281" lat="41.9" lon="-87.6" version="1" timestamp="2013-03-13T07:46:29Z" changeset="15353317" uid="674454" user="chicago-buildings"/>
  <way id="209809850" version="1" timestamp="2013-03-13T15:58:04Z" changeset="15353317" uid="674454" user="chicago-buildings">
    <nd ref="2199822281"/>
    <tag k="building" v="yes"/>
    <nd ref="2199822390"/>
    <nd ref="2199822281"/>
    <tag k="addr:street:name" v="Lincoln"/>
  </way>
  <relation id="1" version="1">
    <member type="way" ref="209809850" role="outer"/>
    <tag k="type" v="multipolygon"/>
  </relation>
</osm>
`

func parseAll(t *testing.T, doc string) ([]element.Record, error) {
	records := make(chan element.Record)
	p := New(strings.NewReader(doc), Config{Records: records})

	done := make(chan []element.Record)
	go func() {
		var result []element.Record
		for rec := range records {
			result = append(result, rec)
		}
		done <- result
	}()
	err := p.Parse(context.Background())
	return <-done, err
}

func TestParse(t *testing.T) {
	records, err := parseAll(t, testOSM)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	n := records[0].Node
	if n == nil || n.ID != "757860928" || n.Lat != "41.9747374" || n.Long != "-87.6920102" {
		t.Fatal("node not parsed", n)
	}
	expectedMeta := element.Meta{
		User: "uboot", UserID: "26299", Version: "2",
		Changeset: "5288876", Timestamp: "2010-07-22T16:16:51Z",
	}
	if n.Meta != expectedMeta {
		t.Error(n.Meta)
	}
	expectedTags := element.Tags{
		{Key: "amenity", Value: "fast_food"},
		{Key: "cuisine", Value: "sausage"},
		{Key: "name", Value: "Shelly's Tasty Freeze"},
	}
	if !reflect.DeepEqual(n.Tags, expectedTags) {
		t.Error(n.Tags)
	}

	if n := records[1].Node; n == nil || n.ID != "2199822281" || len(n.Tags) != 0 {
		t.Error("node without tags not parsed", n)
	}

	w := records[2].Way
	if w == nil || w.ID != "209809850" || w.User != "chicago-buildings" {
		t.Fatal("way not parsed", w)
	}
	if !reflect.DeepEqual(w.Refs, []string{"2199822281", "2199822390", "2199822281"}) {
		t.Error(w.Refs)
	}
	if !reflect.DeepEqual(w.Tags, element.Tags{{Key: "building", Value: "yes"}, {Key: "addr:street:name", Value: "Lincoln"}}) {
		t.Error(w.Tags)
	}
}

func TestParseInvalid(t *testing.T) {
	records, err := parseAll(t, `<osm><node id="1"><tag k="a" v="b"/></node><way id="2">`)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(records) != 1 || records[0].Node == nil {
		t.Fatal(records)
	}

	if _, err := parseAll(t, `<osm><node id="1"></way></osm>`); err == nil {
		t.Fatal("expected error")
	}
}

func TestParseCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	records := make(chan element.Record)
	p := New(strings.NewReader(testOSM), Config{Records: records})
	if err := p.Parse(ctx); err != context.Canceled {
		t.Fatal(err)
	}
	if _, ok := <-records; ok {
		t.Fatal("records not closed")
	}
	if p.Error() != context.Canceled {
		t.Fatal(p.Error())
	}
}
