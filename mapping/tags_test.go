package mapping

import (
	"reflect"
	"testing"

	"github.com/omniscale/osmtables/element"
)

func TestExtractTags(t *testing.T) {
	m, err := Default()
	if err != nil {
		t.Fatal(err)
	}

	rows := m.ExtractTags("209809850", element.Tags{
		{Key: "addr:housenumber", Value: "1412"},
		{Key: "addr:street", Value: "West Lexington St."},
		{Key: "addr:street:name", Value: "Lexington"},
		{Key: "bad key", Value: "dropped"},
		{Key: "building", Value: "yes"},
		{Key: "building:levels", Value: "1"},
		{Key: "chicago:building_id", Value: "366409"},
		{Key: "name.en", Value: "dropped"},
		{Key: "building", Value: "yes"},
	})

	expected := []element.TagRow{
		{ID: "209809850", Key: "housenumber", Value: "1412", Type: "addr"},
		{ID: "209809850", Key: "street", Value: "West Lexington St.", Type: "addr"},
		{ID: "209809850", Key: "street:name", Value: "Lexington", Type: "addr"},
		{ID: "209809850", Key: "building", Value: "yes", Type: "regular"},
		{ID: "209809850", Key: "levels", Value: "1", Type: "building"},
		{ID: "209809850", Key: "building_id", Value: "366409", Type: "chicago"},
		{ID: "209809850", Key: "building", Value: "yes", Type: "regular"},
	}
	if !reflect.DeepEqual(rows, expected) {
		t.Fatalf("unexpected rows:\n%v\n%v", rows, expected)
	}
}

func TestExtractTagsEmpty(t *testing.T) {
	m, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	if rows := m.ExtractTags("1", nil); len(rows) != 0 {
		t.Fatal(rows)
	}
	if rows := m.ExtractTags("1", element.Tags{{Key: "a b", Value: "c"}}); len(rows) != 0 {
		t.Fatal(rows)
	}
}

func TestExtractTagsValueVerbatim(t *testing.T) {
	m, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	rows := m.ExtractTags("1", element.Tags{{Key: "name", Value: " Shelly's Tasty Freeze; & co. "}})
	if len(rows) != 1 || rows[0].Value != " Shelly's Tasty Freeze; & co. " {
		t.Fatal(rows)
	}
}
