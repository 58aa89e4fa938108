package csv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/omniscale/osmtables/database"
	"github.com/omniscale/osmtables/element"
)

func readFile(t *testing.T, filename string) string {
	t.Helper()
	b, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w, err := database.Open(database.Config{ConnectionParams: "csv:" + dir})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Init(); err != nil {
		t.Fatal(err)
	}

	node := element.NodeRow{
		ID: "757860928", Lat: "41.9747374", Lon: "-87.6920102",
		User: "uboot", UserID: "26299", Version: "2", Changeset: "5288876",
		Timestamp: "2010-07-22T16:16:51Z",
	}
	if err := w.Insert(element.NodesTable, node.Values()); err != nil {
		t.Fatal(err)
	}
	tag := element.TagRow{ID: "757860928", Key: "name", Value: "Shelly's Tasty Freeze, Inc.", Type: "regular"}
	if err := w.Insert(element.NodeTagsTable, tag.Values()); err != nil {
		t.Fatal(err)
	}
	wayNode := element.WayNodeRow{ID: "209809850", NodeID: "2199822281", Position: 0}
	if err := w.Insert(element.WayNodesTable, wayNode.Values()); err != nil {
		t.Fatal(err)
	}
	if err := w.Insert("relations", []interface{}{"1"}); err == nil {
		t.Error("expected error for unknown table")
	}

	if err := w.Finish(); err != nil {
		t.Fatal(err)
	}

	for table, want := range map[string]string{
		"nodes": "id,lat,lon,user,uid,version,changeset,timestamp\n" +
			"757860928,41.9747374,-87.6920102,uboot,26299,2,5288876,2010-07-22T16:16:51Z\n",
		"nodes_tags": "id,key,value,type\n" +
			"757860928,name,\"Shelly's Tasty Freeze, Inc.\",regular\n",
		"ways":       "id,user,uid,version,changeset,timestamp\n",
		"ways_tags":  "id,key,value,type\n",
		"ways_nodes": "id,node_id,position\n209809850,2199822281,0\n",
	} {
		if got := readFile(t, filepath.Join(dir, table+".csv")); got != want {
			t.Errorf("%s:\n%q\n!=\n%q", table, got, want)
		}
	}
}

func TestWriterPrefix(t *testing.T) {
	dir := t.TempDir()
	w, err := New(database.Config{ConnectionParams: "csv:" + dir, TablePrefix: "beijing_"})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Init(); err != nil {
		t.Fatal(err)
	}
	if err := w.Finish(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "beijing_ways_nodes.csv")); err != nil {
		t.Error(err)
	}
	if err := w.Insert(element.NodesTable, []interface{}{"1"}); err == nil {
		t.Error("expected error after Finish")
	}
}
