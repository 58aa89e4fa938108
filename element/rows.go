package element

import "strconv"

// Table names. The column order of each table is fixed and must match the
// schema of the destination store.
const (
	NodesTable     = "nodes"
	NodeTagsTable  = "nodes_tags"
	WaysTable      = "ways"
	WayTagsTable   = "ways_tags"
	WayNodesTable  = "ways_nodes"
	DefaultTagType = "regular"
)

type ColumnType string

const (
	IDColumn     ColumnType = "id"
	StringColumn ColumnType = "string"
	FloatColumn  ColumnType = "float"
	IntColumn    ColumnType = "integer"
)

type Column struct {
	Name string
	Type ColumnType
}

type Table struct {
	Name    string
	Columns []Column
}

func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

var tagColumns = []Column{
	{"id", IDColumn},
	{"key", StringColumn},
	{"value", StringColumn},
	{"type", StringColumn},
}

// Tables lists all output tables in the order they are created.
var Tables = []Table{
	{NodesTable, []Column{
		{"id", IDColumn},
		{"lat", FloatColumn},
		{"lon", FloatColumn},
		{"user", StringColumn},
		{"uid", IntColumn},
		{"version", StringColumn},
		{"changeset", IntColumn},
		{"timestamp", StringColumn},
	}},
	{NodeTagsTable, tagColumns},
	{WaysTable, []Column{
		{"id", IDColumn},
		{"user", StringColumn},
		{"uid", IntColumn},
		{"version", StringColumn},
		{"changeset", IntColumn},
		{"timestamp", StringColumn},
	}},
	{WayTagsTable, tagColumns},
	{WayNodesTable, []Column{
		{"id", IDColumn},
		{"node_id", IDColumn},
		{"position", IntColumn},
	}},
}

// Rows are checked with github.com/go-playground/validator/v10. The
// integer rule is registered by the validate package.

type NodeRow struct {
	ID        string `column:"id" validate:"integer"`
	Lat       string `column:"lat" validate:"latitude"`
	Lon       string `column:"lon" validate:"longitude"`
	User      string `column:"user" validate:"required"`
	UserID    string `column:"uid" validate:"integer"`
	Version   string `column:"version" validate:"integer"`
	Changeset string `column:"changeset" validate:"integer"`
	Timestamp string `column:"timestamp" validate:"datetime=2006-01-02T15:04:05Z07:00"`
}

func (r *NodeRow) Values() []interface{} {
	return []interface{}{r.ID, r.Lat, r.Lon, r.User, r.UserID, r.Version, r.Changeset, r.Timestamp}
}

type WayRow struct {
	ID        string `column:"id" validate:"integer"`
	User      string `column:"user" validate:"required"`
	UserID    string `column:"uid" validate:"integer"`
	Version   string `column:"version" validate:"integer"`
	Changeset string `column:"changeset" validate:"integer"`
	Timestamp string `column:"timestamp" validate:"datetime=2006-01-02T15:04:05Z07:00"`
}

func (r *WayRow) Values() []interface{} {
	return []interface{}{r.ID, r.User, r.UserID, r.Version, r.Changeset, r.Timestamp}
}

// TagRow is one classified annotation. Key is the local key after the
// namespace was removed, Type the namespace. Both are empty for the
// respective side of keys like "name:" or ":name".
type TagRow struct {
	ID    string `column:"id" validate:"integer"`
	Key   string `column:"key"`
	Value string `column:"value"`
	Type  string `column:"type"`
}

func (r *TagRow) Values() []interface{} {
	return []interface{}{r.ID, r.Key, r.Value, r.Type}
}

type WayNodeRow struct {
	ID       string `column:"id" validate:"integer"`
	NodeID   string `column:"node_id" validate:"integer"`
	Position int    `column:"position" validate:"gte=0"`
}

func (r *WayNodeRow) Values() []interface{} {
	return []interface{}{r.ID, r.NodeID, strconv.Itoa(r.Position)}
}

// Shaped contains all rows of a single record. Either Node or Way is set.
// WayNodes is only set for ways.
type Shaped struct {
	Node     *NodeRow
	Way      *WayRow
	Tags     []TagRow
	WayNodes []WayNodeRow
}

func (s *Shaped) Kind() Kind {
	switch {
	case s.Node != nil:
		return NodeKind
	case s.Way != nil:
		return WayKind
	}
	return UnknownKind
}

// ID returns the id of the owning record.
func (s *Shaped) ID() string {
	switch {
	case s.Node != nil:
		return s.Node.ID
	case s.Way != nil:
		return s.Way.ID
	}
	return ""
}

// TagsTable returns the table for the tag rows of this record.
func (s *Shaped) TagsTable() string {
	if s.Way != nil {
		return WayTagsTable
	}
	return NodeTagsTable
}
