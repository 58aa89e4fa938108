/*
Package element contains the record and row types of osmtables.

A Record is one top-level OSM element as it comes from a parser: either a
Node or a Way. All attributes are kept as the verbatim strings from the
input. Rows are the flat, write-once results of shaping a record.
*/
package element

import "fmt"

// A Tag is a single raw key=value annotation, in document order.
type Tag struct {
	Key   string
	Value string
}

// Tags is an ordered list of raw annotations.
type Tags []Tag

func (t Tags) String() string {
	return fmt.Sprintf("%v", []Tag(t))
}

// Meta contains the top-level attributes shared by nodes and ways.
type Meta struct {
	User      string
	UserID    string
	Version   string
	Changeset string
	Timestamp string
}

// A Node is a single coordinate with attributes and tags.
type Node struct {
	ID string
	Meta
	Lat  string
	Long string
	Tags Tags
}

// A Way references one or more nodes by ID.
type Way struct {
	ID string
	Meta
	Tags Tags
	// Refs specifies the ordered list of all node IDs of this way. The
	// same ID can occur more than once (e.g. closed ways).
	Refs []string
}

type Kind int

const (
	UnknownKind Kind = iota
	NodeKind
	WayKind
)

func (k Kind) String() string {
	switch k {
	case NodeKind:
		return "node"
	case WayKind:
		return "way"
	}
	return "unknown"
}

// A Record holds exactly one Node or one Way.
type Record struct {
	Node *Node
	Way  *Way
}

func NodeRecord(n *Node) Record { return Record{Node: n} }
func WayRecord(w *Way) Record   { return Record{Way: w} }

func (r Record) Kind() Kind {
	switch {
	case r.Node != nil && r.Way == nil:
		return NodeKind
	case r.Way != nil && r.Node == nil:
		return WayKind
	}
	return UnknownKind
}

// ID returns the id of the contained element, or an empty string.
func (r Record) ID() string {
	switch r.Kind() {
	case NodeKind:
		return r.Node.ID
	case WayKind:
		return r.Way.ID
	}
	return ""
}
