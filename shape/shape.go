/*
Package shape converts OSM records into flat table rows.

A node becomes one nodes row and zero or more nodes_tags rows. A way
becomes one ways row, zero or more ways_tags rows and one ways_nodes row
for each node reference. The shaper does not normalize any values; see
package audit for that.
*/
package shape

import (
	"errors"

	"github.com/omniscale/osmtables/element"
	"github.com/omniscale/osmtables/mapping"
)

// ErrUnknownRecord is returned for records without a node or way.
var ErrUnknownRecord = errors.New("record is neither node nor way")

type Shaper struct {
	mapping *mapping.Mapping
}

func New(m *mapping.Mapping) *Shaper {
	return &Shaper{mapping: m}
}

func (s *Shaper) Mapping() *mapping.Mapping {
	return s.mapping
}

func (s *Shaper) Shape(rec element.Record) (element.Shaped, error) {
	switch rec.Kind() {
	case element.NodeKind:
		return s.ShapeNode(rec.Node), nil
	case element.WayKind:
		return s.ShapeWay(rec.Way), nil
	}
	return element.Shaped{}, ErrUnknownRecord
}

func (s *Shaper) ShapeNode(n *element.Node) element.Shaped {
	return element.Shaped{
		Node: &element.NodeRow{
			ID:        n.ID,
			Lat:       n.Lat,
			Lon:       n.Long,
			User:      n.User,
			UserID:    n.UserID,
			Version:   n.Version,
			Changeset: n.Changeset,
			Timestamp: n.Timestamp,
		},
		Tags: s.mapping.ExtractTags(n.ID, n.Tags),
	}
}

func (s *Shaper) ShapeWay(w *element.Way) element.Shaped {
	var wayNodes []element.WayNodeRow
	if len(w.Refs) > 0 {
		wayNodes = make([]element.WayNodeRow, len(w.Refs))
		for i, ref := range w.Refs {
			wayNodes[i] = element.WayNodeRow{ID: w.ID, NodeID: ref, Position: i}
		}
	}
	return element.Shaped{
		Way: &element.WayRow{
			ID:        w.ID,
			User:      w.User,
			UserID:    w.UserID,
			Version:   w.Version,
			Changeset: w.Changeset,
			Timestamp: w.Timestamp,
		},
		Tags:     s.mapping.ExtractTags(w.ID, w.Tags),
		WayNodes: wayNodes,
	}
}
