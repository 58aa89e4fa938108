package mapping

import (
	"github.com/omniscale/osmtables/element"
)

// ExtractTags converts the raw tags of a record into tag rows owned by
// ownerID. Tags with invalid keys are skipped without error. Values are
// kept as they are and the input order is preserved.
func (m *Mapping) ExtractTags(ownerID string, tags element.Tags) []element.TagRow {
	if len(tags) == 0 {
		return nil
	}
	rows := make([]element.TagRow, 0, len(tags))
	for _, tag := range tags {
		typ, key, ok := m.Keys.Classify(tag.Key)
		if !ok {
			continue
		}
		rows = append(rows, element.TagRow{
			ID:    ownerID,
			Key:   key,
			Value: tag.Value,
			Type:  typ,
		})
	}
	return rows
}
