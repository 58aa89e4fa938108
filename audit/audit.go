/*
Package audit cleans the tag rows of shaped records.

The Auditor drops tags that only mark incomplete data (fixme), formats
phone numbers and expands abbreviations in street names.
*/
package audit

import (
	"github.com/omniscale/osmtables/element"
	"github.com/omniscale/osmtables/mapping/config"
)

type Auditor struct {
	drop    []config.Selector
	phone   []config.Selector
	address []config.Selector

	Phone   *PhoneNormalizer
	Address *AddressNormalizer
}

func New(conf config.Audit, phone *PhoneNormalizer, address *AddressNormalizer) *Auditor {
	return &Auditor{
		drop:    conf.Drop,
		phone:   conf.Phone,
		address: conf.Address,
		Phone:   phone,
		Address: address,
	}
}

func matchAny(selectors []config.Selector, tag *element.TagRow) bool {
	for _, s := range selectors {
		if s.Match(tag.Type, tag.Key) {
			return true
		}
	}
	return false
}

// Audit returns the remaining tags in their original order. tags is not
// modified.
func (a *Auditor) Audit(tags []element.TagRow) []element.TagRow {
	if len(tags) == 0 {
		return tags
	}
	result := make([]element.TagRow, 0, len(tags))
	for _, tag := range tags {
		if matchAny(a.drop, &tag) {
			continue
		}
		if a.Phone != nil && matchAny(a.phone, &tag) {
			tag.Value = a.Phone.Normalize(tag.Value)
		}
		if a.Address != nil && matchAny(a.address, &tag) {
			tag.Value = a.Address.Normalize(tag.Value)
		}
		result = append(result, tag)
	}
	return result
}

// AuditShaped returns a copy of s with audited tags. The returned value
// shares all other rows with s.
func (a *Auditor) AuditShaped(s element.Shaped) element.Shaped {
	s.Tags = a.Audit(s.Tags)
	return s
}

// Dropped returns the number of tags Audit would remove.
func (a *Auditor) Dropped(tags []element.TagRow) int {
	n := 0
	for i := range tags {
		if matchAny(a.drop, &tags[i]) {
			n++
		}
	}
	return n
}
