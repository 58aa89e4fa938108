package audit

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/omniscale/osmtables/mapping/config"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// AddressNormalizer expands street type and direction abbreviations,
// e.g. "n. lincoln st." becomes "North Lincoln Street".
type AddressNormalizer struct {
	re         *regexp.Regexp
	expansions map[string]string
}

func NewAddressNormalizer(conf config.Address) (*AddressNormalizer, error) {
	expansions := make(map[string]string, len(conf.Abbreviations)*2)
	for abbr, exp := range conf.Abbreviations {
		expansions[abbr] = exp
		expansions[abbr+"."] = exp
	}

	// reverse order tries "N." before "N" and "Str" before "St"
	keys := make([]string, 0, len(expansions))
	for k := range expansions {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	for i, k := range keys {
		keys[i] = regexp.QuoteMeta(k)
	}

	if len(keys) == 0 {
		return &AddressNormalizer{expansions: expansions}, nil
	}
	re, err := regexp.Compile(`\b(?:` + strings.Join(keys, "|") + `)(?:\s+|$)`)
	if err != nil {
		return nil, err
	}
	return &AddressNormalizer{re: re, expansions: expansions}, nil
}

// Normalize title cases addr and replaces all abbreviations that are
// followed by whitespace or the end of addr.
func (a *AddressNormalizer) Normalize(addr string) string {
	addr = cases.Title(language.Und).String(addr)
	if a.re == nil {
		return strings.TrimRightFunc(addr, unicode.IsSpace)
	}
	addr = a.re.ReplaceAllStringFunc(addr, func(match string) string {
		abbr := strings.TrimRightFunc(match, unicode.IsSpace)
		return a.expansions[abbr] + " "
	})
	return strings.TrimRightFunc(addr, unicode.IsSpace)
}
