package audit

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/omniscale/osmtables/mapping/config"
)

// PhoneNormalizer formats phone numbers as +<country>-<number>.
//
// Numbers with exactly the landline length get the area code injected,
// even if the input had none. All landlines of a dataset are expected to
// share one area code. Longer numbers are mobile numbers without area
// code. Everything else is returned with the invalid prefix.
type PhoneNormalizer struct {
	re          *regexp.Regexp
	localIdx    int
	countryCode string
	areaCode    string
	landline    int
	separator   string
	invalid     string
}

func NewPhoneNormalizer(conf config.Phone) (*PhoneNormalizer, error) {
	areaCodes := []string{regexp.QuoteMeta(conf.AreaCode)}
	if conf.TrunkPrefix != "" {
		areaCodes = append(areaCodes, regexp.QuoteMeta(conf.TrunkPrefix+conf.AreaCode))
	}
	expr := fmt.Sprintf(`\D*(?P<cc>%s)?\D*(?P<ac>%s)?\D*(?P<lc>\d{%d,})`,
		regexp.QuoteMeta(conf.CountryCode),
		strings.Join(areaCodes, "|"),
		conf.MinDigits,
	)
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &PhoneNormalizer{
		re:          re,
		localIdx:    re.SubexpIndex("lc"),
		countryCode: conf.CountryCode,
		areaCode:    conf.AreaCode,
		landline:    conf.LandlineDigits,
		separator:   conf.Separator,
		invalid:     conf.InvalidPrefix,
	}, nil
}

// Normalize formats each separated number of raw on its own and joins
// the results in the original order.
func (p *PhoneNormalizer) Normalize(raw string) string {
	numbers := strings.Split(raw, p.separator)
	for i, n := range numbers {
		numbers[i] = p.format(n)
	}
	return strings.Join(numbers, p.separator)
}

func (p *PhoneNormalizer) format(number string) string {
	match := p.re.FindStringSubmatch(number)
	if match == nil {
		return p.invalid + number
	}
	local := match[p.localIdx]
	switch {
	case len(local) < p.landline:
		return p.invalid + number
	case len(local) > p.landline:
		return "+" + p.countryCode + "-" + local
	default:
		return "+" + p.countryCode + "-" + p.areaCode + local
	}
}
