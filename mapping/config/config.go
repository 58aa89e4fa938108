package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/omniscale/osmtables/element"
)

// Mapping is the YAML configuration of the tag classification and
// normalization rules.
type Mapping struct {
	Tags    Tags    `yaml:"tags"`
	Phone   Phone   `yaml:"phone"`
	Address Address `yaml:"address"`
	Audit   Audit   `yaml:"audit"`
}

type Tags struct {
	// DefaultType is the tag type for keys without a namespace.
	DefaultType string `yaml:"default_type"`
	// ProblemChars lists all characters that invalidate a tag key.
	ProblemChars string `yaml:"problem_chars"`
}

type Phone struct {
	CountryCode string `yaml:"country_code"`
	AreaCode    string `yaml:"area_code"`
	// TrunkPrefix is accepted in front of the area code (e.g. 010).
	TrunkPrefix    string `yaml:"trunk_prefix"`
	LandlineDigits int    `yaml:"landline_digits"`
	// MinDigits is the minimal length of the local number run.
	MinDigits     int    `yaml:"min_digits"`
	Separator     string `yaml:"separator"`
	InvalidPrefix string `yaml:"invalid_prefix"`
}

type Address struct {
	// Abbreviations maps abbreviations (without trailing period) to
	// their expansion. Keys are matched after title casing.
	Abbreviations map[string]string `yaml:"abbreviations"`
}

// Audit contains tag selectors. A selector is either a plain key ("phone")
// matching any tag type or type:key ("addr:street").
type Audit struct {
	Drop    []Selector `yaml:"drop"`
	Phone   []Selector `yaml:"phone"`
	Address []Selector `yaml:"address"`
}

type Selector struct {
	Type string
	Key  string
}

func ParseSelector(s string) Selector {
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return Selector{Type: s[:i], Key: s[i+1:]}
	}
	return Selector{Key: s}
}

func (s Selector) String() string {
	if s.Type == "" {
		return s.Key
	}
	return s.Type + ":" + s.Key
}

// Match returns whether the selector matches a tag with the given type
// and key.
func (s Selector) Match(typ, key string) bool {
	if s.Key != key {
		return false
	}
	return s.Type == "" || s.Type == typ
}

func (s *Selector) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var str string
	if err := unmarshal(&str); err != nil {
		return err
	}
	if str == "" {
		return fmt.Errorf("empty tag selector")
	}
	*s = ParseSelector(str)
	return nil
}

func (s Selector) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// Default returns the built-in rules.
func Default() Mapping {
	return Mapping{
		Tags: Tags{
			DefaultType:  element.DefaultTagType,
			ProblemChars: "=+/&<>;'\"?%#$@,. \t\r\n",
		},
		Phone: Phone{
			CountryCode:    "86",
			AreaCode:       "10",
			TrunkPrefix:    "0",
			LandlineDigits: 8,
			MinDigits:      8,
			Separator:      ";",
			InvalidPrefix:  "N/A ",
		},
		Address: Address{
			Abbreviations: map[string]string{
				"Rd":   "Road",
				"St":   "Street",
				"Str":  "Street",
				"E":    "East",
				"W":    "West",
				"N":    "North",
				"S":    "South",
				"Ave":  "Avenue",
				"Dr":   "Drive",
				"Bldg": "Building",
				"Pky":  "Parkway",
			},
		},
		Audit: Audit{
			Drop:    []Selector{{Key: "fixme"}, {Key: "FIXME"}},
			Phone:   []Selector{{Key: "phone"}},
			Address: []Selector{{Type: "addr", Key: "street"}, {Key: "en"}},
		},
	}
}

// Parse decodes b on top of the default rules. Maps are merged, lists
// replace the defaults.
func Parse(b []byte) (Mapping, error) {
	m := Default()
	if err := yaml.UnmarshalStrict(b, &m); err != nil {
		return Mapping{}, err
	}
	return m, m.Check()
}

// Check returns the first invalid setting.
func (m *Mapping) Check() error {
	if m.Tags.DefaultType == "" {
		return fmt.Errorf("tags.default_type is empty")
	}
	if strings.ContainsRune(m.Tags.DefaultType, ':') {
		return fmt.Errorf("tags.default_type %q contains ':'", m.Tags.DefaultType)
	}
	if strings.ContainsRune(m.Tags.ProblemChars, ':') {
		return fmt.Errorf("tags.problem_chars must not contain ':'")
	}
	p := m.Phone
	if p.CountryCode == "" || p.AreaCode == "" {
		return fmt.Errorf("phone.country_code and phone.area_code are required")
	}
	if !digitsOnly(p.CountryCode) || !digitsOnly(p.AreaCode) || !digitsOnly(p.TrunkPrefix) {
		return fmt.Errorf("phone codes must only contain digits")
	}
	if p.LandlineDigits <= 0 {
		return fmt.Errorf("phone.landline_digits must be > 0, got %d", p.LandlineDigits)
	}
	if p.MinDigits <= 0 {
		return fmt.Errorf("phone.min_digits must be > 0, got %d", p.MinDigits)
	}
	if p.Separator == "" {
		return fmt.Errorf("phone.separator is empty")
	}
	for abbr, exp := range m.Address.Abbreviations {
		if abbr == "" || exp == "" {
			return fmt.Errorf("invalid address abbreviation %q: %q", abbr, exp)
		}
		if strings.HasSuffix(abbr, ".") {
			return fmt.Errorf("address abbreviation %q: the variant with trailing period is added automatically", abbr)
		}
	}
	return nil
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
