package mapping

import (
	"io/ioutil"

	"github.com/omniscale/osmtables/audit"
	"github.com/omniscale/osmtables/mapping/config"

	"github.com/pkg/errors"
)

// Mapping contains the compiled classification and normalization rules.
// A Mapping is immutable after creation and safe for concurrent use.
type Mapping struct {
	Conf    config.Mapping
	Keys    *KeyClassifier
	Auditor *audit.Auditor
}

// FromFile loads the rules from a YAML file. An empty filename returns
// the built-in rules.
func FromFile(filename string) (*Mapping, error) {
	if filename == "" {
		return Default()
	}
	b, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "reading mapping")
	}
	m, err := New(b)
	if err != nil {
		return nil, errors.Wrapf(err, "mapping %s", filename)
	}
	return m, nil
}

// New parses the YAML mapping b on top of the built-in rules.
func New(b []byte) (*Mapping, error) {
	conf, err := config.Parse(b)
	if err != nil {
		return nil, err
	}
	return FromConfig(conf)
}

// Default returns a Mapping with the built-in rules.
func Default() (*Mapping, error) {
	return FromConfig(config.Default())
}

func FromConfig(conf config.Mapping) (*Mapping, error) {
	if err := conf.Check(); err != nil {
		return nil, err
	}
	m := Mapping{
		Conf: conf,
		Keys: NewKeyClassifier(conf.Tags.ProblemChars, conf.Tags.DefaultType),
	}

	phone, err := audit.NewPhoneNormalizer(conf.Phone)
	if err != nil {
		return nil, errors.Wrap(err, "creating phone normalizer")
	}
	address, err := audit.NewAddressNormalizer(conf.Address)
	if err != nil {
		return nil, errors.Wrap(err, "creating address normalizer")
	}
	m.Auditor = audit.New(conf.Audit, phone, address)
	return &m, nil
}
