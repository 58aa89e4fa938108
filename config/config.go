package config

import (
	"fmt"
	"io/ioutil"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v2"

	"github.com/omniscale/osmtables/database"
)

// Config is the optional YAML file of the --config option. Values are only
// used for options that are not set on the command line.
type Config struct {
	Connection  string `yaml:"connection"`
	Mapping     string `yaml:"mapping"`
	Schema      string `yaml:"schema"`
	TablePrefix string `yaml:"table_prefix"`
	Concurrency int    `yaml:"concurrency"`
	Validate    *bool  `yaml:"validate"`
	Audit       *bool  `yaml:"audit"`
}

const (
	defaultConnection = "csv:."
	defaultSchema     = "osm"
	defaultEvery      = 10
)

func Load(filename string) (*Config, error) {
	b, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	conf := &Config{}
	if err := yaml.UnmarshalStrict(b, conf); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", filename)
	}
	return conf, nil
}

type Base struct {
	Connection  string
	MappingFile string
	ConfigFile  string
	HttpProfile string
	Quiet       bool
	Verbose     bool
	Progress    bool
}

func (o *Base) addFlags(flags *pflag.FlagSet) {
	flags.StringVar(&o.Connection, "connection", defaultConnection, "output connection (csv:DIR, postgres://..., null:)")
	flags.StringVar(&o.MappingFile, "mapping", "", "mapping file (YAML), built-in rules if empty")
	flags.StringVar(&o.ConfigFile, "config", "", "config file (YAML)")
	flags.StringVar(&o.HttpProfile, "httpprofile", "", "bind address for pprof server")
	flags.BoolVar(&o.Quiet, "quiet", false, "disable progress output")
	flags.BoolVarP(&o.Verbose, "verbose", "v", false, "enable debug output")
	flags.BoolVar(&o.Progress, "progress", false, "show progress bar while reading")
}

func (o *Base) updateFromConfig(flags *pflag.FlagSet, conf *Config) {
	if !flags.Changed("connection") && conf.Connection != "" {
		o.Connection = conf.Connection
	}
	if !flags.Changed("mapping") && conf.Mapping != "" {
		o.MappingFile = conf.Mapping
	}
}

func (o *Base) check() []error {
	errs := []error{}
	switch database.ConnectionType(o.Connection) {
	case "csv", "postgres", "null":
	default:
		errs = append(errs, fmt.Errorf("unsupported --connection %q", o.Connection))
	}
	if o.Quiet && o.Verbose {
		errs = append(errs, errors.New("--quiet and --verbose are exclusive"))
	}
	return errs
}

type Import struct {
	Base
	Read        string
	Validate    bool
	Audit       bool
	Concurrency int
	TablePrefix string
	Schema      string
}

func AddImportFlags(flags *pflag.FlagSet, o *Import) {
	o.Base.addFlags(flags)
	flags.StringVar(&o.Read, "read", "", "OSM file to import (.osm, .osm.pbf, optionally compressed)")
	flags.BoolVar(&o.Validate, "validate", true, "validate all rows before writing")
	flags.BoolVar(&o.Audit, "audit", true, "drop fixme tags, normalize phone numbers and street names")
	flags.IntVar(&o.Concurrency, "concurrency", runtime.NumCPU(), "number of shaping workers")
	flags.StringVar(&o.TablePrefix, "table-prefix", "", "prefix for all tables or CSV files")
	flags.StringVar(&o.Schema, "schema", defaultSchema, "database schema")
}

// Finish loads the config file and checks all options. It returns all
// errors at once.
func (o *Import) Finish(flags *pflag.FlagSet) []error {
	if o.ConfigFile != "" {
		conf, err := Load(o.ConfigFile)
		if err != nil {
			return []error{err}
		}
		o.updateFromConfig(flags, conf)
	}
	return o.check()
}

func (o *Import) updateFromConfig(flags *pflag.FlagSet, conf *Config) {
	o.Base.updateFromConfig(flags, conf)
	if !flags.Changed("schema") && conf.Schema != "" {
		o.Schema = conf.Schema
	}
	if !flags.Changed("table-prefix") && conf.TablePrefix != "" {
		o.TablePrefix = conf.TablePrefix
	}
	if !flags.Changed("concurrency") && conf.Concurrency != 0 {
		o.Concurrency = conf.Concurrency
	}
	if !flags.Changed("validate") && conf.Validate != nil {
		o.Validate = *conf.Validate
	}
	if !flags.Changed("audit") && conf.Audit != nil {
		o.Audit = *conf.Audit
	}
}

func (o *Import) check() []error {
	errs := o.Base.check()
	if o.Read == "" {
		errs = append(errs, errors.New("missing --read"))
	}
	if o.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("--concurrency must be >= 1, got %d", o.Concurrency))
	}
	if strings.ContainsAny(o.TablePrefix, `/\"`) {
		errs = append(errs, fmt.Errorf("invalid --table-prefix %q", o.TablePrefix))
	}
	return errs
}

// DatabaseConfig returns the configuration for database.Open.
func (o *Import) DatabaseConfig() database.Config {
	return database.Config{
		ConnectionParams: o.Connection,
		Schema:           o.Schema,
		TablePrefix:      o.TablePrefix,
	}
}

type Sample struct {
	Read     string
	Output   string
	Every    int
	Progress bool
}

func AddSampleFlags(flags *pflag.FlagSet, o *Sample) {
	flags.StringVar(&o.Read, "read", "", "OSM file to sample")
	flags.StringVar(&o.Output, "output", "", "output OSM XML file")
	flags.IntVarP(&o.Every, "every", "k", defaultEvery, "keep every k-th element")
	flags.BoolVar(&o.Progress, "progress", false, "show progress bar while reading")
}

func (o *Sample) Check() []error {
	errs := []error{}
	if o.Read == "" {
		errs = append(errs, errors.New("missing --read"))
	}
	if o.Output == "" {
		errs = append(errs, errors.New("missing --output"))
	}
	if o.Read != "" && o.Read == o.Output {
		errs = append(errs, errors.New("--output must differ from --read"))
	}
	if o.Every < 1 {
		errs = append(errs, fmt.Errorf("-k must be >= 1, got %d", o.Every))
	}
	return errs
}
