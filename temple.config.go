package temple

import (
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config is the YAML form of the engine configuration.
//
//	marks:
//	  start: "{{"
//	  end: "}}"
//	max_depth: 16
//	formats:
//	  date: "02.01.2006"
//	  timezoneOffset: 60
//	source:
//	  driver: filesystem
//	  dsn: ./templates
//	cache:
//	  ttl: 5m
//	  max_entries: 1000
type Config struct {
	Marks    MarksConfig  `yaml:"marks"`
	MaxDepth int          `yaml:"max_depth"`
	Formats  Formats      `yaml:"formats"`
	Source   SourceConfig `yaml:"source"`
	Cache    *CacheConfig `yaml:"cache"`
}

// MarksConfig holds the tag marks.
type MarksConfig struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// SourceConfig selects a template source driver.
type SourceConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConfigError(ErrMsgConfigRead, path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, NewConfigError(ErrMsgConfigParse, path, err)
	}
	return cfg, nil
}

// ParseConfig parses YAML config bytes.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// OpenSource opens the configured source, wrapped in a CachedSource when
// a cache section is present. Returns nil without a driver.
func (c *Config) OpenSource(logger *zap.Logger) (TemplateSource, error) {
	if c.Source.Driver == "" {
		return nil, nil
	}
	src, err := OpenSource(c.Source.Driver, c.Source.DSN)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Debug(LogMsgSourceOpened,
			zap.String(LogFieldDriver, c.Source.Driver),
			zap.Bool(LogFieldCached, c.Cache != nil))
	}
	if c.Cache != nil {
		return NewCachedSource(src, *c.Cache), nil
	}
	return src, nil
}

// Options turns the config into engine options. The source is not
// opened here; pass it with WithSource.
func (c *Config) Options() []Option {
	var opts []Option
	if c.Marks.Start != "" || c.Marks.End != "" {
		opts = append(opts, WithMarks(c.Marks.Start, c.Marks.End))
	}
	if c.MaxDepth != 0 {
		opts = append(opts, WithMaxDepth(c.MaxDepth))
	}
	if c.Formats != (Formats{}) {
		opts = append(opts, WithFormats(c.Formats))
	}
	return opts
}
