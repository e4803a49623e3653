// Package config loads layered csv2mgc settings.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/gridcase/csv2mgc/pkg/model"
)

const (
	// DefaultFile is read from the working directory when present.
	DefaultFile = "csv2mgc.toml"
	envPrefix   = "CSV2MGC_"
)

// Config holds all configuration for the application
type Config struct {
	ConfigFile string `koanf:"config"`
	Name       string `koanf:"name"`
	Output     string `koanf:"output"` // empty or "-" writes to stdout
	Dir        string `koanf:"dir"`

	Junctions   string `koanf:"junctions"`
	Pipes       string `koanf:"pipes"`
	Compressors string `koanf:"compressors"`
	Regulators  string `koanf:"regulators"`
	Resistors   string `koanf:"resistors"`
	Producers   string `koanf:"producers"`
	Consumers   string `koanf:"consumers"`
	Generators  string `koanf:"generators"`
	Storage     string `koanf:"storage"`

	Verbose int  `koanf:"verbose"`
	Quiet   bool `koanf:"quiet"`
	JSON    bool `koanf:"json"`

	Watch bool `koanf:"watch"`
	Web   bool `koanf:"web"`
	Port  int  `koanf:"port"`

	// Case holds case metadata overrides, e.g. [case] temperature = 288.15.
	Case map[string]any `koanf:"case"`
	// Set holds key=value metadata overrides from the command line.
	Set []string `koanf:"set"`
}

// NewFlagSet defines the command-line flags.
func NewFlagSet(name string) *pflag.FlagSet {
	f := pflag.NewFlagSet(name, pflag.ContinueOnError)
	f.String("config", DefaultFile, "Configuration file")
	f.StringP("name", "n", "", "Model name")
	f.StringP("output", "o", "", "Output file (default stdout)")
	f.StringP("dir", "d", "", "Directory searched for <kind>.csv files")
	for _, kind := range model.DecodeOrder {
		f.String(kind.Plural(), "", fmt.Sprintf("CSV file with %s records", kind))
	}
	f.StringSlice("set", nil, "Case metadata override key=value (repeatable)")
	f.CountP("verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	f.BoolP("quiet", "q", false, "Only log errors")
	f.Bool("json", false, "Log as JSON")
	f.BoolP("watch", "w", false, "Rebuild when input files change")
	f.Bool("web", false, "Serve the case over HTTP")
	f.IntP("port", "p", 8080, "Port for the web server (only used with --web)")
	return f
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	defaults := map[string]interface{}{
		"config":  DefaultFile,
		"name":    "",
		"output":  "",
		"dir":     "",
		"verbose": 0,
		"quiet":   false,
		"json":    false,
		"watch":   false,
		"web":     false,
		"port":    8080,
	}
	if err := k.Load(makeMapProvider(defaults), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file (optional unless named explicitly)
	path, explicit := configPath(f)
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// 3. Environment Variables
	// Prefix: CSV2MGC_ (e.g., CSV2MGC_PORT=9090, CSV2MGC_CASE_GAS_MOLAR_MASS=0.018)
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.ConfigFile = path

	return &cfg, nil
}

// envKey maps CSV2MGC_CASE_BASE_PRESSURE to case.base_pressure. Only the first
// underscore separates levels since metadata keys contain underscores.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.Replace(key, "_", ".", 1)
}

func configPath(f *pflag.FlagSet) (string, bool) {
	if f != nil {
		if fl := f.Lookup("config"); fl != nil && fl.Changed {
			return fl.Value.String(), true
		}
	}
	if v, ok := os.LookupEnv(envPrefix + "CONFIG"); ok && v != "" {
		return v, true
	}
	return DefaultFile, false
}

// Overrides returns the case metadata overrides, --set entries taking
// precedence over the [case] table. Name, when set, overrides both.
func (c *Config) Overrides() (model.Attrs, error) {
	attrs := model.Attrs{}
	for k, v := range c.Case {
		attrs[k] = v
	}
	for _, kv := range c.Set {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q: expected key=value", kv)
		}
		attrs[key] = strings.TrimSpace(value)
	}
	if c.Name != "" {
		attrs["name"] = c.Name
	}
	return attrs, nil
}

// KindFiles returns the files named explicitly per kind.
func (c *Config) KindFiles() map[model.Kind][]string {
	named := map[model.Kind]string{
		model.KindJunction:   c.Junctions,
		model.KindPipe:       c.Pipes,
		model.KindCompressor: c.Compressors,
		model.KindRegulator:  c.Regulators,
		model.KindResistor:   c.Resistors,
		model.KindProducer:   c.Producers,
		model.KindConsumer:   c.Consumers,
		model.KindGenerator:  c.Generators,
		model.KindStorage:    c.Storage,
	}
	files := make(map[model.Kind][]string)
	for kind, path := range named {
		if path != "" {
			files[kind] = []string{path}
		}
	}
	return files
}

// Validate checks option combinations.
func (c *Config) Validate() error {
	if c.Dir == "" && len(c.KindFiles()) == 0 {
		return errors.New("no input: pass --dir or at least one --<kind> file")
	}
	if c.Web && (c.Port <= 0 || c.Port > 65535) {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Verbose > 0 && c.Quiet {
		return errors.New("--verbose and --quiet are mutually exclusive")
	}
	return nil
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
