package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/tristendillon/modelsync/core/logger"
	"gopkg.in/yaml.v3"
)

const DefaultFileName = "modelsync.yaml"

var candidateNames = []string{
	"modelsync.yaml",
	"modelsync.yml",
	"modelsync.toml",
	"modelsync.json",
}

var ErrUnknownKey = errors.New("unknown config key")

const (
	SourceFile   = "file"
	SourceCUE    = "cue"
	SourceRemote = "remote"
)

type Config struct {
	Schema Schema `yaml:"schema" json:"schema" toml:"schema"`
	Output Output `yaml:"output" json:"output" toml:"output"`
	Watch  Watch  `yaml:"watch" json:"watch" toml:"watch"`
	Server Server `yaml:"server" json:"server" toml:"server"`

	path string `toml:"-"`
}

type Schema struct {
	Source string `yaml:"source" json:"source" toml:"source"`
	Path   string `yaml:"path" json:"path" toml:"path"`
	URL    string `yaml:"url" json:"url" toml:"url"`
}

type Output struct {
	Location            string `yaml:"location" json:"location" toml:"location"`
	TypeScript          bool   `yaml:"typescript" json:"typescript" toml:"typescript"`
	JavaScriptExtension string `yaml:"javascript_extension" json:"javascript_extension" toml:"javascript_extension"`
	UseRequire          bool   `yaml:"use_require" json:"use_require" toml:"use_require"`
	Library             string `yaml:"library" json:"library" toml:"library"`
}

type Watch struct {
	Stage    string `yaml:"stage" json:"stage" toml:"stage"`
	Debounce string `yaml:"debounce" json:"debounce" toml:"debounce"`
}

type Server struct {
	Host string `yaml:"host" json:"host" toml:"host"`
	Port int    `yaml:"port" json:"port" toml:"port"`
}

func Default() *Config {
	return &Config{
		Schema: Schema{
			Source: SourceFile,
			Path:   "schema.yaml",
			URL:    "ws://localhost:8650/ws",
		},
		Output: Output{
			Location:            filepath.Join("src", "model"),
			TypeScript:          false,
			JavaScriptExtension: "js",
			UseRequire:          true,
			Library:             "@frusal/library-for-node",
		},
		Watch: Watch{
			Stage:    "cli.watcher",
			Debounce: "250ms",
		},
		Server: Server{
			Host: "localhost",
			Port: 8650,
		},
	}
}

// Load reads the config file at path, or the first candidate file in the
// working directory when path is empty. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("cannot determine working dir: %w", err)
		}
		path = Find(wd)
	}

	if path == "" {
		logger.Debug("No config file found, using default config")
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := Parse(data, formatOf(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.path = path
	logger.Debug("Config file found: %s", path)
	logger.Debug("Config: %+v", *cfg)

	return cfg, nil
}

// Find returns the first config file present in dir, or "".
func Find(dir string) string {
	for _, name := range candidateNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Parse decodes data over the defaults so absent keys keep their default value.
func Parse(data []byte, format string) (*Config, error) {
	cfg := Default()
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse json: %w", err)
		}
	case "toml":
		tree, err := toml.LoadBytes(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse toml: %w", err)
		}
		// Round trip through json so absent keys keep their defaults.
		raw, err := json.Marshal(tree.ToMap())
		if err != nil {
			return nil, fmt.Errorf("failed to convert toml: %w", err)
		}
		if err := json.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".toml":
		return "toml"
	default:
		return "yaml"
	}
}

func (c *Config) Validate() error {
	switch c.Schema.Source {
	case SourceFile, SourceCUE, SourceRemote:
	default:
		return fmt.Errorf("schema.source must be one of %s, %s or %s, got %q", SourceFile, SourceCUE, SourceRemote, c.Schema.Source)
	}
	if c.Output.Location == "" {
		return errors.New("output.location must not be empty")
	}
	if !c.Output.TypeScript && c.Output.JavaScriptExtension == "" {
		return errors.New("output.javascript_extension must not be empty")
	}
	if _, err := c.Watch.DebounceDuration(); err != nil {
		return err
	}
	return nil
}

// Path returns the file the config was loaded from, or "" for defaults.
func (c *Config) Path() string {
	return c.path
}

func (w Watch) DebounceDuration() (time.Duration, error) {
	if w.Debounce == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(w.Debounce)
	if err != nil {
		return 0, fmt.Errorf("watch.debounce: %w", err)
	}
	return d, nil
}

// StubExtension is the extension of the hand-editable stub files.
func (o Output) StubExtension() string {
	if o.TypeScript {
		return "ts"
	}
	return strings.TrimPrefix(o.JavaScriptExtension, ".")
}

// Save writes the config to path in the format implied by its extension.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	switch formatOf(path) {
	case "json":
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	case "toml":
		data, err = toml.Marshal(*c)
	default:
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	c.path = path
	return nil
}

// Keys lists every key accepted by Get and Set.
func Keys() []string {
	return []string{
		"schema.source",
		"schema.path",
		"schema.url",
		"output.location",
		"output.typescript",
		"output.javascript_extension",
		"output.use_require",
		"output.library",
		"watch.stage",
		"watch.debounce",
		"server.host",
		"server.port",
	}
}

func (c *Config) Get(key string) (string, error) {
	switch key {
	case "schema.source":
		return c.Schema.Source, nil
	case "schema.path":
		return c.Schema.Path, nil
	case "schema.url":
		return c.Schema.URL, nil
	case "output.location":
		return c.Output.Location, nil
	case "output.typescript":
		return strconv.FormatBool(c.Output.TypeScript), nil
	case "output.javascript_extension":
		return c.Output.JavaScriptExtension, nil
	case "output.use_require":
		return strconv.FormatBool(c.Output.UseRequire), nil
	case "output.library":
		return c.Output.Library, nil
	case "watch.stage":
		return c.Watch.Stage, nil
	case "watch.debounce":
		return c.Watch.Debounce, nil
	case "server.host":
		return c.Server.Host, nil
	case "server.port":
		return strconv.Itoa(c.Server.Port), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

// Set assigns a value by key and validates the result.
func (c *Config) Set(key, value string) error {
	next := *c
	switch key {
	case "schema.source":
		next.Schema.Source = value
	case "schema.path":
		next.Schema.Path = value
	case "schema.url":
		next.Schema.URL = value
	case "output.location":
		next.Output.Location = value
	case "output.typescript", "output.use_require":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if key == "output.typescript" {
			next.Output.TypeScript = b
		} else {
			next.Output.UseRequire = b
		}
	case "output.javascript_extension":
		next.Output.JavaScriptExtension = value
	case "output.library":
		next.Output.Library = value
	case "watch.stage":
		next.Watch.Stage = value
	case "watch.debounce":
		next.Watch.Debounce = value
	case "server.host":
		next.Server.Host = value
	case "server.port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		next.Server.Port = port
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

func (c *Config) Status() string {
	file := c.path
	if file == "" {
		file = "(defaults, no config file)"
	}
	lang := "JavaScript (." + c.Output.StubExtension() + ")"
	if c.Output.TypeScript {
		lang = "TypeScript"
	}
	modules := "import"
	if c.Output.UseRequire {
		modules = "require"
	}
	return fmt.Sprintf("Config file: %s\nSchema source: %s (%s)\nSource code model location: %s\nSource code language: %s, %s modules\nLibrary: %s",
		file, c.Schema.Source, c.SchemaLocation(), c.Output.Location, lang, modules, c.Output.Library)
}

// SchemaLocation is the path or URL the configured schema source reads from.
func (c *Config) SchemaLocation() string {
	if c.Schema.Source == SourceRemote {
		return c.Schema.URL
	}
	return c.Schema.Path
}
