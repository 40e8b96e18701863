package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Sources
	SrcDir     string   `yaml:"src_dir"`
	Extensions []string `yaml:"extensions"`
	Exclude    []string `yaml:"exclude"` // Glob patterns matched against slash-separated relative paths

	// Parsing
	Keywords []string `yaml:"keywords"`
	Pairing  string   `yaml:"pairing"`

	// Output
	OutDir   string `yaml:"out_dir"`
	CodeLang string `yaml:"code_lang"`
	HTML     bool   `yaml:"html"`
	DOCX     bool   `yaml:"docx"`

	// Worker pool
	Workers int `yaml:"workers"`

	// Source links in the index page; resolved from git when empty.
	RepoURL string `yaml:"repo_url"`
	Branch  string `yaml:"branch"`

	// Preview server
	Port           string `yaml:"port"`
	APIKey         string `yaml:"api_key"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`

	LogLevel string `yaml:"log_level"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		SrcDir:         "./src",
		Extensions:     []string{".sv", ".svh", ".v", ".vh"},
		Keywords:       []string{"module"},
		Pairing:        "nearest",
		OutDir:         "./docs_md",
		CodeLang:       "systemverilog",
		HTML:           true,
		Workers:        4,
		Port:           "8090",
		MaxUploadBytes: 5 << 20, // 5MB
		LogLevel:       "info",
	}
}

// Load builds the configuration from the defaults, the optional YAML file
// named by SVDOC_CONFIG (or ./svdoc.yaml when present), and environment
// overrides, in that order.
func Load() (Config, error) {
	cfg := Defaults()

	path := os.Getenv("SVDOC_CONFIG")
	required := path != ""
	if path == "" {
		path = "svdoc.yaml"
	}
	if err := LoadFile(path, &cfg); err != nil {
		if required || !errors.Is(err, fs.ErrNotExist) {
			return cfg, err
		}
	}

	cfg.applyEnv()
	cfg.clamp()
	return cfg, nil
}

// LoadFile decodes the YAML file at path over cfg. Keys absent from the file
// keep their current values.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.SrcDir = envOr("SVDOC_SRC_DIR", c.SrcDir)
	c.OutDir = envOr("SVDOC_OUT_DIR", c.OutDir)
	c.Extensions = envList("SVDOC_EXTENSIONS", c.Extensions)
	c.Exclude = envList("SVDOC_EXCLUDE", c.Exclude)
	c.Keywords = envList("SVDOC_KEYWORDS", c.Keywords)
	c.Pairing = envOr("SVDOC_PAIRING", c.Pairing)
	c.CodeLang = envOr("SVDOC_CODE_LANG", c.CodeLang)
	c.HTML = envBool("SVDOC_HTML", c.HTML)
	c.DOCX = envBool("SVDOC_DOCX", c.DOCX)
	c.Workers = envInt("SVDOC_WORKERS", c.Workers)
	c.RepoURL = envOr("SVDOC_REPO_URL", c.RepoURL)
	c.Branch = envOr("SVDOC_BRANCH", c.Branch)
	c.Port = envOr("SVDOC_PORT", c.Port)
	c.APIKey = envOr("SVDOC_API_KEY", c.APIKey)
	c.MaxUploadBytes = envInt64("SVDOC_MAX_UPLOAD_BYTES", c.MaxUploadBytes)
	c.LogLevel = envOr("SVDOC_LOG_LEVEL", c.LogLevel)
}

func (c *Config) clamp() {
	d := Defaults()
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = d.MaxUploadBytes
	}
	if len(c.Extensions) == 0 {
		c.Extensions = d.Extensions
	}
	if len(c.Keywords) == 0 {
		c.Keywords = d.Keywords
	}
	if c.Pairing == "" {
		c.Pairing = d.Pairing
	}
	if c.CodeLang == "" {
		c.CodeLang = d.CodeLang
	}
	for i, ext := range c.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Extensions[i] = ext
	}
}

func (c Config) Validate() error {
	if c.SrcDir == "" {
		return fmt.Errorf("src_dir is required")
	}
	if c.OutDir == "" {
		return fmt.Errorf("out_dir is required")
	}
	switch c.Pairing {
	case "nearest", "positional":
	default:
		return fmt.Errorf("pairing must be nearest or positional, got %q", c.Pairing)
	}
	for _, k := range c.Keywords {
		if k == "" || strings.ContainsAny(k, " \t\n") {
			return fmt.Errorf("invalid definition keyword %q", k)
		}
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return lvl, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
