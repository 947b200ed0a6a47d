// Package config loads boda.yaml and overlays .env and BODA_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the data directory.
const FileName = "boda.yaml"

// Config represents the top-level boda.yaml configuration. Relative paths
// are resolved against DataDir.
type Config struct {
	DataDir    string           `yaml:"data_dir,omitempty"`
	Ledger     LedgerConfig     `yaml:"ledger"`
	Contacts   ContactsConfig   `yaml:"contacts"`
	Import     ImportConfig     `yaml:"import"`
	Categories CategoriesConfig `yaml:"categories"`
	Reconcile  ReconcileConfig  `yaml:"reconcile"`
	Audit      AuditConfig      `yaml:"audit"`
	Log        LogConfig        `yaml:"log"`
}

// LedgerConfig locates the ledger document.
type LedgerConfig struct {
	Path string `yaml:"path"`
}

// ContactsConfig selects the contacts backend.
type ContactsConfig struct {
	Backend string `yaml:"backend"` // json or sqlite
	Path    string `yaml:"path"`
}

// ImportConfig controls message imports.
type ImportConfig struct {
	Dir       string `yaml:"dir"`
	QueueFile string `yaml:"queue_file"`
	Policy    string `yaml:"policy"` // prompt, skip or queue
}

// CategoriesConfig controls categorization.
type CategoriesConfig struct {
	RulesFile    string `yaml:"rules_file,omitempty"`
	StrictPrefix bool   `yaml:"strict_prefix"`
}

// ReconcileConfig controls balance verification.
type ReconcileConfig struct {
	Tolerance string `yaml:"tolerance"`
}

// AuditConfig locates the audit log. An empty path disables it.
type AuditConfig struct {
	Path string `yaml:"path"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

var (
	validBackends = []string{"json", "sqlite"}
	validPolicies = []string{"prompt", "skip", "queue"}
)

// Default returns a Config with the standard layout under dataDir.
func Default(dataDir string) *Config {
	return &Config{
		DataDir:  dataDir,
		Ledger:   LedgerConfig{Path: "ledger.json"},
		Contacts: ContactsConfig{Backend: "json", Path: "contacts.json"},
		Import: ImportConfig{
			Dir:       "import",
			QueueFile: filepath.Join("review", "queue.txt"),
			Policy:    "prompt",
		},
		Reconcile: ReconcileConfig{Tolerance: "10"},
		Audit:     AuditConfig{Path: filepath.Join("logs", "audit.csv")},
		Log:       LogConfig{Level: "warn"},
	}
}

// Load reads a boda.yaml file from disk. Keys missing from the file keep
// their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default(filepath.Dir(path))
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, falling back to Default for the file's directory
// when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(filepath.Dir(path)), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file. DataDir is omitted when it matches
// the file's directory.
func Save(path string, cfg *Config) error {
	out := *cfg
	if filepath.Clean(out.DataDir) == filepath.Clean(filepath.Dir(path)) {
		out.DataDir = ""
	}
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// LoadEnvFile loads .env files into the process environment without
// overriding variables already set. Missing files are ignored.
func LoadEnvFile(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from BODA_* environment variables.
func (c *Config) ApplyEnv() {
	c.DataDir = getEnv("BODA_DATA_DIR", c.DataDir)
	c.Ledger.Path = getEnv("BODA_LEDGER_PATH", c.Ledger.Path)
	c.Contacts.Backend = getEnv("BODA_CONTACTS_BACKEND", c.Contacts.Backend)
	c.Contacts.Path = getEnv("BODA_CONTACTS_PATH", c.Contacts.Path)
	c.Import.Dir = getEnv("BODA_IMPORT_DIR", c.Import.Dir)
	c.Import.QueueFile = getEnv("BODA_QUEUE_FILE", c.Import.QueueFile)
	c.Import.Policy = getEnv("BODA_IMPORT_POLICY", c.Import.Policy)
	c.Categories.RulesFile = getEnv("BODA_RULES_FILE", c.Categories.RulesFile)
	c.Categories.StrictPrefix = getEnvBool("BODA_STRICT_PREFIX", c.Categories.StrictPrefix)
	c.Reconcile.Tolerance = getEnv("BODA_TOLERANCE", c.Reconcile.Tolerance)
	c.Audit.Path = getEnv("BODA_AUDIT_LOG", c.Audit.Path)
	c.Log.Level = getEnv("BODA_LOG_LEVEL", c.Log.Level)
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Ledger.Path == "" {
		problems = append(problems, "ledger path cannot be empty")
	}
	if !slices.Contains(validBackends, c.Contacts.Backend) {
		problems = append(problems, fmt.Sprintf("invalid contacts backend %q: must be one of %v", c.Contacts.Backend, validBackends))
	} else if c.Contacts.Path == "" {
		problems = append(problems, "contacts path cannot be empty")
	}
	if !slices.Contains(validPolicies, c.Import.Policy) {
		problems = append(problems, fmt.Sprintf("invalid import policy %q: must be one of %v", c.Import.Policy, validPolicies))
	}
	if c.Import.Policy == "queue" && c.Import.QueueFile == "" {
		problems = append(problems, "queue file is required when the import policy is queue")
	}
	if _, err := c.Tolerance(); err != nil {
		problems = append(problems, err.Error())
	}
	if _, err := c.LogLevel(); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// Tolerance returns the balance verification tolerance.
func (c *Config) Tolerance() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(c.Reconcile.Tolerance))
	if err != nil || d.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid reconcile tolerance %q: must be a non-negative number", c.Reconcile.Tolerance)
	}
	return d, nil
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelWarn, fmt.Errorf("invalid log level %q: must be debug, info, warn or error", c.Log.Level)
	}
	return lvl, nil
}

// Resolve returns p relative to DataDir unless it is absolute or empty.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
