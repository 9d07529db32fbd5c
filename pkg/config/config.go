package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"clipdata/pkg/errors"
	"clipdata/pkg/filter"
	"clipdata/pkg/mwe"
	"clipdata/pkg/tabular"
	"clipdata/pkg/utils"

	"gopkg.in/yaml.v3"
)

const (
	DefaultHistoryMaxEntries = 200
	DefaultHistoryTTL        = 30 * 24 * time.Hour
	DefaultOutputFormat      = "table"
)

// Preset is a named set of read/write settings, e.g. for a spreadsheet
// locale that uses semicolons and decimal commas.
type Preset struct {
	Name  string      `json:"name" yaml:"name"`
	Read  ReadConfig  `json:"read,omitempty" yaml:"read,omitempty"`
	Write WriteConfig `json:"write,omitempty" yaml:"write,omitempty"`
}

// Config holds the complete configuration including presets
type Config struct {
	Read         ReadConfig    `json:"read" yaml:"read"`
	Write        WriteConfig   `json:"write" yaml:"write"`
	MWE          MWEConfig     `json:"mwe" yaml:"mwe"`
	History      HistoryConfig `json:"history" yaml:"history"`
	OutputFormat string        `json:"output_format,omitempty" yaml:"output_format,omitempty"`
	Presets      []Preset      `json:"presets,omitempty" yaml:"presets,omitempty"`
	ActivePreset string        `json:"active_preset,omitempty" yaml:"active_preset,omitempty"`
}

type ReadConfig struct {
	Delimiter      string   `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`
	NormalizeNames bool     `json:"normalize_names,omitempty" yaml:"normalize_names,omitempty"`
	Missing        []string `json:"missing,omitempty" yaml:"missing,omitempty"`
	Decimal        string   `json:"decimal,omitempty" yaml:"decimal,omitempty"`
	Comment        string   `json:"comment,omitempty" yaml:"comment,omitempty"`
}

type WriteConfig struct {
	Delimiter string `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`
	Missing   string `json:"missing,omitempty" yaml:"missing,omitempty"`
	Decimal   string `json:"decimal,omitempty" yaml:"decimal,omitempty"`
	// Rich offers an HTML table next to the text where the platform can.
	Rich *bool `json:"rich,omitempty" yaml:"rich,omitempty"`
}

type MWEConfig struct {
	Lang       string `json:"lang,omitempty" yaml:"lang,omitempty"`
	TableName  string `json:"table_name,omitempty" yaml:"table_name,omitempty"`
	MatrixName string `json:"matrix_name,omitempty" yaml:"matrix_name,omitempty"`
	VectorName string `json:"vector_name,omitempty" yaml:"vector_name,omitempty"`
}

type HistoryConfig struct {
	Enabled    *bool         `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	MaxEntries int           `json:"max_entries,omitempty" yaml:"max_entries,omitempty"`
	TTL        time.Duration `json:"ttl,omitempty" yaml:"ttl,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load loads the configuration, optionally applying a specific preset
func Load(presetName ...string) (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, errors.NewWithError(errors.ExitCodeConfig, "failed to get config path", err)
	}
	return loadFromPath(configPath, presetName...)
}

// LoadFile reads the config file as written, without environment
// overrides, presets or defaults. Commands that edit and save the file
// start from it.
func LoadFile() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, errors.NewWithError(errors.ExitCodeConfig, "failed to get config path", err)
	}
	cfg := &Config{}
	if err := loadConfigFile(configPath, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetConfigPath returns the path to the config file. CLIPDATA_CONFIG
// overrides the default location under the user config directory.
func GetConfigPath() (string, error) {
	if p := os.Getenv("CLIPDATA_CONFIG"); p != "" {
		return p, nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "clipdata", "config.yaml"), nil
}

// Save saves the configuration to file
func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}
	return saveToPath(configPath, cfg)
}

func saveToPath(configPath string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return errors.NewWithError(errors.ExitCodeFileOperation, "failed to create config directory", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.NewWithError(errors.ExitCodeConfig, "failed to marshal config", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return errors.NewWithError(errors.ExitCodeFileOperation, "failed to write config file", err)
	}

	return nil
}

// GetPreset returns a preset by name
func (c *Config) GetPreset(name string) (*Preset, error) {
	for i := range c.Presets {
		if c.Presets[i].Name == name {
			return &c.Presets[i], nil
		}
	}
	return nil, errors.NotFoundErrorWithSuggestions(fmt.Sprintf("preset '%s'", name), c.similarPresets(name))
}

func (c *Config) similarPresets(name string) []string {
	return filter.Suggest(name, c.ListPresets())
}

// SetPreset sets the active preset
func (c *Config) SetPreset(name string) error {
	if name == "" {
		c.ActivePreset = ""
		return nil
	}

	if _, err := c.GetPreset(name); err != nil {
		return err
	}

	c.ActivePreset = name
	return nil
}

// AddPreset adds a new preset
func (c *Config) AddPreset(preset Preset) error {
	if preset.Name == "" {
		return errors.ValidationError("preset name must not be empty")
	}
	if _, err := c.GetPreset(preset.Name); err == nil {
		return errors.ValidationError(fmt.Sprintf("preset '%s' already exists", preset.Name))
	}
	if err := validateRead(preset.Read); err != nil {
		return err
	}
	if err := validateWrite(preset.Write); err != nil {
		return err
	}

	c.Presets = append(c.Presets, preset)
	return nil
}

// RemovePreset removes a preset
func (c *Config) RemovePreset(name string) error {
	if c.ActivePreset == name {
		return errors.ValidationError(fmt.Sprintf("cannot remove active preset '%s'", name))
	}

	for i, p := range c.Presets {
		if p.Name == name {
			c.Presets = append(c.Presets[:i], c.Presets[i+1:]...)
			return nil
		}
	}
	_, err := c.GetPreset(name)
	return err
}

// ListPresets returns a list of preset names
func (c *Config) ListPresets() []string {
	names := make([]string, 0, len(c.Presets))
	for _, p := range c.Presets {
		names = append(names, p.Name)
	}
	return names
}

// IsPresetActive returns true if the given preset is active
func (c *Config) IsPresetActive(name string) bool {
	return c.ActivePreset == name
}

// HistoryEnabled reports whether transfers are recorded.
func (c *Config) HistoryEnabled() bool {
	return utils.Deref(c.History.Enabled, true)
}

// RichCopy reports whether copies offer an HTML table.
func (c *Config) RichCopy() bool {
	return utils.Deref(c.Write.Rich, true)
}

// ReadOptions converts the read settings to parser options. Values were
// validated on load, so conversion cannot fail here.
func (c *Config) ReadOptions() tabular.ReadOptions {
	delim, _ := ParseDelimiter(c.Read.Delimiter)
	decimal, _ := parseRune(c.Read.Decimal)
	return tabular.ReadOptions{
		Delimiter:      delim,
		NormalizeNames: c.Read.NormalizeNames,
		MissingStrings: c.Read.Missing,
		Decimal:        decimal,
		Comment:        c.Read.Comment,
	}
}

func (c *Config) WriteOptions() tabular.WriteOptions {
	delim, _ := ParseDelimiter(c.Write.Delimiter)
	decimal, _ := parseRune(c.Write.Decimal)
	return tabular.WriteOptions{
		Delimiter: delim,
		Missing:   c.Write.Missing,
		Decimal:   decimal,
	}
}

// ParseDelimiter accepts a single character, an escape such as `\t`, or
// a name: tab, comma, semicolon, pipe, space. Empty means auto-detect.
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return 0, nil
	case "tab", `\t`, "\t":
		return '\t', nil
	case "comma":
		return ',', nil
	case "semicolon":
		return ';', nil
	case "pipe":
		return '|', nil
	case "space":
		return ' ', nil
	}
	r, err := parseRune(s)
	if err != nil {
		return 0, fmt.Errorf("invalid delimiter %q: %w", s, err)
	}
	if r == '"' || r == '\n' || r == '\r' {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r, nil
}

func parseRune(s string) (rune, error) {
	if s == "" {
		return 0, nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("want a single character")
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string) (bool, bool) {
	value := os.Getenv(key)
	if value == "" {
		return false, false
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, false
	}
	return parsed, true
}

func loadFromPath(configPath string, presetName ...string) (*Config, error) {
	cfg := &Config{}

	if err := loadConfigFile(configPath, cfg); err != nil {
		return nil, err
	}

	applyEnvironmentOverrides(cfg)

	// Apply preset if specified or if there's an active preset
	targetPreset := cfg.ActivePreset
	if len(presetName) > 0 && presetName[0] != "" {
		targetPreset = presetName[0]
	}

	if targetPreset != "" {
		preset, err := cfg.GetPreset(targetPreset)
		if err != nil {
			return nil, err
		}
		applyPresetConfig(cfg, preset)
	}

	applyDefaults(cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyPresetConfig(cfg *Config, preset *Preset) {
	if preset.Read.Delimiter != "" {
		cfg.Read.Delimiter = preset.Read.Delimiter
	}
	if preset.Read.NormalizeNames {
		cfg.Read.NormalizeNames = true
	}
	if len(preset.Read.Missing) > 0 {
		cfg.Read.Missing = preset.Read.Missing
	}
	if preset.Read.Decimal != "" {
		cfg.Read.Decimal = preset.Read.Decimal
	}
	if preset.Read.Comment != "" {
		cfg.Read.Comment = preset.Read.Comment
	}
	if preset.Write.Delimiter != "" {
		cfg.Write.Delimiter = preset.Write.Delimiter
	}
	if preset.Write.Missing != "" {
		cfg.Write.Missing = preset.Write.Missing
	}
	if preset.Write.Decimal != "" {
		cfg.Write.Decimal = preset.Write.Decimal
	}
	if preset.Write.Rich != nil {
		cfg.Write.Rich = preset.Write.Rich
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Write.Delimiter == "" {
		cfg.Write.Delimiter = "tab"
	}
	if cfg.MWE.Lang == "" {
		cfg.MWE.Lang = string(mwe.Julia)
	}
	if cfg.MWE.TableName == "" {
		cfg.MWE.TableName = mwe.DefaultTableName
	}
	if cfg.MWE.MatrixName == "" {
		cfg.MWE.MatrixName = mwe.DefaultMatrixName
	}
	if cfg.MWE.VectorName == "" {
		cfg.MWE.VectorName = mwe.DefaultVectorName
	}
	if cfg.History.MaxEntries == 0 {
		cfg.History.MaxEntries = DefaultHistoryMaxEntries
	}
	if cfg.History.TTL == 0 {
		cfg.History.TTL = DefaultHistoryTTL
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = DefaultOutputFormat
	}
}

// loadConfigFile reads and parses the config file from the given path
func loadConfigFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		// No file means defaults.
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.NewWithError(errors.ExitCodeFileOperation, "failed to read config file", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.NewWithError(errors.ExitCodeConfig, "failed to parse config file", err)
	}

	return nil
}

// applyEnvironmentOverrides applies environment variable overrides to the config
func applyEnvironmentOverrides(cfg *Config) {
	cfg.OutputFormat = getEnv("CLIPDATA_FORMAT", cfg.OutputFormat)
	cfg.MWE.Lang = getEnv("CLIPDATA_MWE_LANG", cfg.MWE.Lang)

	if enabled, ok := getEnvBool("CLIPDATA_HISTORY"); ok {
		cfg.History.Enabled = &enabled
	}

	// Preset can be overridden via environment
	if presetEnv := os.Getenv("CLIPDATA_PRESET"); presetEnv != "" {
		cfg.ActivePreset = presetEnv
	}
}

// validateConfig rejects settings that would only fail later, mid-transfer.
func validateConfig(cfg *Config) error {
	if err := validateRead(cfg.Read); err != nil {
		return err
	}
	if err := validateWrite(cfg.Write); err != nil {
		return err
	}
	if _, err := mwe.ParseLang(cfg.MWE.Lang); err != nil {
		return errors.ConfigError(fmt.Sprintf("mwe.lang: %v", err))
	}
	if !isOutputFormat(cfg.OutputFormat) {
		return errors.ConfigError(fmt.Sprintf("output_format %q is not one of %s", cfg.OutputFormat, strings.Join(OutputFormats(), ", ")))
	}
	if cfg.History.MaxEntries < 0 || cfg.History.TTL < 0 {
		return errors.ConfigError("history.max_entries and history.ttl must not be negative")
	}
	return nil
}

func validateRead(r ReadConfig) error {
	if _, err := ParseDelimiter(r.Delimiter); err != nil {
		return errors.ConfigError(fmt.Sprintf("read.delimiter: %v", err))
	}
	if _, err := parseRune(r.Decimal); err != nil {
		return errors.ConfigError(fmt.Sprintf("read.decimal: %v", err))
	}
	return nil
}

func validateWrite(w WriteConfig) error {
	if _, err := ParseDelimiter(w.Delimiter); err != nil {
		return errors.ConfigError(fmt.Sprintf("write.delimiter: %v", err))
	}
	if _, err := parseRune(w.Decimal); err != nil {
		return errors.ConfigError(fmt.Sprintf("write.decimal: %v", err))
	}
	return nil
}

// OutputFormats lists the accepted values of output_format and --format.
func OutputFormats() []string {
	return []string{"table", "csv", "tsv", "json", "yaml", "markdown"}
}

func isOutputFormat(f string) bool {
	for _, v := range OutputFormats() {
		if v == f {
			return true
		}
	}
	return false
}
