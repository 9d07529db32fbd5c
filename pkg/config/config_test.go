package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"clipdata/pkg/errors"
	"clipdata/pkg/tabular"

	"gopkg.in/yaml.v3"
)

// contains checks if a string contains a substring
func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}
	return configPath
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"CLIPDATA_PRESET", "CLIPDATA_FORMAT", "CLIPDATA_MWE_LANG", "CLIPDATA_HISTORY", "CLIPDATA_CONFIG"} {
		t.Setenv(key, "")
	}
}

func TestLoad_Success(t *testing.T) {
	clearEnv(t)
	configPath := writeConfig(t, `read:
  delimiter: ";"
  normalize_names: true
  missing: ["", "NA"]
  decimal: ","
write:
  delimiter: comma
  missing: NA
mwe:
  lang: python
  table_name: cities
history:
  max_entries: 50
  ttl: 24h
output_format: json
`)

	cfg, err := loadFromPath(configPath)
	if err != nil {
		t.Fatalf("loadFromPath() returned error: %v", err)
	}

	if cfg.Read.Delimiter != ";" {
		t.Errorf("Expected read delimiter ';', got '%s'", cfg.Read.Delimiter)
	}
	if cfg.MWE.Lang != "python" || cfg.MWE.TableName != "cities" {
		t.Errorf("Unexpected mwe config: %+v", cfg.MWE)
	}
	if cfg.MWE.MatrixName != "X" {
		t.Errorf("Expected default matrix name 'X', got '%s'", cfg.MWE.MatrixName)
	}
	if cfg.History.MaxEntries != 50 || cfg.History.TTL != 24*time.Hour {
		t.Errorf("Unexpected history config: %+v", cfg.History)
	}
	if cfg.OutputFormat != "json" {
		t.Errorf("Expected output format 'json', got '%s'", cfg.OutputFormat)
	}

	ro := cfg.ReadOptions()
	if ro.Delimiter != ';' || ro.Decimal != ',' || !ro.NormalizeNames || len(ro.MissingStrings) != 2 {
		t.Errorf("Unexpected read options: %+v", ro)
	}
	wo := cfg.WriteOptions()
	if wo.Delimiter != ',' || wo.Missing != "NA" {
		t.Errorf("Unexpected write options: %+v", wo)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := loadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("loadFromPath() returned error: %v", err)
	}

	if cfg.Write.Delimiter != "tab" {
		t.Errorf("Expected default write delimiter 'tab', got '%s'", cfg.Write.Delimiter)
	}
	if cfg.MWE.Lang != "julia" || cfg.MWE.TableName != "df" || cfg.MWE.VectorName != "x" {
		t.Errorf("Unexpected default mwe config: %+v", cfg.MWE)
	}
	if !cfg.HistoryEnabled() || !cfg.RichCopy() {
		t.Error("History and rich copy should be enabled by default")
	}
	if cfg.History.MaxEntries != DefaultHistoryMaxEntries || cfg.History.TTL != DefaultHistoryTTL {
		t.Errorf("Unexpected default history config: %+v", cfg.History)
	}
	if cfg.OutputFormat != "table" {
		t.Errorf("Expected default output format 'table', got '%s'", cfg.OutputFormat)
	}

	ro := cfg.ReadOptions()
	if ro.Delimiter != 0 {
		t.Errorf("Expected auto-detected read delimiter, got %q", ro.Delimiter)
	}
	if wo := cfg.WriteOptions(); wo.Delimiter != '\t' {
		t.Errorf("Expected tab write delimiter, got %q", wo.Delimiter)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	configPath := writeConfig(t, `read:
  delimiter: ","
  - invalid yaml
`)

	_, err := loadFromPath(configPath)
	if err == nil {
		t.Error("loadFromPath() expected error for invalid YAML, got nil")
	}
	if !errors.IsExitCode(err, errors.ExitCodeConfig) {
		t.Errorf("Expected config exit code, got %v", err)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"long delimiter", "read:\n  delimiter: \"::\"\n", "read.delimiter"},
		{"quote delimiter", "write:\n  delimiter: '\"'\n", "write.delimiter"},
		{"bad decimal", "read:\n  decimal: \"..\"\n", "read.decimal"},
		{"unknown language", "mwe:\n  lang: cobol\n", "mwe.lang"},
		{"unknown format", "output_format: xml\n", "output_format"},
		{"negative history", "history:\n  max_entries: -1\n", "history"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := loadFromPath(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("loadFromPath() expected error, got nil")
			}
			if !contains(err.Error(), tt.errMsg) {
				t.Errorf("Unexpected error message: %v", err)
			}
		})
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	configPath := writeConfig(t, `mwe:
  lang: r
output_format: csv
`)
	t.Setenv("CLIPDATA_FORMAT", "yaml")
	t.Setenv("CLIPDATA_MWE_LANG", "go")
	t.Setenv("CLIPDATA_HISTORY", "false")

	cfg, err := loadFromPath(configPath)
	if err != nil {
		t.Fatalf("loadFromPath() returned error: %v", err)
	}

	if cfg.OutputFormat != "yaml" {
		t.Errorf("Expected output format from env 'yaml', got '%s'", cfg.OutputFormat)
	}
	if cfg.MWE.Lang != "go" {
		t.Errorf("Expected mwe lang from env 'go', got '%s'", cfg.MWE.Lang)
	}
	if cfg.HistoryEnabled() {
		t.Error("Expected history disabled by env")
	}
}

const presetConfig = `read:
  delimiter: tab
write:
  delimiter: tab
presets:
  - name: excel-eu
    read:
      delimiter: ";"
      decimal: ","
    write:
      delimiter: ";"
      decimal: ","
  - name: plain
    write:
      rich: false
active_preset: plain
`

func TestLoad_ActivePreset(t *testing.T) {
	clearEnv(t)
	cfg, err := loadFromPath(writeConfig(t, presetConfig))
	if err != nil {
		t.Fatalf("loadFromPath() returned error: %v", err)
	}

	if cfg.RichCopy() {
		t.Error("Expected rich copy disabled by active preset 'plain'")
	}
	if cfg.Read.Delimiter != "tab" {
		t.Errorf("Expected base read delimiter 'tab', got '%s'", cfg.Read.Delimiter)
	}
}

func TestLoad_ExplicitPreset(t *testing.T) {
	clearEnv(t)
	cfg, err := loadFromPath(writeConfig(t, presetConfig), "excel-eu")
	if err != nil {
		t.Fatalf("loadFromPath() returned error: %v", err)
	}

	ro := cfg.ReadOptions()
	if ro.Delimiter != ';' || ro.Decimal != ',' {
		t.Errorf("Unexpected read options with preset: %+v", ro)
	}
	if !cfg.RichCopy() {
		t.Error("Preset 'excel-eu' should not change rich copy")
	}
}

func TestLoad_PresetFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CLIPDATA_PRESET", "excel-eu")
	cfg, err := loadFromPath(writeConfig(t, presetConfig))
	if err != nil {
		t.Fatalf("loadFromPath() returned error: %v", err)
	}
	if cfg.ActivePreset != "excel-eu" || cfg.WriteOptions().Delimiter != ';' {
		t.Errorf("Expected preset from env, got active=%q write=%+v", cfg.ActivePreset, cfg.WriteOptions())
	}
}

func TestLoad_UnknownPreset(t *testing.T) {
	clearEnv(t)
	_, err := loadFromPath(writeConfig(t, presetConfig), "excel")
	if err == nil {
		t.Fatal("loadFromPath() expected error for unknown preset, got nil")
	}
	if !contains(err.Error(), "preset 'excel' not found") {
		t.Errorf("Unexpected error message: %v", err)
	}
	var e *errors.Error
	if !asError(err, &e) || !contains(e.Suggestion, "excel-eu") {
		t.Errorf("Expected suggestion for similar preset, got %+v", e)
	}
}

func asError(err error, target **errors.Error) bool {
	e, ok := err.(*errors.Error)
	if ok {
		*target = e
	}
	return ok
}

func TestPresets(t *testing.T) {
	cfg := Default()

	if err := cfg.AddPreset(Preset{Name: "excel-eu", Read: ReadConfig{Delimiter: ";"}}); err != nil {
		t.Fatalf("AddPreset() returned error: %v", err)
	}
	if err := cfg.AddPreset(Preset{Name: "excel-eu"}); err == nil {
		t.Error("AddPreset() expected error for duplicate name")
	}
	if err := cfg.AddPreset(Preset{Name: ""}); err == nil {
		t.Error("AddPreset() expected error for empty name")
	}
	if err := cfg.AddPreset(Preset{Name: "bad", Write: WriteConfig{Decimal: ",,"}}); err == nil {
		t.Error("AddPreset() expected error for invalid decimal")
	}
	if err := cfg.AddPreset(Preset{Name: "pipes", Read: ReadConfig{Delimiter: "pipe"}}); err != nil {
		t.Fatalf("AddPreset() returned error: %v", err)
	}

	names := cfg.ListPresets()
	if len(names) != 2 || names[0] != "excel-eu" || names[1] != "pipes" {
		t.Errorf("ListPresets() = %v", names)
	}

	if err := cfg.SetPreset("pipes"); err != nil {
		t.Fatalf("SetPreset() returned error: %v", err)
	}
	if !cfg.IsPresetActive("pipes") || cfg.IsPresetActive("excel-eu") {
		t.Error("IsPresetActive() returned wrong result")
	}
	if err := cfg.SetPreset("missing"); err == nil {
		t.Error("SetPreset() expected error for unknown preset")
	}
	if err := cfg.RemovePreset("pipes"); err == nil {
		t.Error("RemovePreset() expected error for active preset")
	}
	if err := cfg.RemovePreset("excel-eu"); err != nil {
		t.Errorf("RemovePreset() returned error: %v", err)
	}
	if err := cfg.RemovePreset("excel-eu"); err == nil {
		t.Error("RemovePreset() expected error for removed preset")
	}
	if err := cfg.SetPreset(""); err != nil || cfg.ActivePreset != "" {
		t.Errorf("SetPreset(\"\") should clear the active preset, got %q, %v", cfg.ActivePreset, err)
	}
}

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		in      string
		want    rune
		wantErr bool
	}{
		{"", 0, false},
		{"auto", 0, false},
		{"tab", '\t', false},
		{`\t`, '\t', false},
		{"\t", '\t', false},
		{"Comma", ',', false},
		{";", ';', false},
		{"semicolon", ';', false},
		{"pipe", '|', false},
		{"space", ' ', false},
		{"§", '§', false},
		{"ab", 0, true},
		{`"`, 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDelimiter(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseDelimiter(%q) = (%q, %v), want (%q, err=%v)", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestSave(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")
	t.Setenv("CLIPDATA_CONFIG", configPath)

	cfg := Default()
	cfg.MWE.Lang = "r"
	if err := cfg.AddPreset(Preset{Name: "excel-eu", Read: ReadConfig{Delimiter: ";", Decimal: ","}}); err != nil {
		t.Fatal(err)
	}
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("Failed to read saved config: %v", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Saved config is not valid YAML: %v", err)
	}
	if _, ok := raw["presets"]; !ok {
		t.Errorf("Saved config has no presets:\n%s", data)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if loaded.MWE.Lang != "r" || len(loaded.Presets) != 1 || loaded.History.TTL != DefaultHistoryTTL {
		t.Errorf("Unexpected reloaded config: %+v", loaded)
	}
	if got := loaded.ReadOptions(); got.Delimiter != 0 {
		t.Errorf("Inactive preset leaked into read options: %+v", got)
	}
}

func TestGetConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("CLIPDATA_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() failed: %v", err)
	}
	if path != filepath.Join(tmpDir, "clipdata", "config.yaml") {
		t.Errorf("GetConfigPath() = %q", path)
	}

	t.Setenv("CLIPDATA_CONFIG", "/tmp/other.yaml")
	if path, _ := GetConfigPath(); path != "/tmp/other.yaml" {
		t.Errorf("GetConfigPath() with override = %q", path)
	}
}

func TestDefaultOptionsMatchParser(t *testing.T) {
	cfg := Default()
	table, err := tabular.ParseString("a,b\n1,2\n", cfg.ReadOptions())
	if err != nil {
		t.Fatalf("ParseString() returned error: %v", err)
	}
	out, err := tabular.Format(table, cfg.WriteOptions())
	if err != nil {
		t.Fatalf("Format() returned error: %v", err)
	}
	if out != "a\tb\n1\t2\n" {
		t.Errorf("Format() = %q", out)
	}
}

func TestLoadFile_KeepsFileAsWritten(t *testing.T) {
	clearEnv(t)
	configPath := writeConfig(t, `presets:
  - name: excel-eu
    read:
      delimiter: ";"
      decimal: ","
active_preset: excel-eu
`)
	t.Setenv("CLIPDATA_CONFIG", configPath)
	t.Setenv("CLIPDATA_FORMAT", "json")

	cfg, err := LoadFile()
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Read.Delimiter != "" {
		t.Errorf("Read.Delimiter = %q, want preset left unapplied", cfg.Read.Delimiter)
	}
	if cfg.OutputFormat != "" {
		t.Errorf("OutputFormat = %q, want no env override", cfg.OutputFormat)
	}
	if cfg.Write.Delimiter != "" {
		t.Errorf("Write.Delimiter = %q, want no defaults", cfg.Write.Delimiter)
	}

	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if contains(string(data), "output_format") {
		t.Errorf("saved config gained output_format:\n%s", data)
	}
}
