package cmd

import (
	"fmt"
	"os"
	"strings"

	"clipdata/pkg/config"
	"clipdata/pkg/errors"
	"clipdata/pkg/utils"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	configPresetName string
	configForce      bool
	presetRead       config.ReadConfig
	presetWrite      config.WriteConfig
	presetNoRich     bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage clipdata configuration and presets",
	Long: `Manage the clipdata config file: parser and writer defaults, MWE defaults,
history settings and named presets (for example a "excel-eu" preset with
';' as delimiter and ',' as decimal separator).`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration: the config file with environment overrides and the active preset applied.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig

		out := NewOutputWriter(outputFormat)
		out.SetWriter(cmd.OutOrStdout())
		if out.IsStructured() {
			return out.Write(cfg)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "Current Configuration:")
		fmt.Fprintln(w, "======================")
		fmt.Fprintf(w, "Active Preset: %s\n", orNone(cfg.ActivePreset))
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Read:")
		fmt.Fprintf(w, "  Delimiter: %s\n", orText(cfg.Read.Delimiter, "(detect)"))
		fmt.Fprintf(w, "  Decimal: %s\n", orText(cfg.Read.Decimal, "."))
		fmt.Fprintf(w, "  Missing: %s\n", orText(quoteAll(cfg.Read.Missing), `""`))
		fmt.Fprintf(w, "  Comment: %s\n", orNone(cfg.Read.Comment))
		fmt.Fprintf(w, "  Normalize Names: %t\n", cfg.Read.NormalizeNames)
		fmt.Fprintln(w, "Write:")
		fmt.Fprintf(w, "  Delimiter: %s\n", cfg.Write.Delimiter)
		fmt.Fprintf(w, "  Decimal: %s\n", orText(cfg.Write.Decimal, "."))
		fmt.Fprintf(w, "  Missing: %q\n", cfg.Write.Missing)
		fmt.Fprintf(w, "  Rich Copy: %t\n", cfg.RichCopy())
		fmt.Fprintln(w, "MWE:")
		fmt.Fprintf(w, "  Language: %s\n", cfg.MWE.Lang)
		fmt.Fprintf(w, "  Names: table=%s matrix=%s vector=%s\n", cfg.MWE.TableName, cfg.MWE.MatrixName, cfg.MWE.VectorName)
		fmt.Fprintln(w, "History:")
		fmt.Fprintf(w, "  Enabled: %t\n", cfg.HistoryEnabled())
		fmt.Fprintf(w, "  Max Entries: %d\n", cfg.History.MaxEntries)
		fmt.Fprintf(w, "  TTL: %s\n", cfg.History.TTL)
		fmt.Fprintf(w, "Output Format: %s\n", cfg.OutputFormat)

		if len(cfg.Presets) > 0 {
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Available Presets:")
			for _, p := range cfg.Presets {
				active := ""
				if cfg.IsPresetActive(p.Name) {
					active = " (active)"
				}
				fmt.Fprintf(w, "  - %s%s\n", p.Name, active)
			}
		}

		return nil
	},
}

var configPresetsCmd = &cobra.Command{
	Use:     "presets",
	Aliases: []string{"preset"},
	Short:   "Manage named presets",
	Long:    `List, add, remove, and switch between named read/write presets.`,
}

var configPresetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFile()
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		presets := cfg.ListPresets()
		if len(presets) == 0 {
			fmt.Fprintln(w, "No presets configured.")
			fmt.Fprintln(w, "Use 'clipdata config presets add --name <name>' to create one.")
			return nil
		}

		fmt.Fprintln(w, "Presets:")
		for _, name := range presets {
			preset, _ := cfg.GetPreset(name)
			active := ""
			if cfg.IsPresetActive(name) {
				active = " *active*"
			}
			fmt.Fprintf(w, "  %s%s\n", name, active)
			fmt.Fprintf(w, "    Read: %s\n", describeRead(preset.Read))
			fmt.Fprintf(w, "    Write: %s\n", describeWrite(preset.Write))
		}

		return nil
	},
}

var configPresetsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new preset",
	Long:  `Add a named preset. Only the settings given are stored; the rest fall through to the top-level config.`,
	Example: `  # Semicolon-separated files with decimal commas
  clipdata config presets add --name excel-eu --delim ';' --decimal , --out-delim ';' --out-decimal ,

  # Pandas-style missing values
  clipdata config presets add --name pandas --missing NA --missing NaN --missing ''`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if configPresetName == "" {
			return errors.ConfigError("preset name is required (--name)")
		}

		cfg, err := config.LoadFile()
		if err != nil {
			return err
		}

		preset := config.Preset{
			Name:  configPresetName,
			Read:  presetRead,
			Write: presetWrite,
		}
		if presetNoRich {
			preset.Write.Rich = utils.Ptr(false)
		}

		if err := cfg.AddPreset(preset); err != nil {
			return err
		}

		if err := config.Save(cfg); err != nil {
			return err
		}

		PrintSuccess("Preset '%s' added.", configPresetName)
		fmt.Fprintf(statusOut, "Use 'clipdata config presets use --name %s' to activate it, or pass --preset %s.\n", configPresetName, configPresetName)

		return nil
	},
}

var configPresetsRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a preset",
	RunE: func(cmd *cobra.Command, args []string) error {
		if configPresetName == "" {
			return errors.ConfigError("preset name is required (--name)")
		}

		cfg, err := config.LoadFile()
		if err != nil {
			return err
		}

		if err := cfg.RemovePreset(configPresetName); err != nil {
			return err
		}

		if err := config.Save(cfg); err != nil {
			return err
		}

		PrintSuccess("Preset '%s' removed.", configPresetName)
		return nil
	},
}

var configPresetsUseCmd = &cobra.Command{
	Use:   "use",
	Short: "Switch to a preset",
	Long:  `Set the active preset for subsequent commands. An empty name clears it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFile()
		if err != nil {
			return err
		}

		if err := cfg.SetPreset(configPresetName); err != nil {
			return err
		}

		if err := config.Save(cfg); err != nil {
			return err
		}

		if configPresetName == "" {
			PrintSuccess("Cleared the active preset.")
			return nil
		}
		PrintSuccess("Switched to preset '%s'.", configPresetName)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil && !configForce {
			return errors.NewWithSuggestion(errors.ExitCodeConfig,
				fmt.Sprintf("config file already exists: %s", path),
				"Use --force to overwrite it.")
		}

		if IsDryRun() {
			data, err := yaml.Marshal(config.Default())
			if err != nil {
				return err
			}
			PrintDryRun("Would write %s:", path)
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}

		if err := config.Save(config.Default()); err != nil {
			return err
		}
		PrintSuccess("Wrote %s", path)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func orNone(s string) string {
	return orText(s, "(none)")
}

func orText(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func quoteAll(ss []string) string {
	quoted := make([]string, len(ss))
	for i, s := range ss {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, " ")
}

func describeRead(r config.ReadConfig) string {
	var parts []string
	if r.Delimiter != "" {
		parts = append(parts, fmt.Sprintf("delimiter=%q", r.Delimiter))
	}
	if r.Decimal != "" {
		parts = append(parts, fmt.Sprintf("decimal=%q", r.Decimal))
	}
	if len(r.Missing) > 0 {
		parts = append(parts, "missing="+quoteAll(r.Missing))
	}
	if r.Comment != "" {
		parts = append(parts, fmt.Sprintf("comment=%q", r.Comment))
	}
	if r.NormalizeNames {
		parts = append(parts, "normalize-names")
	}
	return orText(strings.Join(parts, ", "), "(defaults)")
}

func describeWrite(w config.WriteConfig) string {
	var parts []string
	if w.Delimiter != "" {
		parts = append(parts, fmt.Sprintf("delimiter=%q", w.Delimiter))
	}
	if w.Decimal != "" {
		parts = append(parts, fmt.Sprintf("decimal=%q", w.Decimal))
	}
	if w.Missing != "" {
		parts = append(parts, fmt.Sprintf("missing=%q", w.Missing))
	}
	if w.Rich != nil && !*w.Rich {
		parts = append(parts, "no-rich")
	}
	return orText(strings.Join(parts, ", "), "(defaults)")
}

func init() {
	// Preset management flags
	f := configPresetsAddCmd.Flags()
	f.StringVar(&configPresetName, "name", "", "Preset name (required)")
	f.StringVar(&presetRead.Delimiter, "delim", "", "Read delimiter")
	f.StringVar(&presetRead.Decimal, "decimal", "", "Read decimal separator")
	f.StringSliceVar(&presetRead.Missing, "missing", nil, "Cell texts read as missing (repeatable)")
	f.StringVar(&presetRead.Comment, "comment", "", "Comment line prefix")
	f.BoolVar(&presetRead.NormalizeNames, "normalize-names", false, "Normalize header names")
	f.StringVar(&presetWrite.Delimiter, "out-delim", "", "Write delimiter")
	f.StringVar(&presetWrite.Decimal, "out-decimal", "", "Write decimal separator")
	f.StringVar(&presetWrite.Missing, "out-missing", "", "Text written for missing cells")
	f.BoolVar(&presetNoRich, "no-rich", false, "Copy plain text only, without the HTML table")
	if err := configPresetsAddCmd.MarkFlagRequired("name"); err != nil {
		panic(err)
	}

	configPresetsRemoveCmd.Flags().StringVar(&configPresetName, "name", "", "Preset name (required)")
	if err := configPresetsRemoveCmd.MarkFlagRequired("name"); err != nil {
		panic(err)
	}

	configPresetsUseCmd.Flags().StringVar(&configPresetName, "name", "", "Preset name (empty clears the active preset)")
	if err := configPresetsUseCmd.MarkFlagRequired("name"); err != nil {
		panic(err)
	}

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")

	// Add commands
	configPresetsCmd.AddCommand(configPresetsListCmd)
	configPresetsCmd.AddCommand(configPresetsAddCmd)
	configPresetsCmd.AddCommand(configPresetsRemoveCmd)
	configPresetsCmd.AddCommand(configPresetsUseCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPresetsCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}
