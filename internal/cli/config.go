package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/prophecies/internal/paths"
	"github.com/mesh-intelligence/prophecies/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	envPrefix    = "PROPHECIES"
	envConfigDir = paths.EnvConfigDir

	// Config keys, matching the yaml tags of types.Config.
	cfgKeyBackend     = "backend"
	cfgKeyWorkbook    = "workbook"
	cfgKeyDocument    = "document"
	cfgKeySheet       = "sheet"
	cfgKeyLegacySheet = "legacy_sheet"
	cfgKeyLogSheet    = "log_sheet"
	cfgKeyWidthCap    = "width_cap"
	cfgKeyLogLevel    = "log_level"
)

// boundFlags maps config keys to the persistent flags that override them.
var boundFlags = map[string]string{
	cfgKeyBackend:  "backend",
	cfgKeyWorkbook: "workbook",
	cfgKeyDocument: "document",
	cfgKeySheet:    "sheet",
	cfgKeyLogLevel: "log-level",
}

// loadConfig resolves the config directory and reads config.yaml from it.
// Precedence is flag, then PROPHECIES_* environment, then config.yaml, then
// built-in defaults. A missing config.yaml is not an error.
func (a *app) loadConfig() (types.Config, string, error) {
	dir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return types.Config{}, "", &ExitError{Code: exitSysError, Err: fmt.Errorf("resolve config dir: %w", err)}
	}

	v := a.v
	def := types.DefaultConfig()
	v.SetDefault(cfgKeyBackend, def.Backend)
	v.SetDefault(cfgKeyWorkbook, def.Workbook)
	v.SetDefault(cfgKeyDocument, def.Document)
	v.SetDefault(cfgKeySheet, def.Sheet)
	v.SetDefault(cfgKeyLegacySheet, def.LegacySheet)
	v.SetDefault(cfgKeyLogSheet, def.LogSheet)
	v.SetDefault(cfgKeyWidthCap, def.WidthCap)
	v.SetDefault(cfgKeyLogLevel, def.LogLevel)

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(dir)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return types.Config{}, dir, &ExitError{Code: exitUserError, Err: fmt.Errorf("read config: %w", err)}
		}
	}

	cfg := types.Config{
		Backend:     v.GetString(cfgKeyBackend),
		Workbook:    paths.NormalizePath(v.GetString(cfgKeyWorkbook)),
		Document:    paths.NormalizePath(v.GetString(cfgKeyDocument)),
		Sheet:       v.GetString(cfgKeySheet),
		LegacySheet: v.GetString(cfgKeyLegacySheet),
		LogSheet:    v.GetString(cfgKeyLogSheet),
		WidthCap:    v.GetFloat64(cfgKeyWidthCap),
		LogLevel:    v.GetString(cfgKeyLogLevel),
	}
	if err := cfg.Validate(); err != nil {
		return cfg, dir, &ExitError{Code: exitUserError, Err: fmt.Errorf("invalid config: %w", err)}
	}
	return cfg, dir, nil
}

// writeConfigIfMissing creates config.yaml holding cfg if the file does not
// exist and reports whether it wrote one.
func writeConfigIfMissing(dir string, cfg types.Config) (bool, error) {
	path := filepath.Join(dir, paths.ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
