package types

import "errors"

// Config holds the workbook backend and the paths and sheet names the bridge
// operates on.
type Config struct {
	Backend     string  `json:"backend" yaml:"backend"`
	Workbook    string  `json:"workbook" yaml:"workbook"`
	Document    string  `json:"document" yaml:"document"`
	Sheet       string  `json:"sheet" yaml:"sheet"`
	LegacySheet string  `json:"legacy_sheet" yaml:"legacy_sheet"`
	LogSheet    string  `json:"log_sheet" yaml:"log_sheet"`
	WidthCap    float64 `json:"width_cap" yaml:"width_cap"`
	LogLevel    string  `json:"log_level" yaml:"log_level"`
}

// Supported workbook backends.
const (
	BackendXLSX   = "xlsx"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Defaults applied by DefaultConfig.
const (
	DefaultDocument    = "prophecies.json"
	DefaultSheet       = "prophecies"
	DefaultLegacySheet = "bible_prophecies"
	DefaultLogSheet    = "Logs"
	DefaultWidthCap    = 120
	DefaultLogLevel    = "info"
)

// Config validation errors.
var (
	ErrBackendEmpty     = errors.New("backend must not be empty")
	ErrBackendUnknown   = errors.New("unknown backend")
	ErrDocumentEmpty    = errors.New("document path must not be empty")
	ErrWidthCapInvalid  = errors.New("width cap must be positive")
	ErrSheetNameInvalid = errors.New("sheet name must not be empty")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendXLSX:   true,
	BackendSQLite: true,
	BackendMemory: true,
}

// DefaultConfig returns a Config with every default filled in.
func DefaultConfig() Config {
	return Config{
		Backend:     BackendXLSX,
		Document:    DefaultDocument,
		Sheet:       DefaultSheet,
		LegacySheet: DefaultLegacySheet,
		LogSheet:    DefaultLogSheet,
		WidthCap:    DefaultWidthCap,
		LogLevel:    DefaultLogLevel,
	}
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Document == "" {
		return ErrDocumentEmpty
	}
	if c.Sheet == "" || c.LogSheet == "" {
		return ErrSheetNameInvalid
	}
	if c.WidthCap <= 0 {
		return ErrWidthCapInvalid
	}
	return nil
}
