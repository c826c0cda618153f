package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are chosen for a classification service on the local
// network and French-language documents, the primary deployment.
const (
	// DefaultServiceURL is the classification service base URL. The
	// service is expected on the local network; nothing in the pipeline
	// ever sends full documents there, only candidate terms mixed with
	// decoys.
	DefaultServiceURL = "http://127.0.0.1:8089"

	// DefaultTimeout bounds one classification batch round trip. The
	// service answers from in-memory dictionaries, so 10 seconds already
	// covers slow links; anything longer only delays degradation.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxBatchSize bounds one outbound batch, decoys included.
	// 100 terms keeps request bodies small while amortizing round trips
	// for typical one-page documents.
	DefaultMaxBatchSize = 100

	// DefaultDecoyRatio mixes roughly one synthetic term into every
	// three real ones. Higher ratios cost batch capacity; lower ratios
	// make the real terms easier to isolate on the wire.
	DefaultDecoyRatio = 0.35

	// DefaultAliasStyle is the replacement style: "generic" numbered
	// labels are unambiguous in legal review workflows. "realistic"
	// produces plausible substitutes instead.
	DefaultAliasStyle = "generic"

	// DefaultConcurrency is the number of documents processed in
	// parallel in batch mode. The pipeline is CPU-light; the limit
	// mostly protects the classification service and the local store.
	DefaultConcurrency = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "whiteout"
)

// DefaultJurisdictions scopes dictionary lookups when the user names
// none. French documents are the primary use case.
var DefaultJurisdictions = []string{"FR"}

// Config holds all configuration options for the anonymizer.
// This struct is designed to be populated from CLI flags and the
// optional .whiteout file, then passed through the application via
// dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., ClassifyConfig, AliasConfig) for simplicity. The number of
// options is manageable, and nesting would add complexity without
// significant benefit.
type Config struct {
	// ServiceURL is the classification service base URL, without path.
	ServiceURL string

	// Timeout bounds each classification batch round trip. Batches that
	// exceed it are abandoned and the result degrades to local-only.
	Timeout time.Duration

	// MaxBatchSize bounds one outbound classification batch, decoys
	// included.
	MaxBatchSize int

	// DecoyRatio is the synthetic-to-real term ratio in [0,1].
	DecoyRatio float64

	// Jurisdictions restricts dictionary lookups, local and remote.
	Jurisdictions []string

	// AliasStyle selects "generic" numbered labels or "realistic"
	// substitute names.
	AliasStyle string

	// SessionID groups runs that must share alias assignments. When
	// empty the CLI generates a fresh one per invocation.
	SessionID string

	// InputFile is the document to anonymize. Empty means stdin.
	InputFile string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// Concurrency is the number of documents processed in parallel in
	// batch mode.
	Concurrency int

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .whiteout in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// Profiles holds named anonymization profiles loaded from the
	// config file.
	Profiles *File

	// JSONReport enables JSON report output alongside the anonymized
	// text. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output alongside the
	// anonymized text. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the entity report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// DBDir is the directory path for the SQLite database holding alias
	// maps, the classification cache, and the entity graph.
	// Defaults to the XDG data directory.
	DBDir string

	// Ephemeral disables persistence entirely: alias maps and cache
	// live in memory and vanish with the process. Useful for one-shot
	// anonymization of documents that must leave no trace.
	Ephemeral bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use
// cases. Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, decoy
// ratio). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		ServiceURL:    DefaultServiceURL,
		Timeout:       DefaultTimeout,
		MaxBatchSize:  DefaultMaxBatchSize,
		DecoyRatio:    DefaultDecoyRatio,
		Jurisdictions: append([]string{}, DefaultJurisdictions...),
		AliasStyle:    DefaultAliasStyle,
		Concurrency:   DefaultConcurrency,
		DBDir:         XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for the anonymizer.
// On Linux: ~/.local/share/whiteout
// On macOS: ~/Library/Application Support/whiteout
// On Windows: %LOCALAPPDATA%\whiteout
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for the anonymizer.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ApplyProfile overlays a named profile from the config file onto the
// receiver. Unset profile fields leave the current values untouched.
func (c *Config) ApplyProfile(name string) bool {
	if c.Profiles == nil {
		return false
	}
	if _, ok := c.Profiles.Profiles[name]; !ok {
		return false
	}
	p := c.Profiles.GetProfile(name)

	if p.ServiceURL != "" {
		c.ServiceURL = p.ServiceURL
	}
	if p.AliasStyle != "" {
		c.AliasStyle = p.AliasStyle
	}
	if len(p.Jurisdictions) > 0 {
		c.Jurisdictions = append([]string{}, p.Jurisdictions...)
	}
	if p.DecoyRatio != nil {
		c.DecoyRatio = *p.DecoyRatio
	}
	if p.MaxBatchSize != nil {
		c.MaxBatchSize = *p.MaxBatchSize
	}
	return true
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any processing begins.
// The first error found is returned rather than collecting all errors,
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxBatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.DecoyRatio < 0 || c.DecoyRatio > 1 {
		return ErrInvalidDecoyRatio
	}
	if len(c.Jurisdictions) == 0 {
		return ErrNoJurisdiction
	}

	switch strings.ToLower(c.AliasStyle) {
	case "generic", "realistic":
	default:
		return ErrInvalidAliasStyle
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
