package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoInput is returned when neither an input file nor stdin data is
	// available to anonymize.
	ErrNoInput = errors.New("no input specified: provide a file or pipe text on stdin")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A timeout of zero or negative would cause immediate batch failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the classification batch size
	// is not positive. The remote service rejects empty batches and the
	// decoy budget needs at least one slot.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidDecoyRatio is returned when the decoy ratio falls outside
	// [0,1]. More decoys than real terms would exceed the batch budget.
	ErrInvalidDecoyRatio = errors.New("invalid decoy ratio: must be within [0,1]")

	// ErrInvalidAliasStyle is returned when the alias style is neither
	// "generic" nor "realistic".
	ErrInvalidAliasStyle = errors.New("invalid alias style: must be \"generic\" or \"realistic\"")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrNoJurisdiction is returned when the jurisdiction list is empty.
	// Both local dictionaries and remote lookups are jurisdiction-scoped.
	ErrNoJurisdiction = errors.New("no jurisdiction specified: provide at least one (e.g. FR)")
)
