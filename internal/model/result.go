package model

import "time"

// ProcessResult accumulates the output of one pipeline run. Each pipeline
// step reads what earlier steps produced and fills in its own fields.
//
// Design decision: One shared result struct rather than per-step return
// values, mirroring how steps are composed: a step only needs the result
// and a context, so adding a step never changes another step's signature.
type ProcessResult struct {
	// SessionID groups pipeline calls that must share alias assignments.
	SessionID string `json:"session_id"`

	// Text is the original input text.
	Text string `json:"-"`

	// Language is the detected language code ("fr", "en", "de").
	Language string `json:"language"`

	// Tokens is the full token stream. Retained for reporting and tests;
	// not serialized in full reports.
	Tokens []Token `json:"-"`

	// Groups are the local detector's candidate groups.
	Groups []DetectedGroup `json:"-"`

	// Remote maps each classified term to its touchstone results.
	// Terms with no remote signal are absent.
	Remote map[string][]TouchstoneResult `json:"-"`

	// Entities is the final typed, confidence-scored entity list.
	Entities []Entity `json:"entities"`

	// AnonymizedText is the input with every entity span replaced by
	// its alias.
	AnonymizedText string `json:"anonymized_text"`

	// RemoteDegraded is true when one or more classification batches
	// failed and the result fell back to local-only signals.
	RemoteDegraded bool `json:"remote_degraded,omitempty"`

	// ProcessedAt is when the pipeline run started.
	ProcessedAt time.Time `json:"processed_at"`

	// CompletedSteps names the pipeline steps that ran, in order.
	CompletedSteps []string `json:"completed_steps,omitempty"`
}

// NewProcessResult creates a result for one pipeline run.
func NewProcessResult(sessionID, text string) *ProcessResult {
	return &ProcessResult{
		SessionID:   sessionID,
		Text:        text,
		Remote:      make(map[string][]TouchstoneResult),
		Entities:    make([]Entity, 0),
		ProcessedAt: time.Now(),
	}
}

// EntityCountByType tallies entities per type for reporting.
func (r *ProcessResult) EntityCountByType() map[string]int {
	counts := make(map[string]int)
	for _, e := range r.Entities {
		counts[e.Type.String()]++
	}
	return counts
}
