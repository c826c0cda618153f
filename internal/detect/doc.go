// Package detect finds candidate entity spans in a token stream using
// purely local signals: structured pattern tokens, small dictionaries
// (legal forms, honorifics, street types), and capitalization heuristics.
// It also guesses the document language by stop-word frequency voting.
//
// Detection runs in ordered passes, each claiming tokens so later passes
// cannot re-claim them. The ordering lets unambiguous, high-value signals
// (patterns, legal forms, honorifics) take tokens first and leaves bare
// capitalization to mop up whatever remains, which is why group confidence
// degrades monotonically pass to pass.
//
// Design decision: Claimed tokens are tracked in an explicit boolean slice
// indexed by token position, threaded through each pass, rather than by
// mutating the token slice. Tokens stay immutable and each pass's claims
// are visible in one place.
package detect
