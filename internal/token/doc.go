// Package token turns raw text into typed, offset-tagged tokens.
//
// Tokenization runs in two phases. The pattern phase scans the whole text
// with a small ordered set of matchers (URL, email, IBAN, national ID,
// phone) and claims validated matches as single pattern tokens. The fill
// phase splits every unclaimed range into words, numbers, punctuation,
// and whitespace runs, each with exact byte offsets.
//
// Design decision: Whitespace is emitted as tokens rather than dropped
// because the substitution pass depends on tokens partitioning the text
// exactly. Dropping whitespace would force every consumer to re-derive
// gaps from offsets.
package token
