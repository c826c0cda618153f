// Package assemble fuses local detection groups with remote
// classification results into the final typed, confidence-scored entity
// list, and assigns every entity its alias.
//
// The fusion rules are deliberately conservative: a candidate that
// nothing corroborates still surfaces as an unknown/low entity so a human
// can decide. Silently dropping a weak detection would turn a recall
// problem into an invisible privacy leak.
package assemble
