// Package decoy hides real candidate terms among synthetic ones before a
// classification batch leaves the device.
//
// An eavesdropper, or a dishonest classification service, sees a shuffled
// batch of plausible terms and cannot tell from shape alone which ones
// came from the user's document. Decoys are drawn from the same name and
// company pools the alias generator uses, so the synthetic terms follow
// the same distribution as genuine candidates.
//
// Design decision: Both decoy selection and the final shuffle use
// crypto/rand. math/rand ordering could be reconstructed from other
// observable outputs of the same generator, which would let an observer
// peel the shuffle apart.
package decoy
