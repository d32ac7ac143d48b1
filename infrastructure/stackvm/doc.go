// Package stackvm is the reference execute/prove/verify collaborator.
//
// Programs run on a small stack machine whose words are elements of the
// Goldilocks field. Execute records one trace row per cycle. Prove commits
// to the padded trace with a Blake2s Merkle tree, grinds a proof-of-work
// nonce on a Fiat-Shamir transcript, and opens the row pairs the transcript
// selects. Verify replays the transcript and checks every opening and every
// opened transition.
//
// This is a commitment-and-sampling argument, not a zero-knowledge STARK:
// opened rows are revealed in the clear. It exists so the boundary can be
// driven end to end with a deterministic, tamper-evident collaborator.
package stackvm
