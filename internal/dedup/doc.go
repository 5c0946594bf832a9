// Package dedup detects exact duplicate page content.
//
// A fingerprint is a BLAKE2b-256 digest of the page's visible text after
// Unicode NFKC normalization, lower-casing and whitespace collapsing. Two
// documents are duplicates exactly when their fingerprints are equal;
// near-duplicates are not detected.
package dedup
