// Package image reconstructs a file-system structure from a raw disk-image
// buffer.
//
// The pipeline runs leaves-first over untrusted input: locate (or
// synthesize) the volume geometry, scan the flat metadata region, walk the
// B+Tree directory index, fingerprint file records, and assemble the
// identifier-keyed records into a forest of FileSystemNodes.
//
// Two rules shape everything here:
//
//   - Corruption is absorbed, not propagated. Undecodable records are
//     dropped one at a time, traversal of cyclic or malformed index
//     structure is bounded by Limits, and input that yields nothing at all
//     degrades to a fixed illustrative sample tree. The only hard parse
//     failure is an empty buffer.
//
//   - Degradation is observable. Synthesized geometry and the illustrative
//     fallback are surfaced through progress stage labels and logging, never
//     silently mixed into real decoded data.
package image
