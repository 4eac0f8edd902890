// Package stego exposes the metadata operations callers use on RGB pixel grids:
// Embed, Extract, Verify and Update, plus Clear, Copy and the batch runner.
//
// # Options
//
// Every operation takes an explicit Options value naming the channel selector
// and bit plane. The header does not record them, so extraction must use the
// same Options as the embed that wrote the data. The zero Options value selects
// all channels and the least significant bit.
//
// # Results
//
// All operations return a *Result with a Status:
//   - StatusWritten: a new grid was produced (Embed, Update, Clear, Copy)
//   - StatusFound: metadata was decoded (Extract)
//   - StatusPresent: the header magic is present (Verify)
//   - StatusAbsent: no header was found; this is a normal outcome, not an error
//
// Failures are returned as errors; KindOf classifies them. Corrupt metadata
// (valid magic, unreadable payload) is always an error, never treated as absent.
//
// # Ownership
//
// Operations never modify the grid they are given. Write operations build the
// complete modified copy before returning it, so a failed call leaves nothing
// half-written.
package stego
