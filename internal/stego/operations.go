package stego

import (
	"encoding/json"
	"fmt"

	"github.com/ironsheep/image-stego-mcp/internal/header"
	"github.com/ironsheep/image-stego-mcp/internal/metadata"
	"github.com/ironsheep/image-stego-mcp/internal/pixel"
)

// Options selects the carrier samples. The zero value is all channels, bit plane 0.
type Options struct {
	Channel pixel.Channel `json:"channel"`
	Plane   pixel.Plane   `json:"bit_plane"`
}

// DefaultOptions returns all channels cycled on the least significant bit.
func DefaultOptions() Options {
	return Options{Channel: pixel.ChannelAll, Plane: pixel.LSB}
}

// Validate checks the channel and plane.
func (o Options) Validate() error {
	return pixel.ValidateSelection(o.Channel, o.Plane)
}

// Status describes what an operation did or found.
type Status int

const (
	StatusWritten Status = iota
	StatusFound
	StatusPresent
	StatusAbsent
)

// String returns a lower-case name for the status.
func (s Status) String() string {
	switch s {
	case StatusWritten:
		return "written"
	case StatusFound:
		return "found"
	case StatusPresent:
		return "present"
	case StatusAbsent:
		return "absent"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText lets statuses appear by name in JSON results.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result is the single result shape shared by every operation.
type Result struct {
	Status Status `json:"status"`
	// Grid is the newly allocated grid produced by a write operation. It is
	// nil for Extract and Verify.
	Grid *pixel.Grid `json:"-"`
	// Metadata is the decoded value (Extract), or the value written (Embed,
	// Update, Copy), in the normalised form returned by metadata.Unmarshal.
	Metadata any `json:"metadata,omitempty"`
	// BitsUsed is the number of carrier bits written or cleared.
	BitsUsed int `json:"bits_used,omitempty"`
}

// MarshalJSON keeps the metadata key on a found result even when the
// extracted value is JSON null.
func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	if r.Status != StatusFound {
		return json.Marshal(plain(r))
	}
	return json.Marshal(struct {
		plain
		Metadata any `json:"metadata"`
	}{plain(r), r.Metadata})
}

// Present reports whether the result carries or confirms metadata.
func (r *Result) Present() bool {
	return r != nil && r.Status != StatusAbsent
}

func prepare(g *pixel.Grid, opts Options) error {
	if err := g.Validate(); err != nil {
		return err
	}
	return opts.Validate()
}

// Embed writes meta into a copy of g starting at carrier bit 0. Carrier bits
// past the frame are left as they were.
func Embed(g *pixel.Grid, meta any, opts Options) (*Result, error) {
	if err := prepare(g, opts); err != nil {
		return nil, err
	}
	return embed(g, meta, opts)
}

func embed(g *pixel.Grid, meta any, opts Options) (*Result, error) {
	value, err := metadata.Normalize(meta)
	if err != nil {
		return nil, err
	}
	out := g.Clone()
	n, err := metadata.Write(out, value, opts.Channel, opts.Plane)
	if err != nil {
		return nil, err
	}
	return &Result{Status: StatusWritten, Grid: out, Metadata: value, BitsUsed: n}, nil
}

// Extract decodes the metadata in g. Absent metadata yields StatusAbsent;
// corrupt metadata yields an error wrapping ErrCorrupt.
func Extract(g *pixel.Grid, opts Options) (*Result, error) {
	if err := prepare(g, opts); err != nil {
		return nil, err
	}
	return extract(g, opts)
}

func extract(g *pixel.Grid, opts Options) (*Result, error) {
	out := metadata.Decode(g, opts.Channel, opts.Plane)
	switch out.Status {
	case metadata.Found:
		return &Result{Status: StatusFound, Metadata: out.Value}, nil
	case metadata.Corrupt:
		return nil, out.Err
	default:
		return &Result{Status: StatusAbsent}, nil
	}
}

// Verify checks only the 32-bit magic field. It is cheaper than Extract and
// weaker: a true answer says a header is present, not that the payload decodes.
func Verify(g *pixel.Grid, opts Options) (*Result, error) {
	if err := prepare(g, opts); err != nil {
		return nil, err
	}
	if metadata.Present(g, opts.Channel, opts.Plane) {
		return &Result{Status: StatusPresent}, nil
	}
	return &Result{Status: StatusAbsent}, nil
}

// Update merges patch over the existing metadata object and embeds the result
// into a copy of g. Keys in patch replace existing keys; other existing keys
// are kept. Absent metadata is treated as an empty object. Corrupt metadata is
// an error and is never overwritten.
func Update(g *pixel.Grid, patch map[string]any, opts Options) (*Result, error) {
	if err := prepare(g, opts); err != nil {
		return nil, err
	}

	current, err := extract(g, opts)
	if err != nil {
		return nil, fmt.Errorf("read existing metadata: %w", err)
	}

	merged := map[string]any{}
	if current.Status == StatusFound {
		existing, ok := current.Metadata.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w (found %T)", ErrNotObject, current.Metadata)
		}
		for k, v := range existing {
			merged[k] = v
		}
	}
	for k, v := range patch {
		merged[k] = v
	}
	return embed(g, merged, opts)
}

// Clear zeroes the carrier bits of the frame in a copy of g so the header no
// longer matches. The cleared span is the header plus the declared payload,
// clipped to the carrier. A grid without a header is returned as an unchanged
// copy with StatusAbsent.
func Clear(g *pixel.Grid, opts Options) (*Result, error) {
	if err := prepare(g, opts); err != nil {
		return nil, err
	}

	out := g.Clone()
	found := metadata.Decode(g, opts.Channel, opts.Plane)
	if found.Status == metadata.Absent {
		return &Result{Status: StatusAbsent, Grid: out}, nil
	}

	capacity := g.Capacity(opts.Channel)
	span := capacity
	if declared := int64(header.Bits) + found.Header.PayloadBits(); declared < int64(capacity) {
		span = int(declared)
	}
	n := pixel.WriteBits(out, pixel.NewCursor(out, opts.Channel), opts.Plane, make([]uint8, span))
	return &Result{Status: StatusWritten, Grid: out, BitsUsed: n}, nil
}

// Copy embeds the metadata found in src into a copy of dst. When src has no
// metadata the result is an unchanged copy of dst with StatusAbsent.
func Copy(src, dst *pixel.Grid, opts Options) (*Result, error) {
	if err := prepare(src, opts); err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	if err := dst.Validate(); err != nil {
		return nil, fmt.Errorf("destination: %w", err)
	}

	found, err := extract(src, opts)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	if found.Status == StatusAbsent {
		return &Result{Status: StatusAbsent, Grid: dst.Clone()}, nil
	}
	return embed(dst, found.Metadata, opts)
}
