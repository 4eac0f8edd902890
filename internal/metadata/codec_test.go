package metadata

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ironsheep/image-stego-mcp/internal/bitstream"
	"github.com/ironsheep/image-stego-mcp/internal/header"
	"github.com/ironsheep/image-stego-mcp/internal/pixel"
)

func newGrid(t *testing.T, w, h int) *pixel.Grid {
	t.Helper()
	g, err := pixel.NewGrid(w, h)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	for i := 0; i < len(g.Pix); i += 3 {
		g.Pix[i], g.Pix[i+1], g.Pix[i+2] = 0xC8, 0x64, 0x32
	}
	return g
}

// writeRawFrame writes a header with the given magic and length followed by
// raw payload bytes, bypassing the JSON encoder.
func writeRawFrame(t *testing.T, g *pixel.Grid, magic, length uint32, payload []byte) {
	t.Helper()
	frame := append(header.Encode(magic, length), payload...)
	bits := bitstream.ToBits(frame)
	if n := pixel.WriteBits(g, pixel.NewCursor(g, pixel.ChannelAll), pixel.LSB, bits); n != len(bits) {
		t.Fatalf("raw frame does not fit: wrote %d of %d bits", n, len(bits))
	}
}

func TestMarshal_Canonical(t *testing.T) {
	got, err := Marshal(map[string]any{"b": 1, "a": "<x>", "c": []any{true, nil}})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"a":"<x>","b":1,"c":[true,null]}`
	if string(got) != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestMarshal_Unsupported(t *testing.T) {
	for name, v := range map[string]any{
		"channel":             make(chan int),
		"function":            func() {},
		"nan":                 math.NaN(),
		"invalid utf8 string": "a\xffb",
		"invalid utf8 key":    map[string]any{"k\xff": 1},
		"invalid utf8 nested": map[string]any{"list": []any{"ok", "\xc3("}},
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := Marshal(v); !errors.Is(err, ErrEncoding) {
				t.Errorf("expected ErrEncoding, got %v", err)
			}
		})
	}
}

func TestMarshal_ReplacementCharacterKept(t *testing.T) {
	got, err := Marshal(map[string]any{"s": "\uFFFD", "raw": `\ufffd`})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if want := "{\"raw\":\"\\\\ufffd\",\"s\":\"\uFFFD\"}"; string(got) != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    any
		corrupt bool
	}{
		{name: "object", input: `{"year":2025}`, want: map[string]any{"year": json.Number("2025")}},
		{name: "array", input: `[1,"a",false]`, want: []any{json.Number("1"), "a", false}},
		{name: "null", input: `null`, want: nil},
		{name: "big integer exact", input: `9007199254740993`, want: json.Number("9007199254740993")},
		{name: "empty", input: ``, corrupt: true},
		{name: "truncated", input: `{"a":`, corrupt: true},
		{name: "trailing data", input: `{} {}`, corrupt: true},
		{name: "invalid utf8", input: "\"\xff\"", corrupt: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unmarshal([]byte(tt.input))
			if tt.corrupt {
				if !errors.Is(err, ErrCorrupt) {
					t.Errorf("expected ErrCorrupt, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestFrame(t *testing.T) {
	frame, err := Frame(map[string]any{"k": "v"})
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	h, err := header.Parse(frame)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !h.Valid() || int(h.PayloadLength) != len(frame)-header.Size {
		t.Errorf("header %+v does not describe %d payload bytes", h, len(frame)-header.Size)
	}
	if string(frame[header.Size:]) != `{"k":"v"}` {
		t.Errorf("payload: got %s", frame[header.Size:])
	}
}

func TestWriteDecode_RoundTrip(t *testing.T) {
	values := []any{
		map[string]any{"author": "John Doe", "year": 2025},
		map[string]any{"nested": map[string]any{"list": []any{1, 2.5, "x"}, "ok": true}, "none": nil},
		[]any{"a", "b"},
		"plain string with ünïcödé",
		3.25,
		false,
		nil,
	}

	for _, c := range []pixel.Channel{pixel.ChannelAll, pixel.ChannelRed, pixel.ChannelGreen, pixel.ChannelBlue} {
		for _, plane := range []pixel.Plane{0, 3, 7} {
			for _, v := range values {
				g := newGrid(t, 40, 40)
				if _, err := Write(g, v, c, plane); err != nil {
					t.Fatalf("Write(%v, %s, %d) failed: %v", v, c, plane, err)
				}
				out := Decode(g, c, plane)
				if out.Status != Found {
					t.Fatalf("Decode(%s, %d): status %s, err %v", c, plane, out.Status, out.Err)
				}
				want, _ := Normalize(v)
				if diff := cmp.Diff(want, out.Value); diff != "" {
					t.Errorf("%s/%d: value mismatch (-want +got):\n%s", c, plane, diff)
				}
			}
		}
	}
}

func TestWrite_ReturnsConsumedBits(t *testing.T) {
	g := newGrid(t, 10, 10)
	n, err := Write(g, "ab", pixel.ChannelAll, pixel.LSB)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if want := FrameBits(len(`"ab"`)); n != want {
		t.Errorf("consumed bits: got %d, want %d", n, want)
	}
}

func TestWrite_CapacityBoundary(t *testing.T) {
	// `"xxxx"` is 6 bytes: 64 + 48 = 112 carrier bits.
	exact := "xxxx"

	g := newGrid(t, 112, 1)
	if _, err := Write(g, exact, pixel.ChannelRed, pixel.LSB); err != nil {
		t.Fatalf("payload filling the whole carrier should fit: %v", err)
	}
	if out := Decode(g, pixel.ChannelRed, pixel.LSB); out.Status != Found || out.Value != exact {
		t.Errorf("exact fit did not round trip: %+v", out)
	}

	small := newGrid(t, 111, 1)
	before := small.Clone()
	_, err := Write(small, exact, pixel.ChannelRed, pixel.LSB)
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	if !small.Equal(before) {
		t.Error("failed Write must not modify the grid")
	}
}

func TestDecode_Absent(t *testing.T) {
	g := newGrid(t, 20, 20)
	out := Decode(g, pixel.ChannelAll, pixel.LSB)
	if out.Status != Absent {
		t.Errorf("plain grid: got %s, want absent", out.Status)
	}
	if Present(g, pixel.ChannelAll, pixel.LSB) {
		t.Error("plain grid should not report a header")
	}
}

func TestDecode_TooSmallForHeader(t *testing.T) {
	g := newGrid(t, 4, 4) // 48 bits with all channels
	if out := Decode(g, pixel.ChannelAll, pixel.LSB); out.Status != Absent {
		t.Errorf("got %s, want absent", out.Status)
	}
	tiny := newGrid(t, 31, 1)
	if Present(tiny, pixel.ChannelRed, pixel.LSB) {
		t.Error("31 carrier bits cannot hold the magic")
	}
}

func TestDecode_Corrupt(t *testing.T) {
	tests := []struct {
		name    string
		length  uint32
		payload []byte
	}{
		{"invalid json", 5, []byte("{oops")},
		{"truncated json", 6, []byte(`{"a":1`)},
		{"zero length", 0, nil},
		{"length beyond capacity", 1 << 20, []byte("{}")},
		{"invalid utf8", 3, []byte{'"', 0xff, '"'}},
		{"huge length", 0x10000000, nil},
		{"max length", 0xFFFFFFFF, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGrid(t, 30, 30)
			writeRawFrame(t, g, header.Magic, tt.length, tt.payload)

			out := Decode(g, pixel.ChannelAll, pixel.LSB)
			if out.Status != Corrupt {
				t.Fatalf("got %s, want corrupt", out.Status)
			}
			if !errors.Is(out.Err, ErrCorrupt) {
				t.Errorf("Err should wrap ErrCorrupt: %v", out.Err)
			}
			if !Present(g, pixel.ChannelAll, pixel.LSB) {
				t.Error("magic is intact, Present should be true")
			}
		})
	}
}

func TestDecode_WrongSelection(t *testing.T) {
	g := newGrid(t, 30, 30)
	if _, err := Write(g, map[string]any{"a": 1}, pixel.ChannelRed, 2); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if out := Decode(g, pixel.ChannelRed, 1); out.Status != Absent {
		t.Errorf("wrong plane: got %s, want absent", out.Status)
	}
	if out := Decode(g, pixel.ChannelGreen, 2); out.Status != Absent {
		t.Errorf("wrong channel: got %s, want absent", out.Status)
	}
}

func TestStatusString(t *testing.T) {
	if Found.String() != "found" || Absent.String() != "absent" || Corrupt.String() != "corrupt" {
		t.Error("unexpected status names")
	}
}
