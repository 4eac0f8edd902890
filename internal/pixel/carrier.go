package pixel

// Position addresses one sample of the grid.
type Position struct {
	X       int `json:"x"`
	Y       int `json:"y"`
	Channel int `json:"channel"` // Red, Green or Blue
}

// Cursor walks carrier positions in order. It is finite: Next reports false
// once every selected sample has been visited. A fresh cursor restarts at bit 0.
type Cursor struct {
	width   int
	channel Channel
	next    int
	total   int
}

// NewCursor returns a cursor positioned at carrier bit 0 of g.
func NewCursor(g *Grid, c Channel) *Cursor {
	return &Cursor{
		width:   g.Width,
		channel: c,
		total:   g.Capacity(c),
	}
}

// Next returns the position of the next carrier bit.
func (c *Cursor) Next() (Position, bool) {
	if c.next >= c.total {
		return Position{}, false
	}
	p := positionAt(c.width, c.channel, c.next)
	c.next++
	return p, true
}

// Consumed is the number of positions already returned.
func (c *Cursor) Consumed() int {
	return c.next
}

// Remaining is the number of positions left.
func (c *Cursor) Remaining() int {
	return c.total - c.next
}

// positionAt maps logical carrier bit i to its sample. i must be below the
// capacity of a grid of the given width.
func positionAt(width int, c Channel, i int) Position {
	per := c.SamplesPerPixel()
	px := i / per
	ch := i % per
	if c != ChannelAll {
		ch = c.sample()
	}
	return Position{X: px % width, Y: px / width, Channel: ch}
}

// ReadBit returns bit p of the addressed sample.
func ReadBit(g *Grid, pos Position, p Plane) uint8 {
	return (g.Sample(pos.X, pos.Y, pos.Channel) >> p) & 1
}

// WriteBit stores bit (0 or 1) into plane p of the addressed sample, leaving
// the other seven bits unchanged.
func WriteBit(g *Grid, pos Position, p Plane, bit uint8) {
	i := g.offset(pos.X, pos.Y, pos.Channel)
	g.Pix[i] = (g.Pix[i] & p.Mask()) | ((bit & 1) << p)
}

// ReadBits reads up to n bits from the cursor. Fewer bits are returned when
// the carrier runs out.
func ReadBits(g *Grid, cur *Cursor, p Plane, n int) []uint8 {
	if r := cur.Remaining(); n > r {
		n = r
	}
	bits := make([]uint8, 0, n)
	for len(bits) < n {
		pos, ok := cur.Next()
		if !ok {
			break
		}
		bits = append(bits, ReadBit(g, pos, p))
	}
	return bits
}

// WriteBits writes bits starting at the cursor and returns how many were
// written. Callers check capacity beforehand; a short write means the carrier
// was exhausted.
func WriteBits(g *Grid, cur *Cursor, p Plane, bits []uint8) int {
	for i, bit := range bits {
		pos, ok := cur.Next()
		if !ok {
			return i
		}
		WriteBit(g, pos, p, bit)
	}
	return len(bits)
}
