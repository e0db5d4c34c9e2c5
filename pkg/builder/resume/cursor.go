package resume

// Mode records how the controller is consuming the event source.
type Mode string

const (
	// ModeLive is a stream freshly produced by a generation turn.
	ModeLive Mode = "live"
	// ModeReplay is re-delivery from the server-held buffer.
	ModeReplay Mode = "replay"
)

// Cursor tracks how far the controller has consumed the event source.
// Offset is the sequence number the next replay window should start at.
type Cursor struct {
	Offset int64
	Mode   Mode
}

func (c *Cursor) advance(seq int64, mode Mode) {
	if next := seq + 1; next > c.Offset {
		c.Offset = next
	}
	c.Mode = mode
}
