package protocol

const (
	// MaxRequestBytes bounds a single request document. Virtual file maps
	// for real projects stay well under this; the bound keeps a runaway
	// producer from exhausting memory.
	MaxRequestBytes = 64 << 20

	// scanBufferBytes sizes the daemon's read buffer; longer lines are
	// accumulated across reads up to MaxRequestBytes.
	scanBufferBytes = 64 << 10
)
