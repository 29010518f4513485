package netchan

import "math/big"

// WriteBigInt sends x as a fixed-width, little-endian encoded integer of
// width bytes: the wire format is self-delimiting by width alone, with no
// length prefix, matching the original's raw NTL::ZZ serialization. The
// write is queued via AsyncWrite rather than sent synchronously: the ring
// protocol sends a full round of messages to its right neighbor before
// ever reading from its left, and over an unbuffered transport (net.Pipe,
// as internal/simnet uses) a synchronous write there deadlocks the moment
// the ring wraps around, matching TcpChannel::AsyncWrite's role of
// decoupling send from in-flight network I/O.
func (c *Channel) WriteBigInt(x *big.Int, width int) error {
	if err := c.WriteErr(); err != nil {
		return err
	}
	c.AsyncWrite(toLittleEndian(x, width))
	return nil
}

// ReadBigInt reads a fixed-width, little-endian encoded integer of width
// bytes.
func (c *Channel) ReadBigInt(width int) (*big.Int, error) {
	buf := make([]byte, width)
	if err := c.Read(buf); err != nil {
		return nil, err
	}
	return fromLittleEndian(buf), nil
}

func toLittleEndian(x *big.Int, width int) []byte {
	be := x.Bytes() // big-endian, no leading zeros
	out := make([]byte, width)
	for i := range be {
		// be[len(be)-1-i] is the least significant byte of be; place it at
		// out[i] to produce the little-endian encoding.
		out[i] = be[len(be)-1-i]
	}
	return out
}

func fromLittleEndian(buf []byte) *big.Int {
	be := make([]byte, len(buf))
	for i, b := range buf {
		be[len(buf)-1-i] = b
	}
	return new(big.Int).SetBytes(be)
}
