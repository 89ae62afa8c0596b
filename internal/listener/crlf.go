package listener

import (
	"bytes"
	"io"
)

// lineConn adapts a terminal connection to plain '\n' line endings. Reads
// accept "\r\n", "\r\0" and a bare '\r' as line ends; writes send "\r\n".
type lineConn struct {
	rw io.ReadWriter

	// pendingCR is set when the last byte read was '\r', so a '\n' or NUL
	// starting the next read belongs to the same line end.
	pendingCR bool
}

func newCRLFReadWriter(rw io.ReadWriter) io.ReadWriter {
	return &lineConn{rw: rw}
}

func (c *lineConn) Read(p []byte) (int, error) {
	for {
		n, err := c.rw.Read(p)
		out := p[:0]
		for _, b := range p[:n] {
			switch {
			case c.pendingCR && (b == '\n' || b == 0):
				c.pendingCR = false
			case b == '\r':
				c.pendingCR = true
				out = append(out, '\n')
			default:
				c.pendingCR = false
				out = append(out, b)
			}
		}
		// A read made only of the tail of a line end must not look like EOF.
		if len(out) > 0 || err != nil || n == 0 {
			return len(out), err
		}
	}
}

func (c *lineConn) Write(p []byte) (int, error) {
	converted := bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))
	if _, err := c.rw.Write(converted); err != nil {
		return 0, err
	}
	return len(p), nil
}
