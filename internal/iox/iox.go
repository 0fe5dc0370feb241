// Package iox holds small io helpers shared by the archive writer and
// the upload transport.
package iox

import "io"

// CountingReader wraps an io.Reader and reports the running byte count
// after every successful read. OnRead may be nil.
type CountingReader struct {
	R      io.Reader
	OnRead func(total int64)

	n int64
}

func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.R.Read(p)
	if n > 0 {
		c.n += int64(n)
		if c.OnRead != nil {
			c.OnRead(c.n)
		}
	}
	return n, err
}

// Count returns the number of bytes read so far.
func (c *CountingReader) Count() int64 { return c.n }
