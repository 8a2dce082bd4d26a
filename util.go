package tap

import "io"

// ParseReader streams r through a freshly constructed Parser configured
// with h, blocking until r is exhausted. It is a convenience wrapper
// around New/Write/End for the common case of parsing a whole stream in
// one call.
func ParseReader(r io.Reader, h Handler) (*Parser, error) {
	p := New(WithHandler(h))
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := p.Write(buf[:n]); werr != nil {
				return p, werr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return p, err
		}
	}
	return p, p.End()
}
