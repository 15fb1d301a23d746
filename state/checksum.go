package state

import (
	"bytes"
	"hash"
	"hash/crc32"
	"io"
)

/*
trailerReader passes the stream through and feeds a CRC32 hasher with all but
the last trailerLen bytes read so far. Once the stream has been consumed the
hasher covers exactly the content preceding the trailer (checksum).
*/
type trailerReader struct {
	r          io.Reader
	hasher     hash.Hash32
	tail       []byte
	trailerLen int
}

func newTrailerReader(r io.Reader, trailerLen int) *trailerReader {
	return &trailerReader{
		r:          r,
		hasher:     crc32.NewIEEE(),
		tail:       make([]byte, 0, trailerLen),
		trailerLen: trailerLen,
	}
}

func (tr *trailerReader) Read(p []byte) (int, error) {
	n, err := tr.r.Read(p)
	pending := append(tr.tail, p[:n]...)
	if cut := len(pending) - tr.trailerLen; cut > 0 {
		_, _ = tr.hasher.Write(pending[:cut]) // #nosec G104 hash.Hash never returns an error
		pending = bytes.Clone(pending[cut:])
	}
	tr.tail = pending
	return n, err
}

func (tr *trailerReader) Sum() uint32 {
	return tr.hasher.Sum32()
}

// checksumWriter returns writer which also feeds everything written through it into the hasher.
func checksumWriter(w io.Writer) (io.Writer, hash.Hash32) {
	hasher := crc32.NewIEEE()
	return io.MultiWriter(w, hasher), hasher
}
