package tfrecord

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Reader reads framed records back from a stream, verifying both checksums.
type Reader struct {
	r io.Reader
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Next returns the payload of the next record, io.EOF at a clean end of
// stream, or an error on truncation or checksum mismatch.
func (r *Reader) Next() ([]byte, error) {
	var header [12]byte
	if _, err := io.ReadFull(r.r, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to read record header: %w", err)
	}

	length := binary.LittleEndian.Uint64(header[:8])
	if got, want := binary.LittleEndian.Uint32(header[8:]), maskedCRC(header[:8]); got != want {
		return nil, fmt.Errorf("record length checksum mismatch: got %#x, want %#x", got, want)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r.r, data); err != nil {
		return nil, fmt.Errorf("failed to read record payload: %w", err)
	}

	var footer [4]byte
	if _, err := io.ReadFull(r.r, footer[:]); err != nil {
		return nil, fmt.Errorf("failed to read record checksum: %w", err)
	}
	if got, want := binary.LittleEndian.Uint32(footer[:]), maskedCRC(data); got != want {
		return nil, fmt.Errorf("record payload checksum mismatch: got %#x, want %#x", got, want)
	}

	return data, nil
}
