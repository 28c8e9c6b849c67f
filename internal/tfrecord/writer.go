package tfrecord

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
)

// TFRecord framing: each record is a little-endian uint64 length, the masked
// CRC32C of those 8 length bytes, the payload, and the masked CRC32C of the
// payload.
const crcMaskDelta = 0xa282ead8

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

func maskedCRC(data []byte) uint32 {
	crc := crc32.Checksum(data, castagnoli)
	return ((crc >> 15) | (crc << 17)) + crcMaskDelta
}

// Writer writes framed records sequentially to an underlying stream. It does
// no buffering of its own; the caller owns flushing and closing the stream.
type Writer struct {
	w io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteRecord frames and writes a single serialized record.
func (w *Writer) WriteRecord(data []byte) error {
	var header [12]byte
	binary.LittleEndian.PutUint64(header[:8], uint64(len(data)))
	binary.LittleEndian.PutUint32(header[8:], maskedCRC(header[:8]))

	if _, err := w.w.Write(header[:]); err != nil {
		return fmt.Errorf("failed to write record header: %w", err)
	}
	if _, err := w.w.Write(data); err != nil {
		return fmt.Errorf("failed to write record payload: %w", err)
	}

	var footer [4]byte
	binary.LittleEndian.PutUint32(footer[:], maskedCRC(data))
	if _, err := w.w.Write(footer[:]); err != nil {
		return fmt.Errorf("failed to write record checksum: %w", err)
	}

	return nil
}
