package tfrecord

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(&buf)

	var want [][]byte
	for i := 0; i < 10; i++ {
		features := Features{"inputs": {int64(i), int64(i + 1)}, "targets": {-1, int64(i + 1)}}
		data, err := MarshalExample(features)
		require.NoError(t, err)
		require.NoError(t, writer.WriteRecord(data))
		want = append(want, data)
	}

	reader := NewReader(&buf)
	for i, expected := range want {
		got, err := reader.Next()
		require.NoError(t, err, "record %d", i)
		assert.Equal(t, expected, got, "record %d", i)
	}

	_, err := reader.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestRoundTripPreservesFeatureValues(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(&buf)

	const numRecords = 25
	for i := 0; i < numRecords; i++ {
		data, err := MarshalExample(Features{"inputs": {int64(i) * 3, -1}})
		require.NoError(t, err)
		require.NoError(t, writer.WriteRecord(data))
	}

	reader := NewReader(&buf)
	for i := 0; i < numRecords; i++ {
		data, err := reader.Next()
		require.NoError(t, err)

		features, err := UnmarshalExample(data)
		require.NoError(t, err)
		assert.Equal(t, Features{"inputs": {int64(i) * 3, -1}}, features)
	}
}

func TestReaderDetectsCorruption(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(&buf)

	data, err := MarshalExample(Features{"inputs": {1, 2, 3}})
	require.NoError(t, err)
	require.NoError(t, writer.WriteRecord(data))

	corrupted := buf.Bytes()
	corrupted[len(corrupted)-6] ^= 0xff // flip a payload byte

	_, err = NewReader(bytes.NewReader(corrupted)).Next()
	assert.ErrorContains(t, err, "checksum mismatch")
}

func TestReaderDetectsTruncation(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(&buf)

	data, err := MarshalExample(Features{"inputs": {1, 2, 3}})
	require.NoError(t, err)
	require.NoError(t, writer.WriteRecord(data))

	truncated := buf.Bytes()[:buf.Len()-8]

	_, err = NewReader(bytes.NewReader(truncated)).Next()
	assert.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
}

func TestWriterPreservesOrder(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(&buf)

	for i := 0; i < 5; i++ {
		require.NoError(t, writer.WriteRecord([]byte(fmt.Sprintf("record-%d", i))))
	}

	reader := NewReader(&buf)
	for i := 0; i < 5; i++ {
		got, err := reader.Next()
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("record-%d", i), string(got))
	}
}
