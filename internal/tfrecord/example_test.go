package tfrecord

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalExampleRoundTrip(t *testing.T) {
	features := Features{
		"inputs":               {2, 5, 7, 1, 1},
		"targets":              {-1, -1, 7, 1, 1},
		"inputs_segmentation":  {1, 1, 1, 0, 0},
		"targets_segmentation": {1, 1, 1, 0, 0},
	}

	data, err := MarshalExample(features)
	require.NoError(t, err)

	parsed, err := UnmarshalExample(data)
	require.NoError(t, err)
	assert.Equal(t, features, parsed)
}

func TestMarshalExampleNegativeValues(t *testing.T) {
	features := Features{"targets": {-1, 0, 9223372036854775807, -9223372036854775808}}

	data, err := MarshalExample(features)
	require.NoError(t, err)

	parsed, err := UnmarshalExample(data)
	require.NoError(t, err)
	assert.Equal(t, features, parsed)
}

func TestMarshalExampleDeterministic(t *testing.T) {
	features := Features{"b": {2}, "a": {1}, "c": {3}}

	first, err := MarshalExample(features)
	require.NoError(t, err)
	second, err := MarshalExample(features)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestMarshalExampleEmpty(t *testing.T) {
	_, err := MarshalExample(Features{})
	assert.ErrorIs(t, err, ErrNoIntegerFeatures)
}

func TestUnmarshalExampleEmptyList(t *testing.T) {
	features := Features{"inputs": {}}

	data, err := MarshalExample(features)
	require.NoError(t, err)

	parsed, err := UnmarshalExample(data)
	require.NoError(t, err)
	assert.Equal(t, features, parsed)
}
