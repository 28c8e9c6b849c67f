// Package tfrecord writes and reads tensorflow.Example records in the
// TFRecord container format, the subset the MaxText/grain input pipeline
// consumes. Only int64 feature lists are supported; the training pipeline
// reads nothing else.
package tfrecord

import (
	"errors"
	"fmt"
	"sort"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrNoIntegerFeatures is returned when a record has no integer feature
// lists to serialize. Callers skip such records and continue.
var ErrNoIntegerFeatures = errors.New("record has no integer features")

// Features holds the integer feature lists of a single example, keyed by
// feature name.
type Features map[string][]int64

// Field numbers from tensorflow/core/example/example.proto and
// feature.proto. The messages are small and stable, so they are encoded
// directly with protowire instead of generated stubs.
const (
	exampleFeaturesField  = 1 // Example.features
	featuresMapField      = 1 // Features.feature (map<string, Feature>)
	mapEntryKeyField      = 1
	mapEntryValueField    = 2
	featureInt64ListField = 3 // Feature.int64_list
	int64ListValueField   = 1 // Int64List.value (packed)
)

// MarshalExample encodes the features as a tensorflow.Example message. Map
// entries are emitted in sorted key order so the bytes are deterministic.
func MarshalExample(features Features) ([]byte, error) {
	if len(features) == 0 {
		return nil, ErrNoIntegerFeatures
	}

	keys := make([]string, 0, len(features))
	for key := range features {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var featuresMsg []byte
	for _, key := range keys {
		var packed []byte
		for _, value := range features[key] {
			packed = protowire.AppendVarint(packed, uint64(value))
		}

		var int64List []byte
		int64List = protowire.AppendTag(int64List, int64ListValueField, protowire.BytesType)
		int64List = protowire.AppendBytes(int64List, packed)

		var feature []byte
		feature = protowire.AppendTag(feature, featureInt64ListField, protowire.BytesType)
		feature = protowire.AppendBytes(feature, int64List)

		var entry []byte
		entry = protowire.AppendTag(entry, mapEntryKeyField, protowire.BytesType)
		entry = protowire.AppendString(entry, key)
		entry = protowire.AppendTag(entry, mapEntryValueField, protowire.BytesType)
		entry = protowire.AppendBytes(entry, feature)

		featuresMsg = protowire.AppendTag(featuresMsg, featuresMapField, protowire.BytesType)
		featuresMsg = protowire.AppendBytes(featuresMsg, entry)
	}

	var example []byte
	example = protowire.AppendTag(example, exampleFeaturesField, protowire.BytesType)
	example = protowire.AppendBytes(example, featuresMsg)

	return example, nil
}

// UnmarshalExample parses a tensorflow.Example message, returning its int64
// feature lists. Features of other kinds (bytes, float) are ignored.
func UnmarshalExample(data []byte) (Features, error) {
	features := make(Features)

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("failed to parse example: %w", protowire.ParseError(n))
		}
		data = data[n:]

		if num != exampleFeaturesField || typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, fmt.Errorf("failed to parse example: %w", protowire.ParseError(n))
			}
			data = data[n:]
			continue
		}

		featuresMsg, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return nil, fmt.Errorf("failed to parse features: %w", protowire.ParseError(n))
		}
		data = data[n:]

		if err := parseFeaturesMap(featuresMsg, features); err != nil {
			return nil, err
		}
	}

	return features, nil
}

func parseFeaturesMap(msg []byte, features Features) error {
	for len(msg) > 0 {
		num, typ, n := protowire.ConsumeTag(msg)
		if n < 0 {
			return fmt.Errorf("failed to parse feature map: %w", protowire.ParseError(n))
		}
		msg = msg[n:]

		if num != featuresMapField || typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, msg)
			if n < 0 {
				return fmt.Errorf("failed to parse feature map: %w", protowire.ParseError(n))
			}
			msg = msg[n:]
			continue
		}

		entry, n := protowire.ConsumeBytes(msg)
		if n < 0 {
			return fmt.Errorf("failed to parse feature map entry: %w", protowire.ParseError(n))
		}
		msg = msg[n:]

		key, values, err := parseMapEntry(entry)
		if err != nil {
			return err
		}
		if values != nil {
			features[key] = values
		}
	}
	return nil
}

func parseMapEntry(entry []byte) (string, []int64, error) {
	var key string
	var values []int64

	for len(entry) > 0 {
		num, typ, n := protowire.ConsumeTag(entry)
		if n < 0 {
			return "", nil, fmt.Errorf("failed to parse feature entry: %w", protowire.ParseError(n))
		}
		entry = entry[n:]

		switch {
		case num == mapEntryKeyField && typ == protowire.BytesType:
			k, n := protowire.ConsumeString(entry)
			if n < 0 {
				return "", nil, fmt.Errorf("failed to parse feature key: %w", protowire.ParseError(n))
			}
			entry = entry[n:]
			key = k
		case num == mapEntryValueField && typ == protowire.BytesType:
			feature, n := protowire.ConsumeBytes(entry)
			if n < 0 {
				return "", nil, fmt.Errorf("failed to parse feature value: %w", protowire.ParseError(n))
			}
			entry = entry[n:]
			v, err := parseInt64Feature(feature)
			if err != nil {
				return "", nil, err
			}
			values = v
		default:
			n = protowire.ConsumeFieldValue(num, typ, entry)
			if n < 0 {
				return "", nil, fmt.Errorf("failed to parse feature entry: %w", protowire.ParseError(n))
			}
			entry = entry[n:]
		}
	}

	return key, values, nil
}

// parseInt64Feature returns the int64 list of a Feature message, or nil if
// the feature holds a different kind.
func parseInt64Feature(feature []byte) ([]int64, error) {
	for len(feature) > 0 {
		num, typ, n := protowire.ConsumeTag(feature)
		if n < 0 {
			return nil, fmt.Errorf("failed to parse feature: %w", protowire.ParseError(n))
		}
		feature = feature[n:]

		if num != featureInt64ListField || typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, feature)
			if n < 0 {
				return nil, fmt.Errorf("failed to parse feature: %w", protowire.ParseError(n))
			}
			feature = feature[n:]
			continue
		}

		int64List, n := protowire.ConsumeBytes(feature)
		if n < 0 {
			return nil, fmt.Errorf("failed to parse int64 list: %w", protowire.ParseError(n))
		}
		feature = feature[n:]

		return parseInt64List(int64List)
	}
	return nil, nil
}

func parseInt64List(msg []byte) ([]int64, error) {
	values := []int64{}

	for len(msg) > 0 {
		num, typ, n := protowire.ConsumeTag(msg)
		if n < 0 {
			return nil, fmt.Errorf("failed to parse int64 list: %w", protowire.ParseError(n))
		}
		msg = msg[n:]

		switch {
		case num == int64ListValueField && typ == protowire.BytesType:
			// Packed encoding.
			packed, n := protowire.ConsumeBytes(msg)
			if n < 0 {
				return nil, fmt.Errorf("failed to parse packed int64 values: %w", protowire.ParseError(n))
			}
			msg = msg[n:]
			for len(packed) > 0 {
				v, n := protowire.ConsumeVarint(packed)
				if n < 0 {
					return nil, fmt.Errorf("failed to parse int64 value: %w", protowire.ParseError(n))
				}
				packed = packed[n:]
				values = append(values, int64(v))
			}
		case num == int64ListValueField && typ == protowire.VarintType:
			// Unpacked encoding, permitted by the wire format.
			v, n := protowire.ConsumeVarint(msg)
			if n < 0 {
				return nil, fmt.Errorf("failed to parse int64 value: %w", protowire.ParseError(n))
			}
			msg = msg[n:]
			values = append(values, int64(v))
		default:
			n = protowire.ConsumeFieldValue(num, typ, msg)
			if n < 0 {
				return nil, fmt.Errorf("failed to parse int64 list: %w", protowire.ParseError(n))
			}
			msg = msg[n:]
		}
	}

	return values, nil
}
