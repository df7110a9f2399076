// Copyright 2025 StreamNative, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package routing

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/zeebo/xxh3"
)

// PartitionKey is the logical key of a document. It is made of one component
// per path of the partition key definition; each component is a string, a
// number, a boolean or null.
//
// The key is kept in its canonical JSON encoding, which makes PartitionKey
// comparable with == and safe to share.
type PartitionKey struct {
	encoded string
}

// NewPartitionKey builds a partition key from its components.
func NewPartitionKey(components ...any) (PartitionKey, error) {
	normalized := make([]any, len(components))
	for i, c := range components {
		v, err := normalizeComponent(c)
		if err != nil {
			return PartitionKey{}, errors.Wrapf(err, "component %d", i)
		}
		normalized[i] = v
	}
	return encodePartitionKey(normalized)
}

// ParsePartitionKey parses the canonical JSON encoding of a partition key,
// as returned by PartitionKey.String.
func ParsePartitionKey(encoded string) (PartitionKey, error) {
	var components []any
	d := json.NewDecoder(strings.NewReader(encoded))
	if err := d.Decode(&components); err != nil {
		return PartitionKey{}, errors.Wrap(ErrInvalidPartitionKey, err.Error())
	}
	if d.More() {
		return PartitionKey{}, errors.Wrap(ErrInvalidPartitionKey, "trailing data after partition key")
	}
	if components == nil {
		return PartitionKey{}, errors.Wrap(ErrInvalidPartitionKey, "partition key must be an array")
	}
	return NewPartitionKey(components...)
}

func normalizeComponent(c any) (any, error) {
	switch v := c.(type) {
	case string:
		if !utf8.ValidString(v) {
			return nil, errors.Wrapf(ErrInvalidPartitionKey, "component %q is not valid UTF-8", v)
		}
		return v, nil
	case nil, bool, float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, errors.Wrap(ErrInvalidPartitionKey, err.Error())
		}
		return f, nil
	default:
		return nil, errors.Wrapf(ErrInvalidPartitionKey, "unsupported component type %T", c)
	}
}

func encodePartitionKey(components []any) (PartitionKey, error) {
	if len(components) == 0 {
		return PartitionKey{}, nil
	}
	for _, c := range components {
		if f, ok := c.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			return PartitionKey{}, errors.Wrap(ErrInvalidPartitionKey, "number component must be finite")
		}
	}

	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(components); err != nil {
		return PartitionKey{}, errors.Wrap(ErrInvalidPartitionKey, err.Error())
	}
	return PartitionKey{encoded: strings.TrimSuffix(buf.String(), "\n")}, nil
}

// Components returns a copy of the key components.
func (pk PartitionKey) Components() []any {
	var components []any
	if pk.encoded == "" {
		return components
	}
	// The encoding was produced by encodePartitionKey, it always decodes.
	_ = json.Unmarshal([]byte(pk.encoded), &components)
	return components
}

// String returns the canonical JSON encoding of the key.
func (pk PartitionKey) String() string {
	if pk.encoded == "" {
		return "[]"
	}
	return pk.encoded
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

type PartitionKind string

const (
	PartitionKindHash  PartitionKind = "Hash"
	PartitionKindRange PartitionKind = "Range"
)

const (
	PartitionKeyDefinitionVersion1 = 1
	PartitionKeyDefinitionVersion2 = 2
)

// PartitionKeyDefinition describes the layout of the key space of a
// container: which document paths form the partition key and how the
// logical key is mapped to an effective key.
type PartitionKeyDefinition struct {
	Paths   []string      `json:"paths" yaml:"paths" mapstructure:"paths"`
	Kind    PartitionKind `json:"kind,omitempty" yaml:"kind,omitempty" mapstructure:"kind"`
	Version int           `json:"version,omitempty" yaml:"version,omitempty" mapstructure:"version"`
}

// EffectivePartitionKeyString maps a logical key to its position in the
// effective key space. The mapping is deterministic for a given definition.
func (d *PartitionKeyDefinition) EffectivePartitionKeyString(pk PartitionKey) (string, error) {
	components := pk.Components()
	if len(components) == 0 {
		return MinimumInclusiveEffectiveKey, nil
	}
	if len(components) != len(d.Paths) {
		return "", errors.Wrapf(ErrPartitionKeyMismatch, "expected %d components, got %d",
			len(d.Paths), len(components))
	}

	encoded := encodeComponents(components)

	switch d.Kind {
	case PartitionKindRange:
		return strings.ToUpper(hex.EncodeToString(encoded)), nil
	case PartitionKindHash, "":
		return hashEffectiveKey(encoded, d.Version), nil
	default:
		return "", errors.Wrapf(ErrInvalidLayout, "unknown partition kind %q", d.Kind)
	}
}

const (
	markerNull   byte = 0x01
	markerFalse  byte = 0x02
	markerTrue   byte = 0x03
	markerNumber byte = 0x05
	markerString byte = 0x08
	markerEnd    byte = 0x00
)

func encodeComponents(components []any) []byte {
	buf := &bytes.Buffer{}
	for _, c := range components {
		switch v := c.(type) {
		case nil:
			buf.WriteByte(markerNull)
		case bool:
			if v {
				buf.WriteByte(markerTrue)
			} else {
				buf.WriteByte(markerFalse)
			}
		case float64:
			buf.WriteByte(markerNumber)
			_ = binary.Write(buf, binary.BigEndian, math.Float64bits(v))
		case string:
			buf.WriteByte(markerString)
			buf.WriteString(v)
			buf.WriteByte(markerEnd)
		}
	}
	return buf.Bytes()
}

func hashEffectiveKey(encoded []byte, version int) string {
	var sum []byte
	if version == PartitionKeyDefinitionVersion1 {
		sum = binary.BigEndian.AppendUint64(nil, xxh3.Hash(encoded))
	} else {
		h := xxh3.Hash128(encoded)
		sum = binary.BigEndian.AppendUint64(nil, h.Hi)
		sum = binary.BigEndian.AppendUint64(sum, h.Lo)
	}

	// Keep the hashed keys strictly below MaximumExclusiveEffectiveKey
	sum[0] &= 0x3F
	return strings.ToUpper(hex.EncodeToString(sum))
}
