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
	"encoding/base64"
	"encoding/json"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	typeEffectiveRange = "effective-range"
	typeLogicalKey     = "logical-key"
	typeRangeID        = "range-id"
)

// The textual form of a feed range is a tagged JSON object:
//
//	{"type":"effective-range","value":{"min":"AA","max":"BB","isMinInclusive":true,"isMaxInclusive":false}}
//	{"type":"logical-key","value":["test"]}
//	{"type":"range-id","value":"pkrange-7"}
type envelope struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

type effectiveRangePayload struct {
	Min            *string `json:"min" msgpack:"min,omitempty"`
	Max            *string `json:"max" msgpack:"max,omitempty"`
	IsMinInclusive *bool   `json:"isMinInclusive" msgpack:"minInc,omitempty"`
	IsMaxInclusive *bool   `json:"isMaxInclusive" msgpack:"maxInc,omitempty"`
}

func newEffectiveRangePayload(r EffectiveRange) *effectiveRangePayload {
	return &effectiveRangePayload{
		Min:            &r.min,
		Max:            &r.max,
		IsMinInclusive: &r.minInclusive,
		IsMaxInclusive: &r.maxInclusive,
	}
}

func (p *effectiveRangePayload) toRange() (EffectiveRange, error) {
	if p == nil || p.Min == nil || p.Max == nil || p.IsMinInclusive == nil || p.IsMaxInclusive == nil {
		return EffectiveRange{}, errors.Wrap(ErrMalformedFeedRange, "effective range requires min, max, isMinInclusive and isMaxInclusive")
	}
	r, err := NewEffectiveRange(*p.Min, *p.Max, *p.IsMinInclusive, *p.IsMaxInclusive)
	if err != nil {
		return EffectiveRange{}, errors.Wrap(ErrMalformedFeedRange, err.Error())
	}
	return r, nil
}

// Serialize returns the canonical textual form of the feed range.
func Serialize(f FeedRange) (string, error) {
	var value any
	switch f.kind {
	case KindEffectiveRange:
		if err := checkUTF8(f.effectiveRange.min, f.effectiveRange.max); err != nil {
			return "", err
		}
		value = newEffectiveRangePayload(f.effectiveRange)
	case KindPartitionKey:
		value = json.RawMessage(f.partitionKey.String())
	case KindPartitionKeyRangeID:
		if err := checkUTF8(f.partitionKeyRangeID); err != nil {
			return "", err
		}
		value = f.partitionKeyRangeID
	default:
		return "", f.invalidKindError()
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return "", errors.Wrap(err, "failed to serialize feed range")
	}
	data, err := json.Marshal(envelope{Type: f.kind.String(), Value: raw})
	if err != nil {
		return "", errors.Wrap(err, "failed to serialize feed range")
	}
	return string(data), nil
}

// Deserialize parses the textual form produced by Serialize. Untagged,
// unknown or structurally invalid input fails with ErrMalformedFeedRange.
func Deserialize(text string) (FeedRange, error) {
	var e envelope
	if err := strictUnmarshal([]byte(text), &e); err != nil {
		return FeedRange{}, err
	}
	if e.Type == "" {
		return FeedRange{}, errors.Wrap(ErrMalformedFeedRange, "missing feed range type")
	}
	if len(e.Value) == 0 || bytes.Equal(e.Value, []byte("null")) {
		return FeedRange{}, errors.Wrapf(ErrMalformedFeedRange, "missing value for feed range type %q", e.Type)
	}

	switch e.Type {
	case typeEffectiveRange:
		var p effectiveRangePayload
		if err := strictUnmarshal(e.Value, &p); err != nil {
			return FeedRange{}, err
		}
		r, err := p.toRange()
		if err != nil {
			return FeedRange{}, err
		}
		return FromEffectiveRange(r), nil

	case typeLogicalKey:
		pk, err := ParsePartitionKey(string(e.Value))
		if err != nil {
			return FeedRange{}, errors.Wrap(ErrMalformedFeedRange, err.Error())
		}
		return FromPartitionKey(pk), nil

	case typeRangeID:
		var id string
		if err := json.Unmarshal(e.Value, &id); err != nil {
			return FeedRange{}, errors.Wrap(ErrMalformedFeedRange, "range id must be a string")
		}
		return FromPartitionKeyRangeID(id), nil

	default:
		return FeedRange{}, errors.Wrapf(ErrMalformedFeedRange, "unknown feed range type %q", e.Type)
	}
}

// checkUTF8 rejects values the JSON text form would not preserve byte for
// byte. The compact form carries them unchanged.
func checkUTF8(values ...string) error {
	for _, v := range values {
		if !utf8.ValidString(v) {
			return errors.Wrapf(ErrMalformedFeedRange, "%q is not valid UTF-8", v)
		}
	}
	return nil
}

func strictUnmarshal(data []byte, v any) error {
	d := json.NewDecoder(bytes.NewReader(data))
	d.DisallowUnknownFields()
	if err := d.Decode(v); err != nil {
		return errors.Wrap(ErrMalformedFeedRange, err.Error())
	}
	if d.More() {
		return errors.Wrap(ErrMalformedFeedRange, "trailing data after feed range")
	}
	return nil
}

func (f FeedRange) MarshalJSON() ([]byte, error) {
	text, err := Serialize(f)
	if err != nil {
		return nil, err
	}
	return []byte(text), nil
}

func (f *FeedRange) UnmarshalJSON(data []byte) error {
	parsed, err := Deserialize(string(data))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// MarshalJSON renders the range as the value of an effective-range feed range.
func (r EffectiveRange) MarshalJSON() ([]byte, error) {
	if err := checkUTF8(r.min, r.max); err != nil {
		return nil, err
	}
	return json.Marshal(newEffectiveRangePayload(r))
}

func (r *EffectiveRange) UnmarshalJSON(data []byte) error {
	var p effectiveRangePayload
	if err := strictUnmarshal(data, &p); err != nil {
		return err
	}
	parsed, err := p.toRange()
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

type compactEnvelope struct {
	Type                string                 `msgpack:"t"`
	EffectiveRange      *effectiveRangePayload `msgpack:"r,omitempty"`
	PartitionKey        *string                `msgpack:"pk,omitempty"`
	PartitionKeyRangeID *string                `msgpack:"id,omitempty"`
}

// SerializeCompact encodes the feed range as url-safe base64 of a msgpack
// document, suitable for continuation tokens carried in URLs.
func SerializeCompact(f FeedRange) (string, error) {
	e := compactEnvelope{Type: f.kind.String()}
	switch f.kind {
	case KindEffectiveRange:
		e.EffectiveRange = newEffectiveRangePayload(f.effectiveRange)
	case KindPartitionKey:
		pk := f.partitionKey.String()
		e.PartitionKey = &pk
	case KindPartitionKeyRangeID:
		id := f.partitionKeyRangeID
		e.PartitionKeyRangeID = &id
	default:
		return "", f.invalidKindError()
	}

	data, err := msgpack.Marshal(&e)
	if err != nil {
		return "", errors.Wrap(err, "failed to serialize feed range")
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

func DeserializeCompact(text string) (FeedRange, error) {
	data, err := base64.RawURLEncoding.DecodeString(text)
	if err != nil {
		return FeedRange{}, errors.Wrap(ErrMalformedFeedRange, err.Error())
	}

	var e compactEnvelope
	if err := msgpack.Unmarshal(data, &e); err != nil {
		return FeedRange{}, errors.Wrap(ErrMalformedFeedRange, err.Error())
	}

	switch e.Type {
	case "":
		return FeedRange{}, errors.Wrap(ErrMalformedFeedRange, "missing feed range type")
	case typeEffectiveRange:
		r, err := e.EffectiveRange.toRange()
		if err != nil {
			return FeedRange{}, err
		}
		return FromEffectiveRange(r), nil
	case typeLogicalKey:
		if e.PartitionKey == nil {
			return FeedRange{}, errors.Wrap(ErrMalformedFeedRange, "missing partition key")
		}
		pk, err := ParsePartitionKey(*e.PartitionKey)
		if err != nil {
			return FeedRange{}, errors.Wrap(ErrMalformedFeedRange, err.Error())
		}
		return FromPartitionKey(pk), nil
	case typeRangeID:
		if e.PartitionKeyRangeID == nil {
			return FeedRange{}, errors.Wrap(ErrMalformedFeedRange, "missing partition key range id")
		}
		return FromPartitionKeyRangeID(*e.PartitionKeyRangeID), nil
	default:
		return FeedRange{}, errors.Wrapf(ErrMalformedFeedRange, "unknown feed range type %q", e.Type)
	}
}
