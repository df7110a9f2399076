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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionKey_Canonical(t *testing.T) {
	for _, item := range []struct {
		components []any
		expected   string
	}{
		{[]any{"test"}, `["test"]`},
		{[]any{1}, `[1]`},
		{[]any{int64(2), 2.5}, `[2,2.5]`},
		{[]any{true, nil, "x"}, `[true,null,"x"]`},
		{[]any{"<&>"}, `["<&>"]`},
		{[]any{}, `[]`},
	} {
		pk, err := NewPartitionKey(item.components...)
		assert.NoError(t, err)
		assert.Equal(t, item.expected, pk.String())

		parsed, err := ParsePartitionKey(item.expected)
		assert.NoError(t, err)
		assert.Equal(t, pk, parsed)
	}

	assert.Equal(t, mustPartitionKey(1), mustPartitionKey(1.0))
	assert.Equal(t, []any{"a", 1.0}, mustPartitionKey("a", 1).Components())
}

func TestPartitionKey_Invalid(t *testing.T) {
	_, err := NewPartitionKey(struct{}{})
	assert.ErrorIs(t, err, ErrInvalidPartitionKey)

	_, err = NewPartitionKey([]string{"a"})
	assert.ErrorIs(t, err, ErrInvalidPartitionKey)

	_, err = NewPartitionKey("te\xffst")
	assert.ErrorIs(t, err, ErrInvalidPartitionKey)

	for _, text := range []string{``, `"a"`, `null`, `{}`, `[1] [2]`, `[{"a":1}]`} {
		_, err = ParsePartitionKey(text)
		assert.ErrorIs(t, err, ErrInvalidPartitionKey, text)
	}
}

func TestEffectivePartitionKeyString_Hash(t *testing.T) {
	v2 := &PartitionKeyDefinition{Paths: []string{"/id"}, Kind: PartitionKindHash, Version: 2}
	v1 := &PartitionKeyDefinition{Paths: []string{"/id"}, Kind: PartitionKindHash, Version: 1}

	epk, err := v2.EffectivePartitionKeyString(mustPartitionKey("test"))
	require.NoError(t, err)
	assert.Len(t, epk, 32)
	assert.Less(t, epk, MaximumExclusiveEffectiveKey)
	assert.Equal(t, strings.ToUpper(epk), epk)

	again, err := v2.EffectivePartitionKeyString(mustPartitionKey("test"))
	require.NoError(t, err)
	assert.Equal(t, epk, again)

	other, err := v2.EffectivePartitionKeyString(mustPartitionKey("test2"))
	require.NoError(t, err)
	assert.NotEqual(t, epk, other)

	epkV1, err := v1.EffectivePartitionKeyString(mustPartitionKey("test"))
	require.NoError(t, err)
	assert.Len(t, epkV1, 16)
	assert.Less(t, epkV1, MaximumExclusiveEffectiveKey)

	// Version defaults to the 128 bits hash
	defaults := &PartitionKeyDefinition{Paths: []string{"/id"}}
	epkDefault, err := defaults.EffectivePartitionKeyString(mustPartitionKey("test"))
	require.NoError(t, err)
	assert.Equal(t, epk, epkDefault)
}

func TestEffectivePartitionKeyString_Range(t *testing.T) {
	d := &PartitionKeyDefinition{Paths: []string{"/id"}, Kind: PartitionKindRange}

	a, err := d.EffectivePartitionKeyString(mustPartitionKey("a"))
	require.NoError(t, err)
	b, err := d.EffectivePartitionKeyString(mustPartitionKey("b"))
	require.NoError(t, err)

	assert.Equal(t, "086100", a)
	assert.Less(t, a, b)
}

func TestEffectivePartitionKeyString_Errors(t *testing.T) {
	d := &PartitionKeyDefinition{Paths: []string{"/tenant", "/id"}}

	_, err := d.EffectivePartitionKeyString(mustPartitionKey("only-tenant"))
	assert.ErrorIs(t, err, ErrPartitionKeyMismatch)

	epk, err := d.EffectivePartitionKeyString(mustPartitionKey("tenant", "id"))
	assert.NoError(t, err)
	assert.NotEmpty(t, epk)

	epk, err = d.EffectivePartitionKeyString(mustPartitionKey())
	assert.NoError(t, err)
	assert.Equal(t, MinimumInclusiveEffectiveKey, epk)

	unknown := &PartitionKeyDefinition{Paths: []string{"/id"}, Kind: "Spatial"}
	_, err = unknown.EffectivePartitionKeyString(mustPartitionKey("a"))
	assert.ErrorIs(t, err, ErrInvalidLayout)
}
