package storedsafe

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParams_OrderAndOverwrite(t *testing.T) {
	p := NewParams().Set("b", 1).Set("a", 2).Set("c", 3)
	p.Set("b", 10)

	assert.Equal(t, []string{"b", "a", "c"}, p.Keys())
	assert.Equal(t, 3, p.Len())

	v, ok := p.Get("b")
	require.True(t, ok)
	assert.Equal(t, 10, v)
	assert.True(t, p.Has("a"))
	assert.False(t, p.Has("z"))
}

func TestParams_MarshalJSONPreservesOrder(t *testing.T) {
	p := NewParams().
		Set("username", "alice").
		Set("size", 42).
		Set("active", true).
		Set("tags", []string{"x"})

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `{"username":"alice","size":42,"active":true,"tags":["x"]}`, string(data))

	empty, err := json.Marshal(NewParams())
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(empty))
}

func TestParams_Query(t *testing.T) {
	p := NewParams().Set("children", true).Set("id", 7).Set("name", "x y").Set("none", nil)

	assert.Equal(t, url.Values{
		"children": {"true"},
		"id":       {"7"},
		"name":     {"x y"},
		"none":     {""},
	}, p.Query())
	assert.Equal(t, p.Query(), p.Form())
}

func TestParams_NilReceiver(t *testing.T) {
	var p *Params

	assert.Equal(t, 0, p.Len())
	assert.Nil(t, p.Keys())
	assert.False(t, p.Has("a"))
	assert.Empty(t, p.Query())

	clone := p.Clone()
	require.NotNil(t, clone)
	assert.Equal(t, 0, clone.Len())
}

func TestParams_CloneIsIndependent(t *testing.T) {
	p := NewParams().Set("a", 1)
	clone := p.Clone()
	clone.Set("b", 2)
	clone.Set("a", 3)

	assert.Equal(t, []string{"a"}, p.Keys())
	v, _ := p.Get("a")
	assert.Equal(t, 1, v)
}

func TestParams_Merge(t *testing.T) {
	p := NewParams().Set("a", 1).Set("b", 2)
	p.Merge(NewParams().Set("b", 20).Set("c", 30)).Merge(nil)

	assert.Equal(t, []string{"a", "b", "c"}, p.Keys())
	v, _ := p.Get("b")
	assert.Equal(t, 20, v)
}

func TestParamsFromMap_SortsKeys(t *testing.T) {
	p := ParamsFromMap(map[string]any{"z": 1, "a": 2, "m": 3})
	assert.Equal(t, []string{"a", "m", "z"}, p.Keys())
}

func TestIsBlankParam(t *testing.T) {
	tests := []struct {
		value    any
		expected bool
	}{
		{nil, true},
		{"", true},
		{0, true},
		{false, true},
		{"3", false},
		{3, false},
		{true, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, isBlankParam(tt.value), "value %#v", tt.value)
	}
}
