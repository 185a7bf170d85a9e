package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSameID(t *testing.T) {
	tests := []struct {
		name string
		a, b ID
		want bool
	}{
		{"equal numbers", "1700000000000", "1700000000000", true},
		{"number and padded string", "42", " 42 ", true},
		{"integral float", "5.0", "5", true},
		{"exponent form", "1.7e12", "1700000000000", true},
		{"different numbers", "41", "42", false},
		{"opaque tokens", "abc", "abc", true},
		{"opaque vs number", "abc", "42", false},
		{"fractional never coerces", "1.5", "1", false},
		{"zero never matches", "", "", false},
		{"zero vs number", "", "0", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SameID(tt.a, tt.b))
			assert.Equal(t, tt.want, SameID(tt.b, tt.a))
		})
	}
}

func TestIDJSON(t *testing.T) {
	var decoded struct {
		Num  ID `json:"num"`
		Str  ID `json:"str"`
		Null ID `json:"null"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"num":1700000000000,"str":"1700000000001","null":null}`), &decoded))

	assert.Equal(t, ID("1700000000000"), decoded.Num)
	assert.Equal(t, ID("1700000000001"), decoded.Str)
	assert.True(t, decoded.Null.IsZero())

	out, err := json.Marshal(decoded)
	require.NoError(t, err)
	assert.JSONEq(t, `{"num":1700000000000,"str":1700000000001,"null":null}`, string(out))

	out, err = json.Marshal(ID("legacy-token"))
	require.NoError(t, err)
	assert.Equal(t, `"legacy-token"`, string(out))
}

func TestResolve(t *testing.T) {
	notes := []Note{{ID: "1"}, {ID: "2"}, {ID: "x"}}

	idx, err := Resolve(notes, "2.0")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	idx, err = Resolve(notes, "x")
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	_, err = Resolve(notes, "3")
	assert.ErrorIs(t, err, ErrNotFound)
}
