package dataset

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(pairs ...any) *Record {
	r := NewRecord()
	for i := 0; i < len(pairs); i += 2 {
		r.Set(pairs[i].(string), pairs[i+1])
	}
	return r
}

func TestRecordPreservesFieldOrder(t *testing.T) {
	r := rec("zeta", 1.0, "alpha", 2.0, "mike", 3.0)
	assert.Equal(t, []string{"zeta", "alpha", "mike"}, r.Fields())

	// re-setting an existing field keeps its original position
	r.Set("alpha", 9.0)
	assert.Equal(t, []string{"zeta", "alpha", "mike"}, r.Fields())
	assert.Equal(t, 9.0, r.Value("alpha"))
}

func TestRecordJSONRoundTrip(t *testing.T) {
	r := rec("date", "2024-01", "revenue", 120.5, "region", "north", "flag", nil)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"date":"2024-01","revenue":120.5,"region":"north","flag":null}`, string(data))

	var back Record
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []string{"date", "revenue", "region", "flag"}, back.Fields())
	assert.Equal(t, 120.5, back.Value("revenue"))
	assert.Equal(t, "north", back.Value("region"))
	assert.Nil(t, back.Value("flag"))
}

func TestIsNumericValue(t *testing.T) {
	cases := []struct {
		in   any
		want bool
	}{
		{42.0, true},
		{7, true},
		{int64(7), true},
		{"123", true},
		{"12.5", true},
		{"12.5.3", false},
		{"-5", false}, // sign prefix is not a digit
		{"1e3", false},
		{"", false},
		{"abc", false},
		{nil, false},
		{true, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, IsNumericValue(c.in), "value %v", c.in)
	}
}

func TestFloatCoercion(t *testing.T) {
	v, err := Float("15.5")
	require.NoError(t, err)
	assert.Equal(t, 15.5, v)

	v, err = Float(true)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	_, err = Float(nil)
	assert.Error(t, err)
	_, err = Float("n/a")
	assert.Error(t, err)
}

func TestCompareValues(t *testing.T) {
	// numeric comparison when both sides coerce
	assert.Equal(t, -1, CompareValues(2.0, "10"))
	// otherwise lexical on string form
	assert.Equal(t, 1, CompareValues("2024-02", "2024-01"))
	assert.Equal(t, 0, CompareValues("x", "x"))
}
