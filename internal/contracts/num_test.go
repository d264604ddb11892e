package contracts

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceNum(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  Num
	}{
		{"nil", nil, None()},
		{"float", 1.5, Some(1.5)},
		{"nan", math.NaN(), None()},
		{"inf", math.Inf(1), None()},
		{"int64", int64(42), Some(42)},
		{"numeric string", " 12.5 ", Some(12.5)},
		{"empty string", "", None()},
		{"garbage string", "N/A", None()},
		{"bytes", []byte("3"), Some(3)},
		{"bool unsupported", true, None()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoerceNum(tt.input))
		})
	}
}

func TestNum_JSON(t *testing.T) {
	type row struct {
		PE Num `json:"pe"`
		MC Num `json:"mc"`
	}

	data, err := json.Marshal(row{PE: Some(12.5), MC: None()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"pe":12.5,"mc":null}`, string(data))

	var decoded row
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, Some(12.5), decoded.PE)
	assert.False(t, decoded.MC.Valid)
}

func TestNum_OrAndPtr(t *testing.T) {
	assert.Equal(t, 0.5, None().Or(0.5))
	assert.Equal(t, 2.0, Some(2).Or(0.5))
	assert.Nil(t, None().Ptr())
	require.NotNil(t, Some(2).Ptr())
	assert.Equal(t, 2.0, *Some(2).Ptr())
}

func TestSeries_Columns(t *testing.T) {
	s := Series{Ticker: "AAA", Bars: []Bar{
		{High: 11, Low: 9, Close: 10},
		{High: 12, Low: 10, Close: 11},
	}}

	assert.Equal(t, []float64{10, 11}, s.Closes())
	assert.Equal(t, []float64{11, 12}, s.Highs())
	assert.Equal(t, []float64{9, 10}, s.Lows())

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, 11.0, last.Close)

	_, ok = Series{}.Last()
	assert.False(t, ok)
}
