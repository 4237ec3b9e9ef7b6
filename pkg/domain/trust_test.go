package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "itrust/pkg/domain-errors"
)

func TestParseTrustAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "fixed cost", input: "0.2", want: 200},
		{name: "whole", input: "1", want: 1000},
		{name: "whole with fraction", input: "1.0", want: 1000},
		{name: "three decimals", input: "0.125", want: 125},
		{name: "negative", input: "-0.25", want: -250},
		{name: "empty", input: "", wantErr: true},
		{name: "too precise", input: "0.0001", wantErr: true},
		{name: "garbage", input: "abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTrustAmount(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.Is(err, dErrors.CodeInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Milli())
		})
	}
}

func TestTrustAmountString(t *testing.T) {
	assert.Equal(t, "0.2", TrustFromMilli(200).String())
	assert.Equal(t, "1.0", TrustFromMilli(1000).String())
	assert.Equal(t, "0.8", TrustFromMilli(800).String())
	assert.Equal(t, "0.125", TrustFromMilli(125).String())
	assert.Equal(t, "-0.25", TrustFromMilli(-250).String())
	assert.Equal(t, "0.0", TrustFromMilli(0).String())
}

func TestTrustAmountArithmetic(t *testing.T) {
	balance := TrustFromMilli(1000)
	after := balance.Sub(VouchCost)
	assert.Equal(t, int64(800), after.Milli())
	assert.False(t, after.IsNegative())
	assert.True(t, TrustFromMilli(100).Sub(VouchCost).IsNegative())
}

func TestTrustAmountJSONRoundTrip(t *testing.T) {
	raw, err := json.Marshal(TrustFromMilli(800))
	require.NoError(t, err)
	assert.Equal(t, `"0.8"`, string(raw))

	var parsed TrustAmount
	require.NoError(t, json.Unmarshal([]byte(`"0.2"`), &parsed))
	assert.Equal(t, VouchCost, parsed)

	// The original UI sends bare numbers in places; accept those too.
	require.NoError(t, json.Unmarshal([]byte(`1`), &parsed))
	assert.Equal(t, int64(1000), parsed.Milli())
}
