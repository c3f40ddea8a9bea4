package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExchangeSymbol(t *testing.T) {
	testCases := []struct {
		code string
		want string
	}{
		{code: "600519", want: "sh600519"},
		{code: "000001", want: "sz000001"},
		{code: "300750", want: "sz300750"},
		{code: "830799", want: "bj830799"},
		{code: "SH600000", want: "sh600000"},
		{code: " sz000002 ", want: "sz000002"},
		{code: "", want: ""},
	}
	for _, tc := range testCases {
		t.Run(tc.code, func(t *testing.T) {
			assert.Equal(t, tc.want, ExchangeSymbol(tc.code))
		})
	}
}
