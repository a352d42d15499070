package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		wantErr  error
		wantCur  string
	}{
		{name: "valid", amount: "100.50", currency: "USD", wantCur: "USD"},
		{name: "zero amount", amount: "0", currency: "EUR", wantCur: "EUR"},
		{name: "lower case currency", amount: "1", currency: "eur", wantCur: "EUR"},
		{name: "negative amount", amount: "-0.01", currency: "USD", wantErr: ErrNegativeAmount},
		{name: "short currency", amount: "1", currency: "US", wantErr: ErrInvalidCurrency},
		{name: "numeric currency", amount: "1", currency: "U5D", wantErr: ErrInvalidCurrency},
		{name: "empty currency", amount: "1", currency: "", wantErr: ErrInvalidCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(decimal.RequireFromString(tt.amount), tt.currency)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCur, m.Currency())
			assert.True(t, m.Amount().Equal(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestUSDUsesDefaultCurrency(t *testing.T) {
	m, err := USD(decimal.NewFromInt(5))
	require.NoError(t, err)
	assert.Equal(t, DefaultCurrency, m.Currency())
}

func TestAdd(t *testing.T) {
	sum, err := MustNew("100", "USD").Add(MustNew("50.25", "USD"))
	require.NoError(t, err)
	assert.True(t, sum.Equal(MustNew("150.25", "USD")))

	_, err = MustNew("100", "USD").Add(MustNew("100", "EUR"))
	require.ErrorIs(t, err, ErrCurrencyMismatch)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMultiply(t *testing.T) {
	got, err := MustNew("100", "USD").Multiply(decimal.NewFromInt(3))
	require.NoError(t, err)
	assert.True(t, got.Equal(MustNew("300", "USD")))

	got, err = MustNew("10", "USD").Multiply(decimal.RequireFromString("0.5"))
	require.NoError(t, err)
	assert.Equal(t, "5.00 USD", got.String())

	_, err = MustNew("10", "USD").Multiply(decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrNegativeScalar)
}

func TestEqualIsStructural(t *testing.T) {
	assert.True(t, MustNew("1.0", "USD").Equal(MustNew("1", "USD")))
	assert.False(t, MustNew("1", "USD").Equal(MustNew("1", "EUR")))
	assert.False(t, MustNew("1", "USD").Equal(MustNew("2", "USD")))
}

func TestCompare(t *testing.T) {
	c, err := MustNew("1", "USD").Compare(MustNew("2", "USD"))
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	c, err = MustNew("2.00", "USD").Compare(MustNew("2", "USD"))
	require.NoError(t, err)
	assert.Equal(t, 0, c)

	_, err = MustNew("1", "USD").Compare(MustNew("1", "EUR"))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestZero(t *testing.T) {
	z, err := Zero("usd")
	require.NoError(t, err)
	assert.True(t, z.IsZero())
	assert.Equal(t, "0.00 USD", z.String())
}

func TestMustNewPanicsOnInvalidInput(t *testing.T) {
	assert.Panics(t, func() { MustNew("-1", "USD") })
	assert.Panics(t, func() { MustNew("abc", "USD") })
}
