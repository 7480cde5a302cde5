package billing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcruz7/lancer/internal/billing"
)

func usd(t *testing.T) billing.Currency {
	t.Helper()

	cur, err := billing.ParseCurrency("USD")
	require.NoError(t, err)

	return cur
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParseCurrency(t *testing.T) {
	cur, err := billing.ParseCurrency("EUR")
	require.NoError(t, err)
	assert.Equal(t, "EUR", cur.Code())
	assert.Equal(t, int32(2), cur.Exponent())

	jpy, err := billing.ParseCurrency("JPY")
	require.NoError(t, err)
	assert.Equal(t, int32(0), jpy.Exponent())

	_, err = billing.ParseCurrency("NOPE")
	var verr *billing.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "currency", verr.Field)
}

func TestItemTotal(t *testing.T) {
	type args struct {
		quantity  string
		unitPrice string
		taxRate   string
		discount  string
	}

	type testCase struct {
		name    string
		args    args
		want    string
		wantErr bool
	}

	tests := []testCase{
		{
			name: "TaxOnDiscountedBase",
			args: args{quantity: "3", unitPrice: "100", taxRate: "0.1", discount: "50"},
			want: "275",
		},
		{
			name: "NoTaxNoDiscount",
			args: args{quantity: "2", unitPrice: "19.99", taxRate: "0", discount: "0"},
			want: "39.98",
		},
		{
			name: "DiscountExceedsBaseClampsToZero",
			args: args{quantity: "1", unitPrice: "40", taxRate: "0.2", discount: "100"},
			want: "0",
		},
		{
			name: "HalfToEvenRoundsDown",
			args: args{quantity: "1", unitPrice: "2.125", taxRate: "0", discount: "0"},
			want: "2.12",
		},
		{
			name: "HalfToEvenRoundsUp",
			args: args{quantity: "1", unitPrice: "2.135", taxRate: "0", discount: "0"},
			want: "2.14",
		},
		{
			name: "RoundingOnlyAtTheEnd",
			// 3 * 0.333 = 0.999, taxed 1.0989 -> 1.10; rounding per unit first would give 1.09.
			args: args{quantity: "3", unitPrice: "0.333", taxRate: "0.1", discount: "0"},
			want: "1.1",
		},
		{
			name:    "NegativeQuantity",
			args:    args{quantity: "-1", unitPrice: "10", taxRate: "0", discount: "0"},
			wantErr: true,
		},
		{
			name:    "NegativeUnitPrice",
			args:    args{quantity: "1", unitPrice: "-10", taxRate: "0", discount: "0"},
			wantErr: true,
		},
		{
			name:    "TaxRateAboveOne",
			args:    args{quantity: "1", unitPrice: "10", taxRate: "1.5", discount: "0"},
			wantErr: true,
		},
		{
			name:    "NegativeDiscount",
			args:    args{quantity: "1", unitPrice: "10", taxRate: "0", discount: "-5"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := billing.ItemTotal(d(tt.args.quantity), d(tt.args.unitPrice), d(tt.args.taxRate), d(tt.args.discount), usd(t))

			if tt.wantErr {
				var verr *billing.ValidationError
				require.ErrorAs(t, err, &verr)

				return
			}

			require.NoError(t, err)
			assert.True(t, d(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestItemTotal_Monotonic(t *testing.T) {
	cur := usd(t)

	base, err := billing.ItemTotal(d("2"), d("50"), d("0.23"), d("10"), cur)
	require.NoError(t, err)

	moreQty, err := billing.ItemTotal(d("3"), d("50"), d("0.23"), d("10"), cur)
	require.NoError(t, err)
	assert.True(t, moreQty.GreaterThanOrEqual(base))

	higherPrice, err := billing.ItemTotal(d("2"), d("60"), d("0.23"), d("10"), cur)
	require.NoError(t, err)
	assert.True(t, higherPrice.GreaterThanOrEqual(base))

	biggerDiscount, err := billing.ItemTotal(d("2"), d("50"), d("0.23"), d("30"), cur)
	require.NoError(t, err)
	assert.True(t, biggerDiscount.LessThanOrEqual(base))

	assert.False(t, base.IsNegative())
}

func TestPriceItems(t *testing.T) {
	items := []billing.LineItem{
		{Description: "Design", Quantity: d("10"), UnitPrice: d("80"), TaxRate: d("0.2")},
		{Description: "Hosting", Quantity: d("1"), UnitPrice: d("25"), Discount: d("5")},
	}

	require.NoError(t, billing.PriceItems(items, usd(t)))

	assert.True(t, d("960").Equal(items[0].Total))
	assert.Equal(t, 0, items[0].SortOrder)
	assert.True(t, d("20").Equal(items[1].Total))
	assert.Equal(t, 1, items[1].SortOrder)
}

func TestPriceItems_InvalidItem(t *testing.T) {
	items := []billing.LineItem{
		{Quantity: d("1"), UnitPrice: d("-3")},
	}

	err := billing.PriceItems(items, usd(t))

	var verr *billing.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestDocumentTotals(t *testing.T) {
	cur := usd(t)

	items := []billing.LineItem{
		{Quantity: d("3"), UnitPrice: d("100"), TaxRate: d("0.1"), Discount: d("50")},
		{Quantity: d("2"), UnitPrice: d("40")},
	}
	require.NoError(t, billing.PriceItems(items, cur))

	totals, err := billing.DocumentTotals(items, d("12.50"), d("25"), cur)
	require.NoError(t, err)

	assert.True(t, d("355").Equal(totals.Subtotal))
	assert.True(t, d("12.50").Equal(totals.TaxAmount))
	assert.True(t, d("25").Equal(totals.DiscountAmount))
	assert.True(t, d("342.50").Equal(totals.Total))
}

func TestDocumentTotals_OrderInvariant(t *testing.T) {
	cur := usd(t)

	items := []billing.LineItem{
		{Quantity: d("1"), UnitPrice: d("99.99")},
		{Quantity: d("7"), UnitPrice: d("14.30"), TaxRate: d("0.19")},
		{Quantity: d("2"), UnitPrice: d("50"), Discount: d("12.34")},
	}
	require.NoError(t, billing.PriceItems(items, cur))

	reversed := []billing.LineItem{items[2], items[1], items[0]}

	a, err := billing.DocumentTotals(items, d("5"), d("10"), cur)
	require.NoError(t, err)

	b, err := billing.DocumentTotals(reversed, d("5"), d("10"), cur)
	require.NoError(t, err)

	assert.True(t, a.Subtotal.Equal(b.Subtotal))
	assert.True(t, a.Total.Equal(b.Total))
}

func TestDocumentTotals_DiscountClampsAtSubtotal(t *testing.T) {
	cur := usd(t)

	items := []billing.LineItem{{Quantity: d("1"), UnitPrice: d("30")}}
	require.NoError(t, billing.PriceItems(items, cur))

	totals, err := billing.DocumentTotals(items, d("7"), d("100"), cur)
	require.NoError(t, err)

	assert.True(t, d("7").Equal(totals.Total))
}

func TestDocumentTotals_EmptyDocumentCarriesCharges(t *testing.T) {
	totals, err := billing.DocumentTotals(nil, d("15"), d("0"), usd(t))
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, d("15").Equal(totals.Total))
}

func TestDocumentTotals_NegativeCharges(t *testing.T) {
	_, err := billing.DocumentTotals(nil, d("-1"), d("0"), usd(t))
	assert.Error(t, err)

	_, err = billing.DocumentTotals(nil, d("0"), d("-1"), usd(t))
	assert.Error(t, err)
}
