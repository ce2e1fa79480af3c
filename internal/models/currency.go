package models

// Currency identifies one of the supported fiat currencies.
type Currency string

// Supported currencies. CAD is the fixed reporting base: every transaction's
// base amount is expressed in CAD cents regardless of its original currency.
const (
	CurrencyCAD Currency = "CAD"
	CurrencyUSD Currency = "USD"
	CurrencyCNY Currency = "CNY"
)

// BaseCurrency is the reporting base for all derived amounts.
const BaseCurrency = CurrencyCAD

// Supported reports whether the currency is one of the supported set.
func (c Currency) Supported() bool {
	switch c {
	case CurrencyCAD, CurrencyUSD, CurrencyCNY:
		return true
	}
	return false
}

// SupportedCurrencies returns the supported currency set in display order.
func SupportedCurrencies() []Currency {
	return []Currency{CurrencyCAD, CurrencyUSD, CurrencyCNY}
}
