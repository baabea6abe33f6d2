package model

import (
	"fmt"
	"time"
)

// Currency describes the unit in which prices and payments are
// denominated.  Prices reference a currency; amounts are stored
// as integer cents and only rendered with the symbol at the
// presentation layer.  This struct corresponds to a row in the
// `currencies` table.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – full currency name (e.g. "Euro").
//  Code      – unique ISO-style code (e.g. "EUR").
//  Symbol    – single display symbol (e.g. "€").
//  CreatedAt – creation timestamp.
type Currency struct {
	ID        uint64    // currencies.id
	Name      string    // currencies.name
	Code      string    // currencies.code
	Symbol    string    // currencies.symbol
	CreatedAt time.Time // currencies.created_at
}

// FormatAmount renders an amount of cents with the currency symbol,
// e.g. 600 -> "6.00 €".  Formatting lives here so that handlers and
// events render money identically.
func (c *Currency) FormatAmount(cents uint32) string {
	return fmt.Sprintf("%d.%02d %s", cents/100, cents%100, c.Symbol)
}
