package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidPaymentMethod(t *testing.T) {
	for _, m := range []string{MethodCreditCard, MethodDebitCard, MethodCash} {
		assert.True(t, ValidPaymentMethod(m), m)
	}
	for _, m := range []string{"", "bitcoin", "CASH", "credit card"} {
		assert.False(t, ValidPaymentMethod(m), m)
	}
}

func TestCurrencyFormatAmount(t *testing.T) {
	c := Currency{Name: "Euro", Code: "EUR", Symbol: "€"}
	assert.Equal(t, "0.00 €", c.FormatAmount(0))
	assert.Equal(t, "0.50 €", c.FormatAmount(50))
	assert.Equal(t, "2.00 €", c.FormatAmount(200))
	assert.Equal(t, "6.05 €", c.FormatAmount(605))
	assert.Equal(t, "123.45 €", c.FormatAmount(12345))
}
