package domain

import "fmt"

// Cents is an amount of money in minor currency units
type Cents int64

// Mul multiplies by an integer quantity
func (c Cents) Mul(qty int) Cents {
	return c * Cents(qty)
}

// String formats the amount as a decimal, e.g. 12050 -> "120.50"
func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
