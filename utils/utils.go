// Package utils provides small helpers shared across the module.
package utils

import (
	"errors"
	"math/rand"
)

// DefaultStringLength is the suffix length used when RandomString is
// called with a non-positive length.
const DefaultStringLength = 3

const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandomString returns a random lowercase alphanumeric string of the
// given length, falling back to DefaultStringLength when length <= 0.
func RandomString(length int) string {
	if length <= 0 {
		length = DefaultStringLength
	}

	b := make([]byte, length)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(b)
}

// ErrDivisionByZero is returned by Divide for a zero divisor.
var ErrDivisionByZero = errors.New("division by zero")

// Add returns the sum of a and b.
func Add(a, b float64) float64 { return a + b }

// Subtract returns a minus b.
func Subtract(a, b float64) float64 { return a - b }

// Multiply returns the product of a and b.
func Multiply(a, b float64) float64 { return a * b }

// Divide returns a divided by b, or ErrDivisionByZero when b is zero.
func Divide(a, b float64) (float64, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	return a / b, nil
}
