package utils

import (
	"errors"
	"strings"
	"testing"
)

func TestRandomStringLength(t *testing.T) {
	tests := []struct {
		length int
		want   int
	}{
		{3, 3},
		{8, 8},
		{1, 1},
		{0, DefaultStringLength},
		{-5, DefaultStringLength},
	}

	for _, tt := range tests {
		if got := RandomString(tt.length); len(got) != tt.want {
			t.Errorf("RandomString(%d) length = %d, want %d", tt.length, len(got), tt.want)
		}
	}
}

func TestRandomStringAlphabet(t *testing.T) {
	s := RandomString(64)
	for _, r := range s {
		if !strings.ContainsRune(alphabet, r) {
			t.Errorf("RandomString produced %q outside the alphabet", r)
		}
	}
}

func TestAdd(t *testing.T) {
	if got := Add(-1, 1); got != 0 {
		t.Errorf("Add(-1, 1) = %v, want 0", got)
	}
	if got := Add(-1, -1); got != -2 {
		t.Errorf("Add(-1, -1) = %v, want -2", got)
	}
	if got := Add(10, 5); got != 15 {
		t.Errorf("Add(10, 5) = %v, want 15", got)
	}
}

func TestSubtract(t *testing.T) {
	if got := Subtract(10, 5); got != 5 {
		t.Errorf("Subtract(10, 5) = %v, want 5", got)
	}
	if got := Subtract(-1, 1); got != -2 {
		t.Errorf("Subtract(-1, 1) = %v, want -2", got)
	}
}

func TestMultiply(t *testing.T) {
	if got := Multiply(10, 5); got != 50 {
		t.Errorf("Multiply(10, 5) = %v, want 50", got)
	}
	if got := Multiply(-1, -1); got != 1 {
		t.Errorf("Multiply(-1, -1) = %v, want 1", got)
	}
}

func TestDivide(t *testing.T) {
	tests := []struct {
		a, b, want float64
	}{
		{10, 5, 2},
		{-1, 1, -1},
		{-1, -1, 1},
		{5, 2, 2.5},
	}

	for _, tt := range tests {
		got, err := Divide(tt.a, tt.b)
		if err != nil {
			t.Errorf("Divide(%v, %v) error: %v", tt.a, tt.b, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Divide(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}

	if _, err := Divide(10, 0); !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("Divide(10, 0) err = %v, want ErrDivisionByZero", err)
	}
}
