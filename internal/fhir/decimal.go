package fhir

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
)

// ErrNotAnInteger reports a decimal quantity with a fractional part where a
// whole number is required.
var ErrNotAnInteger = errors.New("decimal value must represent a whole number")

// DecimalToInt strictly converts a FHIR decimal to an integer. Values such
// as "5" and "5.0" convert to 5; "5.5" is rejected.
func DecimalToInt(value string) (int64, error) {
	if value == "" {
		return 0, fmt.Errorf("%w: empty value", ErrNotAnInteger)
	}
	r, ok := new(big.Rat).SetString(value)
	if !ok {
		return 0, fmt.Errorf("%w: %q is not a decimal", ErrNotAnInteger, value)
	}
	if !r.IsInt() {
		return 0, fmt.Errorf("%w: %q", ErrNotAnInteger, value)
	}
	n := r.Num()
	if !n.IsInt64() {
		return 0, fmt.Errorf("%w: %q out of range", ErrNotAnInteger, value)
	}
	return n.Int64(), nil
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
