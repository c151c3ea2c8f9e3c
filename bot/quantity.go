package bot

import (
	"Facely/core"
	"strconv"
	"strings"
)

// ParseQuantity accepts a decimal number within low..high.
func ParseQuantity(text string, low, high int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < low || n > high {
		return 0, &core.InvalidQuantityError{Input: text, Min: low, Max: high}
	}
	return n, nil
}
