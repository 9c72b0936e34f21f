package trigger

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PageSize matches the search API's pagination.
const PageSize = 10

// ErrInvalidInput is returned for page input that is not a non-negative integer.
var ErrInvalidInput = errors.New("invalid input")

// Page is a resolved search page.
type Page struct {
	Offset      int `json:"offset"`
	DisplayPage int `json:"display_page"`
}

// ResolvePageOffset converts a 1-based page number typed by an operator into a
// result offset. Empty input, 0 and 1 all mean the first page.
func ResolvePageOffset(raw string) (Page, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Page{Offset: 0, DisplayPage: 1}, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return Page{}, fmt.Errorf("%w: page %q is not a whole number", ErrInvalidInput, raw)
	}
	if n < 0 {
		return Page{}, fmt.Errorf("%w: page %d is negative", ErrInvalidInput, n)
	}
	if n > math.MaxInt/PageSize {
		return Page{}, fmt.Errorf("%w: page %d is out of range", ErrInvalidInput, n)
	}
	if n <= 1 {
		return Page{Offset: 0, DisplayPage: 1}, nil
	}
	return Page{Offset: (n - 1) * PageSize, DisplayPage: n}, nil
}
