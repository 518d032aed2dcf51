package domain

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Pair cryptocurrency trading pair.
type Pair struct {
	// Base base currency symbol.
	Base string
	// Quote quote currency symbol.
	Quote string
}

// String returns the display representation, e.g. "BTC/USDT".
func (p Pair) String() string {
	return fmt.Sprintf("%s/%s", p.Base, p.Quote)
}

// Symbol returns the concatenated symbol representation, e.g. "BTCUSDT".
func (p Pair) Symbol() string {
	return fmt.Sprintf("%s%s", p.Base, p.Quote)
}

// ParsePair parses "BASE/QUOTE" into a Pair.
func ParsePair(s string) (Pair, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Pair{}, errors.Errorf("invalid pair %q, expected BASE/QUOTE", s)
	}
	return Pair{Base: parts[0], Quote: parts[1]}, nil
}

// MarshalJSON encodes the pair as its display string.
func (p Pair) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", p.String())), nil
}

// UnmarshalJSON decodes a "BASE/QUOTE" string into the pair.
func (p *Pair) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParsePair(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
