package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Quantity is a stock count that tolerates clients sending the value
// as either a JSON number or a numeric string ("12"). Anything that
// does not parse as a number coerces to 0 instead of failing the
// request.
type Quantity int

func (q *Quantity) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*q = 0
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		raw = strings.TrimSpace(s)
	}

	if raw == "" {
		*q = 0
		return nil
	}

	if n, err := strconv.Atoi(raw); err == nil {
		*q = Quantity(n)
		return nil
	}

	// Accept "7.0" style values the way a numeric cast would
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		*q = Quantity(int(f))
		return nil
	}

	*q = 0
	return nil
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(q))
}
