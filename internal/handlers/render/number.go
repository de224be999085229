package render

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
)

// Number is a decimal decoded from a JSON number only. Quoted values are rejected
type Number struct {
	decimal.Decimal
}

func (n *Number) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte(`"`)) {
		return fmt.Errorf("json number expected, got string %s", data)
	}
	return n.Decimal.UnmarshalJSON(data)
}
