package model

import (
	"errors"
	"fmt"
)

// Method is the recommendation algorithm selector value.
type Method string

const (
	MethodUserBased Method = "user_based"
	MethodItemBased Method = "item_based"
	MethodCBF       Method = "cbf"
	MethodSVD       Method = "svd"
)

// ErrUnknownMethod is returned when a selector value is not one of the four
// supported methods.
var ErrUnknownMethod = errors.New("model: unknown recommendation method")

var methodOrder = []Method{MethodUserBased, MethodItemBased, MethodCBF, MethodSVD}

// Methods returns the supported methods in selector order.
func Methods() []Method {
	return append([]Method(nil), methodOrder...)
}

// DefaultMethod is the method selected when a form is created.
func DefaultMethod() Method {
	return MethodUserBased
}

// Valid reports whether m is one of the supported methods.
func (m Method) Valid() bool {
	for _, candidate := range methodOrder {
		if candidate == m {
			return true
		}
	}
	return false
}

func (m Method) String() string {
	return string(m)
}

// ParseMethod converts a raw selector value. Values are matched exactly.
func ParseMethod(raw string) (Method, error) {
	m := Method(raw)
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, raw)
	}
	return m, nil
}
