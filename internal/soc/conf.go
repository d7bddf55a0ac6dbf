package soc

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ErrConfNotFound is returned when a required configuration entry is absent
// from the effective table.
var ErrConfNotFound = errors.New("configuration entry not found")

// ConfKind tags how the generator emits an entry.
type ConfKind string

const (
	// KindMacro entries become Verilog/C macros.
	KindMacro ConfKind = "M"
	// KindParam entries become Verilog module parameters.
	KindParam ConfKind = "P"
)

// Valid reports whether k is a known kind.
func (k ConfKind) Valid() bool {
	return k == KindMacro || k == KindParam
}

// Conf is one configuration entry. Value is a primitive cty value: a bool
// for switches, a string for everything else.
type Conf struct {
	Name  string
	Kind  ConfKind
	Value cty.Value
	Min   string
	Max   string
	Descr string
}

// Key implements compose.Keyed.
func (c Conf) Key() string { return c.Name }

// WithValue returns a copy of c carrying v.
func (c Conf) WithValue(v cty.Value) Conf {
	c.Value = v
	return c
}

// Native returns the value as a Go bool or string.
func (c Conf) Native() (any, error) {
	v := c.Value
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("conf %s: value is unknown", c.Name)
	}
	switch v.Type() {
	case cty.Bool:
		return v.True(), nil
	case cty.String:
		return v.AsString(), nil
	case cty.Number:
		return v.AsBigFloat().Text('f', -1), nil
	default:
		return nil, fmt.Errorf("conf %s: unsupported value type %s", c.Name, v.Type().FriendlyName())
	}
}

// Int interprets the value as an integer. Switches map to 0 and 1.
func (c Conf) Int() (int, error) {
	v := c.Value
	if v.IsNull() {
		return 0, fmt.Errorf("conf %s: value is null", c.Name)
	}
	if v.Type() == cty.Bool {
		if v.True() {
			return 1, nil
		}
		return 0, nil
	}
	num, err := convert.Convert(v, cty.Number)
	if err != nil {
		return 0, fmt.Errorf("conf %s: %w", c.Name, err)
	}
	var out int
	if err := gocty.FromCtyValue(num, &out); err != nil {
		return 0, fmt.Errorf("conf %s: %w", c.Name, err)
	}
	return out, nil
}

// Bool builds a switch value.
func Bool(b bool) cty.Value { return cty.BoolVal(b) }

// String builds a string value.
func String(s string) cty.Value { return cty.StringVal(s) }

// Number builds a string value from an integer, the way parameters are
// written in descriptors.
func Number(n int64) cty.Value { return cty.StringVal(big.NewInt(n).String()) }
