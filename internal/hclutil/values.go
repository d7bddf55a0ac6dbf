package hclutil

import (
	"fmt"
	"maps"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// IsExprDefined reports whether expr was written in the source. gohcl fills
// omitted optional attributes with zero-width placeholder expressions, so a
// nil check is not enough.
func IsExprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	rng := expr.Range()
	return rng.End.Byte > rng.Start.Byte
}

// Primitive evaluates expr without variables and checks that it is a known,
// non-null bool, string or number.
func Primitive(expr hcl.Expression, what string) (cty.Value, hcl.Diagnostics) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	if val.IsNull() || !val.IsWhollyKnown() {
		return cty.NilVal, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Missing value",
			Detail:   fmt.Sprintf("The %s must be a literal bool, string or number.", what),
			Subject:  expr.Range().Ptr(),
		})
	}
	switch val.Type() {
	case cty.Bool, cty.String, cty.Number:
		return val, diags
	}
	return cty.NilVal, append(diags, &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  "Unsupported value type",
		Detail:   fmt.Sprintf("The %s must be a bool, string or number, not %s.", what, val.Type().FriendlyName()),
		Subject:  expr.Range().Ptr(),
	})
}

// StringMap converts an object or map value into a map of strings. Every
// attribute must convert to string.
func StringMap(val cty.Value, subject *hcl.Range, what string) (map[string]string, hcl.Diagnostics) {
	if val.IsNull() {
		return nil, nil
	}
	ty := val.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid " + what,
			Detail:   fmt.Sprintf("Expected an object, got %s.", ty.FriendlyName()),
			Subject:  subject,
		}}
	}

	raw := val.AsValueMap()
	out := make(map[string]string, len(raw))
	for _, k := range slices.Sorted(maps.Keys(raw)) {
		s, err := convert.Convert(raw[k], cty.String)
		if err != nil || s.IsNull() || !s.IsKnown() {
			return nil, hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  "Invalid " + what,
				Detail:   fmt.Sprintf("Attribute %q must be a string.", k),
				Subject:  subject,
			}}
		}
		out[k] = s.AsString()
	}
	return out, nil
}
