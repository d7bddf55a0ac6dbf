package descriptor

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/specialistvlad/socgen/internal/compose"
	"github.com/specialistvlad/socgen/internal/hclutil"
	"github.com/specialistvlad/socgen/internal/soc"
	"github.com/zclconf/go-cty/cty"
)

// translateTemplate converts a decoded `soc` block into a soc.Template.
func translateTemplate(b *templateBlock, setupDir string) (*soc.Template, hcl.Diagnostics) {
	layer, diags := translateLayer(b.Name, b.Body, setupDir)
	if diags.HasErrors() {
		return nil, diags
	}
	return &soc.Template{Layer: *layer}, diags
}

// translateVariant converts a decoded `variant` block into a soc.Overlay.
// Variants inherit the parent's port map unless told otherwise.
func translateVariant(b *variantBlock, setupDir string) (*soc.Overlay, hcl.Diagnostics) {
	layer, diags := translateLayer(b.Name, b.Body, setupDir)
	if diags.HasErrors() {
		return nil, diags
	}
	inherit := true
	if b.InheritPortMap != nil {
		inherit = *b.InheritPortMap
	}
	return &soc.Overlay{
		Layer:             *layer,
		Base:              b.Base,
		RemoveSubmodules:  b.RemoveSubmodules,
		RemovePeripherals: b.RemovePeripherals,
		RemoveConfs:       b.RemoveConfs,
		InheritPortMap:    inherit,
	}, diags
}

func translateLayer(name string, body hcl.Body, setupDir string) (*soc.Layer, hcl.Diagnostics) {
	var lb layerBody
	diags := gohcl.DecodeBody(body, nil, &lb)
	if diags.HasErrors() {
		return nil, diags
	}

	layer := &soc.Layer{
		Name:     name,
		Version:  lb.Version,
		Flows:    lb.Flows,
		BuildDir: lb.BuildDir,
		SetupDir: setupDir,
	}

	subs, subDiags := translateSubmodules(lb.Submodules)
	diags = append(diags, subDiags...)
	layer.Submodules = subs

	for _, b := range lb.CPUs {
		layer.CPU = append(layer.CPU, translateInstance(b))
	}
	for _, b := range lb.Peripherals {
		layer.Peripherals = append(layer.Peripherals, translateInstance(b))
	}
	for _, b := range lb.Confs {
		c, confDiags := translateConf(b)
		diags = append(diags, confDiags...)
		if !confDiags.HasErrors() {
			layer.Confs = append(layer.Confs, c)
		}
	}
	for _, b := range lb.PortMaps {
		layer.PortMap = append(layer.PortMap, compose.Entry[soc.PortMapEntry]{
			Value: soc.PortMapEntry{
				From: translateEndpoint(b.From),
				To:   translateEndpoint(b.To),
			},
			Requires: b.Requires,
			Override: b.Override,
		})
	}
	if lb.PostSetup != nil {
		post, postDiags := translatePostSetup(lb.PostSetup)
		diags = append(diags, postDiags...)
		layer.PostSetup = post
	}

	if diags.HasErrors() {
		return nil, diags
	}
	return layer, diags
}

func translateInstance(b *instanceBlock) compose.Entry[soc.Instance] {
	return compose.Entry[soc.Instance]{
		Value: soc.Instance{
			Name:       b.Name,
			Core:       b.Core,
			Descr:      b.Descr,
			Parameters: b.Parameters,
		},
		Requires: b.Requires,
	}
}

func translateConf(b *confBlock) (compose.Entry[soc.Conf], hcl.Diagnostics) {
	var diags hcl.Diagnostics
	kind := soc.ConfKind(b.Type)
	if !kind.Valid() {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid conf type",
			Detail:   fmt.Sprintf("Conf %q has type %q; expected \"M\" or \"P\".", b.Name, b.Type),
			Subject:  b.Value.Range().Ptr(),
		})
	}
	val, valDiags := hclutil.Primitive(b.Value, fmt.Sprintf("value of conf %q", b.Name))
	diags = append(diags, valDiags...)

	return compose.Entry[soc.Conf]{
		Value: soc.Conf{
			Name:  b.Name,
			Kind:  kind,
			Value: val,
			Min:   b.Min,
			Max:   b.Max,
			Descr: b.Descr,
		},
		Requires: b.Requires,
		Override: b.Override,
	}, diags
}

func translateEndpoint(b endpointBlock) soc.Endpoint {
	return soc.Endpoint{
		Corename: b.Corename,
		IfName:   b.IfName,
		Port:     b.Port,
		Bits:     b.Bits,
	}
}

func translatePostSetup(b *postSetupBlock) (soc.PostSetup, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	post := soc.PostSetup{Header: b.Header}
	for _, c := range b.Copies {
		post.Copies = append(post.Copies, soc.Copy{Source: c.From, Dest: c.To})
	}
	for _, sw := range b.Flags {
		val, valDiags := hclutil.Primitive(sw.Value, fmt.Sprintf("value of switch %q", sw.Arg))
		diags = append(diags, valDiags...)
		post.Flags = append(post.Flags, soc.Switch{Arg: sw.Arg, Conf: sw.Conf, Value: val})
	}
	return post, diags
}

// translateSubmodules decodes the ordered submodule list. Each element is a
// core name, an interface descriptor object, or a [name, parameters] pair.
func translateSubmodules(expr hcl.Expression) ([]soc.Submodule, hcl.Diagnostics) {
	if !hclutil.IsExprDefined(expr) {
		return nil, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return nil, diags
	}
	subject := expr.Range().Ptr()
	ty := val.Type()
	if !ty.IsTupleType() && !ty.IsListType() {
		return nil, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid submodules",
			Detail:   fmt.Sprintf("The submodules attribute must be a list, not %s.", ty.FriendlyName()),
			Subject:  subject,
		})
	}

	var out []soc.Submodule
	for i, elem := range val.AsValueSlice() {
		sm, elemDiags := translateSubmodule(elem, subject, i)
		diags = append(diags, elemDiags...)
		if !elemDiags.HasErrors() {
			out = append(out, sm)
		}
	}
	return out, diags
}

func translateSubmodule(elem cty.Value, subject *hcl.Range, index int) (soc.Submodule, hcl.Diagnostics) {
	invalid := func(detail string) hcl.Diagnostics {
		return hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid submodule",
			Detail:   fmt.Sprintf("Element %d: %s", index, detail),
			Subject:  subject,
		}}
	}
	if elem.IsNull() || !elem.IsWhollyKnown() {
		return soc.Submodule{}, invalid("value is null")
	}

	ty := elem.Type()
	switch {
	case ty == cty.String:
		return soc.Module(elem.AsString(), nil), nil

	case ty.IsObjectType() || ty.IsMapType():
		attrs, diags := hclutil.StringMap(elem, subject, "interface descriptor")
		if diags.HasErrors() {
			return soc.Submodule{}, diags
		}
		if attrs["interface"] == "" {
			return soc.Submodule{}, invalid("interface descriptors need an \"interface\" attribute")
		}
		return soc.InterfaceDescriptor(attrs), nil

	case ty.IsTupleType() || ty.IsListType():
		pair := elem.AsValueSlice()
		if len(pair) != 2 || pair[0].Type() != cty.String || pair[0].IsNull() {
			return soc.Submodule{}, invalid("expected [name, parameters]")
		}
		params, diags := hclutil.StringMap(pair[1], subject, "submodule parameters")
		if diags.HasErrors() {
			return soc.Submodule{}, diags
		}
		return soc.Module(pair[0].AsString(), params), nil
	}
	return soc.Submodule{}, invalid(fmt.Sprintf("unsupported %s", ty.FriendlyName()))
}
