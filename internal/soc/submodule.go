package soc

import (
	"maps"
	"slices"
	"strings"
)

// Submodule is one entry of the submodule list. It is either an interface
// descriptor (Interface is non-nil) or a module handle, optionally paired
// with instantiation parameters such as purpose="simulation".
type Submodule struct {
	Name      string
	Params    map[string]string
	Interface map[string]string
}

// Module returns a module handle.
func Module(name string, params map[string]string) Submodule {
	return Submodule{Name: name, Params: params}
}

// InterfaceDescriptor returns an interface descriptor. attrs must contain the
// "interface" attribute.
func InterfaceDescriptor(attrs map[string]string) Submodule {
	return Submodule{Name: attrs["interface"], Interface: attrs}
}

// IsInterface reports whether s describes an interface rather than a module.
func (s Submodule) IsInterface() bool { return s.Interface != nil }

// IsBare reports whether s is a module handle without parameters. Only bare
// handles satisfy membership checks and removals.
func (s Submodule) IsBare() bool {
	return !s.IsInterface() && len(s.Params) == 0
}

// Key implements compose.Keyed. Parameterized handles and interface
// descriptors include their attributes so a simulation-only copy of a module
// never shadows the hardware one.
func (s Submodule) Key() string {
	switch {
	case s.IsInterface():
		return "interface:" + joinAttrs(s.Interface)
	case len(s.Params) > 0:
		return s.Name + "?" + joinAttrs(s.Params)
	default:
		return s.Name
	}
}

func (s Submodule) String() string { return s.Key() }

func joinAttrs(m map[string]string) string {
	keys := slices.Sorted(maps.Keys(m))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+m[k])
	}
	return strings.Join(parts, ",")
}
