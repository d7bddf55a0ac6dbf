package soc

import (
	"fmt"
	"strings"
)

// Reserved corenames for the target side of a port-map entry.
const (
	CoreInternal = "internal"
	CoreExternal = "external"
)

// Endpoint identifies one side of a connection.
type Endpoint struct {
	Corename string
	IfName   string
	Port     string
	Bits     []int
}

func (e Endpoint) String() string {
	s := e.Corename + "." + e.IfName
	if e.Port != "" {
		s += "." + e.Port
	}
	if len(e.Bits) > 0 {
		bits := make([]string, len(e.Bits))
		for i, b := range e.Bits {
			bits[i] = fmt.Sprint(b)
		}
		s += "[" + strings.Join(bits, ",") + "]"
	}
	return s
}

// PortMapEntry wires a peripheral port to an internal wire, the external
// system interface, or another core.
type PortMapEntry struct {
	From Endpoint
	To   Endpoint
}

// Key implements compose.Keyed. A peripheral port is wired at most once, so
// the source endpoint names the entry.
func (p PortMapEntry) Key() string { return p.From.String() }

func (p PortMapEntry) String() string { return p.From.String() + " -> " + p.To.String() }
