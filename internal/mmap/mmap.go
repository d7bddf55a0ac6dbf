// Package mmap lays out peripheral base addresses on the SoC bus and renders
// them as a C header for the firmware and the Linux device tree build.
//
// The address space is split at bit ADDR_W-2: the upper half of that region
// is the peripheral window, and the peripheral index occupies the
// N_SLAVES_W bits just below the window bit.
package mmap

import (
	"errors"
	"fmt"
	"io"
	"math/bits"
	"strings"
	"text/template"
)

// ErrAddressSpace is returned when the peripherals do not fit the address
// width.
var ErrAddressSpace = errors.New("peripherals do not fit the address space")

// Region is one peripheral's slot in the memory map.
type Region struct {
	Name  string
	Index int
	Base  uint64
}

// Map is a computed memory map.
type Map struct {
	AddrW   int
	SlavesW int
	PBit    int
	Regions []Region
}

// SlavesWidth returns the number of bits needed to index n peripherals,
// never less than one.
func SlavesWidth(n int) int {
	if n <= 2 {
		return 1
	}
	return bits.Len(uint(n - 1))
}

// Layout assigns a base address to each peripheral, in order.
func Layout(addrW int, names []string) (*Map, error) {
	if addrW < 3 || addrW > 64 {
		return nil, fmt.Errorf("%w: ADDR_W=%d out of range", ErrAddressSpace, addrW)
	}
	m := &Map{
		AddrW:   addrW,
		SlavesW: SlavesWidth(len(names)),
		PBit:    addrW - 2,
	}
	shift := m.PBit - m.SlavesW
	if shift < 0 {
		return nil, fmt.Errorf("%w: %d peripherals need %d select bits, ADDR_W=%d", ErrAddressSpace, len(names), m.SlavesW, addrW)
	}
	for i, name := range names {
		m.Regions = append(m.Regions, Region{
			Name:  name,
			Index: i,
			Base:  uint64(1)<<m.PBit | uint64(i)<<shift,
		})
	}
	return m, nil
}

var headerTmpl = template.Must(template.New("header").Parse(`// Generated by socgen for {{.Core}}. Do not edit.
#ifndef {{.Guard}}
#define {{.Guard}}

#define N_SLAVES {{len .Map.Regions}}
#define N_SLAVES_W {{.Map.SlavesW}}
#define P_BIT {{.Map.PBit}}
{{range .Map.Regions}}
#define {{.Name}} {{.Index}}
#define {{.Name}}_BASE 0x{{printf "%0*x" $.Digits .Base}}
{{- end}}

#endif // {{.Guard}}
`))

// WriteHeader renders m as a C header. core names the generated SoC and
// fileName determines the include guard.
func WriteHeader(w io.Writer, core, fileName string, m *Map) error {
	data := struct {
		Core   string
		Guard  string
		Digits int
		Map    *Map
	}{
		Core:   core,
		Guard:  guard(fileName),
		Digits: (m.AddrW + 3) / 4,
		Map:    m,
	}
	if err := headerTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render header: %w", err)
	}
	return nil
}

func guard(fileName string) string {
	var b strings.Builder
	b.WriteString("H_")
	for _, r := range strings.ToUpper(fileName) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
