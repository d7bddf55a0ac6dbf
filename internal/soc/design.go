package soc

import (
	"fmt"

	"github.com/specialistvlad/socgen/internal/compose"
)

// Design is a composed SoC. Confs keeps shadowed entries in append order;
// EffectiveConfs collapses them.
type Design struct {
	Name     string
	Version  string
	Flows    string
	BuildDir string

	CPU         *Instance
	Submodules  []Submodule
	Peripherals []Instance
	Confs       []Conf
	PortMap     []PortMapEntry
	PostSetup   PostSetup
}

// Has reports whether a bare handle of core is in the submodule list.
func (d *Design) Has(core string) bool {
	return membership(d.Submodules).Has(core)
}

// EffectiveConfs returns one entry per name, the last one appended winning.
func (d *Design) EffectiveConfs() []Conf {
	return compose.Resolve(d.Confs)
}

// Conf returns the effective entry for name.
func (d *Design) Conf(name string) (Conf, error) {
	c, ok := compose.Lookup(d.Confs, name)
	if !ok {
		return Conf{}, fmt.Errorf("%s: %w: %s", d.Name, ErrConfNotFound, name)
	}
	return c, nil
}

// PeripheralNames lists peripheral instance names in order.
func (d *Design) PeripheralNames() []string {
	return compose.Names(d.Peripherals)
}

func membership(subs []Submodule) compose.Set {
	set := compose.Set{}
	for _, s := range subs {
		if s.IsBare() {
			set[s.Name] = struct{}{}
		}
	}
	return set
}
