// Package manifest serializes a composed design into the YAML document the
// hardware generator reads.
package manifest

import (
	"fmt"
	"io"

	"github.com/specialistvlad/socgen/internal/soc"
	"gopkg.in/yaml.v3"
)

// Manifest is the generator-facing view of a design: effective tables only.
type Manifest struct {
	Name        string       `yaml:"name"`
	Version     string       `yaml:"version,omitempty"`
	Flows       string       `yaml:"flows,omitempty"`
	BuildDir    string       `yaml:"build_dir"`
	CPU         *Instance    `yaml:"cpu,omitempty"`
	Submodules  []Submodule  `yaml:"submodules"`
	Peripherals []Instance   `yaml:"peripherals"`
	Confs       []Conf       `yaml:"confs"`
	PortMap     []Connection `yaml:"peripheral_portmap"`
}

// Submodule is a module handle or an interface descriptor.
type Submodule struct {
	Module    string            `yaml:"module,omitempty"`
	Params    map[string]string `yaml:"params,omitempty"`
	Interface map[string]string `yaml:"interface,omitempty"`
}

// Instance is a CPU or peripheral instance.
type Instance struct {
	Name       string            `yaml:"name"`
	Core       string            `yaml:"core"`
	Descr      string            `yaml:"descr,omitempty"`
	Parameters map[string]string `yaml:"parameters,omitempty"`
}

// Conf is a configuration entry. Val is a bool for macros used as
// switches and a string otherwise.
type Conf struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Val   any    `yaml:"val"`
	Min   string `yaml:"min,omitempty"`
	Max   string `yaml:"max,omitempty"`
	Descr string `yaml:"descr,omitempty"`
}

// Endpoint is one side of a connection.
type Endpoint struct {
	Corename string `yaml:"corename"`
	IfName   string `yaml:"if_name"`
	Port     string `yaml:"port"`
	Bits     []int  `yaml:"bits,flow"`
}

// Connection is a port-map entry.
type Connection struct {
	From Endpoint `yaml:"from"`
	To   Endpoint `yaml:"to"`
}

// FromDesign builds the manifest of d.
func FromDesign(d *soc.Design) (*Manifest, error) {
	m := &Manifest{
		Name:        d.Name,
		Version:     d.Version,
		Flows:       d.Flows,
		BuildDir:    d.BuildDir,
		Submodules:  make([]Submodule, 0, len(d.Submodules)),
		Peripherals: make([]Instance, 0, len(d.Peripherals)),
		PortMap:     make([]Connection, 0, len(d.PortMap)),
	}
	if d.CPU != nil {
		cpu := instance(*d.CPU)
		m.CPU = &cpu
	}
	for _, s := range d.Submodules {
		if s.IsInterface() {
			m.Submodules = append(m.Submodules, Submodule{Interface: s.Interface})
			continue
		}
		m.Submodules = append(m.Submodules, Submodule{Module: s.Name, Params: s.Params})
	}
	for _, p := range d.Peripherals {
		m.Peripherals = append(m.Peripherals, instance(p))
	}

	effective := d.EffectiveConfs()
	m.Confs = make([]Conf, 0, len(effective))
	for _, c := range effective {
		val, err := c.Native()
		if err != nil {
			return nil, err
		}
		m.Confs = append(m.Confs, Conf{
			Name:  c.Name,
			Type:  string(c.Kind),
			Val:   val,
			Min:   c.Min,
			Max:   c.Max,
			Descr: c.Descr,
		})
	}
	for _, p := range d.PortMap {
		m.PortMap = append(m.PortMap, Connection{From: endpoint(p.From), To: endpoint(p.To)})
	}
	return m, nil
}

func instance(i soc.Instance) Instance {
	return Instance{Name: i.Name, Core: i.Core, Descr: i.Descr, Parameters: i.Parameters}
}

func endpoint(e soc.Endpoint) Endpoint {
	bits := e.Bits
	if bits == nil {
		bits = []int{}
	}
	return Endpoint{Corename: e.Corename, IfName: e.IfName, Port: e.Port, Bits: bits}
}

// Encode writes m as YAML.
func Encode(w io.Writer, m *Manifest) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return nil
}
