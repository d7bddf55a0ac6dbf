package soc

import (
	"fmt"

	"github.com/specialistvlad/socgen/internal/compose"
	"github.com/zclconf/go-cty/cty"
)

// Layer holds what a template or an overlay contributes to every table.
// Instances are implicitly guarded by their core's membership; Requires on
// the entries adds further guards.
type Layer struct {
	Name     string
	Version  string
	Flows    string
	BuildDir string
	// SetupDir is the directory the layer was loaded from. Relative copy
	// sources resolve against it. Empty for builtin descriptors.
	SetupDir string

	Submodules  []Submodule
	CPU         []compose.Entry[Instance]
	Peripherals []compose.Entry[Instance]
	Confs       []compose.Entry[Conf]
	PortMap     []compose.Entry[PortMapEntry]
	PostSetup   PostSetup
}

// Template is a base design with no parent.
type Template struct {
	Layer
}

// Overlay extends a parent (a Template or another Overlay) by appending to
// and removing from the parent's tables.
type Overlay struct {
	Layer
	Base string

	RemoveSubmodules  []string
	RemovePeripherals []string
	RemoveConfs       []string
	// InheritPortMap keeps the parent's port-map entries. When false the
	// overlay's entries replace everything inherited.
	InheritPortMap bool
}

// PostSetup lists the build-tree actions a layer requests once composition
// is complete.
type PostSetup struct {
	Copies []Copy
	// Header is the build-dir relative path of the peripheral address header.
	Header string
	Flags  []Switch
}

// Copy copies Source (a file, or every regular file directly inside a
// directory) into the build-dir relative directory Dest.
type Copy struct {
	Source string
	Dest   string
	// Root is the setup dir Source is relative to.
	Root string
}

// Switch sets Conf to Value when the literal Arg appears among the process
// arguments.
type Switch struct {
	Arg   string
	Conf  string
	Value cty.Value
}

func (s Switch) String() string {
	return fmt.Sprintf("%s => %s", s.Arg, s.Conf)
}

// DefaultBuildDir mirrors the generator's default: a sibling directory named
// after the core and its version.
func DefaultBuildDir(name, version string) string {
	if version == "" {
		return "../" + name
	}
	return fmt.Sprintf("../%s_%s", name, version)
}
