package descriptor

import (
	"github.com/hashicorp/hcl/v2"
)

// fileRoot decodes every top-level block a descriptor file may contain.
// Anything else is reported as an unsupported block.
type fileRoot struct {
	Templates []*templateBlock `hcl:"soc,block"`
	Variants  []*variantBlock  `hcl:"variant,block"`
}

type templateBlock struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

type variantBlock struct {
	Name string `hcl:"name,label"`
	Base string `hcl:"base"`

	RemoveSubmodules  []string `hcl:"remove_submodules,optional"`
	RemovePeripherals []string `hcl:"remove_peripherals,optional"`
	RemoveConfs       []string `hcl:"remove_confs,optional"`
	InheritPortMap    *bool    `hcl:"inherit_portmap,optional"`

	Body hcl.Body `hcl:",remain"`
}

// layerBody is the content shared by templates and variants, decoded from
// the remaining body of either block.
type layerBody struct {
	Version    string         `hcl:"version,optional"`
	Flows      string         `hcl:"flows,optional"`
	BuildDir   string         `hcl:"build_dir,optional"`
	Submodules hcl.Expression `hcl:"submodules,optional"`

	CPUs        []*instanceBlock `hcl:"cpu,block"`
	Peripherals []*instanceBlock `hcl:"peripheral,block"`
	Confs       []*confBlock     `hcl:"conf,block"`
	PortMaps    []*portmapBlock  `hcl:"portmap,block"`
	PostSetup   *postSetupBlock  `hcl:"post_setup,block"`
}

type instanceBlock struct {
	Name       string            `hcl:"name,label"`
	Core       string            `hcl:"core"`
	Descr      string            `hcl:"descr,optional"`
	Parameters map[string]string `hcl:"parameters,optional"`
	Requires   []string          `hcl:"requires,optional"`
}

type confBlock struct {
	Name     string         `hcl:"name,label"`
	Type     string         `hcl:"type"`
	Value    hcl.Expression `hcl:"value"`
	Min      string         `hcl:"min,optional"`
	Max      string         `hcl:"max,optional"`
	Descr    string         `hcl:"descr,optional"`
	Requires []string       `hcl:"requires,optional"`
	Override bool           `hcl:"override,optional"`
}

type portmapBlock struct {
	Requires []string      `hcl:"requires,optional"`
	Override bool          `hcl:"override,optional"`
	From     endpointBlock `hcl:"from,block"`
	To       endpointBlock `hcl:"to,block"`
}

type endpointBlock struct {
	Corename string `hcl:"corename"`
	IfName   string `hcl:"if_name"`
	Port     string `hcl:"port,optional"`
	Bits     []int  `hcl:"bits,optional"`
}

type postSetupBlock struct {
	Header string         `hcl:"header,optional"`
	Copies []*copyBlock   `hcl:"copy,block"`
	Flags  []*switchBlock `hcl:"switch,block"`
}

type copyBlock struct {
	From string `hcl:"from"`
	To   string `hcl:"to"`
}

type switchBlock struct {
	Arg   string         `hcl:"arg,label"`
	Conf  string         `hcl:"conf"`
	Value hcl.Expression `hcl:"value"`
}
