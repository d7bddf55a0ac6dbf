package soc

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/socgen/internal/compose"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func conf(name string, kind ConfKind, v cty.Value) Conf {
	return Conf{Name: name, Kind: kind, Value: v, Min: "0", Max: "1"}
}

func uartPort(port string, to string) PortMapEntry {
	ifName := "rs232"
	if port == "interrupt" {
		ifName = "interrupt"
	}
	return PortMapEntry{
		From: Endpoint{Corename: "UART0", IfName: ifName, Port: port},
		To:   Endpoint{Corename: to, IfName: "UART"},
	}
}

func baseTemplate() *Template {
	return &Template{Layer: Layer{
		Name:    "iob_soc",
		Version: "V0.70",
		Flows:   "pc-emul emb sim doc fpga",
		Submodules: []Submodule{
			InterfaceDescriptor(map[string]string{"interface": "iob_wire", "file_prefix": "iob_"}),
			Module("iob_picorv32", nil),
			Module("iob_cache", nil),
			Module("iob_uart", nil),
			Module("iob_reset_sync", nil),
		},
		CPU:         compose.Always(Instance{Name: "cpu_0", Core: "iob_picorv32"}),
		Peripherals: compose.Always(Instance{Name: "UART0", Core: "iob_uart", Descr: "Default UART interface"}),
		Confs: compose.Always(
			conf("INIT_MEM", KindMacro, Bool(true)),
			conf("USE_MUL_DIV", KindMacro, Bool(true)),
			conf("USE_COMPRESSED", KindMacro, Bool(true)),
			conf("USE_EXTMEM", KindMacro, Bool(false)),
			Conf{Name: "ADDR_W", Kind: KindParam, Value: String("32"), Min: "1", Max: "32"},
		),
		PortMap: compose.Always(uartPort("txd", CoreExternal)),
	}}
}

func cryptoLinux() *Overlay {
	return &Overlay{
		Base: "iob_soc",
		Layer: Layer{
			Name:     "iob_soc_opencryptolinux",
			Version:  "V0.70",
			SetupDir: "/src/opencryptolinux",
			Submodules: []Submodule{
				Module("iob_vexriscv", nil),
				Module("iob_uart16550", nil),
				Module("iob_plic", nil),
				Module("iob_clint", nil),
				Module("iob_uart", map[string]string{"purpose": "simulation"}),
			},
			CPU: compose.Always(Instance{Name: "cpu_0", Core: "iob_vexriscv"}),
			Peripherals: compose.Always(
				Instance{Name: "UART0", Core: "iob_uart16550", Descr: "Default UART interface"},
				Instance{Name: "PLIC0", Core: "iob_plic", Parameters: map[string]string{"N_SOURCES": "32", "N_TARGETS": "2"}},
				Instance{Name: "CLINT0", Core: "iob_clint"},
			),
			Confs: compose.Always(
				conf("RUN_LINUX", KindMacro, Bool(false)),
				conf("INIT_MEM", KindMacro, Bool(true)),
				conf("USE_EXTMEM", KindMacro, Bool(true)),
				Conf{Name: "N_CORES", Kind: KindParam, Value: String("1"), Min: "1", Max: "32"},
			),
			PortMap: []compose.Entry[PortMapEntry]{
				{Value: uartPort("interrupt", CoreInternal), Requires: []string{"iob_uart16550"}},
				{Value: uartPort("txd", CoreExternal), Requires: []string{"iob_uart16550"}},
				{Value: uartPort("rxd", CoreExternal), Requires: []string{"iob_uart16550"}},
			},
			PostSetup: PostSetup{
				Copies: []Copy{{Source: "scripts/terminalMode.py", Dest: "scripts"}},
				Header: "software/src/iob_soc_opencryptolinux_periphs.h",
				Flags:  []Switch{{Arg: "RUN_LINUX", Conf: "RUN_LINUX", Value: Bool(true)}},
			},
		},
		RemoveSubmodules: []string{"iob_picorv32", "iob_uart"},
		RemoveConfs:      []string{"USE_MUL_DIV", "USE_COMPRESSED"},
		InheritPortMap:   true,
	}
}

func TestSetup_OpenCryptoLinux(t *testing.T) {
	d, err := Setup(context.Background(), baseTemplate(), []*Overlay{cryptoLinux()}, Options{})
	require.NoError(t, err)

	assert.Equal(t, "iob_soc_opencryptolinux", d.Name)
	assert.Equal(t, "../iob_soc_opencryptolinux_V0.70", d.BuildDir)

	wantSubs := []string{
		"interface:file_prefix=iob_,interface=iob_wire",
		"iob_cache",
		"iob_reset_sync",
		"iob_vexriscv",
		"iob_uart16550",
		"iob_plic",
		"iob_clint",
		"iob_uart?purpose=simulation",
	}
	if diff := cmp.Diff(wantSubs, compose.Names(d.Submodules)); diff != "" {
		t.Fatalf("submodules mismatch (-want +got):\n%s", diff)
	}

	require.NotNil(t, d.CPU)
	assert.Equal(t, "iob_vexriscv", d.CPU.Core)

	// The base UART0 (iob_uart) is not instantiated: only its simulation copy
	// survived, and that does not satisfy membership.
	require.Len(t, d.Peripherals, 3)
	assert.Equal(t, []string{"UART0", "PLIC0", "CLINT0"}, d.PeripheralNames())
	assert.Equal(t, "iob_uart16550", d.Peripherals[0].Core)
	assert.Equal(t, "32", d.Peripherals[1].Parameters["N_SOURCES"])

	assert.Equal(t,
		[]string{"INIT_MEM", "USE_EXTMEM", "ADDR_W", "RUN_LINUX", "N_CORES"},
		compose.Names(d.EffectiveConfs()),
	)
	extmem, err := d.Conf("USE_EXTMEM")
	require.NoError(t, err)
	assert.Equal(t, Bool(true), extmem.Value)

	// The base port map is inherited and the overlay's txd entry shadows it.
	require.Len(t, d.PortMap, 3)
	assert.Equal(t, "UART0.rs232.txd", d.PortMap[0].Key())
	assert.Equal(t, "UART0.interrupt.interrupt", d.PortMap[1].Key())
	assert.Equal(t, CoreInternal, d.PortMap[1].To.Corename)

	require.Len(t, d.PostSetup.Copies, 1)
	assert.Equal(t, "/src/opencryptolinux", d.PostSetup.Copies[0].Root)
	assert.Equal(t, "software/src/iob_soc_opencryptolinux_periphs.h", d.PostSetup.Header)
}

func TestSetup_RunLinuxSwitch(t *testing.T) {
	d, err := Setup(context.Background(), baseTemplate(), []*Overlay{cryptoLinux()}, Options{Args: []string{"RUN_LINUX"}})
	require.NoError(t, err)

	c, err := d.Conf("RUN_LINUX")
	require.NoError(t, err)
	assert.Equal(t, Bool(true), c.Value)
	require.NoError(t, compose.CheckUnique(d.EffectiveConfs()))

	d, err = Setup(context.Background(), baseTemplate(), []*Overlay{cryptoLinux()}, Options{})
	require.NoError(t, err)
	c, err = d.Conf("RUN_LINUX")
	require.NoError(t, err)
	assert.Equal(t, Bool(false), c.Value)
}

func TestSetup_SwitchOnMissingConf(t *testing.T) {
	ov := cryptoLinux()
	ov.PostSetup.Flags = []Switch{{Arg: "FAST", Conf: "NOT_DEFINED", Value: Bool(true)}}

	_, err := Setup(context.Background(), baseTemplate(), []*Overlay{ov}, Options{Args: []string{"FAST"}})
	require.ErrorIs(t, err, ErrConfNotFound)
}

func TestSetup_NoUartWithoutUart16550(t *testing.T) {
	ov := cryptoLinux()
	ov.RemoveSubmodules = append(ov.RemoveSubmodules, "iob_uart16550")

	d, err := Setup(context.Background(), baseTemplate(), []*Overlay{ov}, Options{})
	require.NoError(t, err)

	assert.NotContains(t, d.PeripheralNames(), "UART0")
	for _, p := range d.PortMap {
		assert.NotEqual(t, "UART0", p.From.Corename, "unexpected UART entry %s", p)
	}
	assert.Empty(t, d.PortMap)
}

func TestSetup_PortMapNotInherited(t *testing.T) {
	ov := cryptoLinux()
	ov.InheritPortMap = false
	ov.PortMap = ov.PortMap[:1]

	d, err := Setup(context.Background(), baseTemplate(), []*Overlay{ov}, Options{})
	require.NoError(t, err)
	require.Len(t, d.PortMap, 1)
	assert.Equal(t, "UART0.interrupt.interrupt", d.PortMap[0].Key())
}

func TestSetup_InheritPortMap(t *testing.T) {
	ov := cryptoLinux()
	ov.InheritPortMap = true
	ov.PortMap = nil

	d, err := Setup(context.Background(), baseTemplate(), []*Overlay{ov}, Options{})
	require.NoError(t, err)
	require.Len(t, d.PortMap, 1)
	assert.Equal(t, "UART0.rs232.txd", d.PortMap[0].Key())
}

func TestSetup_StrictRejectsImplicitOverride(t *testing.T) {
	_, err := Setup(context.Background(), baseTemplate(), []*Overlay{cryptoLinux()}, Options{Strict: true})
	require.ErrorIs(t, err, compose.ErrDuplicateName)

	ov := cryptoLinux()
	for i := range ov.Confs {
		ov.Confs[i].Override = true
	}
	for i := range ov.PortMap {
		ov.PortMap[i].Override = true
	}
	_, err = Setup(context.Background(), baseTemplate(), []*Overlay{ov}, Options{Strict: true})
	require.NoError(t, err)
}

func TestSetup_Deterministic(t *testing.T) {
	first, err := Setup(context.Background(), baseTemplate(), []*Overlay{cryptoLinux()}, Options{})
	require.NoError(t, err)
	second, err := Setup(context.Background(), baseTemplate(), []*Overlay{cryptoLinux()}, Options{})
	require.NoError(t, err)

	if diff := cmp.Diff(first, second, cmp.Comparer(func(a, b cty.Value) bool { return a.RawEquals(b) })); diff != "" {
		t.Fatalf("setup is not deterministic (-first +second):\n%s", diff)
	}
}

func TestSetup_HeaderNotInherited(t *testing.T) {
	mine := &Overlay{
		Layer:          Layer{Name: "my_soc"},
		Base:           "iob_soc_opencryptolinux",
		InheritPortMap: true,
	}
	d, err := Setup(context.Background(), baseTemplate(), []*Overlay{cryptoLinux(), mine}, Options{Args: []string{"RUN_LINUX"}})
	require.NoError(t, err)

	assert.Equal(t, "my_soc", d.Name)
	assert.Empty(t, d.PostSetup.Header, "the header path must not name a parent core")
	assert.Len(t, d.PostSetup.Copies, 1, "copies are still inherited")

	c, err := d.Conf("RUN_LINUX")
	require.NoError(t, err)
	assert.Equal(t, Bool(true), c.Value, "switches are still inherited")
}

func TestSetup_TemplateOnly(t *testing.T) {
	d, err := Setup(context.Background(), baseTemplate(), nil, Options{})
	require.NoError(t, err)

	require.NotNil(t, d.CPU)
	assert.Equal(t, "iob_picorv32", d.CPU.Core)
	assert.Equal(t, []string{"UART0"}, d.PeripheralNames())
	assert.Equal(t, "../iob_soc_V0.70", d.BuildDir)
}

func TestDesign_ConfNotFound(t *testing.T) {
	d := &Design{Name: "x"}
	_, err := d.Conf("ADDR_W")
	require.ErrorIs(t, err, ErrConfNotFound)
}
