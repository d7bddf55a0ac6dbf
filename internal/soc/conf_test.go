package soc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestConf_Int(t *testing.T) {
	tests := []struct {
		name    string
		value   cty.Value
		want    int
		wantErr bool
	}{
		{name: "string", value: String("32"), want: 32},
		{name: "number", value: cty.NumberIntVal(12), want: 12},
		{name: "true", value: Bool(true), want: 1},
		{name: "false", value: Bool(false), want: 0},
		{name: "not a number", value: String("wide"), wantErr: true},
		{name: "null", value: cty.NullVal(cty.String), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Conf{Name: "ADDR_W", Value: tt.value}.Int()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConf_Native(t *testing.T) {
	v, err := Conf{Name: "RUN_LINUX", Value: Bool(true)}.Native()
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = Conf{Name: "N_CORES", Value: Number(4)}.Native()
	require.NoError(t, err)
	assert.Equal(t, "4", v)

	v, err = Conf{Name: "W", Value: cty.NumberIntVal(8)}.Native()
	require.NoError(t, err)
	assert.Equal(t, "8", v)

	_, err = Conf{Name: "L", Value: cty.ListValEmpty(cty.String)}.Native()
	require.Error(t, err)
}

func TestSubmodule_BareAndKey(t *testing.T) {
	bare := Module("iob_uart", nil)
	sim := Module("iob_uart", map[string]string{"purpose": "simulation"})
	wire := InterfaceDescriptor(map[string]string{"interface": "axi_wire"})

	assert.True(t, bare.IsBare())
	assert.False(t, sim.IsBare())
	assert.False(t, wire.IsBare())
	assert.True(t, wire.IsInterface())

	assert.Equal(t, "iob_uart", bare.Key())
	assert.Equal(t, "iob_uart?purpose=simulation", sim.Key())
	assert.Equal(t, "interface:interface=axi_wire", wire.Key())
	assert.Equal(t, "axi_wire", wire.Name)
}

func TestEndpoint_String(t *testing.T) {
	e := Endpoint{Corename: "PLIC0", IfName: "irq", Port: "src", Bits: []int{0, 1}}
	assert.Equal(t, "PLIC0.irq.src[0,1]", e.String())
	assert.Equal(t, "internal.UART", Endpoint{Corename: "internal", IfName: "UART"}.String())
}
