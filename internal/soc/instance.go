package soc

// Instance is a named instantiation of a core, such as the CPU "cpu_0" or
// the peripheral "UART0".
type Instance struct {
	Name       string
	Core       string
	Descr      string
	Parameters map[string]string
}

// Key implements compose.Keyed.
func (i Instance) Key() string { return i.Name }
