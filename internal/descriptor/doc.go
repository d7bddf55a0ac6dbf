// Package descriptor loads SoC templates and variants from HCL files into a
// soc.Catalog.
//
// A file may hold any number of `soc` (template) and `variant` (overlay)
// blocks:
//
//	soc "iob_soc" {
//	  version    = "V0.70"
//	  submodules = ["iob_picorv32", { interface = "iob_wire" }, ["iob_uart", { purpose = "simulation" }]]
//
//	  cpu "cpu_0" { core = "iob_picorv32" }
//	  conf "ADDR_W" {
//	    type  = "P"
//	    value = "32"
//	  }
//	}
//
//	variant "iob_soc_opencryptolinux" {
//	  base              = "iob_soc"
//	  remove_submodules = ["iob_picorv32"]
//	}
//
// The builtin descriptors are embedded and loaded first; files given to
// Load are applied afterwards, so they can redefine builtin names.
package descriptor
