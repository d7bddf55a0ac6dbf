// Package hclutil holds small helpers shared by the HCL descriptor loader:
// value checks that produce positioned diagnostics and diagnostic rendering.
package hclutil
