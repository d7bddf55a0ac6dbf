// Package compose implements the ordered table composition used to assemble
// a SoC design from a base template and a variant overlay.
//
// A table is a slice of keyed entries. Composition appends additions after the
// base entries, drops guarded additions whose dependencies are missing, and
// then deletes every entry whose key is listed for removal. Entries sharing a
// key are not replaced physically: the later entry shadows the earlier one,
// and Resolve collapses the table to its effective, key-unique form.
package compose
