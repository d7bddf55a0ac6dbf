package compose

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kv struct {
	Name  string
	Value string
}

func (e kv) Key() string { return e.Name }

func TestCompose_RemovalLeavesRemainder(t *testing.T) {
	base := []kv{{"USE_MUL_DIV", "1"}, {"USE_COMPRESSED", "1"}, {"N_CORES", "1"}}

	got, err := Compose(base, Layer[kv]{Remove: []string{"USE_MUL_DIV", "USE_COMPRESSED"}}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"N_CORES"}, Names(got))
}

func TestCompose_RemovingAbsentNameIsNoop(t *testing.T) {
	base := []kv{{"A", "1"}, {"B", "2"}}

	got, err := Compose(base, Layer[kv]{Remove: []string{"MISSING"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, base, got)

	again, err := Compose(got, Layer[kv]{Remove: []string{"MISSING"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestCompose_LaterEntryShadows(t *testing.T) {
	base := []kv{{"A", "1"}, {"B", "2"}}
	layer := Layer[kv]{Add: Always(kv{"C", "3"}, kv{"A", "override"})}

	got, err := Compose(base, layer, nil)
	require.NoError(t, err)

	// Both occurrences stay in the physical table.
	assert.Equal(t, []string{"A", "B", "C", "A"}, Names(got))

	eff, ok := Lookup(got, "A")
	require.True(t, ok)
	assert.Equal(t, "override", eff.Value)

	want := []kv{{"A", "override"}, {"B", "2"}, {"C", "3"}}
	if diff := cmp.Diff(want, Resolve(got)); diff != "" {
		t.Fatalf("Resolve mismatch (-want +got):\n%s", diff)
	}
}

func TestCompose_RemovalDropsShadowedCopies(t *testing.T) {
	base := []kv{{"A", "1"}}
	layer := Layer[kv]{Add: Always(kv{"A", "2"}), Remove: []string{"A"}}

	got, err := Compose(base, layer, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCompose_GuardByMembership(t *testing.T) {
	layer := Layer[kv]{Add: []Entry[kv]{
		{Value: kv{"UART_IRQ", "x"}, Requires: []string{"iob_uart16550"}},
		{Value: kv{"PLIC_IRQ", "y"}, Requires: []string{"iob_plic", "iob_clint"}},
		{Value: kv{"ALWAYS", "z"}},
	}}

	got, err := Compose(nil, layer, NewSet("iob_plic", "iob_clint"))
	require.NoError(t, err)
	assert.Equal(t, []string{"PLIC_IRQ", "ALWAYS"}, Names(got))

	got, err = Compose(nil, layer, MembershipFunc(func(string) bool { return false }))
	require.NoError(t, err)
	assert.Equal(t, []string{"ALWAYS"}, Names(got))
}

func TestCompose_DoesNotMutateBase(t *testing.T) {
	base := []kv{{"A", "1"}, {"B", "2"}, {"C", "3"}}
	snapshot := append([]kv(nil), base...)

	_, err := Compose(base, Layer[kv]{Remove: []string{"A"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, snapshot, base)
}

func TestCompose_Deterministic(t *testing.T) {
	base := []kv{{"A", "1"}, {"B", "2"}}
	layer := Layer[kv]{Add: Always(kv{"B", "3"}, kv{"D", "4"}), Remove: []string{"X"}}

	first, err := Compose(base, layer, nil)
	require.NoError(t, err)
	second, err := Compose(base, layer, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, Resolve(first), Resolve(second))
}

func TestCompose_StrictRejectsDuplicates(t *testing.T) {
	base := []kv{{"A", "1"}}
	layer := Layer[kv]{Add: Always(kv{"A", "2"})}

	_, err := Compose(base, layer, nil, Strict())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateName))

	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "A", dup.Name)
}

func TestCompose_StrictAcceptsDeclaredOverride(t *testing.T) {
	base := []kv{{"A", "1"}}
	layer := Layer[kv]{Add: []Entry[kv]{{Value: kv{"A", "2"}, Override: true}}}

	got, err := Compose(base, layer, nil, Strict())
	require.NoError(t, err)
	eff, ok := Lookup(got, "A")
	require.True(t, ok)
	assert.Equal(t, "2", eff.Value)
}

func TestCompose_StrictIgnoresSkippedAdditions(t *testing.T) {
	base := []kv{{"A", "1"}}
	layer := Layer[kv]{Add: []Entry[kv]{{Value: kv{"A", "2"}, Requires: []string{"absent"}}}}

	got, err := Compose(base, layer, NewSet(), Strict())
	require.NoError(t, err)
	assert.Equal(t, base, got)
}

func TestResolve_NamesUnique(t *testing.T) {
	entries := []kv{{"A", "1"}, {"B", "1"}, {"A", "2"}, {"C", "1"}, {"B", "2"}, {"A", "3"}}

	resolved := Resolve(entries)
	require.NoError(t, CheckUnique(resolved))
	assert.Equal(t, []kv{{"A", "3"}, {"B", "2"}, {"C", "1"}}, resolved)
}

func TestLookup_Missing(t *testing.T) {
	_, ok := Lookup([]kv{{"A", "1"}}, "ADDR_W")
	assert.False(t, ok)
}

func TestRemove_Predicate(t *testing.T) {
	entries := []kv{{"A", "keep"}, {"B", "drop"}, {"C", "keep"}, {"D", "drop"}}
	got := Remove(entries, func(e kv) bool { return e.Value == "drop" })
	assert.Equal(t, []string{"A", "C"}, Names(got))
}
