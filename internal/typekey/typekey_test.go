package typekey

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type sample struct {
	n int
}

type capability interface {
	Do()
}

func TestFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"struct", For[sample](), "github.com/go-depot/depot/internal/typekey.sample"},
		{"pointer", For[*sample](), "*github.com/go-depot/depot/internal/typekey.sample"},
		{"builtin", For[int](), "int"},
		{"slice", For[[]string](), "[]string"},
		{"map", For[map[string]int](), "map[string]int"},
		{"chan", For[chan int](), "chan int"},
		{"interface", For[capability](), "github.com/go-depot/depot/internal/typekey.capability"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, tt.got)
		})
	}
}

func TestFor_CachedIsStable(t *testing.T) {
	t.Parallel()

	require.Equal(t, For[*sample](), For[*sample]())
}

func TestForValue(t *testing.T) {
	t.Parallel()

	require.Equal(t, For[*sample](), ForValue(&sample{}))
	require.Equal(t, "int", ForValue(42))
	require.Equal(t, "<nil>", ForValue(nil))
}

func TestForValue_InterfaceUsesDynamicType(t *testing.T) {
	t.Parallel()

	var v any = &sample{}
	require.Equal(t, For[*sample](), ForValue(v))
}

func TestIsNil(t *testing.T) {
	t.Parallel()

	var typedNil *sample
	var iface any = typedNil

	require.True(t, IsNil(nil))
	require.True(t, IsNil(typedNil))
	require.True(t, IsNil(iface))
	require.False(t, IsNil(&sample{}))
	require.False(t, IsNil(0))
	require.False(t, IsNil(""))
}

func TestSame(t *testing.T) {
	t.Parallel()

	a := &sample{n: 1}
	b := &sample{n: 1}

	require.True(t, Same(a, a))
	require.False(t, Same(a, b))
	require.True(t, Same(nil, nil))
	require.False(t, Same(a, nil))
	require.False(t, Same(nil, a))

	require.True(t, Same(1, 1))
	require.False(t, Same(1, 2))
	require.False(t, Same(1, "1"))

	s := []int{1, 2}
	require.True(t, Same(s, s))
	require.False(t, Same(s, []int{1, 2}))

	m := map[string]int{}
	require.True(t, Same(m, m))
	require.False(t, Same(m, map[string]int{}))
}

func TestName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "*typekey.sample", Name[*sample]())
	require.Equal(t, "int", Name[int]())
}
