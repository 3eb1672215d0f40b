package depot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type widget struct {
	value int
}

func TestResolve_InstanceIsSingleton(t *testing.T) {
	t.Parallel()

	d := New()
	svc := &testService{id: 42}
	require.NoError(t, RegisterInstance(d, svc))

	first := MustResolve[*testService](d)
	second := MustResolve[*testService](d)

	require.Same(t, svc, first)
	require.Same(t, first, second)
}

func TestResolve_FactoryFreshness(t *testing.T) {
	t.Parallel()

	d := New()

	calls := 0
	require.NoError(t, RegisterFactory(d, func() (*testCounter, error) {
		calls++
		return &testCounter{id: calls}, nil
	}))

	first := MustResolve[*testCounter](d)
	second := MustResolve[*testCounter](d)

	require.NotSame(t, first, second)
	require.Equal(t, 1, first.id)
	require.Equal(t, 2, second.id)
}

func TestResolve_LazySingletonCaches(t *testing.T) {
	t.Parallel()

	d := New()

	calls := 0
	require.NoError(t, RegisterLazySingleton(d, func() (*testCounter, error) {
		calls++
		return &testCounter{id: calls}, nil
	}))

	require.Zero(t, calls)

	first := MustResolve[*testCounter](d)
	second := MustResolve[*testCounter](d)

	require.Same(t, first, second)
	require.Equal(t, 1, calls)
}

func TestResolve_ParamFactory(t *testing.T) {
	t.Parallel()

	d := New()

	require.NoError(t, RegisterFactoryParam[*widget, int](d, func(n int) (*widget, error) {
		return &widget{value: n * 2}, nil
	}, WithName("a")))

	w, err := ResolveParamNamed[*widget, int](d, "a", 5)
	require.NoError(t, err)
	require.Equal(t, 10, w.value)
}

func TestResolve_ParamTypeMismatch(t *testing.T) {
	t.Parallel()

	d := New()

	require.NoError(t, RegisterFactoryParam[*widget, int](d, func(n int) (*widget, error) {
		return &widget{value: n}, nil
	}))

	_, err := ResolveParam[*widget, string](d, "five")
	require.Error(t, err)
	require.True(t, IsTypeMismatch(err))
}

func TestResolve_ParamFactoryWithoutParam(t *testing.T) {
	t.Parallel()

	d := New()

	require.NoError(t, RegisterFactoryParam[*widget, int](d, func(n int) (*widget, error) {
		return &widget{value: n}, nil
	}))

	_, err := Resolve[*widget](d)
	require.Error(t, err)
	require.True(t, IsTypeMismatch(err))
}

func TestResolve_ZeroArgFactoryIgnoresParam(t *testing.T) {
	t.Parallel()

	d := New()

	require.NoError(t, RegisterFactory(d, func() (*widget, error) {
		return &widget{value: 99}, nil
	}))

	w, err := ResolveParam[*widget, int](d, 5)
	require.NoError(t, err)
	require.Equal(t, 99, w.value)
}

func TestResolve_NotRegistered(t *testing.T) {
	t.Parallel()

	d := New()

	_, err := Resolve[*testService](d)
	require.Error(t, err)
	require.True(t, IsNotRegistered(err))

	var coded *Error
	require.True(t, errors.As(err, &coded))
	require.Contains(t, coded.Key, "testService")
}

func TestResolve_FactoryErrorPropagates(t *testing.T) {
	t.Parallel()

	d := New()

	boom := errors.New("boom")
	require.NoError(t, RegisterFactory(d, func() (*testService, error) {
		return nil, boom
	}))

	_, err := Resolve[*testService](d)
	require.ErrorIs(t, err, boom)
}

func TestMustResolve_PanicsOnMissing(t *testing.T) {
	t.Parallel()

	d := New()

	require.Panics(t, func() {
		MustResolve[*testService](d)
	})
}

func TestTryResolve(t *testing.T) {
	t.Parallel()

	d := New()

	_, ok := TryResolve[*testService](d)
	require.False(t, ok)

	require.NoError(t, RegisterInstance(d, &testService{id: 5}))

	svc, ok := TryResolve[*testService](d)
	require.True(t, ok)
	require.Equal(t, 5, svc.id)
}

func TestHas(t *testing.T) {
	t.Parallel()

	d := New()

	require.False(t, Has[*testService](d))
	require.False(t, HasNamed[*testService](d, "a"))

	require.NoError(t, RegisterInstance(d, &testService{}, WithName("a")))

	require.False(t, Has[*testService](d))
	require.True(t, HasNamed[*testService](d, "a"))
}

func TestResolve_InterfaceRegistration(t *testing.T) {
	t.Parallel()

	d := New()

	var svc Disposable = &disposableService{}
	require.NoError(t, RegisterInstance(d, svc))

	resolved, err := Resolve[Disposable](d)
	require.NoError(t, err)
	require.Same(t, svc, resolved)
}
