package depot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnregister_ByType(t *testing.T) {
	t.Parallel()

	d := New()
	ctx := context.Background()

	require.NoError(t, RegisterInstance(d, &testService{id: 1}))
	require.NoError(t, Unregister[*testService](ctx, d))

	require.False(t, Has[*testService](d))
}

func TestUnregister_ByName(t *testing.T) {
	t.Parallel()

	d := New()
	ctx := context.Background()

	require.NoError(t, RegisterInstance(d, &testService{id: 1}, WithName("a")))
	require.NoError(t, RegisterInstance(d, &testService{id: 2}, WithName("b")))

	require.NoError(t, Unregister[*testService](ctx, d, UnregisterNamed("a")))

	require.False(t, HasNamed[*testService](d, "a"))
	require.True(t, HasNamed[*testService](d, "b"))
}

func TestUnregister_ByInstanceIdentity(t *testing.T) {
	t.Parallel()

	d := New()
	ctx := context.Background()

	a := &testService{id: 1}
	b := &testService{id: 1} // equal contents, different identity
	require.NoError(t, RegisterInstance(d, a, WithName("a")))
	require.NoError(t, RegisterInstance(d, b, WithName("b")))

	require.NoError(t, Unregister[*testService](ctx, d, UnregisterInstance(b)))

	require.True(t, HasNamed[*testService](d, "a"))
	require.False(t, HasNamed[*testService](d, "b"))
}

func TestUnregister_MissingFails(t *testing.T) {
	t.Parallel()

	d := New()
	ctx := context.Background()

	err := Unregister[*testService](ctx, d)
	require.True(t, IsNotRegistered(err))

	err = Unregister[*testService](ctx, d, UnregisterInstance(&testService{id: 1}))
	require.True(t, IsNotRegistered(err))
}

func TestUnregister_RunsDisposePath(t *testing.T) {
	t.Parallel()

	d := New()
	ctx := context.Background()

	svc := &disposableService{}
	require.NoError(t, RegisterInstance(d, svc))
	require.NoError(t, Unregister[*disposableService](ctx, d))

	require.True(t, svc.wasDisposed())
}

func TestUnregister_DisposerOverride(t *testing.T) {
	t.Parallel()

	d := New()
	ctx := context.Background()

	registrationDispose := false
	overrideDispose := false

	require.NoError(t, RegisterInstance(d, &testService{id: 1}, WithDispose(func(ctx context.Context, s *testService) error {
		registrationDispose = true
		return nil
	})))

	require.NoError(t, Unregister[*testService](ctx, d, UnregisterDispose(func(ctx context.Context, s *testService) error {
		overrideDispose = true
		return nil
	})))

	require.True(t, overrideDispose)
	require.False(t, registrationDispose)
}
