package traversal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starlane-io/starlane/pkg/starid"
)

func mustPoint(t *testing.T, s string) starid.Point {
	t.Helper()
	p, err := starid.ParsePoint(s)
	require.NoError(t, err)
	return p
}

func surf(t *testing.T, point string, layer starid.Layer) starid.Surface {
	return starid.NewSurface(mustPoint(t, point), layer, starid.NoTopic)
}

func TestResolveNotHostedIsFabric(t *testing.T) {
	to := surf(t, "my-space:remote", starid.LayerCore)
	from := surf(t, "my-space:sender", starid.LayerShell)
	res := resolve(false, to, to, from, starid.StdPlan)
	assert.Nil(t, res.Destination)
	assert.Equal(t, DirFabric, res.Direction)
}

func TestResolveIntraParticleTowardCore(t *testing.T) {
	point := "my-space:mechtron"
	to := surf(t, point, starid.LayerCore)
	injector := surf(t, point, starid.LayerField)
	from := surf(t, point, starid.LayerField) // to.point == from.point: intra-particle

	res := resolve(true, to, injector, from, starid.MechtronPlan)
	require.NotNil(t, res.Destination)
	assert.Equal(t, starid.LayerCore, *res.Destination)
	assert.Equal(t, DirCore, res.Direction)
}

func TestResolveIntraParticleOutward(t *testing.T) {
	point := "my-space:mechtron"
	to := surf(t, point, starid.LayerField)
	injector := surf(t, point, starid.LayerCore)
	from := surf(t, point, starid.LayerField)

	res := resolve(true, to, injector, from, starid.MechtronPlan)
	require.NotNil(t, res.Destination)
	assert.Equal(t, starid.LayerField, *res.Destination)
	assert.Equal(t, DirOutward, res.Direction)
}

func TestResolveIntraParticleAlreadyAtDestinationIsFabric(t *testing.T) {
	point := "my-space:mechtron"
	to := surf(t, point, starid.LayerShell)
	injector := surf(t, point, starid.LayerShell)
	from := surf(t, point, starid.LayerShell)

	res := resolve(true, to, injector, from, starid.StdPlan)
	assert.Nil(t, res.Destination)
	assert.Equal(t, DirFabric, res.Direction)
}

func TestResolveSendingParticleIsInjectorIsFabric(t *testing.T) {
	to := surf(t, "my-space:other", starid.LayerCore)
	injector := surf(t, "my-space:sender", starid.LayerField)
	from := surf(t, "my-space:sender", starid.LayerField) // injector.point == from.point

	res := resolve(true, to, injector, from, starid.StdPlan)
	assert.Nil(t, res.Destination)
	assert.Equal(t, DirFabric, res.Direction)
}

func TestResolveStarOriginated(t *testing.T) {
	to := surf(t, "my-space:other", starid.LayerCore)
	injector := surf(t, "my-space:star-self", starid.LayerCore)
	from := surf(t, "my-space:third-party", starid.LayerShell)

	res := resolve(true, to, injector, from, starid.StdPlan)
	require.NotNil(t, res.Destination)
	assert.Equal(t, starid.LayerCore, *res.Destination)
	assert.Equal(t, DirCore, res.Direction)
}
