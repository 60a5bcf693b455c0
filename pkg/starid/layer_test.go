package starid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurfaceAtLayerResetsTopic(t *testing.T) {
	p, err := ParsePoint("my-space:my-base")
	require.NoError(t, err)
	s := NewSurface(p, LayerShell, UuidTopic("abc"))

	moved := s.AtLayer(LayerCore)
	assert.Equal(t, LayerCore, moved.Layer)
	assert.Equal(t, NoTopic, moved.Topic)
	assert.True(t, moved.Point.Equal(p))
}

func TestTopicMatchesAnyAndNot(t *testing.T) {
	assert.True(t, AnyTopic.Matches(UuidTopic("x")))
	assert.True(t, AnyTopic.Matches(NoTopic))

	not := NotTopic("forbidden")
	assert.True(t, not.Matches(PathTopic("allowed")))
	assert.False(t, not.Matches(PathTopic("forbidden")))
	assert.False(t, not.Matches(NoTopic))
}

func TestTopicExactMatch(t *testing.T) {
	a := UuidTopic("abc")
	b := UuidTopic("abc")
	c := UuidTopic("def")
	assert.True(t, a.Matches(b))
	assert.False(t, a.Matches(c))
}

func TestSurfaceEqualityAndString(t *testing.T) {
	p, err := ParsePoint("my-space:my-base")
	require.NoError(t, err)
	a := NewSurface(p, LayerShell, NoTopic)
	b := NewSurface(p, LayerShell, NoTopic)
	assert.True(t, a.Equal(b))
	assert.Equal(t, "my-space:my-base@Shell", a.String())

	withTopic := NewSurface(p, LayerShell, UuidTopic("xyz"))
	assert.Equal(t, "my-space:my-base@Shell+@xyz", withTopic.String())
}
