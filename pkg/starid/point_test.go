package starid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starlane-io/starlane/pkg/starerr"
)

func TestParsePointRoundTrip(t *testing.T) {
	cases := []string{
		"my-space",
		"my-space:my-base",
		"my-space:bundle-series:my-bundle:1.2.3",
		"my-space:my-base:/",
		"my-space:my-base:/config.yaml",
		"my-space:my-base:/config/dir/",
		"GLOBAL::my-space",
		"STAR(star-one)::my-space:my-base",
		"acme.internal::my-space",
	}
	for _, c := range cases {
		p, err := ParsePoint(c)
		require.NoError(t, err, c)
		assert.Equal(t, c, p.String(), "round trip for %q", c)
	}
}

func TestParsePointPopResolvesWithinSameParse(t *testing.T) {
	p, err := ParsePoint("my-space:my-base:..:other-base")
	require.NoError(t, err)
	assert.Equal(t, "my-space:other-base", p.String())
}

func TestParsePointPopPastRootIsError(t *testing.T) {
	_, err := ParsePoint("..")
	assert.Error(t, err)
}

func TestParsePointVersionRequiresBundleDepth(t *testing.T) {
	_, err := ParsePoint("my-space:1.0.0")
	assert.Error(t, err)
}

func TestParsePointFileRequiresFilesystemRoot(t *testing.T) {
	// A filename-like segment without a preceding "/" is classified as a
	// Base segment, and "config.yaml" is not skewer-case, so the parse
	// is rejected rather than producing a File outside a filesystem root.
	_, err := ParsePoint("my-space:config.yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, starerr.ErrParse)
}

func TestPointEqualityIsStructural(t *testing.T) {
	a, err := ParsePoint("my-space:my-base")
	require.NoError(t, err)
	b, err := ParsePoint("my-space:my-base")
	require.NoError(t, err)
	assert.True(t, a.Equal(b))

	c, err := ParsePoint("my-space:other-base")
	require.NoError(t, err)
	assert.False(t, a.Equal(c))
}

func TestPointPushAndParent(t *testing.T) {
	root, err := ParsePoint("my-space")
	require.NoError(t, err)

	withBase, err := root.Push("my-base", false)
	require.NoError(t, err)
	assert.Equal(t, "my-space:my-base", withBase.String())

	back, err := withBase.Parent()
	require.NoError(t, err)
	assert.True(t, root.Equal(back))
}

func TestPointToBundleTruncates(t *testing.T) {
	versioned, err := ParsePoint("my-space:bundle-series:my-bundle:1.2.3")
	require.NoError(t, err)

	bundle, err := versioned.ToBundle()
	require.NoError(t, err)
	assert.Equal(t, "my-space:bundle-series:my-bundle:1.2.3", bundle.String())

	deep, err := versioned.Push("extra", false)
	require.NoError(t, err)
	trunc, err := deep.ToBundle()
	require.NoError(t, err)
	assert.True(t, versioned.Equal(trunc))
}

func TestPointFilepath(t *testing.T) {
	p, err := ParsePoint("my-space:my-base:/config/app.yaml")
	require.NoError(t, err)
	fp, err := p.Filepath()
	require.NoError(t, err)
	assert.Equal(t, "/config/app.yaml", fp)
}

func TestPointRelativeSegsAndTruncateFilepath(t *testing.T) {
	parent, err := ParsePoint("my-space:my-base:/config/")
	require.NoError(t, err)
	child, err := ParsePoint("my-space:my-base:/config/app/settings.yaml")
	require.NoError(t, err)

	rel, err := child.RelativeSegs(parent)
	require.NoError(t, err)
	require.Len(t, rel, 2)
	assert.Equal(t, SegDir, rel[0].Kind)
	assert.Equal(t, "app", rel[0].Value)
	assert.Equal(t, SegFile, rel[1].Kind)

	trunc, err := child.TruncateFilepath(parent)
	require.NoError(t, err)
	assert.True(t, child.Equal(trunc))

	other, err := ParsePoint("other-space:/somewhere.txt")
	require.NoError(t, err)
	_, err = other.TruncateFilepath(parent)
	assert.Error(t, err)
}
