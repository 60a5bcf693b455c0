package starid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindEqualityCoversAllThreeComponents(t *testing.T) {
	base := NewKind(KindArtifact).WithSub(SubArtifactWasm)
	same := NewKind(KindArtifact).WithSub(SubArtifactWasm)
	assert.True(t, base.Equal(same))

	diffSub := NewKind(KindArtifact).WithSub(SubArtifactRaw)
	assert.False(t, base.Equal(diffSub))

	spec := Specific{Vendor: "acme.com", Product: "runner", Variant: "default", Version: "1.0.0"}
	withSpec := base.WithSpecific(spec)
	assert.False(t, base.Equal(withSpec))

	sameSpec := NewKind(KindArtifact).WithSub(SubArtifactWasm).WithSpecific(spec)
	assert.True(t, withSpec.Equal(sameSpec))
}

func TestParseBaseKindRoundTrip(t *testing.T) {
	for k := range baseKindNames {
		parsed, err := ParseBaseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	_, err := ParseBaseKind("Bogus")
	assert.Error(t, err)
}

func TestKindSelectorMatching(t *testing.T) {
	sel := SelectBaseSub(KindArtifact, SubArtifactWasm)

	match := NewKind(KindArtifact).WithSub(SubArtifactWasm)
	assert.True(t, sel.IsMatch(match))

	noMatch := NewKind(KindArtifact).WithSub(SubArtifactDir)
	assert.False(t, sel.IsMatch(noMatch))

	wrongBase := NewKind(KindMechtron).WithSub(SubArtifactWasm)
	assert.False(t, sel.IsMatch(wrongBase))
}

func TestKindSelectorAnyBaseMatchesEverySub(t *testing.T) {
	sel := KindSelector{Base: Any[BaseKind](), Sub: Any[SubKind]()}
	assert.True(t, sel.IsMatch(NewKind(KindApp)))
	assert.True(t, sel.IsMatch(NewKind(KindFile).WithSub(SubNone)))
}

func TestKindSelectorSpecificPattern(t *testing.T) {
	sel := KindSelector{
		Base: Exact(KindArtifact),
		Sub:  Exact(SubArtifactWasm),
		Specific: &SpecificPattern{
			Vendor:  ExactElem("acme.com"),
			Product: AnyElem,
			Variant: AnyElem,
			Version: "1.0.0",
		},
	}

	newer := NewKind(KindArtifact).WithSub(SubArtifactWasm).WithSpecific(Specific{
		Vendor: "acme.com", Product: "runner", Variant: "default", Version: "1.2.0",
	})
	assert.True(t, sel.IsMatch(newer))

	older := NewKind(KindArtifact).WithSub(SubArtifactWasm).WithSpecific(Specific{
		Vendor: "acme.com", Product: "runner", Variant: "default", Version: "0.9.0",
	})
	assert.False(t, sel.IsMatch(older))

	noSpecific := NewKind(KindArtifact).WithSub(SubArtifactWasm)
	assert.False(t, sel.IsMatch(noSpecific))
}

func TestKindTemplateMaterialize(t *testing.T) {
	tmpl := KindTemplate{Base: KindMechtron}
	k := tmpl.Materialize(nil)
	assert.Equal(t, KindMechtron, k.Base())
	_, ok := k.Specific()
	assert.False(t, ok)

	spec := Specific{Vendor: "acme.com", Product: "x", Variant: "y", Version: "1.0.0"}
	k2 := tmpl.Materialize(&spec)
	got, ok := k2.Specific()
	require.True(t, ok)
	assert.True(t, got.Equal(spec))
}
