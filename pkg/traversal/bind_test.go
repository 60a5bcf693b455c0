package traversal

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starlane-io/starlane/pkg/wave"
)

func TestParseBindConfigBasicRoutes(t *testing.T) {
	input := `
# comment lines and blanks are ignored

Http<GET,/widgets/.*> -> core
Http<POST,/widgets> -> call(my-space:widget-service)
Ext<scan> -> capture(my-space:scanner)
Cmd<> -> respond(200)
`
	cfg, err := ParseBindConfig(input)
	require.NoError(t, err)
	require.Len(t, cfg.Routes, 4)

	assert.Equal(t, wave.MethodHttp, cfg.Routes[0].Method.Class)
	assert.Equal(t, "GET", cfg.Routes[0].Method.Op)
	assert.Equal(t, StopCore, cfg.Routes[0].Stop.Kind)
	require.NotNil(t, cfg.Routes[0].Path)
	assert.True(t, cfg.Routes[0].Path.MatchString("/widgets/42"))

	assert.Equal(t, StopCall, cfg.Routes[1].Stop.Kind)
	assert.Equal(t, "my-space:widget-service", cfg.Routes[1].Stop.Target)

	assert.Equal(t, wave.MethodExt, cfg.Routes[2].Method.Class)
	assert.Equal(t, StopCapture, cfg.Routes[2].Stop.Kind)
	assert.Equal(t, "my-space:scanner", cfg.Routes[2].Stop.Target)

	assert.Equal(t, wave.MethodCmd, cfg.Routes[3].Method.Class)
	assert.Equal(t, "", cfg.Routes[3].Method.Op)
	assert.Equal(t, StopRespond, cfg.Routes[3].Stop.Kind)
	require.NotNil(t, cfg.Routes[3].Stop.Respond)
	assert.Equal(t, 200, cfg.Routes[3].Stop.Respond.Status)
}

func TestParseBindConfigRejectsMissingStop(t *testing.T) {
	_, err := ParseBindConfig("Http<GET,/x>")
	assert.Error(t, err)
}

func TestParseBindConfigRejectsUnknownClass(t *testing.T) {
	_, err := ParseBindConfig("Foo<GET,/x> -> core")
	assert.Error(t, err)
}

func TestParseBindConfigRejectsUnknownStop(t *testing.T) {
	_, err := ParseBindConfig("Http<GET,/x> -> teleport")
	assert.Error(t, err)
}

func TestParseBindConfigRejectsBadRespondStatus(t *testing.T) {
	_, err := ParseBindConfig("Http<GET,/x> -> respond(nope)")
	assert.Error(t, err)
}

func TestBindConfigResolveFirstMatchWins(t *testing.T) {
	input := `
Http<GET,/a> -> core
Http<GET,/.*> -> call(my-space:fallback)
`
	cfg, err := ParseBindConfig(input)
	require.NoError(t, err)

	route, ok := cfg.Resolve(wave.Method{Class: wave.MethodHttp, Op: "GET"}, "/a")
	require.True(t, ok)
	assert.Equal(t, StopCore, route.Stop.Kind)

	route, ok = cfg.Resolve(wave.Method{Class: wave.MethodHttp, Op: "GET"}, "/anything")
	require.True(t, ok)
	assert.Equal(t, StopCall, route.Stop.Kind)

	_, ok = cfg.Resolve(wave.Method{Class: wave.MethodCmd, Op: "GET"}, "/a")
	assert.False(t, ok)
}

func TestRouteMatchesWithoutPathAcceptsAny(t *testing.T) {
	route := Route{Method: MethodPattern{Class: wave.MethodHyp}}
	assert.True(t, route.Matches(wave.Method{Class: wave.MethodHyp, Op: "Anything"}, "/whatever"))
}

func TestStepCheckEnforcesTextPattern(t *testing.T) {
	step := Step{Kind: StepRequest, Pattern: regexp.MustCompile(`^hello`)}

	assert.NoError(t, step.Check(wave.TextSubstance("hello world")))
	assert.Error(t, step.Check(wave.TextSubstance("goodbye")))
	assert.Error(t, step.Check(wave.Empty()), "non-text substance must fail a pattern check")
}

func TestStepApplyTransformsBody(t *testing.T) {
	step := Step{Transform: func(s wave.Substance) wave.Substance { return wave.TextSubstance("transformed") }}
	out := step.Apply(wave.TextSubstance("original"))
	text, ok := out.ToText()
	require.True(t, ok)
	assert.Equal(t, "transformed", text)
}

func TestStepApplyWithoutTransformIsIdentity(t *testing.T) {
	step := Step{}
	out := step.Apply(wave.TextSubstance("unchanged"))
	text, ok := out.ToText()
	require.True(t, ok)
	assert.Equal(t, "unchanged", text)
}
