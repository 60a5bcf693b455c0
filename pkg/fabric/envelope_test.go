package fabric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starlane-io/starlane/pkg/search"
	"github.com/starlane-io/starlane/pkg/starid"
	"github.com/starlane-io/starlane/pkg/wave"
)

func mustPoint(t *testing.T, s string) starid.Point {
	t.Helper()
	p, err := starid.ParsePoint(s)
	require.NoError(t, err)
	return p
}

func TestEncodeDecodeWaveRoundTrips(t *testing.T) {
	from := starid.NewSurface(mustPoint(t, "my-space:sender"), starid.LayerShell, starid.NoTopic)
	to := starid.NewSurface(mustPoint(t, "my-space:receiver"), starid.LayerCore, starid.NoTopic)
	w, err := wave.NewDirectedProto(wave.KindPing).
		From(from).
		To(wave.Single(to)).
		Method(wave.Method{Class: wave.MethodHttp, Op: "GET"}).
		Build()
	require.NoError(t, err)

	frame, err := encodeWave(w)
	require.NoError(t, err)

	decoded, err := decodeFrame(frame)
	require.NoError(t, err)
	assert.Equal(t, envelopeWave, decoded.Kind)
	assert.Equal(t, w.Id, decoded.Wave.Id)
	assert.Equal(t, w.Kind, decoded.Wave.Kind)
	got, ok := decoded.Wave.To.One()
	require.True(t, ok)
	assert.Equal(t, to, got)
}

func TestEncodeDecodeWindUpRoundTrips(t *testing.T) {
	wind := search.WindUp{
		From:    "star-a",
		MaxHops: 3,
		Action:  search.ActionSearchHits,
	}
	frame, err := encodeWindUp(wind)
	require.NoError(t, err)

	decoded, err := decodeFrame(frame)
	require.NoError(t, err)
	assert.Equal(t, envelopeWindUp, decoded.Kind)
	assert.Equal(t, wind.From, decoded.WindUp.From)
	assert.Equal(t, wind.MaxHops, decoded.WindUp.MaxHops)
}

func TestEncodeDecodeWindDownRoundTrips(t *testing.T) {
	down := search.WindDown{
		Hops: []search.StarKey{"star-a", "star-b"},
		Hits: []search.Hit{{Star: "star-b", Hops: 1}},
	}
	frame, err := encodeWindDown(down)
	require.NoError(t, err)

	decoded, err := decodeFrame(frame)
	require.NoError(t, err)
	assert.Equal(t, envelopeWindDown, decoded.Kind)
	assert.Equal(t, down.Hops, decoded.WindDown.Hops)
	require.Len(t, decoded.WindDown.Hits, 1)
	assert.Equal(t, search.StarKey("star-b"), decoded.WindDown.Hits[0].Star)
}

func TestDecodeFrameRejectsUnknownKind(t *testing.T) {
	frame := &rawMessage{data: []byte(`{"kind":99}`)}
	_, err := decodeFrame(frame)
	assert.Error(t, err)
}
