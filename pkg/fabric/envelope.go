package fabric

import (
	"bytes"
	"encoding/json"

	"github.com/starlane-io/starlane/pkg/search"
	"github.com/starlane-io/starlane/pkg/starerr"
	"github.com/starlane-io/starlane/pkg/wave"
)

// envelopeKind discriminates the three message shapes a lane carries:
// directed waves/reflections, and the search protocol's two gossip
// frames. All three share one stream so a lane needs only one
// connection per neighbour rather than one per protocol.
type envelopeKind int

const (
	envelopeWave envelopeKind = iota
	envelopeWindUp
	envelopeWindDown
)

type envelopeWire struct {
	Kind     envelopeKind `json:"kind"`
	Wave     []byte       `json:"wave,omitempty"`
	WindUp   []byte       `json:"wind_up,omitempty"`
	WindDown []byte       `json:"wind_down,omitempty"`
}

// encodeWave builds the rawMessage frame for a wave crossing this lane.
func encodeWave(w wave.Wave) (*rawMessage, error) {
	var buf bytes.Buffer
	if err := wave.Encode(&buf, w); err != nil {
		return nil, err
	}
	body, err := json.Marshal(envelopeWire{Kind: envelopeWave, Wave: buf.Bytes()})
	if err != nil {
		return nil, err
	}
	return &rawMessage{data: body}, nil
}

func encodeWindUp(w search.WindUp) (*rawMessage, error) {
	data, err := search.MarshalWindUp(w)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(envelopeWire{Kind: envelopeWindUp, WindUp: data})
	if err != nil {
		return nil, err
	}
	return &rawMessage{data: body}, nil
}

func encodeWindDown(d search.WindDown) (*rawMessage, error) {
	data, err := search.MarshalWindDown(d)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(envelopeWire{Kind: envelopeWindDown, WindDown: data})
	if err != nil {
		return nil, err
	}
	return &rawMessage{data: body}, nil
}

// decoded is the parsed form of one lane frame: exactly one of its
// three fields is populated, matching Kind.
type decoded struct {
	Kind     envelopeKind
	Wave     wave.Wave
	WindUp   search.WindUp
	WindDown search.WindDown
}

func decodeFrame(m *rawMessage) (decoded, error) {
	var env envelopeWire
	if err := json.Unmarshal(m.data, &env); err != nil {
		return decoded{}, err
	}
	switch env.Kind {
	case envelopeWave:
		w, err := wave.Decode(bytes.NewReader(env.Wave))
		if err != nil {
			return decoded{}, err
		}
		return decoded{Kind: envelopeWave, Wave: w}, nil
	case envelopeWindUp:
		w, err := search.UnmarshalWindUp(env.WindUp)
		if err != nil {
			return decoded{}, err
		}
		return decoded{Kind: envelopeWindUp, WindUp: w}, nil
	case envelopeWindDown:
		d, err := search.UnmarshalWindDown(env.WindDown)
		if err != nil {
			return decoded{}, err
		}
		return decoded{Kind: envelopeWindDown, WindDown: d}, nil
	default:
		return decoded{}, starerr.Protocol("fabric: unknown envelope kind on wire")
	}
}
