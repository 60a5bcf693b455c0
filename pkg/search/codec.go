package search

import "encoding/json"

// patternWire is the JSON-serializable mirror of Pattern. Pattern's
// fields are unexported so its zero-value round-trips safely through
// the flood protocol's internal transaction bookkeeping, but a lane
// carrying WindUp/WindDown over the wire needs a form this package
// alone can build and read back.
type patternWire struct {
	Kind  patternKind `json:"kind"`
	Key   StarKey     `json:"key,omitempty"`
	SKind StarKind    `json:"kind_filter,omitempty"`
}

func (p Pattern) wire() patternWire {
	return patternWire{Kind: p.kind, Key: p.key, SKind: p.sKind}
}

func (w patternWire) pattern() Pattern {
	return Pattern{kind: w.Kind, key: w.Key, sKind: w.SKind}
}

type windUpWire struct {
	From         StarKey         `json:"from"`
	Pattern      patternWire     `json:"pattern"`
	Hops         []StarKey       `json:"hops,omitempty"`
	Transactions []TransactionId `json:"transactions,omitempty"`
	MaxHops      int             `json:"max_hops"`
	Action       Action          `json:"action"`
}

func (w WindUp) wire() windUpWire {
	return windUpWire{
		From:         w.From,
		Pattern:      w.Pattern.wire(),
		Hops:         w.Hops,
		Transactions: w.Transactions,
		MaxHops:      w.MaxHops,
		Action:       w.Action,
	}
}

func (w windUpWire) windUp() WindUp {
	return WindUp{
		From:         w.From,
		Pattern:      w.Pattern.pattern(),
		Hops:         w.Hops,
		Transactions: w.Transactions,
		MaxHops:      w.MaxHops,
		Action:       w.Action,
	}
}

// MarshalWindUp encodes wind for transmission along a lane.
func MarshalWindUp(wind WindUp) ([]byte, error) {
	return json.Marshal(wind.wire())
}

// UnmarshalWindUp decodes a WindUp encoded by MarshalWindUp.
func UnmarshalWindUp(data []byte) (WindUp, error) {
	var w windUpWire
	if err := json.Unmarshal(data, &w); err != nil {
		return WindUp{}, err
	}
	return w.windUp(), nil
}

type windDownWire struct {
	Hops         []StarKey       `json:"hops,omitempty"`
	Transactions []TransactionId `json:"transactions,omitempty"`
	Hits         []Hit           `json:"hits,omitempty"`
	WindUp       windUpWire      `json:"wind_up"`
}

// MarshalWindDown encodes down for transmission back along the lane a
// WindUp arrived on.
func MarshalWindDown(down WindDown) ([]byte, error) {
	return json.Marshal(windDownWire{
		Hops:         down.Hops,
		Transactions: down.Transactions,
		Hits:         down.Hits,
		WindUp:       down.WindUp.wire(),
	})
}

// UnmarshalWindDown decodes a WindDown encoded by MarshalWindDown.
func UnmarshalWindDown(data []byte) (WindDown, error) {
	var w windDownWire
	if err := json.Unmarshal(data, &w); err != nil {
		return WindDown{}, err
	}
	return WindDown{
		Hops:         w.Hops,
		Transactions: w.Transactions,
		Hits:         w.Hits,
		WindUp:       w.WindUp.windUp(),
	}, nil
}
