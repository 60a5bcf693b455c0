package search

// StarKey identifies a star in the mesh. It is a plain string so it
// interoperates directly with the star keys already used by
// pkg/registry (Replicated.starKey, HostGate.StarKey) without a
// conversion at every call site.
type StarKey = string

// StarKind labels a star's role in the mesh. The search protocol only
// cares about one fact per kind: whether a star of that kind relays a
// WindUp onward or always terminates it locally.
type StarKind string

const (
	KindCentral StarKind = "Central"
	KindMesh    StarKind = "Mesh"
	KindGateway StarKind = "Gateway"
	KindClient  StarKind = "Client"
)

var relayKinds = map[StarKind]bool{
	KindCentral: true,
	KindMesh:    true,
	KindGateway: true,
	KindClient:  false,
}

// Relay reports whether a star of this kind forwards search traffic to
// its neighbours. Unrecognized kinds default to relaying: a star kind
// the mesh doesn't already know about is assumed to be a full
// participant rather than a dead end.
func (k StarKind) Relay() bool {
	if relay, ok := relayKinds[k]; ok {
		return relay
	}
	return true
}
