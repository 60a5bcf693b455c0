// Package wave defines the message model that travels between stars and
// particles: WaveId, Recipients, Method/Agent/Scope/Handling, Substance,
// and the Directed/Reflected wave builders described by the traversal
// engine in pkg/traversal.
package wave

import "github.com/google/uuid"

// Id is a wave's 128-bit collision-resistant identity, generated once at
// construction and never reused.
type Id uuid.UUID

func NewId() Id { return Id(uuid.New()) }

func (id Id) String() string { return uuid.UUID(id).String() }

func (id Id) Equal(o Id) bool { return id == o }

func ParseId(s string) (Id, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return Id{}, err
	}
	return Id(u), nil
}
