package wave

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/starlane-io/starlane/pkg/starerr"
	"github.com/starlane-io/starlane/pkg/starid"
)

// WireVersion is the current wire-format version written by Encode and
// checked by Decode. New wave kinds must be added at the end of the Kind
// discriminant so that a version bump is only needed for incompatible
// framing changes.
const WireVersion uint16 = 1

// wireEnvelope is the JSON-serializable mirror of Wave used on the wire.
// Surfaces serialize through their canonical string form per spec;
// everything else rides as plain JSON fields, which keeps the framing
// forward-compatible with unknown fields the way a protobuf message
// would be (a decoder ignores fields it doesn't recognize).
type wireEnvelope struct {
	Version      uint16            `json:"version"`
	Kind         Kind              `json:"kind"`
	Id           string            `json:"id"`
	From         string            `json:"from"`
	ToKind       RecipientsKind    `json:"to_kind"`
	ToSurfaces   []string          `json:"to_surfaces,omitempty"`
	ToStars      []string          `json:"to_stars,omitempty"`
	Agent        agentWire         `json:"agent"`
	Scope        []string          `json:"scope,omitempty"`
	Handling     Handling          `json:"handling"`
	Method       Method            `json:"method"`
	Substance    substanceWire     `json:"body"`
	ReflectionOf string            `json:"reflection_of,omitempty"`
	Status       int               `json:"status,omitempty"`
	BounceKind   BounceBacksKind   `json:"bounce_kind,omitempty"`
	BounceCount  int               `json:"bounce_count,omitempty"`
	BounceClass  WaitClass         `json:"bounce_class,omitempty"`
}

type agentWire struct {
	Kind  AgentKind `json:"kind"`
	Point string    `json:"point,omitempty"`
}

type substanceWire struct {
	Kind    SubstanceKind   `json:"kind"`
	Text    string          `json:"text,omitempty"`
	Raw     []byte          `json:"raw,omitempty"`
	Errs    []string        `json:"errs,omitempty"`
	Point   string          `json:"point,omitempty"`
	Surface string          `json:"surface,omitempty"`
	Command string          `json:"command,omitempty"`
	Hyper   *HyperSubstance `json:"hyper,omitempty"`
	Json    []byte          `json:"json,omitempty"`
}

// Encode writes a length-prefixed binary frame for w: a u32 big-endian
// length followed by the JSON envelope body. The framing is kept
// separate from the body encoding so a future binary body codec can
// replace the JSON layer without touching callers that only care about
// frame boundaries.
func Encode(w io.Writer, wv Wave) error {
	body, err := marshalEnvelope(wv)
	if err != nil {
		return err
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(body)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

// Decode reads one length-prefixed frame written by Encode.
func Decode(r io.Reader) (Wave, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return Wave{}, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return Wave{}, err
	}
	return unmarshalEnvelope(body)
}

func marshalEnvelope(w Wave) ([]byte, error) {
	env := wireEnvelope{
		Version:  WireVersion,
		Kind:     w.Kind,
		Id:       w.Id.String(),
		From:     w.From.String(),
		ToKind:   w.To.Kind,
		ToStars:  w.To.Stars,
		Agent:    agentWire{Kind: w.Agent.Kind, Point: w.Agent.Point},
		Scope:    w.Scope.Roots,
		Handling: w.Handle,
		Method:   w.Method,
		Substance: substanceWire{
			Kind: w.Body.Kind, Text: w.Body.Text, Raw: w.Body.Raw, Errs: w.Body.Errs,
			Point: w.Body.Point, Surface: w.Body.Surface, Command: w.Body.Command,
			Hyper: w.Body.Hyper, Json: w.Body.Json,
		},
		Status: w.Status,
	}
	for _, s := range w.To.Surfaces {
		env.ToSurfaces = append(env.ToSurfaces, s.String())
	}
	if w.IsDirected() {
		env.BounceKind = w.Bounce.Kind
		env.BounceCount = w.Bounce.Count
		env.BounceClass = w.Bounce.Class
	} else {
		env.ReflectionOf = w.ReflectionOf.String()
	}
	return json.Marshal(env)
}

func unmarshalEnvelope(body []byte) (Wave, error) {
	var env wireEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Wave{}, fmt.Errorf("decode wave envelope: %w: %w", starerr.ErrProtocol, err)
	}
	if env.Version != WireVersion {
		return Wave{}, starerr.Protocol(fmt.Sprintf("unsupported wire version %d", env.Version))
	}

	id, err := ParseId(env.Id)
	if err != nil {
		return Wave{}, fmt.Errorf("decode wave id: %w", err)
	}
	fromSurface, err := parseSurfaceField(env.From)
	if err != nil {
		return Wave{}, fmt.Errorf("decode from surface: %w", err)
	}

	to := Recipients{Kind: env.ToKind, Stars: env.ToStars}
	for _, s := range env.ToSurfaces {
		surf, err := parseSurfaceField(s)
		if err != nil {
			return Wave{}, fmt.Errorf("decode to surface: %w", err)
		}
		to.Surfaces = append(to.Surfaces, surf)
	}

	w := Wave{
		Id:     id,
		Kind:   env.Kind,
		From:   fromSurface,
		To:     to,
		Agent:  Agent{Kind: env.Agent.Kind, Point: env.Agent.Point},
		Scope:  Scope{Roots: env.Scope},
		Handle: env.Handling,
		Method: env.Method,
		Body: Substance{
			Kind: env.Substance.Kind, Text: env.Substance.Text, Raw: env.Substance.Raw,
			Errs: env.Substance.Errs, Point: env.Substance.Point, Surface: env.Substance.Surface,
			Command: env.Substance.Command, Hyper: env.Substance.Hyper, Json: env.Substance.Json,
		},
		Status: env.Status,
	}

	if w.IsDirected() {
		w.Bounce = BounceBacks{Kind: env.BounceKind, Count: env.BounceCount, Class: env.BounceClass}
	} else if env.ReflectionOf != "" {
		rid, err := ParseId(env.ReflectionOf)
		if err != nil {
			return Wave{}, fmt.Errorf("decode reflection_of: %w", err)
		}
		w.ReflectionOf = rid
	}

	return w, nil
}

// parseSurfaceField parses the "point@layer+topic" canonical surface
// rendering produced by starid.Surface.String.
func parseSurfaceField(s string) (starid.Surface, error) {
	// The layer separator is the first '@' followed by a layer name; a
	// Uuid topic after the '+' carries its own '@'.
	atIdx := -1
	for i := 0; i < len(s) && atIdx < 0; i++ {
		if s[i] == '@' {
			layerText, _, _ := strings.Cut(s[i+1:], "+")
			if _, err := parseLayer(layerText); err == nil {
				atIdx = i
			}
		}
	}
	if atIdx < 0 {
		return starid.Surface{}, starerr.Protocol("malformed surface, missing '@': " + s)
	}
	pointPart := s[:atIdx]
	rest := s[atIdx+1:]

	layerPart := rest
	topicPart := ""
	if plusIdx := strings.IndexByte(rest, '+'); plusIdx >= 0 {
		layerPart = rest[:plusIdx]
		topicPart = rest[plusIdx+1:]
	}

	point, err := starid.ParsePoint(pointPart)
	if err != nil {
		return starid.Surface{}, err
	}
	layer, err := parseLayer(layerPart)
	if err != nil {
		return starid.Surface{}, err
	}
	return starid.NewSurface(point, layer, parseTopic(topicPart)), nil
}

func parseLayer(s string) (starid.Layer, error) {
	switch s {
	case "Gravity":
		return starid.LayerGravity, nil
	case "Field":
		return starid.LayerField, nil
	case "Shell":
		return starid.LayerShell, nil
	case "Portal":
		return starid.LayerPortal, nil
	case "Host":
		return starid.LayerHost, nil
	case "Guest":
		return starid.LayerGuest, nil
	case "Core":
		return starid.LayerCore, nil
	default:
		return 0, starerr.Protocol("unknown layer: " + s)
	}
}

func parseTopic(s string) starid.Topic {
	switch {
	case s == "":
		return starid.NoTopic
	case s == "#":
		return starid.AnyTopic
	case s[0] == '!':
		return starid.NotTopic(s[1:])
	case s[0] == '@':
		return starid.UuidTopic(s[1:])
	case s[0] == '$':
		return starid.CliTopic(s[1:])
	default:
		return starid.PathTopic(s)
	}
}
