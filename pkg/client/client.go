package client

import (
	"context"
	"fmt"

	"github.com/starlane-io/starlane/pkg/exchange"
	"github.com/starlane-io/starlane/pkg/fabric"
	"github.com/starlane-io/starlane/pkg/starid"
	"github.com/starlane-io/starlane/pkg/wave"
)

// Sender is the narrow capability Client needs from whatever carries
// its waves — satisfied directly by *router.GravityRouter (in-process,
// for tests against a single Star) and by *fabricSender below (a real
// connection to a remote Star's fabric listener). Client never imports
// pkg/router or pkg/star, so either can be swapped in without a cycle.
type Sender interface {
	Route(ctx context.Context, w wave.Wave) error
	Exchange(ctx context.Context, w wave.Wave) (exchange.ReflectedAggregate, error)
}

// Client builds directed waves against a fixed sender identity and
// exchanges them, the sender-side translation point between an
// application and a Star's traversal engine.
type Client struct {
	sender Sender
	from   starid.Surface
	closer func() error
}

// NewClient wraps an already-constructed Sender — typically a
// *router.GravityRouter for in-process tests — under identity from.
func NewClient(sender Sender, from starid.Surface) *Client {
	return &Client{sender: sender, from: from}
}

// Connect dials a Star's fabric listener at addr and returns a Client
// addressing waves from a synthetic client surface unique to this
// connection, trusting the mesh CA certificate in caCertDir (see
// fabric.DialClientLane — no client certificate of this client's own is
// presented, since the Star only requests one).
func Connect(ctx context.Context, addr, caCertDir string) (*Client, error) {
	lane, err := fabric.DialClientLane(ctx, addr, caCertDir)
	if err != nil {
		return nil, fmt.Errorf("client: connect to %s: %w", addr, err)
	}

	id := wave.NewId()
	point, err := starid.ParsePoint("client:" + id.String())
	if err != nil {
		_ = lane.Close()
		return nil, fmt.Errorf("client: build client surface: %w", err)
	}
	from := starid.NewSurface(point, starid.LayerCore, starid.NoTopic)

	fs := newFabricSender(lane)
	return &Client{sender: fs, from: from, closer: fs.close}, nil
}

// Close releases whatever resources Connect opened. A Client built
// with NewClient directly has nothing to close.
func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

// Ping sends a Ping to a single recipient and blocks for its Pong.
func (c *Client) Ping(ctx context.Context, to starid.Surface, method wave.Method, body wave.Substance) (wave.Wave, error) {
	w, err := wave.NewDirectedProto(wave.KindPing).
		From(c.from).
		To(wave.Single(to)).
		Method(method).
		Body(body).
		Build()
	if err != nil {
		return wave.Wave{}, err
	}

	agg, err := c.sender.Exchange(ctx, w)
	if err != nil {
		return wave.Wave{}, err
	}
	reply, ok := agg.First()
	if !ok {
		return wave.Wave{}, fmt.Errorf("client: ping to %s produced no reflection", to)
	}
	return reply, nil
}

// Ripple sends one wave to every recipient and collects whatever
// reflections its bounce-backs policy waits for.
func (c *Client) Ripple(ctx context.Context, to wave.Recipients, method wave.Method, body wave.Substance, bounce wave.BounceBacks) (exchange.ReflectedAggregate, error) {
	w, err := wave.NewDirectedProto(wave.KindRipple).
		From(c.from).
		To(to).
		Method(method).
		Body(body).
		BounceBacks(bounce).
		Build()
	if err != nil {
		return exchange.ReflectedAggregate{}, err
	}
	return c.sender.Exchange(ctx, w)
}

// Signal sends a fire-and-forget wave; Signal never reflects, so this
// returns as soon as the sender has accepted it.
func (c *Client) Signal(ctx context.Context, to starid.Surface, method wave.Method, body wave.Substance) error {
	w, err := wave.NewDirectedProto(wave.KindSignal).
		From(c.from).
		To(wave.Single(to)).
		Method(method).
		Body(body).
		Build()
	if err != nil {
		return err
	}
	return c.sender.Route(ctx, w)
}
