/*
Package client is a small, external-facing Go library for talking to a
Starlane mesh without being a star yourself: it builds directed waves
(Ping, Ripple, Signal) and exchanges them against whatever can carry a
wave into a traversal engine and hand back its reflection.

# Architecture

Client is written against a narrow Sender interface, not a concrete
transport, so the same Ping/Ripple/Signal code works whether the other
end is a real star reached over the fabric or a traversal engine
running in the same process:

	┌────────────────────── APPLICATION CODE ───────────────────────┐
	│                                                                 │
	│  import "github.com/starlane-io/starlane/pkg/client"           │
	│                                                                 │
	│  c, err := client.Connect(ctx, "star-a:7433", certDir)         │
	│  reply, err := c.Ping(ctx, to, method, body)                   │
	│                                                                 │
	└──────────────────────────┬──────────────────────────────────┘
	                           │
	┌──────────────────────────▼─────── pkg/client ─────────────────┐
	│                                                                 │
	│   Client                                                       │
	│     builds wave.DirectedProto values from a synthetic          │
	│     client:<id> surface, then calls Sender.Route/Exchange      │
	│                                                                 │
	│   Sender (interface)                                           │
	│     ┌───────────────────────┐   ┌────────────────────────────┐│
	│     │ *router.GravityRouter │   │      *fabricSender         ││
	│     │ in-process, for tests │   │ wraps fabric.ClientLane +  ││
	│     │ against one Star      │   │ its own exchange.Exchanger ││
	│     └───────────────────────┘   └────────────┬───────────────┘│
	└─────────────────────────────────────────────┼─────────────────┘
	                                               │ mTLS (no client cert)
	                                               ▼
	                                      Star's fabric listener

# Creating a client

Against a running star, over the network:

	c, err := client.Connect(ctx, "star-a.mesh:7433", "/etc/starlane/certs")
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

Against a traversal engine in the same process, for a test:

	gravity := router.NewGravityRouter(engine, exchanger, starSurface)
	c := client.NewClient(gravity, clientSurface)

# Sending waves

Ping blocks for the single reply its recipient reflects back:

	reply, err := c.Ping(ctx, to, wave.Method{Class: wave.MethodHttp, Op: "GET"}, wave.Empty())

Ripple addresses many recipients at once and collects whatever its
bounce-backs policy waits for:

	agg, err := c.Ripple(ctx, wave.Stars("star-a", "star-b"), method, body, wave.CountBounce(2))

Signal fires a wave that never reflects and returns as soon as it has
been accepted:

	err := c.Signal(ctx, to, method, body)

# Certificates

Connect trusts the mesh's CA certificate on disk at caCertDir but
presents no client certificate of its own — a star's fabric listener
only requests one (see pkg/fabric), it never requires it, so a
read-only diagnostic client needs no identity of its own to be issued
by the mesh.
*/
package client
