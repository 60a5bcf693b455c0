package client_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starlane-io/starlane/pkg/client"
	"github.com/starlane-io/starlane/pkg/fabric"
	"github.com/starlane-io/starlane/pkg/search"
	"github.com/starlane-io/starlane/pkg/security"
	"github.com/starlane-io/starlane/pkg/star"
	"github.com/starlane-io/starlane/pkg/starid"
	"github.com/starlane-io/starlane/pkg/wave"
)

// inboundHandoff resolves the construction cycle between a Mesh (which
// needs an Inbound at New) and a Star (which needs the Mesh as its
// Transport at New): the Mesh is built against this indirection first,
// the Star second, and set binds the real target before either is used.
type inboundHandoff struct {
	target *star.Star
}

func (h *inboundHandoff) set(s *star.Star) { h.target = s }

func (h *inboundHandoff) EnqueueFabric(ctx context.Context, w wave.Wave, injector starid.Surface) {
	h.target.EnqueueFabric(ctx, w, injector)
}

// issueStarCert mints a CommonName "star-<key>" certificate from ca and
// writes it, alongside ca's own root certificate, into a fresh directory
// laid out the way security.LoadCertFromFile/LoadCACertFromFile expect.
func issueStarCert(t *testing.T, ca *security.CertAuthority, key search.StarKey) string {
	t.Helper()
	cert, err := ca.IssueNodeCertificate(string(key), "star", []string{"localhost"}, []net.IP{net.ParseIP("127.0.0.1")})
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, security.SaveCertToFile(cert, dir))
	require.NoError(t, security.SaveCACertToFile(ca.GetRootCACert(), dir))
	return dir
}

func TestClientConnectPingsAStarOverFabric(t *testing.T) {
	receiver := mustPoint(t, "my-space:receiver")
	kind := starid.NewKind(starid.KindMechtron)

	ca := security.NewCertAuthority(nil)
	require.NoError(t, ca.Initialize())
	certDir := issueStarCert(t, ca, "star-a")

	handoff := &inboundHandoff{}
	mesh := fabric.New(fabric.Config{Self: "star-a", CertDir: certDir, Inbound: handoff})
	searcher := search.NewSearcher("star-a", search.KindMesh, mesh, time.Second)
	mesh.BindSearcher(searcher)

	s := buildStarWithTransport(t, receiver, kind, mesh)
	handoff.set(s)
	go s.Run(context.Background())
	defer s.Stop()

	require.NoError(t, mesh.Bind("127.0.0.1:0"))
	go func() { _ = mesh.Serve() }()
	defer mesh.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := client.Connect(ctx, mesh.Addr(), certDir)
	require.NoError(t, err)
	defer c.Close()

	to := starid.NewSurface(receiver, starid.LayerCore, starid.NoTopic)
	reply, err := c.Ping(ctx, to, wave.Method{Class: wave.MethodHttp, Op: "GET"}, wave.Empty())
	require.NoError(t, err)
	assert.Equal(t, wave.KindPong, reply.Kind)
	assert.Equal(t, 200, reply.Status)
}
