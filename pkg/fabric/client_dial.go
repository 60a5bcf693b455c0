package fabric

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	"github.com/starlane-io/starlane/pkg/security"
	"github.com/starlane-io/starlane/pkg/wave"
)

// ClientLane is a short-lived connection to a star's fabric listener
// for something that isn't itself a star — pkg/client's diagnostic
// sender. It never registers as a neighbour lane on the remote star
// (see Mesh.handleClientStream): the remote star answers each wave
// purely by Id correlation on this same stream.
type ClientLane struct {
	conn   *grpc.ClientConn
	stream LaneStreamClient
}

// DialClientLane opens one stream to a star's fabric listener at addr,
// trusting the mesh CA certificate found in caCertDir. Unlike a
// star-to-star Dial, no client certificate is presented — the server's
// tls.RequestClientCert policy only requests one, it never requires it
// (see serverTLSConfig), so a read-only diagnostic client can verify
// the star without first being issued an identity of its own.
func DialClientLane(ctx context.Context, addr, caCertDir string) (*ClientLane, error) {
	caCert, err := security.LoadCACertFromFile(caCertDir)
	if err != nil {
		return nil, fmt.Errorf("fabric: load mesh CA certificate: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AddCert(caCert)

	tlsConf := &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS13}
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(credentials.NewTLS(tlsConf)))
	if err != nil {
		return nil, fmt.Errorf("fabric: dial %s: %w", addr, err)
	}

	stream, err := dialStream(ctx, conn)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("fabric: open client lane to %s: %w", addr, err)
	}
	return &ClientLane{conn: conn, stream: stream}, nil
}

// Send transmits a directed wave upstream.
func (c *ClientLane) Send(w wave.Wave) error {
	frame, err := encodeWave(w)
	if err != nil {
		return err
	}
	return c.stream.Send(frame)
}

// Recv blocks for the next frame the star sends back — ordinarily a
// reflection of a wave this lane sent. Returns an error once the
// underlying stream ends.
func (c *ClientLane) Recv() (wave.Wave, error) {
	raw, err := c.stream.Recv()
	if err != nil {
		return wave.Wave{}, err
	}
	frame, err := decodeFrame(raw)
	if err != nil {
		return wave.Wave{}, err
	}
	return frame.Wave, nil
}

// Close tears down the connection.
func (c *ClientLane) Close() error {
	return c.conn.Close()
}
