package fabric

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"strings"

	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/peer"

	"github.com/starlane-io/starlane/pkg/search"
	"github.com/starlane-io/starlane/pkg/security"
)

// starCertRole is the CertAuthority role string every star's own
// certificate is issued under, distinguishing it from a CLI or
// external client certificate in the mesh's shared CA.
const starCertRole = "star"

// peerStarKey recovers the calling star's key from the TLS peer
// certificate gRPC attaches to ctx, per the CommonName convention
// IssueNodeCertificate uses: "<role>-<nodeID>".
func peerStarKey(ctx context.Context) (search.StarKey, error) {
	p, ok := peer.FromContext(ctx)
	if !ok || p.AuthInfo == nil {
		return "", fmt.Errorf("fabric: no peer TLS info on stream context")
	}
	tlsInfo, ok := p.AuthInfo.(credentials.TLSInfo)
	if !ok {
		return "", fmt.Errorf("fabric: peer auth info is not TLS")
	}
	state := tlsInfo.State
	if len(state.PeerCertificates) == 0 {
		return "", fmt.Errorf("fabric: peer presented no certificate")
	}
	cn := state.PeerCertificates[0].Subject.CommonName
	prefix := starCertRole + "-"
	if !strings.HasPrefix(cn, prefix) {
		return "", fmt.Errorf("fabric: peer certificate %q is not a star certificate", cn)
	}
	return search.StarKey(strings.TrimPrefix(cn, prefix)), nil
}

// serverTLSConfig mirrors the teacher's pkg/api/server.go: load this
// star's own certificate plus the mesh's CA, then request (not
// require) a client certificate so the handshake can still complete
// for a lane that hasn't finished certificate provisioning yet.
func serverTLSConfig(certDir string) (*tls.Config, error) {
	cert, err := security.LoadCertFromFile(certDir)
	if err != nil {
		return nil, fmt.Errorf("fabric: load star certificate: %w", err)
	}
	caCert, err := security.LoadCACertFromFile(certDir)
	if err != nil {
		return nil, fmt.Errorf("fabric: load mesh CA certificate: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AddCert(caCert)

	return &tls.Config{
		ClientAuth:   tls.RequestClientCert,
		Certificates: []tls.Certificate{*cert},
		ClientCAs:    pool,
		MinVersion:   tls.VersionTLS13,
	}, nil
}

// clientTLSConfig mirrors the teacher's pkg/client/client.go
// connectWithMTLS: present this star's certificate and verify the
// remote star's against the same mesh CA.
func clientTLSConfig(certDir string) (*tls.Config, error) {
	cert, err := security.LoadCertFromFile(certDir)
	if err != nil {
		return nil, fmt.Errorf("fabric: load star certificate: %w", err)
	}
	caCert, err := security.LoadCACertFromFile(certDir)
	if err != nil {
		return nil, fmt.Errorf("fabric: load mesh CA certificate: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AddCert(caCert)

	return &tls.Config{
		Certificates: []tls.Certificate{*cert},
		RootCAs:      pool,
		MinVersion:   tls.VersionTLS13,
	}, nil
}
