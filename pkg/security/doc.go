/*
Package security provides the cryptographic services a Starlane mesh
needs to run over an untrusted network: a Certificate Authority for
mutual TLS between stars, certificate lifecycle helpers, and the
at-rest encryption that protects the CA's own root key.

# Architecture

	┌─────────────────────────────────────────────────────────────┐
	│                    Security Architecture                    │
	└─────┬───────────────────────────────────────┬───────────────┘
	      │                                       │
	      ▼                                       ▼
	┌──────────────┐                     ┌──────────────────┐
	│ CertAuthority│                     │ Certificate files │
	│ (Root only)  │                     │  on disk per star  │
	└──────┬───────┘                     └────────┬───────────┘
	       │                                      │
	       ▼                                      ▼
	  RSA 4096-bit root                    90-day validity
	  10-year validity                     Rotation threshold: 30 days

## Mesh Encryption Key

The CA's root private key is encrypted at rest with a mesh-wide key
derived from the mesh identifier during a star's startup:

	meshKey = SHA-256(meshID)  // 32 bytes for AES-256

Every star joining the same constellation derives the same key from
the same mesh ID, so no key material needs to travel over the wire
for a restarting star to decrypt its own copy of the CA's root key.
The key lives only in memory (see SetMeshEncryptionKey) and must be
supplied again on every process restart.

# Certificate Authority

## Root CA

The CA uses a hierarchical structure with a long-lived, self-signed
root certificate:

	Root CA (self-signed)
	├── 10-year validity
	├── RSA 4096-bit key (high security, issued rarely)
	├── KeyUsage: CertSign, CRLSign
	└── Subject: CN=Starlane Mesh Root CA, O=Starlane Mesh

The root CA is generated once, during the first star's startup
(CertAuthority.Initialize), and persisted through whatever CAStore the
caller supplies — SaveToStore encrypts the root key with Encrypt
before handing it to the store; LoadFromStore reverses it.

## Node Certificates

The CA issues a certificate for every star in the mesh:

	Star Certificate
	├── 90-day validity
	├── RSA 2048-bit key (faster operations)
	├── KeyUsage: DigitalSignature, KeyEncipherment
	├── ExtKeyUsage: ServerAuth, ClientAuth
	├── Subject: CN={role}-{nodeID}, O=Starlane Mesh
	├── DNS Names: [star hostname]
	└── IP Addresses: [star IP]

A dialing star presents its own certificate and verifies the
listener's against the shared root; the listener requests the
dialer's certificate but does not require or verify it (see
pkg/fabric, which builds its tls.Config from exactly these
certificates).

## Client Certificates

Read-only diagnostic clients (pkg/client.Connect) do not need the CA
to issue them anything — a star's fabric listener requests a client
certificate but never requires one, so the client only needs the root
CA certificate to verify the star it dials. IssueClientCertificate
exists for the narrower case of a CLI or automation identity that does
need a presented certificate of its own:

	CLI Certificate
	├── 90-day validity
	├── KeyUsage: DigitalSignature, KeyEncipherment
	├── ExtKeyUsage: ClientAuth
	└── Subject: CN=cli-{clientID}, O=Starlane Mesh

# Usage Examples

## Setting Up the Certificate Authority

	import "github.com/starlane-io/starlane/pkg/security"

	meshKey := security.DeriveKeyFromMeshID(meshID)
	if err := security.SetMeshEncryptionKey(meshKey); err != nil {
		panic(err)
	}

	ca := security.NewCertAuthority(store) // store implements CAStore
	if err := ca.LoadFromStore(); err != nil {
		// nothing persisted yet: generate the root and save it
		if err := ca.Initialize(); err != nil {
			panic(err)
		}
		if err := ca.SaveToStore(); err != nil {
			panic(err)
		}
	}

## Issuing a Star's Certificate

	dnsNames := []string{"star-a.mesh.local", "localhost"}
	ipAddresses := []net.IP{net.ParseIP("10.0.0.10"), net.ParseIP("127.0.0.1")}

	tlsCert, err := ca.IssueNodeCertificate("star-a", "star", dnsNames, ipAddresses)
	if err != nil {
		panic(err)
	}

	certDir, _ := security.GetCertDir("star", "star-a")
	if err := security.SaveCertToFile(tlsCert, certDir); err != nil {
		panic(err)
	}
	if err := security.SaveCACertToFile(ca.GetRootCACert(), certDir); err != nil {
		panic(err)
	}

## Verifying a Peer Certificate

	cert, err := x509.ParseCertificate(certDER)
	if err != nil {
		panic(err)
	}
	if err := ca.VerifyCertificate(cert); err != nil {
		panic(err) // not issued by this mesh's CA
	}

## Certificate Rotation

	if security.CertNeedsRotation(cert) {
		newCert, err := ca.IssueNodeCertificate(nodeID, role, dnsNames, ipAddresses)
		if err != nil {
			panic(err)
		}
		certDir, _ := security.GetCertDir(role, nodeID)
		if err := security.SaveCertToFile(newCert, certDir); err != nil {
			panic(err)
		}
	}

# Integration Points

## fabric Integration

pkg/fabric builds its server and dial-side tls.Config directly from
certificate files laid out by SaveCertToFile/SaveCACertToFile: a
star's listener requests a peer certificate (tls.RequestClientCert)
but neither requires nor verifies one, a dialing star presents its
own certificate and verifies the listener against the mesh's root,
and a diagnostic client's one-way dial (fabric.DialClientLane) trusts
the root but presents nothing of its own.

## Registry Integration

CAStore is deliberately narrow — SaveCA/GetCA — so the same
raft-backed registry store that already persists the mesh's Point
assignments (pkg/registry) can also back the CA's encrypted root key
without CertAuthority importing anything about raft, bbolt, or the
registry's FSM.

# Design Patterns

## Authenticated Encryption

Encrypt/Decrypt use AES-256-GCM, which provides both confidentiality
and integrity in one pass:

	Encryption:  plaintext + key + nonce → ciphertext + tag
	Decryption:  ciphertext + tag + key + nonce → plaintext (or error)

A modified ciphertext, wrong key, or wrong nonce all fail decryption
rather than silently returning garbage — critical for a root private
key, where a corrupted read must never be mistaken for a valid one.

## Hierarchical PKI

	Root CA (trust anchor, rarely touched after Initialize)
	└── Star / Client Certificates (issued on demand, rotated often)

Keeping the root's private key use rare (only IssueNodeCertificate and
IssueClientCertificate sign with it; VerifyCertificate needs only the
root certificate) is why it gets the
larger 4096-bit key while star certificates use the faster 2048-bit
one.

## Key Derivation

The mesh encryption key is derived deterministically from the mesh
ID, so any star that knows the mesh ID can decrypt its own local copy
of the CA's root key without a separate key-distribution step — and
losing the mesh ID means losing access to every star's persisted CA
material.

## Certificate Caching

CertAuthority caches every certificate it issues in memory
(GetCachedCert), keyed by the ID passed to IssueNodeCertificate or
IssueClientCertificate, so repeated lookups for the same identity
avoid re-walking the certificate chain.

# Security Considerations

## Key Management

The mesh encryption key is the single point of failure for
everything the CA persists:

  - Compromise → every star's persisted root key material is exposed
  - Loss → no star can recover its CA from storage; it must be
    re-initialized and its certificates reissued mesh-wide

## Threat Model

This package protects against:

	✓ Network eavesdropping between stars (TLS encryption)
	✓ Star impersonation (CA-signed certificates, mTLS)
	✓ Tampering with the persisted root key (authenticated encryption)

It does not protect against:

	✗ A compromised mesh encryption key
	✗ A compromised CA root private key (can forge any star's cert)
	✗ A compromised CAStore backend with no encryption of its own
*/
package security
