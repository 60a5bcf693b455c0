package security

import (
	"crypto/x509"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSaveLoadCertToFile(t *testing.T) {
	key := DeriveKeyFromMeshID("test-mesh")
	if err := SetMeshEncryptionKey(key); err != nil {
		t.Fatalf("Failed to set mesh encryption key: %v", err)
	}

	tmpCertDir, err := os.MkdirTemp("", "starlane-cert-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp cert dir: %v", err)
	}
	defer os.RemoveAll(tmpCertDir)

	ca := NewCertAuthority(&memCAStore{})
	if err := ca.Initialize(); err != nil {
		t.Fatalf("Failed to initialize CA: %v", err)
	}

	cert, err := ca.IssueNodeCertificate("test-star", "star", []string{}, []net.IP{})
	if err != nil {
		t.Fatalf("Failed to issue certificate: %v", err)
	}

	if err := SaveCertToFile(cert, tmpCertDir); err != nil {
		t.Fatalf("Failed to save certificate: %v", err)
	}

	certPath := filepath.Join(tmpCertDir, "node.crt")
	keyPath := filepath.Join(tmpCertDir, "node.key")

	if _, err := os.Stat(certPath); os.IsNotExist(err) {
		t.Error("Certificate file should exist")
	}
	if _, err := os.Stat(keyPath); os.IsNotExist(err) {
		t.Error("Key file should exist")
	}

	loadedCert, err := LoadCertFromFile(tmpCertDir)
	if err != nil {
		t.Fatalf("Failed to load certificate: %v", err)
	}

	if loadedCert.Leaf.Subject.CommonName != cert.Leaf.Subject.CommonName {
		t.Errorf("Loaded cert CN mismatch: expected %s, got %s",
			cert.Leaf.Subject.CommonName, loadedCert.Leaf.Subject.CommonName)
	}
}

func TestSaveLoadCACertToFile(t *testing.T) {
	key := DeriveKeyFromMeshID("test-mesh")
	if err := SetMeshEncryptionKey(key); err != nil {
		t.Fatalf("Failed to set mesh encryption key: %v", err)
	}

	tmpCertDir, err := os.MkdirTemp("", "starlane-cert-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp cert dir: %v", err)
	}
	defer os.RemoveAll(tmpCertDir)

	ca := NewCertAuthority(&memCAStore{})
	if err := ca.Initialize(); err != nil {
		t.Fatalf("Failed to initialize CA: %v", err)
	}

	caCertDER := ca.GetRootCACert()

	if err := SaveCACertToFile(caCertDER, tmpCertDir); err != nil {
		t.Fatalf("Failed to save CA certificate: %v", err)
	}

	caPath := filepath.Join(tmpCertDir, "ca.crt")
	if _, err := os.Stat(caPath); os.IsNotExist(err) {
		t.Error("CA certificate file should exist")
	}

	loadedCACert, err := LoadCACertFromFile(tmpCertDir)
	if err != nil {
		t.Fatalf("Failed to load CA certificate: %v", err)
	}

	if !loadedCACert.Equal(ca.rootCert) {
		t.Error("Loaded CA cert should match original")
	}
}

func TestCertExists(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "starlane-cert-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	if CertExists(tmpDir) {
		t.Error("Certificate should not exist initially")
	}

	certPath := filepath.Join(tmpDir, "node.crt")
	keyPath := filepath.Join(tmpDir, "node.key")
	caPath := filepath.Join(tmpDir, "ca.crt")

	_ = os.WriteFile(certPath, []byte("cert"), 0600)
	_ = os.WriteFile(keyPath, []byte("key"), 0600)
	_ = os.WriteFile(caPath, []byte("ca"), 0600)

	if !CertExists(tmpDir) {
		t.Error("Certificate should exist after creating files")
	}

	os.Remove(keyPath)

	if CertExists(tmpDir) {
		t.Error("Certificate should not exist with missing key file")
	}
}

func TestCertNeedsRotation(t *testing.T) {
	tests := []struct {
		name     string
		notAfter time.Time
		needsRot bool
	}{
		{
			name:     "Cert expiring in 1 day - needs rotation",
			notAfter: time.Now().Add(24 * time.Hour),
			needsRot: true,
		},
		{
			name:     "Cert expiring in 29 days - needs rotation",
			notAfter: time.Now().Add(29 * 24 * time.Hour),
			needsRot: true,
		},
		{
			name:     "Cert expiring in 31 days - no rotation needed",
			notAfter: time.Now().Add(31 * 24 * time.Hour),
			needsRot: false,
		},
		{
			name:     "Cert expiring in 60 days - no rotation needed",
			notAfter: time.Now().Add(60 * 24 * time.Hour),
			needsRot: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cert := &x509.Certificate{
				NotAfter: tt.notAfter,
			}

			needsRot := CertNeedsRotation(cert)
			if needsRot != tt.needsRot {
				t.Errorf("Expected needsRotation=%v, got %v", tt.needsRot, needsRot)
			}
		})
	}

	if !CertNeedsRotation(nil) {
		t.Error("Nil certificate should need rotation")
	}
}

func TestGetCertExpiry(t *testing.T) {
	expectedExpiry := time.Now().Add(90 * 24 * time.Hour)
	cert := &x509.Certificate{
		NotAfter: expectedExpiry,
	}

	expiry := GetCertExpiry(cert)
	if !expiry.Equal(expectedExpiry) {
		t.Errorf("Expected expiry %v, got %v", expectedExpiry, expiry)
	}

	nilExpiry := GetCertExpiry(nil)
	if !nilExpiry.IsZero() {
		t.Error("Nil certificate should return zero time")
	}
}

func TestGetCertTimeRemaining(t *testing.T) {
	expectedRemaining := 45 * 24 * time.Hour
	cert := &x509.Certificate{
		NotAfter: time.Now().Add(expectedRemaining),
	}

	remaining := GetCertTimeRemaining(cert)

	diff := remaining - expectedRemaining
	if diff < -time.Second || diff > time.Second {
		t.Errorf("Expected remaining ~%v, got %v (diff: %v)", expectedRemaining, remaining, diff)
	}

	nilRemaining := GetCertTimeRemaining(nil)
	if nilRemaining != 0 {
		t.Error("Nil certificate should return zero duration")
	}
}

func TestValidateCertChain(t *testing.T) {
	key := DeriveKeyFromMeshID("test-mesh")
	if err := SetMeshEncryptionKey(key); err != nil {
		t.Fatalf("Failed to set mesh encryption key: %v", err)
	}

	ca := NewCertAuthority(&memCAStore{})
	if err := ca.Initialize(); err != nil {
		t.Fatalf("Failed to initialize CA: %v", err)
	}

	cert, err := ca.IssueNodeCertificate("test-star", "star", []string{}, []net.IP{})
	if err != nil {
		t.Fatalf("Failed to issue certificate: %v", err)
	}

	if err := ValidateCertChain(cert.Leaf, ca.rootCert); err != nil {
		t.Errorf("Certificate chain validation failed: %v", err)
	}

	if err := ValidateCertChain(nil, ca.rootCert); err == nil {
		t.Error("Validation should fail with nil certificate")
	}

	if err := ValidateCertChain(cert.Leaf, nil); err == nil {
		t.Error("Validation should fail with nil CA")
	}
}

func TestGetCertInfo(t *testing.T) {
	key := DeriveKeyFromMeshID("test-mesh")
	if err := SetMeshEncryptionKey(key); err != nil {
		t.Fatalf("Failed to set mesh encryption key: %v", err)
	}

	ca := NewCertAuthority(&memCAStore{})
	if err := ca.Initialize(); err != nil {
		t.Fatalf("Failed to initialize CA: %v", err)
	}

	cert, err := ca.IssueNodeCertificate("test-star", "star", []string{}, []net.IP{})
	if err != nil {
		t.Fatalf("Failed to issue certificate: %v", err)
	}

	info := GetCertInfo(cert.Leaf)

	if info["subject"] != "star-test-star" {
		t.Errorf("Expected subject 'star-test-star', got %v", info["subject"])
	}

	if info["issuer"] != "Starlane Mesh Root CA" {
		t.Errorf("Expected issuer 'Starlane Mesh Root CA', got %v", info["issuer"])
	}

	if info["is_ca"] != false {
		t.Error("Node certificate should not be a CA")
	}

	nilInfo := GetCertInfo(nil)
	if _, hasError := nilInfo["error"]; !hasError {
		t.Error("Info for nil certificate should contain error")
	}
}

func TestGetCertDir(t *testing.T) {
	tests := []struct {
		nodeType string
		nodeID   string
	}{
		{"star", "node1"},
		{"client", "node2"},
	}

	for _, tt := range tests {
		t.Run(tt.nodeType+"-"+tt.nodeID, func(t *testing.T) {
			certDir, err := GetCertDir(tt.nodeType, tt.nodeID)
			if err != nil {
				t.Fatalf("Failed to get cert dir: %v", err)
			}

			expected := tt.nodeType + "-" + tt.nodeID
			if filepath.Base(certDir) != expected {
				t.Errorf("Expected cert dir to end with %s, got %s", expected, certDir)
			}
		})
	}
}

func TestGetCLICertDir(t *testing.T) {
	certDir, err := GetCLICertDir()
	if err != nil {
		t.Fatalf("Failed to get CLI cert dir: %v", err)
	}

	if filepath.Base(certDir) != "cli" {
		t.Errorf("Expected cert dir to end with 'cli', got %s", filepath.Base(certDir))
	}
}

func TestRemoveCerts(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "starlane-cert-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	_ = os.WriteFile(filepath.Join(tmpDir, "node.crt"), []byte("cert"), 0600)
	_ = os.WriteFile(filepath.Join(tmpDir, "node.key"), []byte("key"), 0600)

	if err := RemoveCerts(tmpDir); err != nil {
		t.Fatalf("Failed to remove certificates: %v", err)
	}

	if _, err := os.Stat(tmpDir); !os.IsNotExist(err) {
		t.Error("Certificate directory should not exist after removal")
	}
}
