package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/starlane-io/starlane/pkg/security"
)

// fileCAStore persists the mesh CA's serialized CAData under
// <dataDir>/ca.json, the narrow security.CAStore capability
// CertAuthority needs to survive a restart. No concrete implementation
// of CAStore ships in pkg/security itself — only a CA-issued
// certificate bundle is, via SaveCertToFile/SaveCACertToFile — so a
// star process supplies its own, the same way cmd/warren's manager
// wires its own bbolt-backed secrets store against pkg/security's
// interfaces.
type fileCAStore struct {
	path string
}

func newFileCAStore(dataDir string) *fileCAStore {
	return &fileCAStore{path: filepath.Join(dataDir, "ca.json")}
}

func (s *fileCAStore) SaveCA(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("castore: create data directory: %w", err)
	}
	return os.WriteFile(s.path, data, 0600)
}

func (s *fileCAStore) GetCA() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("castore: read %s: %w", s.path, err)
	}
	return data, nil
}

func (s *fileCAStore) exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}
