package security

import (
	"bytes"
	"testing"
)

func TestEncryptDecryptRoundtrip(t *testing.T) {
	key := make([]byte, 32)
	copy(key, []byte("test-encryption-key-32-bytes-!!"))
	if err := SetMeshEncryptionKey(key); err != nil {
		t.Fatalf("Failed to set mesh encryption key: %v", err)
	}

	tests := []struct {
		name      string
		plaintext []byte
	}{
		{
			name:      "simple string",
			plaintext: []byte("hello world"),
		},
		{
			name:      "json data",
			plaintext: []byte(`{"rootCertDER":"...","rootKeyDER":"..."}`),
		},
		{
			name:      "binary data",
			plaintext: []byte{0x00, 0x01, 0x02, 0xFF, 0xFE, 0xFD},
		},
		{
			name:      "large data",
			plaintext: bytes.Repeat([]byte("test"), 1000),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ciphertext, err := Encrypt(tt.plaintext)
			if err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}

			if bytes.Equal(ciphertext, tt.plaintext) {
				t.Error("Ciphertext should not equal plaintext")
			}

			decrypted, err := Decrypt(ciphertext)
			if err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}

			if !bytes.Equal(decrypted, tt.plaintext) {
				t.Errorf("Decrypted data does not match original.\nGot:  %v\nWant: %v", decrypted, tt.plaintext)
			}
		})
	}
}

func TestDecryptErrors(t *testing.T) {
	key := make([]byte, 32)
	copy(key, []byte("test-encryption-key-32-bytes-!!"))
	if err := SetMeshEncryptionKey(key); err != nil {
		t.Fatalf("Failed to set mesh encryption key: %v", err)
	}

	tests := []struct {
		name       string
		ciphertext []byte
		wantErr    bool
	}{
		{
			name:       "empty data",
			ciphertext: []byte{},
			wantErr:    true,
		},
		{
			name:       "nil data",
			ciphertext: nil,
			wantErr:    true,
		},
		{
			name:       "too short data",
			ciphertext: []byte{0x01, 0x02},
			wantErr:    true,
		},
		{
			name:       "corrupted data",
			ciphertext: bytes.Repeat([]byte("x"), 100),
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decrypt(tt.ciphertext)
			if (err != nil) != tt.wantErr {
				t.Errorf("Decrypt() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecryptWithWrongKey(t *testing.T) {
	key1 := make([]byte, 32)
	copy(key1, []byte("key-one-32-bytes-long-!!!!!!!!!!"))

	require(t, SetMeshEncryptionKey(key1))
	plaintext := []byte("mesh root key bytes")
	ciphertext, err := Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	key2 := make([]byte, 32)
	copy(key2, []byte("key-two-32-bytes-long-!!!!!!!!!!"))
	require(t, SetMeshEncryptionKey(key2))

	if _, err := Decrypt(ciphertext); err == nil {
		t.Error("Decrypt() should fail with wrong key")
	}
}

func TestEncryptDecryptWithoutKeySet(t *testing.T) {
	meshEncryptionKey = nil

	if _, err := Encrypt([]byte("data")); err == nil {
		t.Error("Encrypt() should fail when no mesh encryption key is set")
	}
	if _, err := Decrypt([]byte("01234567890123456789012345678901")); err == nil {
		t.Error("Decrypt() should fail when no mesh encryption key is set")
	}
}

func TestSetMeshEncryptionKeyValidatesLength(t *testing.T) {
	tests := []struct {
		name    string
		key     []byte
		wantErr bool
	}{
		{name: "valid 32-byte key", key: make([]byte, 32), wantErr: false},
		{name: "short key", key: make([]byte, 16), wantErr: true},
		{name: "long key", key: make([]byte, 64), wantErr: true},
		{name: "empty key", key: []byte{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SetMeshEncryptionKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("SetMeshEncryptionKey() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDeriveKeyFromMeshID(t *testing.T) {
	tests := []struct {
		name   string
		meshID string
	}{
		{
			name:   "simple ID",
			meshID: "mesh-123",
		},
		{
			name:   "UUID",
			meshID: "550e8400-e29b-41d4-a716-446655440000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := DeriveKeyFromMeshID(tt.meshID)

			if len(key) != 32 {
				t.Errorf("DeriveKeyFromMeshID() returned key of length %d, want 32", len(key))
			}

			key2 := DeriveKeyFromMeshID(tt.meshID)
			if !bytes.Equal(key, key2) {
				t.Error("DeriveKeyFromMeshID() should be deterministic")
			}

			differentKey := DeriveKeyFromMeshID(tt.meshID + "-different")
			if bytes.Equal(key, differentKey) {
				t.Error("Different mesh IDs should produce different keys")
			}
		})
	}
}

func require(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
