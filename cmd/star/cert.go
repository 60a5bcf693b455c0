package main

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/starlane-io/starlane/pkg/security"
)

var certCmd = &cobra.Command{
	Use:   "cert",
	Short: "Inspect or rotate this star's mTLS certificate",
}

var certInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print this star's certificate details",
	RunE: func(cmd *cobra.Command, _ []string) error {
		certDir, _ := cmd.Flags().GetString("cert-dir")
		if !security.CertExists(certDir) {
			return fmt.Errorf("no certificate material in %s", certDir)
		}
		cert, err := security.LoadCertFromFile(certDir)
		if err != nil {
			return fmt.Errorf("failed to load certificate: %w", err)
		}

		info := security.GetCertInfo(cert.Leaf)
		for _, key := range []string{"subject", "issuer", "serial_number", "not_before", "not_after", "is_ca", "key_usage", "ext_key_usage"} {
			fmt.Printf("%-14s %v\n", key+":", info[key])
		}

		remaining := security.GetCertTimeRemaining(cert.Leaf)
		fmt.Printf("%-14s %s\n", "remaining:", remaining)
		if security.CertNeedsRotation(cert.Leaf) {
			fmt.Println("\n⚠ This certificate is within its rotation window; run 'star cert rotate'.")
		}
		return nil
	},
}

var certRotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Issue a fresh node certificate from the mesh CA, replacing the current one",
	Long: `rotate re-issues this star's node certificate from the locally persisted
mesh CA. It cannot be used on a star whose certificate material was copied
from another star's CA store, since rotate needs the CA's private key, not
just its public certificate.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		certDir, _ := cmd.Flags().GetString("cert-dir")
		starKey, _ := cmd.Flags().GetString("star-key")
		meshID, _ := cmd.Flags().GetString("mesh-id")

		if starKey == "" {
			return fmt.Errorf("--star-key is required")
		}
		if meshID == "" {
			return fmt.Errorf("--mesh-id is required")
		}

		if err := security.SetMeshEncryptionKey(security.DeriveKeyFromMeshID(meshID)); err != nil {
			return fmt.Errorf("failed to set mesh encryption key: %w", err)
		}

		store := newFileCAStore(dataDir)
		if !store.exists() {
			return fmt.Errorf("no CA material in %s; this star was not the one that bootstrapped the mesh", dataDir)
		}
		ca := security.NewCertAuthority(store)
		if err := ca.LoadFromStore(); err != nil {
			return fmt.Errorf("failed to load mesh CA: %w", err)
		}

		cert, err := ca.IssueNodeCertificate(starKey, "star", []string{"localhost"}, []net.IP{net.ParseIP("127.0.0.1")})
		if err != nil {
			return fmt.Errorf("failed to issue rotated certificate: %w", err)
		}
		if err := security.SaveCertToFile(cert, certDir); err != nil {
			return fmt.Errorf("failed to save rotated certificate: %w", err)
		}
		if err := security.SaveCACertToFile(ca.GetRootCACert(), certDir); err != nil {
			return fmt.Errorf("failed to save mesh CA certificate: %w", err)
		}

		fmt.Printf("✓ Certificate rotated in %s, valid until %s\n", certDir, cert.Leaf.NotAfter)
		return nil
	},
}

func init() {
	certCmd.PersistentFlags().String("cert-dir", "./star-data/certs", "Certificate directory")
	certCmd.PersistentFlags().String("data-dir", "./star-data", "Data directory holding the CA store (rotate only)")
	certCmd.PersistentFlags().String("star-key", "", "This star's unique key (rotate only)")
	certCmd.PersistentFlags().String("mesh-id", "", "Mesh identifier (rotate only)")

	certCmd.AddCommand(certInfoCmd)
	certCmd.AddCommand(certRotateCmd)
}
