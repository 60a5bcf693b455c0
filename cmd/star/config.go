package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// starFile is the on-disk shape of --config: every run flag, all
// optional, letting a deployment check in one file per star instead of
// a long command line. Adapted from cmd/warren apply's
// read-file/yaml.Unmarshal/apply pattern, but merged into flags rather
// than sent to a remote manager — a star has no manager to apply
// against, it configures itself.
type starFile struct {
	StarKey          string            `yaml:"starKey"`
	Kind             string            `yaml:"kind"`
	FabricAddr       string            `yaml:"fabricAddr"`
	DataDir          string            `yaml:"dataDir"`
	CertDir          string            `yaml:"certDir"`
	MeshID           string            `yaml:"meshId"`
	Bootstrap        bool              `yaml:"bootstrap"`
	Central          bool              `yaml:"central"`
	RegistryBindAddr string            `yaml:"registryBindAddr"`
	RegistryPeers    map[string]string `yaml:"registryPeers"`
	Neighbors        map[string]string `yaml:"neighbors"`
	MetricsAddr      string            `yaml:"metricsAddr"`
	EnablePprof      bool              `yaml:"enablePprof"`
	AdmissionRPS     float64           `yaml:"admissionRps"`
	AdmissionBurst   int               `yaml:"admissionBurst"`
}

// loadStarFile reads and parses a --config YAML file.
func loadStarFile(path string) (*starFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var f starFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &f, nil
}

// applyStarFile fills any flag the caller didn't set explicitly from
// f, so a flag on the command line always wins over the config file.
func applyStarFile(cmd *cobra.Command, f *starFile) {
	setIfUnset := func(name, value string) {
		if value != "" && !cmd.Flags().Changed(name) {
			_ = cmd.Flags().Set(name, value)
		}
	}
	setIfUnset("star-key", f.StarKey)
	setIfUnset("kind", f.Kind)
	setIfUnset("fabric-addr", f.FabricAddr)
	setIfUnset("data-dir", f.DataDir)
	setIfUnset("cert-dir", f.CertDir)
	setIfUnset("mesh-id", f.MeshID)
	setIfUnset("registry-bind-addr", f.RegistryBindAddr)
	setIfUnset("metrics-addr", f.MetricsAddr)

	if f.Bootstrap && !cmd.Flags().Changed("bootstrap") {
		_ = cmd.Flags().Set("bootstrap", "true")
	}
	if f.Central && !cmd.Flags().Changed("central") {
		_ = cmd.Flags().Set("central", "true")
	}
	if f.EnablePprof && !cmd.Flags().Changed("enable-pprof") {
		_ = cmd.Flags().Set("enable-pprof", "true")
	}
	if f.AdmissionRPS != 0 && !cmd.Flags().Changed("admission-rps") {
		_ = cmd.Flags().Set("admission-rps", fmt.Sprintf("%g", f.AdmissionRPS))
	}
	if f.AdmissionBurst != 0 && !cmd.Flags().Changed("admission-burst") {
		_ = cmd.Flags().Set("admission-burst", fmt.Sprintf("%d", f.AdmissionBurst))
	}
	if len(f.RegistryPeers) > 0 && !cmd.Flags().Changed("registry-peers") {
		for k, v := range f.RegistryPeers {
			_ = cmd.Flags().Set("registry-peers", k+"="+v)
		}
	}
	if len(f.Neighbors) > 0 && !cmd.Flags().Changed("neighbor") {
		for k, v := range f.Neighbors {
			_ = cmd.Flags().Set("neighbor", k+"="+v)
		}
	}
}
