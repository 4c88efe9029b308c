package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aemqa/packetcheck/internal/config"
	"github.com/aemqa/packetcheck/internal/home"
	"github.com/aemqa/packetcheck/version"
)

var (
	cfgFile string
	homeDir string
)

var rootCmd = &cobra.Command{
	Use:   "packetcheck",
	Short: "QA packet validation for PDF shipping documents",
	Long: `Packetcheck validates quality-assurance packets: multi-page PDFs that
accompany component shipments.

Each packet is checked for:
  - Required fields, located by their printed labels on any page
  - Numeric tolerances (resistance, dimension)
  - Cross-page consistency of part number, lot number, and date

Pages that carry no extractable text fall back to OCR. Results land in
CSV and XLSX reports plus a JSON result per job.`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.packetcheck/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "packetcheck home directory (default: ~/.packetcheck)",
	)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
}

// getHome resolves the home directory from the --home flag.
func getHome() (*home.Dir, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, err
	}
	if err := h.EnsureExists(); err != nil {
		return nil, err
	}
	return h, nil
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Write a default config file to the packetcheck home directory.

Existing config files are left alone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := getHome()
		if err != nil {
			return err
		}
		if h.ConfigExists() {
			fmt.Printf("Config already exists at %s\n", h.ConfigPath())
			return nil
		}
		if err := config.WriteDefault(h.ConfigPath()); err != nil {
			return err
		}
		fmt.Printf("Wrote default config to %s\n", h.ConfigPath())
		return nil
	},
}
