package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"forge-hq/t3dport/pkg/cli"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "t3dport",
	Short: "t3dport - import legacy T3D exports into an asset store",
	Long: `t3dport reads T3D text exports of levels, meshes, materials and material
instances and reconstructs them in an asset store.

Imports run in one of four modes:
  - scene: one level document with its actors and the materials they use
  - mesh: every mesh document under the source folder
  - material: every material document under the source folder
  - material-instance: every material instance document and its parents

References that cannot be resolved are reported at the end of each run.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the code matching the
// returned error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults and T3DPORT_* variables apply when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
