package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "deobfuscate",
	Short: "Pattern-based x86-64 binary deobfuscator",
	Long: `deobfuscate scans a PE binary's code sections for obfuscation idioms
described by a pattern database and rewrites each match in place with a
shorter, semantically-equivalent instruction sequence, NOP-padding the
freed bytes so every surrounding address stays stable.`,
}

// Execute runs the root command. Exit code 1 on any user or I/O error
// (missing file, bad database, PE parse failure); 0 on success, matching
// the teacher's cmd/cli/cmd/root.go Execute idiom.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(&cobra.Group{
		ID:    "file-operations",
		Title: "File operations",
	})
	rootCmd.AddCommand(scanCmd)
}
