// Command deobfuscate is the CLI driver for the pattern-based x86-64
// deobfuscation core (spec.md §6 "CLI (non-core; documented for
// completeness)", expanded to a full implementation in SPEC_FULL.md §6.4).
// It owns the parts the core treats as opaque collaborators: PE section
// extraction, the pattern-database file, and pass control.
package main

import "github.com/keurnel/deobfuscator/cmd/deobfuscate/cmd"

func main() {
	cmd.Execute()
}
