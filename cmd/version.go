package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/selfassess/internal/catalog"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	Run: func(cmd *cobra.Command, args []string) {
		c := catalog.Default()
		fmt.Printf("selfassess %s (catalog %s %s)\n", version, c.Name(), c.Version())
	},
}
