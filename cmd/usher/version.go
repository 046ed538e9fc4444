package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/usher"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of usher",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("usher version %s\n", strings.TrimSpace(usher.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
