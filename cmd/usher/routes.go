package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/usher/internal/cli"
)

// routesCmd represents the routes command
var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Export the scheme routing visualization",
	Long: `Inspects the configured handlers and outputs a Mermaid diagram (graph LR)
of scheme routing, with the latest outcome per scheme overlaid.`,
	Run: func(cmd *cobra.Command, args []string) {
		jsonOut, _ := cmd.Flags().GetBool("json")

		if err := cli.RunRoutes(optionsFromFlags(cmd), jsonOut); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(routesCmd)

	routesCmd.Flags().Bool("json", false, "Print the routing table as JSON")
}
