package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/usher/internal/cli"
)

// openCmd represents the open command
var openCmd = &cobra.Command{
	Use:   "open [resource]",
	Short: "Open a resource and report the outcome",
	Long: `Runs one full open cycle for the resource: capability check, handler
attempt, classified outcome. A failed or unsupported open is printed as an
outcome and exits non-zero; only refused attempts (busy, invalid input)
surface as errors.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("Error: a resource to open is required.")
			os.Exit(1)
		}
		resource := args[0]
		jsonOut, _ := cmd.Flags().GetBool("json")

		out, err := cli.RunOpen(optionsFromFlags(cmd), resource, jsonOut)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if !out.Succeeded() {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(openCmd)

	openCmd.Flags().Bool("json", false, "Print the outcome as JSON")

	// Make 'open' the default if no command is provided
	rootCmd.Run = openCmd.Run
}
