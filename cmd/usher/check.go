package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/usher"
	"github.com/aretw0/usher/internal/cli"
)

var checkCmd = &cobra.Command{
	Use:   "check [resource]",
	Short: "Check whether a resource is supported",
	Long: `Classifies the capability verdict for a resource without opening it.
Exits non-zero when no handler supports the scheme.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("Error: a resource to check is required.")
			os.Exit(1)
		}
		resource := args[0]
		jsonOut, _ := cmd.Flags().GetBool("json")

		support, err := cli.RunCheck(optionsFromFlags(cmd), resource, jsonOut)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if support != usher.Supported {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().Bool("json", false, "Print the verdict as JSON")
}
