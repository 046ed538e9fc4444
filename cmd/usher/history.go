package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/usher/internal/cli"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded outcomes, newest first",
	Long:  `Reads the journal and prints the recent outcomes as a table, or as JSON with --json.`,
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		jsonOut, _ := cmd.Flags().GetBool("json")

		if err := cli.RunHistory(optionsFromFlags(cmd), limit, jsonOut); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntP("limit", "n", 20, "Maximum outcomes to show (0 for all)")
	historyCmd.Flags().Bool("json", false, "Print the outcomes as JSON")
}
