package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reelvm/reel/pkg/adapters/yamlfile"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every graph in the project for authoring defects",
	Long:  `Parses all graph YAML files and reports malformed parameters, unknown step kinds and broken node references.`,
	Run: func(cmd *cobra.Command, args []string) {
		dir, _ := cmd.Flags().GetString("dir")
		if len(args) > 0 {
			dir = args[0]
		}

		library, err := yamlfile.LoadDir(dir)
		if err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}

		ids, err := library.ListGraphs()
		if err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%d graph(s) valid! ✅\n", len(ids))
		for _, id := range ids {
			fmt.Printf("  - %s\n", id)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
