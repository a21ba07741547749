package main

import (
	"fmt"

	"db_migrator/internal/scaffold"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a config skeleton and plugin directories",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		created, err := scaffold.Init(root)
		if err != nil {
			return err
		}
		for _, path := range created {
			fmt.Fprintln(cmd.OutOrStdout(), "created", path)
		}
		if len(created) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "nothing to do")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
