package main

import (
	"fmt"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/tsawler/docqc/rules"
)

func newRulesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the available rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all := rules.All()
			width := runewidth.StringWidth("RULE")
			for _, r := range all {
				width = max(width, runewidth.StringWidth(r.ID()))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %s\n", runewidth.FillRight("RULE", width), "CATEGORY")
			for _, r := range all {
				fmt.Fprintf(out, "%s  %s\n", runewidth.FillRight(r.ID(), width), r.Category())
			}
			return nil
		},
	}
}
