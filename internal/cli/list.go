// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// newItemsCmd creates the 'items' command, the numbered movie menu.
func newItemsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "items",
		Aliases: []string{"movies"},
		Short:   "List the catalog in first-appearance order",
		Long: `Print every item of the ratings file, numbered from 1 in the order it
first appears. The numbers can be passed to 'recommend --numbered'.`,
		Example: `  reelrank items --data ratings.csv`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := opts.loadCorpus(cmd.Context(), opts.logger(cmd))
			if err != nil {
				return err
			}
			printNumbered(cmd.OutOrStdout(), "List of movies:", store.Items())
			return nil
		},
	}
}

// newUsersCmd creates the 'users' command.
func newUsersCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "users",
		Short:   "List the users of the ratings file",
		Example: `  reelrank users --data ratings.csv`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := opts.loadCorpus(cmd.Context(), opts.logger(cmd))
			if err != nil {
				return err
			}
			printNumbered(cmd.OutOrStdout(), "List of users:", store.Users())
			return nil
		},
	}
}

func printNumbered(w io.Writer, title string, values []string) {
	fmt.Fprintln(w, title)
	for i, v := range values {
		fmt.Fprintf(w, "%d. %s\n", i+1, v)
	}
}
