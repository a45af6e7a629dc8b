package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newSendCmd(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "send",
		Short: "Run one dispatch tick now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			result, err := a.newsletters.Run(cmd.Context(), a.now())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
}

func newPreviewCmd(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <id>",
		Short: "Print the resolved HTML of a queue item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			html, err := current().newsletters.Preview(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), html)
			return err
		},
	}
}

func newDueCmd(current func() *app) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "due",
		Short: "List the items the next tick would consider, in send order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			now := a.now()
			if at != "" {
				parsed, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
				now = parsed
			}

			due, err := a.newsletters.Due(cmd.Context(), now)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(due) == 0 {
				_, err := fmt.Fprintln(w, "No newsletters due")
				return err
			}
			for _, item := range due {
				if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", item.ID, item.ScheduledFor.UTC().Format(time.RFC3339), item.Newsletter.Title); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "Evaluate as of this RFC3339 time instead of now")
	return cmd
}

func newUnsubscribeLinkCmd(current func() *app) *cobra.Command {
	var base string
	cmd := &cobra.Command{
		Use:   "unsubscribe-link <email>",
		Short: "Mint a signed unsubscribe link for a subscriber",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			link, err := current().links.Link(base, args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), link)
			return err
		},
	}
	cmd.Flags().StringVar(&base, "base", "https://brandthnk.co/functions/unsubscribe", "Unsubscribe endpoint the link points at")
	return cmd
}
