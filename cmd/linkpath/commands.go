package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vanshika/linktrace/backend/internal/service"
)

func newConnectCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connect <start> <end>",
		Short: "Print the shortest link path between two pages",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strict, _ := cmd.Flags().GetBool("strict"); strict {
				c.v.Set("search.strict", true)
			}
			a, err := c.build(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			maxDepth, _ := cmd.Flags().GetInt("max-depth")
			timeout, _ := cmd.Flags().GetDuration("timeout")
			conn, err := a.Service.Connect(cmd.Context(), service.ConnectParams{
				Start:    args[0],
				End:      args[1],
				MaxDepth: maxDepth,
				Timeout:  timeout,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(out, conn)
			}
			if !conn.Success {
				_, _ = fmt.Fprintln(out, conn.Message)
				return nil
			}
			_, _ = fmt.Fprintln(out, strings.Join(conn.Path, " -> "))
			_, _ = fmt.Fprintf(out, "%d hops\n", conn.Length)
			return nil
		},
	}

	cmd.Flags().Int("max-depth", 0, "maximum BFS depth per side (0 uses the configured default)")
	cmd.Flags().Duration("timeout", 0, "search time budget (0 uses the configured default)")
	cmd.Flags().Bool("strict", false, "follow backlinks from the end page")
	cmd.Flags().Bool("json", false, "print the full result as JSON")
	return cmd
}

func newInfoCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <title>",
		Short: "Show the extract and entities of a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.build(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			info := a.Service.EntityInfo(cmd.Context(), args[0])
			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(out, info)
			}
			_, _ = fmt.Fprintln(out, info.Title)
			if info.Extract != "" {
				_, _ = fmt.Fprintln(out, info.Extract)
			}
			_, _ = fmt.Fprintf(out, "%d links\n", len(info.Links))
			for _, e := range info.Entities {
				_, _ = fmt.Fprintf(out, "  %-8s %s\n", e.Type, e.Name)
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print the page as JSON")
	return cmd
}

func newSearchCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "List pages matching a fuzzy query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.build(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			results, err := a.Service.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(out, results)
			}
			if len(results) == 0 {
				_, _ = fmt.Fprintln(out, "no results")
				return nil
			}
			for _, r := range results {
				if r.Description != "" {
					_, _ = fmt.Fprintf(out, "%s: %s\n", r.Title, r.Description)
					continue
				}
				_, _ = fmt.Fprintln(out, r.Title)
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print the results as JSON")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
