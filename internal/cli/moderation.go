package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dtroode/inkdesk/internal/model"
)

const listFormat = "%-24s  %-10s  %-20s  %s\n"

func newCommentsCmd(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Moderate reader comments",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List comments",
			RunE: func(cmd *cobra.Command, args []string) error {
				comments := app().Comments
				if err := comments.Load(cmd.Context()); err != nil {
					return err
				}
				printComments(cmd.OutOrStdout(), comments.List().Items())
				return nil
			},
		},
		&cobra.Command{
			Use:   "toggle <id>",
			Short: "Approve a blocked comment or block an approved one",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				comments := app().Comments
				if err := comments.Load(cmd.Context()); err != nil {
					return err
				}
				return comments.Toggle(cmd.Context(), args[0])
			},
		},
	)
	return cmd
}

func newRequestsCmd(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requests",
		Short: "Review pending author requests",
	}

	decide := func(use, short string, approve bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				requests := app().Requests
				if err := requests.Load(cmd.Context()); err != nil {
					return err
				}
				if approve {
					return requests.Approve(cmd.Context(), args[0])
				}
				return requests.Reject(cmd.Context(), args[0])
			},
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List pending author requests",
			RunE: func(cmd *cobra.Command, args []string) error {
				requests := app().Requests
				if err := requests.Load(cmd.Context()); err != nil {
					return err
				}
				printRequests(cmd.OutOrStdout(), requests.List().Items())
				return nil
			},
		},
		decide("approve", "Approve an author request", true),
		decide("reject", "Reject an author request", false),
		newDocumentCmd(app),
	)
	return cmd
}

func newDocumentCmd(app func() *App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "document <id>",
		Short: "Print a download link for the document attached to a request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if err := a.Requests.Load(cmd.Context()); err != nil {
				return err
			}

			link, err := a.Requests.DocumentURL(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output == "" {
				fmt.Fprintln(cmd.OutOrStdout(), link)
				return nil
			}

			r, _ := a.Requests.List().Get(args[0])
			return download(cmd, a, r.DocumentKey, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "save the document to this file instead of printing a link")
	return cmd
}

func download(cmd *cobra.Command, a *App, key, path string) error {
	rc, err := a.Documents.Download(cmd.Context(), key)
	if err != nil {
		return err
	}
	defer rc.Close()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	n, err := io.Copy(f, rc)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write document: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved %d bytes to %s\n", n, path)
	return nil
}

func printComments(w io.Writer, comments []model.Comment) {
	if len(comments) == 0 {
		fmt.Fprintln(w, "No comments found.")
		return
	}

	fmt.Fprintf(w, listFormat, "ID", "STATUS", "AUTHOR", "CONTENT")
	for _, c := range comments {
		status := "blocked"
		if c.Approved {
			status = "approved"
		}
		fmt.Fprintf(w, listFormat, c.ID, status, c.Author, truncate(c.Content, 60))
	}
}

func printRequests(w io.Writer, requests []model.AuthorRequest) {
	if len(requests) == 0 {
		fmt.Fprintln(w, "No pending requests.")
		return
	}

	fmt.Fprintf(w, listFormat, "ID", "DOCUMENT", "APPLICANT", "MOTIVATION")
	for _, r := range requests {
		document := "-"
		if r.DocumentKey != "" {
			document = "attached"
		}
		fmt.Fprintf(w, listFormat, r.ID, document, r.Name+" <"+r.Email+">", truncate(r.Motivation, 60))
	}
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
