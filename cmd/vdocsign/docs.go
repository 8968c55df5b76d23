package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dharsanguruparan/vdocsign/internal/apperr"
	"github.com/dharsanguruparan/vdocsign/internal/model"
	"github.com/dharsanguruparan/vdocsign/internal/processing"
)

func newDocsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "List, upload and share documents",
	}
	cmd.AddCommand(newDocsListCmd(a), newDocsUploadCmd(a), newDocsShareCmd(a))
	return cmd
}

func newDocsListCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := a.client.ListDocuments(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return a.printJSON(docs)
			}
			if len(docs) == 0 {
				fmt.Fprintln(a.out, "No documents uploaded yet.")
				return nil
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSIZE\tUPLOADED")
			for _, d := range docs {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", d.ID, d.OriginalName, d.Size, d.CreatedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newDocsUploadCmd(a *app) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "upload <file.pdf>...",
		Short: "Upload one or more PDF files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			upload := func(ctx context.Context, path string) (*model.Document, error) {
				f, err := os.Open(path)
				if err != nil {
					return nil, err
				}
				defer f.Close()
				return a.client.Upload(ctx, filepath.Base(path), f)
			}
			results := processing.New(upload, workers, a.logger).Run(cmd.Context(), args)
			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					fmt.Fprintf(a.errOut, "%s: %s\n", r.Path, apperr.Message(r.Err))
					continue
				}
				fmt.Fprintf(a.out, "Uploaded %s as %s\n", r.Path, r.Document.ID)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d uploads failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 3, "Concurrent uploads")
	return cmd
}

func newDocsShareCmd(a *app) *cobra.Command {
	var expires time.Duration
	cmd := &cobra.Command{
		Use:   "share <document-id> <signer-email>",
		Short: "Create a share link for a signer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if expires < 0 {
				return errors.New("--expires must not be negative")
			}
			var expiresAt *time.Time
			if expires > 0 {
				at := time.Now().Add(expires).UTC()
				expiresAt = &at
			}
			grant, err := a.client.CreateShare(cmd.Context(), args[0], args[1], expiresAt)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Share link sent to %s.\n", grant.SignerEmail)
			fmt.Fprintf(a.out, "Token: %s\n", grant.Token)
			if grant.ShareLink != "" {
				fmt.Fprintf(a.out, "Link:  %s\n", grant.ShareLink)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&expires, "expires", 0, "Expire the link after this long (0 never expires)")
	return cmd
}
