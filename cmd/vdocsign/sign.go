package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dharsanguruparan/vdocsign/internal/layout"
	"github.com/dharsanguruparan/vdocsign/internal/session"
)

// loadSession measures the page and loads the document, in that order so
// the first render happens during Load.
func (a *app) loadSession(ctx context.Context, c *session.Controller, width float64) (session.View, error) {
	if err := c.Resize(ctx, width); err != nil {
		return session.View{}, err
	}
	if err := c.Load(ctx); err != nil {
		return session.View{}, err
	}
	v := c.View()
	a.warnRender(v)
	return v, nil
}

func (a *app) printFields(v session.View) error {
	if len(v.Fields) == 0 {
		fmt.Fprintln(a.out, "No signature fields yet.")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPAGE\tX%\tY%\tLEFT PX\tTOP PX\tSTATUS\tSIGNED BY")
	for _, f := range v.Fields {
		px, err := layout.Denormalize(f.Position, v.Width)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%d\t%.3f\t%.3f\t%.1f\t%.1f\t%s\t%s\n",
			f.ID, f.Page, f.Anchor.LeftPercent, f.Anchor.TopPercent, px.X, px.Y, f.Status, f.SignedBy)
	}
	return tw.Flush()
}

func newFieldsCmd(a *app) *cobra.Command {
	var width float64
	cmd := &cobra.Command{
		Use:   "fields <document-id>",
		Short: "Show the signature fields of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.loadSession(cmd.Context(), a.ownerSession(args[0]), width)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s (%d pages)\n", v.Document.OriginalName, v.PageCount)
			return a.printFields(v)
		},
	}
	cmd.Flags().Float64Var(&width, "width", layout.ReferenceWidth, "Rendered page width in pixels")
	return cmd
}

func newSignCmd(a *app) *cobra.Command {
	var (
		cf captureFlags
		pf placeFlags
	)
	cmd := &cobra.Command{
		Use:   "sign <document-id>",
		Short: "Place a signature field on your document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			kind, value, err := cf.value()
			if err != nil {
				return err
			}
			c := a.ownerSession(args[0])
			if _, err := a.loadSession(ctx, c, pf.width); err != nil {
				return err
			}
			if err := c.OpenCapture(kind); err != nil {
				return err
			}
			if err := c.SaveCapture(kind, value); err != nil {
				return err
			}
			if err := c.Arm(kind); err != nil {
				return err
			}
			field, err := c.Click(ctx, pf.page, pf.point())
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, c.View().Notice)
			fmt.Fprintf(a.out, "Field %s on page %d at (%.3f%%, %.3f%%)\n", field.ID, field.Page, field.Position.X, field.Position.Y)
			return nil
		},
	}
	cf.register(cmd)
	pf.register(cmd)
	return cmd
}

func newFinalizeCmd(a *app) *cobra.Command {
	var archive bool
	cmd := &cobra.Command{
		Use:   "finalize <document-id>",
		Short: "Produce the signed document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c := a.ownerSession(args[0])
			if err := c.Load(ctx); err != nil {
				return err
			}
			res, err := c.Finalize(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, c.View().Notice)
			fmt.Fprintf(a.out, "Signed document %s (%s)\n", res.Signed.ID, res.Signed.OriginalName)
			if archive {
				id, err := a.enqueueArchive(ctx, res.Signed)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Archive %s queued.\n", id)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&archive, "archive", false, "Mirror the signed copy to object storage")
	return cmd
}
