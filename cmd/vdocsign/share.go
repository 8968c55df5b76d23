package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dharsanguruparan/vdocsign/internal/layout"
	"github.com/dharsanguruparan/vdocsign/internal/session"
)

func newShareCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Act on a document shared with you",
	}
	cmd.AddCommand(newShareOpenCmd(a), newShareSignCmd(a), newShareDeclineCmd(a))
	return cmd
}

func newShareOpenCmd(a *app) *cobra.Command {
	var width float64
	cmd := &cobra.Command{
		Use:   "open <token>",
		Short: "Show a shared document and its fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.loadSession(cmd.Context(), a.shareSession(args[0]), width)
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

func newShareSignCmd(a *app) *cobra.Command {
	var (
		signer string
		cf     captureFlags
		pf     placeFlags
	)
	cmd := &cobra.Command{
		Use:   "sign <token>",
		Short: "Sign the next pending field on a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			kind, value, err := cf.value()
			if err != nil {
				return err
			}
			c := a.shareSession(args[0])
			c.SetSigner(signer)
			if _, err := a.loadSession(ctx, c, pf.width); err != nil {
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
			fmt.Fprintf(a.out, "Field %s signed by %s\n", field.ID, field.SignedBy)
			return nil
		},
	}
	cmd.Flags().StringVar(&signer, "name", "", "Your name or email")
	cf.register(cmd)
	pf.register(cmd)
	return cmd
}

func newShareDeclineCmd(a *app) *cobra.Command {
	var signer string
	cmd := &cobra.Command{
		Use:   "decline <token>",
		Short: "Decline to sign a shared document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c := a.shareSession(args[0])
			c.SetSigner(signer)
			if err := c.Load(ctx); err != nil {
				return err
			}
			res, err := c.Decline(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, c.View().Notice)
			if res.Outcome == session.DeclineApplied {
				fmt.Fprintf(a.out, "Field %s declined.\n", res.Field.ID)
			}
			fmt.Fprintf(a.out, "Continue at %s\n", res.Navigate)
			return nil
		},
	}
	cmd.Flags().StringVar(&signer, "name", "", "Your name or email")
	return cmd
}
