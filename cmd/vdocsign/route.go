package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dharsanguruparan/vdocsign/internal/credstore"
	"github.com/dharsanguruparan/vdocsign/internal/route"
)

func newRouteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "route <path>",
		Short: "Show which page a client path resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loggedIn := credstore.HasToken(a.creds)
			r := route.Resolve(args[0], loggedIn)
			fmt.Fprintf(a.out, "page:  %s\n", r.Page)
			fmt.Fprintf(a.out, "title: %s\n", route.Title(r.Page))
			keys := make([]string, 0, len(r.Params))
			for k := range r.Params {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(a.out, "%s: %s\n", k, r.Params[k])
			}
			if r.Page == route.PageNotFound {
				fmt.Fprintf(a.out, "go to: %s\n", route.Fallback(loggedIn))
			}
			return nil
		},
	}
}
