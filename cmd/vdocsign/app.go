package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dharsanguruparan/vdocsign/internal/api"
	"github.com/dharsanguruparan/vdocsign/internal/config"
	"github.com/dharsanguruparan/vdocsign/internal/credstore"
	"github.com/dharsanguruparan/vdocsign/internal/logger"
	pdfutil "github.com/dharsanguruparan/vdocsign/internal/pdf"
	"github.com/dharsanguruparan/vdocsign/internal/session"
)

// app carries what every subcommand needs. It is filled in by the root
// command's PersistentPreRunE.
type app struct {
	credentialsPath string

	cfg    *config.Config
	logger *zap.Logger
	creds  credstore.Store
	client *api.Client
	out    io.Writer
	errOut io.Writer
}

func newRootCommand() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "vdocsign",
		Short: "V-Doc Sign command line client",
		Long: `vdocsign uploads PDFs, places signature fields, shares documents for signing
and finalizes signed copies against a V-Doc Sign API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	cmd.PersistentFlags().StringVar(&a.credentialsPath, "credentials", "", "Credentials file (defaults to VDOCSIGN_CREDENTIALS or the user config dir)")
	cmd.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newDocsCmd(a),
		newFieldsCmd(a),
		newSignCmd(a),
		newFinalizeCmd(a),
		newShareCmd(a),
		newRouteCmd(a),
		newAuditCmd(a),
		newArchiveCmd(a),
	)
	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Environment)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	path := a.credentialsPath
	if path == "" {
		path = cfg.CredentialsPath
	}
	if path == "" {
		if path, err = credstore.DefaultPath(); err != nil {
			return err
		}
	}

	a.cfg = cfg
	a.logger = log
	a.creds = credstore.NewFileStore(path)
	a.out = cmd.OutOrStdout()
	a.errOut = cmd.ErrOrStderr()
	a.client = api.New(cfg.APIBaseURL, a.creds,
		api.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		api.WithLogger(log),
		api.WithUnauthorizedHandler(func(redirect string) {
			fmt.Fprintf(a.errOut, "Session expired. Log in again (%s).\n", redirect)
		}),
	)
	return nil
}

func (a *app) renderer() *pdfutil.Renderer {
	return pdfutil.NewRenderer(a.client, a.logger)
}

func (a *app) ownerSession(documentID string) *session.Controller {
	return session.NewOwner(documentID, session.Options{
		Source:   a.client,
		Backend:  api.OwnerBackend{Client: a.client},
		Renderer: a.renderer(),
		FileURL:  a.cfg.FileURL,
		Logger:   a.logger,
	})
}

func (a *app) shareSession(token string) *session.Controller {
	return session.NewShare(token, session.Options{
		Source:   a.client,
		Backend:  api.ShareBackend{Client: a.client, Token: token},
		Renderer: a.renderer(),
		FileURL:  a.cfg.FileURL,
		Logger:   a.logger,
	})
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// warnRender reports a render failure without failing the command; the
// document metadata and fields are still usable.
func (a *app) warnRender(v session.View) {
	if v.RenderError != nil {
		fmt.Fprintf(a.errOut, "warning: %s\n", v.RenderError)
	}
}
