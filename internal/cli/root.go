// Package cli implements trustctl, a terminal client for the TrustLens API.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/trustlens-backend/internal/platform/apiclient"
	"github.com/yungbote/trustlens-backend/internal/platform/auth"
	"github.com/yungbote/trustlens-backend/internal/platform/envutil"
	"github.com/yungbote/trustlens-backend/internal/platform/httpx"
	"github.com/yungbote/trustlens-backend/internal/platform/logger"
)

const refreshEndpoint = "/api/refresh"

type options struct {
	apiURL      string
	sessionPath string
	verbose     bool
	timeout     time.Duration

	log     *logger.Logger
	session *auth.Session
	api     *apiclient.Client
}

// NewRootCmd builds the trustctl command tree.
func NewRootCmd(version string) *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:   "trustctl",
		Short: "TrustLens review analysis client",
		Long: `trustctl signs in to a TrustLens backend and analyzes reviews from the terminal.

Example usage:
  trustctl login --email ann@example.com
  trustctl analyze --product "AstroBook Pro" --platform amazon --text "..."
  trustctl history --limit 5
  trustctl logout`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.init()
		},
	}

	root.PersistentFlags().StringVar(&o.apiURL, "api-url", envutil.String("TRUSTLENS_API_URL", "http://localhost:8080"), "TrustLens backend base URL")
	root.PersistentFlags().StringVar(&o.sessionPath, "session-file", envutil.String("TRUSTLENS_SESSION_FILE", auth.DefaultSessionPath()), "where the signed-in session is kept")
	root.PersistentFlags().DurationVar(&o.timeout, "timeout", envutil.Duration("TRUSTLENS_TIMEOUT", 60*time.Second), "per-request timeout")
	root.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		newLoginCmd(o),
		newLogoutCmd(o),
		newWhoamiCmd(o),
		newAnalyzeCmd(o),
		newHistoryCmd(o),
		newFeedbackCmd(o),
	)
	return root
}

func (o *options) init() error {
	mode := "production"
	if o.verbose {
		mode = "development"
	}
	log, err := logger.New(mode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	o.log = log
	o.session = auth.NewSession(auth.NewFileStore(o.sessionPath), nil, log)
	o.api = apiclient.New(o.apiURL, httpx.NewClient(o.timeout), o.session, log)
	o.session.SetRefresher(auth.RefresherFunc(o.refresh))
	return nil
}

// refresh trades the current token for a new one at the backend.
func (o *options) refresh(ctx context.Context, current *auth.Token) (*auth.Token, error) {
	var body tokenBody
	err := o.api.Decode(ctx, http.MethodPost, refreshEndpoint, nil, &body, apiclient.WithTokenSource(auth.StaticToken(current.Raw)))
	if err != nil {
		var re *apiclient.RequestError
		if errors.As(err, &re) && re.Status == http.StatusUnauthorized {
			return nil, auth.ErrSessionRevoked
		}
		return nil, err
	}
	return body.token(), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
