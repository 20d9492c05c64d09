package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/trustlens-backend/internal/platform/apiclient"
	"github.com/yungbote/trustlens-backend/internal/platform/auth"
	"github.com/yungbote/trustlens-backend/internal/platform/envutil"
)

type tokenBody struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (b tokenBody) token() *auth.Token {
	if b.AccessToken == "" {
		return nil
	}
	tok, err := auth.ParseUnverified(b.AccessToken)
	if err != nil {
		tok = &auth.Token{Raw: b.AccessToken}
	}
	if !b.ExpiresAt.IsZero() {
		tok.ExpiresAt = b.ExpiresAt
	}
	return tok
}

type meBody struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Verified bool   `json:"verified"`
}

func newLoginCmd(o *options) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = envutil.String("TRUSTLENS_PASSWORD", "")
			}
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimSpace(line)
			}
			tok, err := o.login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (expires %s)\n", email, tok.ExpiresAt.Local().Format(time.RFC1123))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", envutil.String("TRUSTLENS_EMAIL", ""), "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (or TRUSTLENS_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (o *options) login(ctx context.Context, email, password string) (*auth.Token, error) {
	var body tokenBody
	req := map[string]string{"email": strings.TrimSpace(email), "password": password}
	if err := o.api.Decode(ctx, http.MethodPost, "/api/login", req, &body, apiclient.WithoutAuth()); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	tok := body.token()
	if tok == nil {
		return nil, fmt.Errorf("login: empty token in response")
	}
	if err := o.session.SignIn(tok); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return tok, nil
}

func newLogoutCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session and forget it locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := o.api.Call(cmd.Context(), http.MethodPost, "/api/logout", nil); err != nil {
				o.log.Debug("server logout failed", "error", err)
			}
			if err := o.session.SignOut(); err != nil {
				return fmt.Errorf("clear session: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(o *options) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.requireSession(cmd.Context(), refresh); err != nil {
				return err
			}
			var me meBody
			if err := o.api.Decode(cmd.Context(), http.MethodGet, "/api/me", nil, &me); err != nil {
				return fmt.Errorf("whoami: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), me)
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "refresh the access token first")
	return cmd
}

var errNotSignedIn = errors.New("not signed in, run `trustctl login` first")

func (o *options) requireSession(ctx context.Context, forceRefresh bool) error {
	tok, err := o.session.Token(ctx, forceRefresh)
	if err != nil {
		return err
	}
	if tok == nil {
		return errNotSignedIn
	}
	return nil
}
