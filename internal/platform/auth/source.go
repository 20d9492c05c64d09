package auth

import (
	"context"

	"github.com/yungbote/trustlens-backend/internal/platform/ctxutil"
)

type requestTokenSource struct{}

// RequestTokenSource forwards the inbound bearer token that the auth middleware stored on ctx.
// forceRefresh has no effect: the server never mints tokens on a caller's behalf here.
func RequestTokenSource() TokenSource { return requestTokenSource{} }

func (requestTokenSource) Token(ctx context.Context, forceRefresh bool) (*Token, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.TokenString == "" {
		return nil, nil
	}
	return &Token{
		Raw: rd.TokenString,
		Claims: Claims{
			TokenID: rd.TokenID,
			UserID:  rd.UserID.String(),
			Email:   rd.Email,
			Name:    rd.Name,
			Role:    rd.Role,
		},
	}, nil
}
