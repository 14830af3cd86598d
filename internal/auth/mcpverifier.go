package auth

import (
	"context"
	"fmt"
	"net/http"

	sdkauth "github.com/modelcontextprotocol/go-sdk/auth"
)

// NewMCPTokenVerifier bridges our OIDC Verifier into the MCP SDK's
// TokenVerifier function type. The full Principal rides along in
// TokenInfo.Extra so tool handlers can recover it from the SDK context.
func NewMCPTokenVerifier(v *Verifier) sdkauth.TokenVerifier {
	return func(ctx context.Context, token string, _ *http.Request) (*sdkauth.TokenInfo, error) {
		principal, expiry, err := v.VerifyToken(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", sdkauth.ErrInvalidToken, err)
		}
		return &sdkauth.TokenInfo{
			UserID:     principal.Sub,
			Scopes:     principal.ScopeList(),
			Expiration: expiry,
			Extra:      map[string]any{"principal": principal},
		}, nil
	}
}
