package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/zitadel/oidc/v3/pkg/client/rp"
	httphelper "github.com/zitadel/oidc/v3/pkg/http"
	"github.com/zitadel/oidc/v3/pkg/oidc"
	"go.uber.org/zap"

	"github.com/tablehost/restaurantapi/internal/config"
)

// GoogleFlow is the OAuth authorization code flow for one principal class. The
// operator and customer flows share a client registration but have separate
// callback URLs.
type GoogleFlow struct {
	class           PrincipalClass
	rp              rp.RelyingParty
	failureRedirect string
	logger          *zap.Logger
}

var _ IdentityProvider = (*GoogleFlow)(nil)

// NewGoogleFlow discovers the issuer and builds the relying party for class.
func NewGoogleFlow(ctx context.Context, cfg config.GoogleConfig, class PrincipalClass, callbackURL string, logger *zap.Logger) (*GoogleFlow, error) {
	if !class.Valid() {
		return nil, fmt.Errorf("unknown principal class %q", class)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	hashKey, err := cookieKey(cfg.CookieHashKey)
	if err != nil {
		return nil, fmt.Errorf("cookie hash key: %w", err)
	}
	cryptoKey, err := cookieKey(cfg.CookieEncryptKey)
	if err != nil {
		return nil, fmt.Errorf("cookie encrypt key: %w", err)
	}

	cookieOpts := []httphelper.CookieHandlerOpt{}
	if !isHTTPSURL(callbackURL) {
		cookieOpts = append(cookieOpts, httphelper.WithUnsecure())
	}
	cookieHandler := httphelper.NewCookieHandler(hashKey, cryptoKey, cookieOpts...)

	f := &GoogleFlow{
		class:           class,
		failureRedirect: cfg.FailureRedirect,
		logger:          logger.With(zap.String("flow", string(class))),
	}
	if f.failureRedirect == "" {
		f.failureRedirect = "/"
	}

	options := []rp.Option{
		rp.WithCookieHandler(cookieHandler),
		rp.WithPKCE(cookieHandler),
		rp.WithVerifierOpts(rp.WithIssuedAtMaxAge(10 * time.Second)),
		rp.WithErrorHandler(f.providerError),
		rp.WithUnauthorizedHandler(f.unauthorized),
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, oidc.ScopeProfile, oidc.ScopeEmail}
	}

	relyingParty, err := rp.NewRelyingPartyOIDC(ctx, cfg.Issuer, cfg.ClientID, cfg.ClientSecret, callbackURL, scopes, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC relying party: %w", err)
	}
	f.rp = relyingParty
	return f, nil
}

// Class implements IdentityProvider.
func (f *GoogleFlow) Class() PrincipalClass { return f.class }

// BeginLogin implements IdentityProvider. The state and PKCE verifier are kept
// in encrypted cookies by the relying party.
func (f *GoogleFlow) BeginLogin() http.Handler {
	return rp.AuthURLHandler(func() string {
		state, err := GenerateNonce()
		if err != nil {
			f.logger.Error("generate oauth state", zap.Error(err))
		}
		return state
	}, f.rp)
}

// CompleteLogin implements IdentityProvider.
func (f *GoogleFlow) CompleteLogin(onIdentity IdentityHandler) http.Handler {
	callback := func(w http.ResponseWriter, r *http.Request, tokens *oidc.Tokens[*oidc.IDTokenClaims], state string, _ rp.RelyingParty) {
		identity := IdentityFromClaims(tokens.IDTokenClaims)
		if identity.Email == "" {
			f.logger.Warn("identity provider returned no email")
			http.Redirect(w, r, f.failureRedirect, http.StatusFound)
			return
		}
		onIdentity(w, r, identity)
	}
	return rp.CodeExchangeHandler(callback, f.rp)
}

func (f *GoogleFlow) providerError(w http.ResponseWriter, r *http.Request, errorType, errorDesc, state string) {
	f.logger.Info("login rejected by identity provider",
		zap.String("error", errorType),
		zap.String("description", errorDesc),
	)
	http.Redirect(w, r, f.failureRedirect, http.StatusFound)
}

func (f *GoogleFlow) unauthorized(w http.ResponseWriter, r *http.Request, desc, state string) {
	f.logger.Info("login callback failed", zap.String("description", desc))
	http.Redirect(w, r, f.failureRedirect, http.StatusFound)
}

// cookieKey decodes a configured key or generates a random one for this process.
// Configured keys are base64 (std or url) and must decode to 32 bytes.
func cookieKey(configured string) ([]byte, error) {
	if configured == "" {
		return generateRandomBytes(32)
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.URLEncoding, base64.RawStdEncoding, base64.RawURLEncoding} {
		if b, err := enc.DecodeString(configured); err == nil {
			if len(b) != 32 {
				return nil, fmt.Errorf("must decode to 32 bytes, got %d", len(b))
			}
			return b, nil
		}
	}
	return nil, fmt.Errorf("not valid base64")
}

func isHTTPSURL(u string) bool {
	return len(u) >= 8 && u[:8] == "https://"
}

func generateRandomBytes(size int) ([]byte, error) {
	b := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}

// GenerateNonce generates a random URL-safe string.
func GenerateNonce() (string, error) {
	b, err := generateRandomBytes(32)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
