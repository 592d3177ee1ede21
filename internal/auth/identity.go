package auth

import (
	"net/http"
	"strings"

	"github.com/zitadel/oidc/v3/pkg/oidc"
)

// ExternalIdentity is the verified profile returned by the identity provider.
type ExternalIdentity struct {
	Email       string
	DisplayName string
	GivenName   string
	FamilyName  string
	PictureURL  string
}

// IdentityFromClaims maps verified ID token claims onto an ExternalIdentity.
func IdentityFromClaims(claims *oidc.IDTokenClaims) ExternalIdentity {
	if claims == nil {
		return ExternalIdentity{}
	}
	return ExternalIdentity{
		Email:       strings.TrimSpace(claims.Email),
		DisplayName: strings.TrimSpace(claims.Name),
		GivenName:   strings.TrimSpace(claims.GivenName),
		FamilyName:  strings.TrimSpace(claims.FamilyName),
		PictureURL:  claims.Picture,
	}
}

// IdentityHandler receives the identity once a login completes.
type IdentityHandler func(w http.ResponseWriter, r *http.Request, identity ExternalIdentity)

// IdentityProvider runs one login flow for one principal class.
type IdentityProvider interface {
	// Class is the principal class this flow signs people into.
	Class() PrincipalClass
	// BeginLogin redirects the browser to the provider.
	BeginLogin() http.Handler
	// CompleteLogin handles the provider callback. Provider rejections redirect to
	// the failure target and never reach onIdentity.
	CompleteLogin(onIdentity IdentityHandler) http.Handler
}
