package auth

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zitadel/oidc/v3/pkg/oidc"
)

func TestPrincipal_Validate(t *testing.T) {
	tests := []struct {
		name    string
		p       Principal
		wantErr bool
	}{
		{"anonymous", Anonymous, false},
		{"admin", Principal{ID: "1", Class: ClassOperator, OpLevel: 1}, false},
		{"manager", Principal{ID: "1", Class: ClassOperator, OpLevel: 2}, false},
		{"operator without level", Principal{ID: "1", Class: ClassOperator}, true},
		{"operator level 3", Principal{ID: "1", Class: ClassOperator, OpLevel: 3}, true},
		{"customer", Principal{ID: "1", Class: ClassCustomer}, false},
		{"customer with level", Principal{ID: "1", Class: ClassCustomer, OpLevel: 1}, true},
		{"unknown class", Principal{ID: "1", Class: "chef"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPrincipal_JSONRoundTrip(t *testing.T) {
	in := Principal{ID: "507f1f77bcf86cd799439011", Class: ClassCustomer, Email: "a@b.com", DisplayName: "ab"}
	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "op_lvl")

	var out Principal
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)
}

func TestPrincipalContext(t *testing.T) {
	ctx := context.Background()
	assert.True(t, PrincipalFromContext(ctx).IsAnonymous())

	p := Principal{ID: "x", Class: ClassCustomer}
	assert.Equal(t, p, PrincipalFromContext(WithPrincipal(ctx, p)))

	_, ok := SessionTokenFromContext(ctx)
	assert.False(t, ok)
	token, ok := SessionTokenFromContext(WithSessionToken(ctx, "tok"))
	assert.True(t, ok)
	assert.Equal(t, "tok", token)
}

func TestIdentityFromClaims(t *testing.T) {
	claims := &oidc.IDTokenClaims{}
	claims.Email = " a@b.com "
	claims.Name = "Ada Lovelace"
	claims.GivenName = "Ada"
	claims.FamilyName = "Lovelace"
	claims.Picture = "https://example.com/ada.png"

	id := IdentityFromClaims(claims)
	assert.Equal(t, ExternalIdentity{
		Email:       "a@b.com",
		DisplayName: "Ada Lovelace",
		GivenName:   "Ada",
		FamilyName:  "Lovelace",
		PictureURL:  "https://example.com/ada.png",
	}, id)

	assert.Equal(t, ExternalIdentity{}, IdentityFromClaims(nil))
}
