package policy

import (
	"net/url"
	"strings"

	"github.com/tablehost/restaurantapi/internal/auth"
	"github.com/tablehost/restaurantapi/internal/domain"
)

// QueryOwnerParam is the query parameter naming the customer an order request is for.
const QueryOwnerParam = "user_id"

// Request is everything a rule may look at.
type Request struct {
	Principal auth.Principal
	Resource  domain.ResourceRef
	Query     url.Values
}

// PathID is the resource id from the route, lowercased for comparison.
func (r *Request) PathID() string {
	return strings.ToLower(r.Resource.ID)
}

// QueryOwnerID is the user_id query parameter, lowercased for comparison.
func (r *Request) QueryOwnerID() string {
	if r.Query == nil {
		return ""
	}
	return strings.ToLower(r.Query.Get(QueryOwnerParam))
}

func (r *Request) isSelf(id string) bool {
	return id != "" && r.Principal.ID != "" && strings.EqualFold(r.Principal.ID, id)
}
