package domain

import "regexp"

// Collection names one of the four document collections.
type Collection string

const (
	CollectionOperators Collection = "operators"
	CollectionCustomers Collection = "customers"
	CollectionInventory Collection = "inventory"
	CollectionOrders    Collection = "orders"
)

// ResourceRef identifies the target of a request. ID is empty for collection-level routes.
type ResourceRef struct {
	Collection Collection
	ID         string
}

var objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// IsObjectID reports whether s is a 24 character hex identifier.
func IsObjectID(s string) bool {
	return objectIDPattern.MatchString(s)
}
