package records

import (
	"errors"

	"github.com/tablehost/restaurantapi/internal/domain"
	"github.com/tablehost/restaurantapi/internal/repository"
)

const duplicateEmailMessage = "Unique Error: \"email\" field in the request body is a duplicate of another resource."

// translate maps repository sentinels onto the domain taxonomy. notFound is
// used verbatim for ErrNotFound.
func translate(op string, err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return domain.ErrNotFound("%s", notFound)
	case errors.Is(err, repository.ErrDuplicateKey):
		return domain.ErrConflict(duplicateEmailMessage)
	default:
		return domain.ErrUpstream(op, err)
	}
}

func nothingFound(id string) string    { return "Nothing could be found with ID " + id + "." }
func nothingToUpdate(id string) string { return "Nothing to update by ID " + id + "." }
func nothingToDelete(id string) string { return "Nothing to delete by ID " + id + "." }
