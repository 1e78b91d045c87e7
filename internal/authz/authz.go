package authz

import (
	"github.com/google/uuid"

	"github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/apierr"
	"github.com/agrilpasv-cmd/agrilpa-backend/internal/requestdata"
)

// Require is the single ownership gate. Every mutating service path calls it
// before the store is touched with elevated credentials: the database layer
// itself does not restrict rows, so skipping this check would let one party
// alter another's data.
//
// Allow iff the caller's id equals any of the owner ids, or the caller's
// role is admin.
func Require(rd *requestdata.RequestData, owners ...uuid.UUID) error {
	if rd == nil || rd.UserID == uuid.Nil {
		return apierr.Unauthorized("no authenticated identity")
	}
	if rd.IsAdmin() {
		return nil
	}
	for _, owner := range owners {
		if owner != uuid.Nil && owner == rd.UserID {
			return nil
		}
	}
	return apierr.Forbidden("caller does not own this resource")
}

// RequireAdmin allows only role=admin callers.
func RequireAdmin(rd *requestdata.RequestData) error {
	if rd == nil || rd.UserID == uuid.Nil {
		return apierr.Unauthorized("no authenticated identity")
	}
	if !rd.IsAdmin() {
		return apierr.Forbidden("admin role required")
	}
	return nil
}
