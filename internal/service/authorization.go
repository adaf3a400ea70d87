package service

import (
	"fmt"

	"github.com/noah-isme/academy-admin/internal/models"
	appErrors "github.com/noah-isme/academy-admin/pkg/errors"
)

// HasPermission reports whether principal may perform an action requiring
// the given role. A nil principal has no permissions.
func HasPermission(principal *models.Principal, required models.UserRole) bool {
	if principal == nil {
		return false
	}
	return principal.Role.Satisfies(required)
}

func authorize(principal *models.Principal, required models.UserRole) error {
	if HasPermission(principal, required) {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("permission denied: %s role required", required))
}
