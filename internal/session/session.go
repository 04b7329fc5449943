package session

import (
	"github.com/squadup/admin-api/internal/authz"
	"github.com/squadup/admin-api/internal/domain"
	"github.com/squadup/admin-api/internal/identity"
)

// Session is a fully resolved admin context: a remotely verified
// identity plus the staff grant found for it. A Session is only ever
// constructed whole; partial resolution yields nil instead.
type Session struct {
	Identity identity.Identity
	Admin    domain.AdminUser
}

func (s *Session) Role() authz.Role { return authz.Role(s.Admin.Role) }

func (s *Session) HasRole(required authz.Role) bool {
	return authz.HasRole(s.Role(), required)
}
