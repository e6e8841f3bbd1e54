// Package access holds the authorization rules. Every resolver and REST action goes through
// these functions instead of comparing roles itself.
package access

import (
	"slices"

	"go-gin-blog/internal/core/apperr"
	"go-gin-blog/internal/domain"
)

// Authorize requires an identified caller and, when roles are given, membership in one of them.
func Authorize(caller *domain.Caller, roles ...domain.Role) (*domain.Caller, error) {
	if caller == nil {
		return nil, apperr.Unauthenticated("authentication required")
	}
	if len(roles) > 0 && !slices.Contains(roles, caller.Role) {
		return nil, apperr.Forbidden("insufficient permissions")
	}
	return caller, nil
}

// CanView reports whether caller may read p.
func CanView(p *domain.Post, caller *domain.Caller) bool {
	if p == nil {
		return false
	}
	if p.Published || caller.IsAdmin() {
		return true
	}
	return caller != nil && caller.ID != "" && caller.ID == p.AuthorID
}

// FilterVisiblePosts keeps the visible posts in their original order. It must run before
// pagination so page counts never reflect hidden drafts.
func FilterVisiblePosts(candidates []domain.Post, caller *domain.Caller) []domain.Post {
	out := make([]domain.Post, 0, len(candidates))
	for i := range candidates {
		if CanView(&candidates[i], caller) {
			out = append(out, candidates[i])
		}
	}
	return out
}

// AuthorizeMutation is the one rule for update, delete and publish toggling.
func AuthorizeMutation(p *domain.Post, caller *domain.Caller) error {
	return authorizeOwner(p.AuthorID, caller, "only the author or an admin can modify this post")
}

// AuthorizeAccount applies the same ownership rule to user accounts.
func AuthorizeAccount(userID string, caller *domain.Caller) error {
	return authorizeOwner(userID, caller, "only the account owner or an admin can modify this account")
}

func authorizeOwner(ownerID string, caller *domain.Caller, msg string) error {
	if caller == nil {
		return apperr.Unauthenticated("authentication required")
	}
	if caller.IsAdmin() || (caller.ID != "" && caller.ID == ownerID) {
		return nil
	}
	return apperr.Forbidden(msg)
}
