// Package policy decides who may publish, moderate and edit content. Every mutation path
// in the services goes through these functions instead of comparing roles inline.
package policy

import "innoportal/internal/models"

var validRoles = map[models.Role]bool{
	models.RoleAdmin:       true,
	models.RoleEditorAdmin: true,
	models.RoleAssistant:   true,
	models.RoleUser:        true,
	models.RoleInvestor:    true,
	models.RoleClient:      true,
}

func ValidRole(role models.Role) bool {
	return validRoles[role]
}

// CanPublishDirectly reports whether content created by role keeps its requested
// published flag.
func CanPublishDirectly(role models.Role) bool {
	return role == models.RoleAdmin
}

// CanModerate gates the moderation queues and comment approval.
func CanModerate(role models.Role) bool {
	return role == models.RoleAdmin
}

// IsStaff covers the back-office roles.
func IsStaff(role models.Role) bool {
	switch role {
	case models.RoleAdmin, models.RoleEditorAdmin, models.RoleAssistant:
		return true
	}
	return false
}

// CanViewDrafts lets back-office roles see unpublished records in listings.
func CanViewDrafts(role models.Role) bool {
	return IsStaff(role)
}

// CanCreateContent: staff may create every kind, any signed-in role may submit an
// innovation idea.
func CanCreateContent(role models.Role, kind models.ContentKind) bool {
	if IsStaff(role) {
		return true
	}
	return kind == models.KindInnovation && ValidRole(role)
}

func CanEditContent(role models.Role, actorID, authorID string) bool {
	if IsStaff(role) {
		return true
	}
	return actorID != "" && actorID == authorID
}

// CanManageUsers gates listing, editing and deleting other accounts.
func CanManageUsers(role models.Role) bool {
	return role == models.RoleAdmin
}

// CanManageCategories allows admins and editor-admins to add categories.
func CanManageCategories(role models.Role) bool {
	return role == models.RoleAdmin || role == models.RoleEditorAdmin
}

// CanDeleteCategories is narrower than creation: only admins remove categories.
func CanDeleteCategories(role models.Role) bool {
	return role == models.RoleAdmin
}

// CanSelfRegister lists the roles a visitor may pick at sign-up.
func CanSelfRegister(role models.Role) bool {
	switch role {
	case models.RoleUser, models.RoleInvestor, models.RoleClient:
		return true
	}
	return false
}

// InitialPublished returns the stored published flag for new content. Only an admin's
// request is honoured; everyone else gets a draft.
func InitialPublished(role models.Role, requested *bool) bool {
	if !CanPublishDirectly(role) || requested == nil {
		return false
	}
	return *requested
}
