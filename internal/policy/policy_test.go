package policy

import (
	"testing"

	"innoportal/internal/models"
)

var allRoles = []models.Role{
	models.RoleAdmin, models.RoleEditorAdmin, models.RoleAssistant,
	models.RoleUser, models.RoleInvestor, models.RoleClient,
}

func TestInitialPublished(t *testing.T) {
	yes, no := true, false
	for _, role := range allRoles {
		for _, requested := range []*bool{nil, &yes, &no} {
			got := InitialPublished(role, requested)
			want := role == models.RoleAdmin && requested != nil && *requested
			if got != want {
				t.Errorf("InitialPublished(%s, %v) = %v, want %v", role, requested, got, want)
			}
		}
	}
}

func TestOnlyAdminPublishesModeratesAndManagesUsers(t *testing.T) {
	for _, role := range allRoles {
		isAdmin := role == models.RoleAdmin
		if CanPublishDirectly(role) != isAdmin {
			t.Errorf("CanPublishDirectly(%s) = %v", role, !isAdmin)
		}
		if CanModerate(role) != isAdmin {
			t.Errorf("CanModerate(%s) = %v", role, !isAdmin)
		}
		if CanManageUsers(role) != isAdmin {
			t.Errorf("CanManageUsers(%s) = %v", role, !isAdmin)
		}
		if CanDeleteCategories(role) != isAdmin {
			t.Errorf("CanDeleteCategories(%s) = %v", role, !isAdmin)
		}
	}
	if CanPublishDirectly("superuser") {
		t.Error("unknown roles must not publish")
	}
}

func TestCanCreateContent(t *testing.T) {
	tests := []struct {
		role models.Role
		kind models.ContentKind
		want bool
	}{
		{models.RoleEditorAdmin, models.KindArticle, true},
		{models.RoleAssistant, models.KindNews, true},
		{models.RoleUser, models.KindArticle, false},
		{models.RoleInvestor, models.KindNews, false},
		{models.RoleClient, models.KindInnovation, true},
		{models.RoleUser, models.KindInnovation, true},
		{"", models.KindInnovation, false},
	}
	for _, tt := range tests {
		if got := CanCreateContent(tt.role, tt.kind); got != tt.want {
			t.Errorf("CanCreateContent(%q, %s) = %v, want %v", tt.role, tt.kind, got, tt.want)
		}
	}
}

func TestCanEditContent(t *testing.T) {
	if !CanEditContent(models.RoleUser, "u1", "u1") {
		t.Error("author should edit own content")
	}
	if CanEditContent(models.RoleUser, "u1", "u2") {
		t.Error("non-staff should not edit other people's content")
	}
	if CanEditContent(models.RoleUser, "", "") {
		t.Error("empty actor must never match")
	}
	if !CanEditContent(models.RoleAssistant, "u1", "u2") {
		t.Error("staff should edit any content")
	}
}

func TestCanSelfRegister(t *testing.T) {
	for _, role := range allRoles {
		want := role == models.RoleUser || role == models.RoleInvestor || role == models.RoleClient
		if got := CanSelfRegister(role); got != want {
			t.Errorf("CanSelfRegister(%s) = %v, want %v", role, got, want)
		}
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range allRoles {
		if !ValidRole(role) {
			t.Errorf("%s should be valid", role)
		}
	}
	if ValidRole("root") {
		t.Error("root is not a role")
	}
}
