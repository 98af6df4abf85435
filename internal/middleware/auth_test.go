package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"innoportal/internal/auth"
	"innoportal/internal/models"
)

type mapLoader map[string]*models.User

func (m mapLoader) Get(_ context.Context, id string) (*models.User, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

func newEngine(users mapLoader, tokens *auth.TokenIssuer, guards ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("secret"))))
	r.Use(LoadUser(users, tokens))
	r.GET("/login/:id", func(c *gin.Context) {
		s := sessions.Default(c)
		s.Set(SessionUserKey, c.Param("id"))
		s.Save()
		c.Status(http.StatusNoContent)
	})
	handlers := append(guards, func(c *gin.Context) {
		if u := CurrentUser(c); u != nil {
			c.String(http.StatusOK, u.ID)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	r.GET("/whoami", handlers...)
	return r
}

func get(r *gin.Engine, path string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if mutate != nil {
		mutate(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoadUserFromBearerToken(t *testing.T) {
	admin := &models.User{ID: "u1", Email: "a@example.uz", Role: models.RoleAdmin}
	tokens := auth.NewTokenIssuer("jwt-secret", time.Hour)
	r := newEngine(mapLoader{"u1": admin}, tokens)

	token, err := tokens.Issue(admin)
	if err != nil {
		t.Fatal(err)
	}
	w := get(r, "/whoami", func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) })
	if w.Body.String() != "u1" {
		t.Errorf("bearer caller = %q", w.Body.String())
	}

	w = get(r, "/whoami", func(req *http.Request) { req.Header.Set("Authorization", "Bearer garbage") })
	if w.Body.String() != "anonymous" {
		t.Errorf("bad token caller = %q", w.Body.String())
	}

	other := auth.NewTokenIssuer("other-secret", time.Hour)
	forged, _ := other.Issue(admin)
	w = get(r, "/whoami", func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+forged) })
	if w.Body.String() != "anonymous" {
		t.Errorf("forged token caller = %q", w.Body.String())
	}
}

func TestLoadUserFromSession(t *testing.T) {
	r := newEngine(mapLoader{"u2": {ID: "u2", Role: models.RoleUser}}, auth.NewTokenIssuer("s", time.Hour))

	login := get(r, "/login/u2", nil)
	cookies := login.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no session cookie set")
	}
	w := get(r, "/whoami", func(req *http.Request) {
		for _, c := range cookies {
			req.AddCookie(c)
		}
	})
	if w.Body.String() != "u2" {
		t.Errorf("session caller = %q", w.Body.String())
	}

	// a session pointing at a deleted user is anonymous
	stale := get(r, "/login/gone", nil).Result().Cookies()
	w = get(r, "/whoami", func(req *http.Request) {
		for _, c := range stale {
			req.AddCookie(c)
		}
	})
	if w.Body.String() != "anonymous" {
		t.Errorf("stale session caller = %q", w.Body.String())
	}
}

func TestGuards(t *testing.T) {
	users := mapLoader{
		"admin":  {ID: "admin", Role: models.RoleAdmin},
		"editor": {ID: "editor", Role: models.RoleEditorAdmin},
	}
	tokens := auth.NewTokenIssuer("jwt-secret", time.Hour)
	r := newEngine(users, tokens, AuthRequired(), RoleRequired(models.RoleAdmin))

	as := func(id string) func(*http.Request) {
		token, _ := tokens.Issue(users[id])
		return func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) }
	}

	if w := get(r, "/whoami", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", w.Code)
	}
	if w := get(r, "/whoami", as("editor")); w.Code != http.StatusForbidden {
		t.Errorf("editor status = %d, want 403", w.Code)
	}
	if w := get(r, "/whoami", as("admin")); w.Code != http.StatusOK {
		t.Errorf("admin status = %d, want 200", w.Code)
	}
}
