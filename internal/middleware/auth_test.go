package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bibliomaniacs.org/bookreviews/internal/entity"
	userDto "bibliomaniacs.org/bookreviews/internal/modules/user/dto"
	"bibliomaniacs.org/bookreviews/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "test-secret"

type fakeAuthService struct {
	users map[uuid.UUID]*entity.User
}

func (f *fakeAuthService) Register(ctx context.Context, input userDto.RegisterInput) (*userDto.AuthResponse, error) {
	return nil, nil
}

func (f *fakeAuthService) Login(ctx context.Context, input userDto.LoginInput) (*userDto.AuthResponse, error) {
	return nil, nil
}

func (f *fakeAuthService) ResolveRole(ctx context.Context, userID uuid.UUID) (*entity.User, string, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, entity.RoleNoAccount, apperror.ErrUnauthorized
	}
	return user, user.Role, nil
}

func (f *fakeAuthService) UIDByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	return uuid.Nil, apperror.ErrNotFound
}

func signToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func gateRequest(t *testing.T, auth *fakeAuthService, gate Gate, token string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	m := NewAuthMiddleware(auth, testSecret)
	router.GET("/probe", m.AccessGate(gate), func(c *gin.Context) {
		role, _ := c.Get("user_role")
		c.JSON(http.StatusOK, gin.H{"role": role})
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAccessGateAllowsListedRole(t *testing.T) {
	user := &entity.User{ID: uuid.New(), Email: "ada@example.com", Role: entity.RoleUser}
	auth := &fakeAuthService{users: map[uuid.UUID]*entity.User{user.ID: user}}

	rec := gateRequest(t, auth, Gate{Allow: []string{entity.RoleUser}}, signToken(t, user.ID))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestAccessGateRejectsUnlistedRole(t *testing.T) {
	user := &entity.User{ID: uuid.New(), Email: "ada@example.com", Role: entity.RoleUser}
	auth := &fakeAuthService{users: map[uuid.UUID]*entity.User{user.ID: user}}

	rec := gateRequest(t, auth, Gate{Allow: []string{entity.RoleAdmin}}, signToken(t, user.ID))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestAccessGateDenyBeatsAllow(t *testing.T) {
	user := &entity.User{ID: uuid.New(), Email: "ada@example.com", Role: entity.RoleUser}
	auth := &fakeAuthService{users: map[uuid.UUID]*entity.User{user.ID: user}}

	// A role on both lists is denied.
	gate := Gate{Allow: []string{entity.RoleUser}, Deny: []string{entity.RoleUser}}
	rec := gateRequest(t, auth, gate, signToken(t, user.ID))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestAccessGateNoTokenIsUnauthorized(t *testing.T) {
	auth := &fakeAuthService{users: map[uuid.UUID]*entity.User{}}

	rec := gateRequest(t, auth, Gate{Allow: []string{entity.RoleUser}}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAccessGateUnknownAccountIsNoAccount(t *testing.T) {
	auth := &fakeAuthService{users: map[uuid.UUID]*entity.User{}}

	// A valid token for a deleted account resolves to the no-account role.
	rec := gateRequest(t, auth, Gate{Allow: []string{entity.RoleUser, entity.RoleAdmin}}, signToken(t, uuid.New()))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAccessGateEmptyGatePassesEveryone(t *testing.T) {
	auth := &fakeAuthService{users: map[uuid.UUID]*entity.User{}}

	rec := gateRequest(t, auth, Gate{}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestAccessGateResolvesRoleEveryRequest(t *testing.T) {
	user := &entity.User{ID: uuid.New(), Email: "ada@example.com", Role: entity.RoleUser}
	auth := &fakeAuthService{users: map[uuid.UUID]*entity.User{user.ID: user}}
	gate := Gate{Allow: []string{entity.RoleAdmin}}
	token := signToken(t, user.ID)

	if rec := gateRequest(t, auth, gate, token); rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 before promotion", rec.Code)
	}

	// Promotion is visible on the very next request, no re-login needed.
	user.Role = entity.RoleAdmin
	if rec := gateRequest(t, auth, gate, token); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 after promotion", rec.Code)
	}
}
