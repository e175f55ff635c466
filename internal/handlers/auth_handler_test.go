package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"condomanager/internal/access"
	apperrors "condomanager/internal/errors"
	"condomanager/internal/middleware"
	"condomanager/internal/models"
	"condomanager/internal/pagination"
	"condomanager/internal/services"
	"condomanager/internal/session"
)

// --- mock services ---

type mockUserService struct {
	createUserFn            func(email, password, firstName, lastName string, role models.Role) (*models.User, error)
	getUserByEmailFn        func(email string) (*models.User, error)
	getUserByIDFn           func(id string) (*models.User, error)
	verifyPasswordFn        func(user *models.User, password string) bool
	attemptLoginFn          func(email, password string) (*models.User, error)
	storeRefreshTokenHashFn func(userID, tokenHash string) error
	getRefreshTokenHashFn   func(userID string) (string, error)
	loadPrincipalFn         func(userID string) (*access.Principal, error)
	changePasswordFn        func(userID, currentPassword, newPassword string) error
	listUsersFn             func(page pagination.PageRequest, role *models.Role) (*pagination.PageResponse[models.User], error)
	updateUserFn            func(userID string, update services.UserUpdate) (*models.User, error)
	changeRoleFn            func(userID string, role models.Role) (*models.User, error)
	deleteUserFn            func(userID string) error
}

func (m *mockUserService) CreateUser(email, password, firstName, lastName string, role models.Role) (*models.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(email, password, firstName, lastName, role)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByEmail(email string) (*models.User, error) {
	if m.getUserByEmailFn != nil {
		return m.getUserByEmailFn(email)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByID(id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{Base: models.Base{ID: id}}, nil
}

func (m *mockUserService) VerifyPassword(user *models.User, password string) bool {
	if m.verifyPasswordFn != nil {
		return m.verifyPasswordFn(user, password)
	}
	return true
}

func (m *mockUserService) AttemptLogin(email, password string) (*models.User, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(email, password)
	}
	return &models.User{}, nil
}

func (m *mockUserService) StoreRefreshTokenHash(userID, tokenHash string) error {
	if m.storeRefreshTokenHashFn != nil {
		return m.storeRefreshTokenHashFn(userID, tokenHash)
	}
	return nil
}

func (m *mockUserService) GetRefreshTokenHash(userID string) (string, error) {
	if m.getRefreshTokenHashFn != nil {
		return m.getRefreshTokenHashFn(userID)
	}
	return "", nil
}

func (m *mockUserService) LoadPrincipal(userID string) (*access.Principal, error) {
	if m.loadPrincipalFn != nil {
		return m.loadPrincipalFn(userID)
	}
	return &access.Principal{UserID: userID}, nil
}

func (m *mockUserService) ChangePassword(userID, currentPassword, newPassword string) error {
	if m.changePasswordFn != nil {
		return m.changePasswordFn(userID, currentPassword, newPassword)
	}
	return nil
}

func (m *mockUserService) ListUsers(page pagination.PageRequest, role *models.Role) (*pagination.PageResponse[models.User], error) {
	if m.listUsersFn != nil {
		return m.listUsersFn(page, role)
	}
	resp := pagination.NewPageResponse([]models.User{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockUserService) UpdateUser(userID string, update services.UserUpdate) (*models.User, error) {
	if m.updateUserFn != nil {
		return m.updateUserFn(userID, update)
	}
	return &models.User{Base: models.Base{ID: userID}}, nil
}

func (m *mockUserService) ChangeRole(userID string, role models.Role) (*models.User, error) {
	if m.changeRoleFn != nil {
		return m.changeRoleFn(userID, role)
	}
	return &models.User{Base: models.Base{ID: userID}, Role: role}, nil
}

func (m *mockUserService) DeleteUser(userID string) error {
	if m.deleteUserFn != nil {
		return m.deleteUserFn(userID)
	}
	return nil
}

var _ services.UserServicer = (*mockUserService)(nil)

func testUser() *models.User {
	return &models.User{
		Base:      models.Base{ID: managerID},
		Email:     "gestore@condomanager.it",
		FirstName: "Mario",
		LastName:  "Rossi",
		Role:      models.RoleManager,
		IsActive:  true,
	}
}

func setupAuthRouter(handler *AuthHandler, p *access.Principal) *gin.Engine {
	r := gin.New()
	r.POST("/auth/login", handler.Login)
	r.POST("/auth/refresh", handler.RefreshToken)
	auth := r.Group("", injectPrincipal(p))
	auth.POST("/auth/logout", handler.Logout)
	auth.GET("/profile", handler.GetProfile)
	auth.PUT("/profile/password", handler.ChangePassword)
	return r
}

// --- tests ---

func TestAuthHandler_Login(t *testing.T) {
	t.Run("returns 200 with tokens on success", func(t *testing.T) {
		var storedHash string
		userSvc := &mockUserService{
			attemptLoginFn: func(_, _ string) (*models.User, error) { return testUser(), nil },
			storeRefreshTokenHashFn: func(userID, hash string) error {
				storedHash = hash
				return nil
			},
		}
		audit := &mockAuditService{}
		handler := NewAuthHandler(userSvc, session.NewMemoryRevoker(), audit)
		r := setupAuthRouter(handler, managerPrincipal())

		rec := doRequest(r, "POST", "/auth/login", `{"email":"gestore@condomanager.it","password":"password123"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		accessToken, _ := result["access_token"].(string)
		refresh, _ := result["refresh_token"].(string)
		if accessToken == "" || refresh == "" {
			t.Fatalf("expected both tokens, got %v", result)
		}
		if storedHash != middleware.HashToken(refresh) {
			t.Error("expected the refresh token hash to be stored")
		}
		claims, err := middleware.ValidateAccessToken(accessToken)
		if err != nil {
			t.Fatalf("access token invalid: %v", err)
		}
		if claims.UserID != managerID || claims.Role != models.RoleManager || claims.ID == "" {
			t.Errorf("unexpected claims %+v", claims)
		}
		if len(audit.actions) != 1 || audit.actions[0] != "LOGIN" {
			t.Errorf("expected LOGIN audit, got %v", audit.actions)
		}
	})

	t.Run("returns 401 on invalid credentials", func(t *testing.T) {
		userSvc := &mockUserService{
			attemptLoginFn: func(_, _ string) (*models.User, error) { return nil, apperrors.ErrInvalidCredentials },
		}
		handler := NewAuthHandler(userSvc, session.NewMemoryRevoker(), &mockAuditService{})
		r := setupAuthRouter(handler, managerPrincipal())

		rec := doRequest(r, "POST", "/auth/login", `{"email":"gestore@condomanager.it","password":"wrong"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_CREDENTIALS")
	})

	t.Run("returns 423 on locked account", func(t *testing.T) {
		userSvc := &mockUserService{
			attemptLoginFn: func(_, _ string) (*models.User, error) { return nil, apperrors.ErrAccountLocked },
		}
		handler := NewAuthHandler(userSvc, session.NewMemoryRevoker(), &mockAuditService{})
		r := setupAuthRouter(handler, managerPrincipal())

		rec := doRequest(r, "POST", "/auth/login", `{"email":"gestore@condomanager.it","password":"password123"}`)

		if rec.Code != http.StatusLocked {
			t.Fatalf("expected 423, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "ACCOUNT_LOCKED")
	})

	t.Run("returns 400 on missing fields", func(t *testing.T) {
		handler := NewAuthHandler(&mockUserService{}, session.NewMemoryRevoker(), &mockAuditService{})
		r := setupAuthRouter(handler, managerPrincipal())

		rec := doRequest(r, "POST", "/auth/login", `{"email":"gestore@condomanager.it"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 500 when token storage fails", func(t *testing.T) {
		userSvc := &mockUserService{
			attemptLoginFn:          func(_, _ string) (*models.User, error) { return testUser(), nil },
			storeRefreshTokenHashFn: func(_, _ string) error { return apperrors.Wrap(apperrors.ErrInternalServer, fmt.Errorf("db down")) },
		}
		handler := NewAuthHandler(userSvc, session.NewMemoryRevoker(), &mockAuditService{})
		r := setupAuthRouter(handler, managerPrincipal())

		rec := doRequest(r, "POST", "/auth/login", `{"email":"gestore@condomanager.it","password":"password123"}`)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	user := testUser()
	refresh, err := middleware.GenerateRefreshToken(user)
	if err != nil {
		t.Fatalf("failed to generate refresh token: %v", err)
	}

	t.Run("returns new tokens and rotates the stored hash", func(t *testing.T) {
		var rotated string
		userSvc := &mockUserService{
			getRefreshTokenHashFn: func(_ string) (string, error) { return middleware.HashToken(refresh), nil },
			getUserByIDFn:         func(_ string) (*models.User, error) { return user, nil },
			storeRefreshTokenHashFn: func(_, hash string) error {
				rotated = hash
				return nil
			},
		}
		handler := NewAuthHandler(userSvc, session.NewMemoryRevoker(), &mockAuditService{})
		r := setupAuthRouter(handler, managerPrincipal())

		rec := doRequest(r, "POST", "/auth/refresh", fmt.Sprintf(`{"refresh_token":%q}`, refresh))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		newRefresh := result["refresh_token"].(string)
		if rotated != middleware.HashToken(newRefresh) {
			t.Error("expected the new refresh token hash to be stored")
		}
	})

	t.Run("returns 401 when the stored hash differs", func(t *testing.T) {
		userSvc := &mockUserService{
			getRefreshTokenHashFn: func(_ string) (string, error) { return middleware.HashToken("other"), nil },
		}
		handler := NewAuthHandler(userSvc, session.NewMemoryRevoker(), &mockAuditService{})
		r := setupAuthRouter(handler, managerPrincipal())

		rec := doRequest(r, "POST", "/auth/refresh", fmt.Sprintf(`{"refresh_token":%q}`, refresh))

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("returns 401 when logged out", func(t *testing.T) {
		userSvc := &mockUserService{
			getRefreshTokenHashFn: func(_ string) (string, error) { return "", nil },
		}
		handler := NewAuthHandler(userSvc, session.NewMemoryRevoker(), &mockAuditService{})
		r := setupAuthRouter(handler, managerPrincipal())

		rec := doRequest(r, "POST", "/auth/refresh", fmt.Sprintf(`{"refresh_token":%q}`, refresh))

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("returns 401 for an access token", func(t *testing.T) {
		accessToken, err := middleware.GenerateAccessToken(user)
		if err != nil {
			t.Fatal(err)
		}
		handler := NewAuthHandler(&mockUserService{}, session.NewMemoryRevoker(), &mockAuditService{})
		r := setupAuthRouter(handler, managerPrincipal())

		rec := doRequest(r, "POST", "/auth/refresh", fmt.Sprintf(`{"refresh_token":%q}`, accessToken))

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("revokes the access token and clears the refresh hash", func(t *testing.T) {
		revoker := session.NewMemoryRevoker()
		cleared := false
		userSvc := &mockUserService{
			storeRefreshTokenHashFn: func(userID, hash string) error {
				cleared = userID == managerID && hash == ""
				return nil
			},
		}
		handler := NewAuthHandler(userSvc, revoker, &mockAuditService{})

		claims := &middleware.JWTClaims{
			UserID: managerID,
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        "jti-1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(10 * time.Minute)),
			},
		}
		r := gin.New()
		r.POST("/auth/logout", injectPrincipal(managerPrincipal()), func(c *gin.Context) {
			c.Set(middleware.ClaimsKey, claims)
			c.Next()
		}, handler.Logout)

		rec := doRequest(r, "POST", "/auth/logout", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		revoked, err := revoker.IsRevoked(context.Background(), "jti-1")
		if err != nil || !revoked {
			t.Errorf("expected jti to be revoked, got %v, %v", revoked, err)
		}
		if !cleared {
			t.Error("expected refresh token hash to be cleared")
		}
	})

	t.Run("returns 401 without auth", func(t *testing.T) {
		handler := NewAuthHandler(&mockUserService{}, session.NewMemoryRevoker(), &mockAuditService{})
		r := gin.New()
		r.POST("/auth/logout", handler.Logout)

		rec := doRequest(r, "POST", "/auth/logout", "")

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_GetProfile(t *testing.T) {
	t.Run("returns 200 with user profile", func(t *testing.T) {
		userSvc := &mockUserService{
			getUserByIDFn: func(id string) (*models.User, error) {
				u := testUser()
				u.ManagedCondominiums = []models.Condominium{{Base: models.Base{ID: condoID}, Name: "Condominio Aurora"}}
				return u, nil
			},
		}
		handler := NewAuthHandler(userSvc, session.NewMemoryRevoker(), &mockAuditService{})
		r := setupAuthRouter(handler, managerPrincipal(condoID))

		rec := doRequest(r, "GET", "/profile", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		user := parseJSON(t, rec)["user"].(map[string]interface{})
		if user["email"] != "gestore@condomanager.it" {
			t.Errorf("unexpected email %v", user["email"])
		}
		if _, leaked := user["password"]; leaked {
			t.Error("password hash must not be serialized")
		}
		if condos := user["managed_condominiums"].([]interface{}); len(condos) != 1 {
			t.Errorf("expected 1 managed condominium, got %d", len(condos))
		}
	})

	t.Run("returns 401 without auth", func(t *testing.T) {
		handler := NewAuthHandler(&mockUserService{}, session.NewMemoryRevoker(), &mockAuditService{})
		r := gin.New()
		r.GET("/profile", handler.GetProfile)

		rec := doRequest(r, "GET", "/profile", "")

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("returns 404 when user not found", func(t *testing.T) {
		userSvc := &mockUserService{
			getUserByIDFn: func(_ string) (*models.User, error) { return nil, apperrors.ErrUserNotFound },
		}
		handler := NewAuthHandler(userSvc, session.NewMemoryRevoker(), &mockAuditService{})
		r := setupAuthRouter(handler, managerPrincipal())

		rec := doRequest(r, "GET", "/profile", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	t.Run("revokes earlier tokens on success", func(t *testing.T) {
		revoker := session.NewMemoryRevoker()
		handler := NewAuthHandler(&mockUserService{}, revoker, &mockAuditService{})
		r := setupAuthRouter(handler, managerPrincipal())

		rec := doRequest(r, "PUT", "/profile/password", `{"current_password":"password123","new_password":"nuovapassword"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		revoked, err := revoker.IsUserRevoked(context.Background(), managerID, time.Now().Add(-time.Hour))
		if err != nil || !revoked {
			t.Errorf("expected earlier tokens to be revoked, got %v, %v", revoked, err)
		}
	})

	t.Run("returns 400 on short new password", func(t *testing.T) {
		handler := NewAuthHandler(&mockUserService{}, session.NewMemoryRevoker(), &mockAuditService{})
		r := setupAuthRouter(handler, managerPrincipal())

		rec := doRequest(r, "PUT", "/profile/password", `{"current_password":"password123","new_password":"short"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 401 on wrong current password", func(t *testing.T) {
		userSvc := &mockUserService{
			changePasswordFn: func(_, _, _ string) error {
				return apperrors.WithMessage(apperrors.ErrInvalidCredentials, "Current password is incorrect")
			},
		}
		handler := NewAuthHandler(userSvc, session.NewMemoryRevoker(), &mockAuditService{})
		r := setupAuthRouter(handler, managerPrincipal())

		rec := doRequest(r, "PUT", "/profile/password", `{"current_password":"wrong","new_password":"nuovapassword"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}
