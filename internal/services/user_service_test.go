package services

import (
	"testing"
	"time"

	"condomanager/internal/models"
	"condomanager/internal/pagination"
	"condomanager/internal/testutil"

	"golang.org/x/crypto/bcrypt"
)

func TestCreateUser(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user, err := svc.CreateUser("alice@example.com", "password123", "Alice", "Smith", models.RoleManager)
		testutil.AssertNoError(t, err)

		if user.ID == "" {
			t.Fatal("expected user ID")
		}
		if user.Email != "alice@example.com" {
			t.Errorf("expected email alice@example.com, got %s", user.Email)
		}
		if user.FirstName != "Alice" {
			t.Errorf("expected first name Alice, got %s", user.FirstName)
		}
		if !user.IsActive {
			t.Error("expected user to be active")
		}
	})

	t.Run("duplicate_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("dup@example.com", "password123", "", "", models.RoleManager)
		testutil.AssertNoError(t, err)

		_, err = svc.CreateUser("dup@example.com", "password456", "", "", models.RoleManager)
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")
	})

	t.Run("empty_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("", "password123", "", "", models.RoleManager)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("empty_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("test@example.com", "", "", "", models.RoleManager)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("email_normalized_to_lowercase", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user, err := svc.CreateUser("Alice@EXAMPLE.COM", "password123", "", "", models.RoleManager)
		testutil.AssertNoError(t, err)

		if user.Email != "alice@example.com" {
			t.Errorf("expected lowercased email, got %s", user.Email)
		}
	})
}

func TestGetUserByEmail(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		created := testutil.CreateTestUserWithEmail(t, db, "found@example.com", models.RoleManager)
		user, err := svc.GetUserByEmail("found@example.com")
		testutil.AssertNoError(t, err)

		if user.ID != created.ID {
			t.Errorf("expected user ID %s, got %s", created.ID, user.ID)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.GetUserByEmail("nonexistent@example.com")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})

	t.Run("inactive_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user := testutil.CreateTestUserWithEmail(t, db, "inactive@example.com", models.RoleManager)
		db.Model(user).Update("is_active", false)

		_, err := svc.GetUserByEmail("inactive@example.com")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestGetUserByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		created := testutil.CreateTestUser(t, db, models.RoleManager)
		user, err := svc.GetUserByID(created.ID)
		testutil.AssertNoError(t, err)

		if user.Email != created.Email {
			t.Errorf("expected email %s, got %s", created.Email, user.Email)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.GetUserByID("0190a1b2-0000-7000-8000-000000000000")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestVerifyPassword(t *testing.T) {
	t.Run("correct", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		// Fixture uses "password123" with bcrypt.MinCost
		user := testutil.CreateTestUser(t, db, models.RoleManager)
		if !svc.VerifyPassword(user, "password123") {
			t.Error("expected password verification to succeed")
		}
	})

	t.Run("incorrect", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user := testutil.CreateTestUser(t, db, models.RoleManager)
		if svc.VerifyPassword(user, "wrongpassword") {
			t.Error("expected password verification to fail")
		}
	})
}

func TestAttemptLogin(t *testing.T) {
	t.Run("success_resets_attempts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		// Create user via service so password is hashed with DefaultCost
		_, err := svc.CreateUser("login@example.com", "password123", "", "", models.RoleManager)
		testutil.AssertNoError(t, err)

		// Simulate previous failed attempts
		db.Exec("UPDATE users SET failed_login_attempts = 3 WHERE email = ?", "login@example.com")

		user, err := svc.AttemptLogin("login@example.com", "password123")
		testutil.AssertNoError(t, err)

		if user.FailedLoginAttempts != 0 {
			t.Errorf("expected 0 failed attempts after success, got %d", user.FailedLoginAttempts)
		}
		if user.LastLoginAt == nil {
			t.Error("expected LastLoginAt to be set after successful login")
		}
	})

	t.Run("wrong_password_increments_attempts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("fail@example.com", "password123", "", "", models.RoleManager)
		testutil.AssertNoError(t, err)

		_, err = svc.AttemptLogin("fail@example.com", "wrongpassword")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")

		// Verify the failed attempts were incremented in DB
		user, _ := svc.GetUserByEmail("fail@example.com")
		if user.FailedLoginAttempts != 1 {
			t.Errorf("expected 1 failed attempt, got %d", user.FailedLoginAttempts)
		}
	})

	t.Run("lockout_after_5_failures", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("lockout@example.com", "password123", "", "", models.RoleManager)
		testutil.AssertNoError(t, err)

		// Fail 5 times
		for i := 0; i < 5; i++ {
			_, err = svc.AttemptLogin("lockout@example.com", "wrong")
			testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
		}

		// Verify account is now locked
		user, _ := svc.GetUserByEmail("lockout@example.com")
		if user.LockedUntil == nil {
			t.Fatal("expected LockedUntil to be set after 5 failures")
		}
		if !user.LockedUntil.After(time.Now()) {
			t.Error("expected LockedUntil to be in the future")
		}
	})

	t.Run("locked_account_returns_error", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("locked@example.com", "password123", "", "", models.RoleManager)
		testutil.AssertNoError(t, err)

		// Manually lock the account
		lockUntil := time.Now().Add(15 * time.Minute)
		db.Exec("UPDATE users SET locked_until = ?, failed_login_attempts = 5 WHERE email = ?", lockUntil, "locked@example.com")

		_, err = svc.AttemptLogin("locked@example.com", "password123")
		testutil.AssertAppError(t, err, "ACCOUNT_LOCKED")
	})

	t.Run("nonexistent_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.AttemptLogin("nobody@example.com", "password123")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})
}

func TestStoreAndGetRefreshTokenHash(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)

	user := testutil.CreateTestUser(t, db, models.RoleManager)

	hash := "abcdef1234567890abcdef1234567890abcdef1234567890abcdef1234567890"
	err := svc.StoreRefreshTokenHash(user.ID, hash)
	testutil.AssertNoError(t, err)

	got, err := svc.GetRefreshTokenHash(user.ID)
	testutil.AssertNoError(t, err)

	if got != hash {
		t.Errorf("expected hash %s, got %s", hash, got)
	}
}

func TestCreateUser_password_is_hashed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)

	user, err := svc.CreateUser("hash@example.com", "mypassword", "", "", models.RoleManager)
	testutil.AssertNoError(t, err)

	// Password should be bcrypt hash, not plaintext
	if user.Password == "mypassword" {
		t.Error("password should be hashed, not stored as plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("mypassword")); err != nil {
		t.Error("password hash should be valid bcrypt")
	}
}

func TestCreateUser_invalid_role(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)

	_, err := svc.CreateUser("role@example.com", "password123", "", "", models.Role("owner"))
	testutil.AssertAppError(t, err, "INVALID_INPUT")
}

func TestCreateUser_queues_welcome_email(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)

	user, err := svc.CreateUser("welcome@example.com", "password123", "Giulia", "Bianchi", models.RoleManager)
	testutil.AssertNoError(t, err)

	var msgs []models.OutboxMessage
	db.Where("aggregate_id = ?", user.ID).Find(&msgs)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 outbox message, got %d", len(msgs))
	}
	if msgs[0].Recipient != "welcome@example.com" {
		t.Errorf("expected recipient welcome@example.com, got %s", msgs[0].Recipient)
	}
	if msgs[0].Status != models.OutboxPending {
		t.Errorf("expected pending message, got %s", msgs[0].Status)
	}
}

func TestAttemptLogin_expired_lock(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)

	_, err := svc.CreateUser("expired@example.com", "password123", "", "", models.RoleManager)
	testutil.AssertNoError(t, err)

	db.Exec("UPDATE users SET locked_until = ? WHERE email = ?", time.Now().Add(-time.Minute), "expired@example.com")

	user, err := svc.AttemptLogin("expired@example.com", "password123")
	testutil.AssertNoError(t, err)
	if user.LockedUntil != nil {
		t.Error("expected lock to be cleared after successful login")
	}
}

func TestLoadPrincipal(t *testing.T) {
	t.Run("manager_with_condominiums", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		manager := testutil.CreateTestUser(t, db, models.RoleManager)
		condo := testutil.CreateTestCondominium(t, db)
		testutil.AssignManager(t, db, manager, condo)

		p, err := svc.LoadPrincipal(manager.ID)
		testutil.AssertNoError(t, err)

		if p.IsAdmin() {
			t.Error("manager should not be admin")
		}
		if !p.Manages(condo.ID) {
			t.Errorf("expected principal to manage %s", condo.ID)
		}
	})

	t.Run("inactive_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user := testutil.CreateTestUser(t, db, models.RoleAdmin)
		db.Model(user).Update("is_active", false)

		_, err := svc.LoadPrincipal(user.ID)
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestChangePassword(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user := testutil.CreateTestUser(t, db, models.RoleManager)
		testutil.AssertNoError(t, svc.StoreRefreshTokenHash(user.ID, "somehash"))

		err := svc.ChangePassword(user.ID, testutil.TestPassword, "newpassword456")
		testutil.AssertNoError(t, err)

		_, err = svc.AttemptLogin(user.Email, "newpassword456")
		testutil.AssertNoError(t, err)

		hash, _ := svc.GetRefreshTokenHash(user.ID)
		if hash != "" {
			t.Error("expected refresh token hash to be cleared")
		}
	})

	t.Run("wrong_current_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user := testutil.CreateTestUser(t, db, models.RoleManager)
		err := svc.ChangePassword(user.ID, "wrong", "newpassword456")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})
}

func TestListUsers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)

	testutil.CreateTestUser(t, db, models.RoleAdmin)
	testutil.CreateTestUser(t, db, models.RoleManager)
	testutil.CreateTestUser(t, db, models.RoleManager)

	all, err := svc.ListUsers(pagination.PageRequest{}, nil)
	testutil.AssertNoError(t, err)
	if all.TotalItems != 3 {
		t.Errorf("expected 3 users, got %d", all.TotalItems)
	}

	role := models.RoleManager
	managers, err := svc.ListUsers(pagination.PageRequest{Page: 1, PageSize: 1}, &role)
	testutil.AssertNoError(t, err)
	if managers.TotalItems != 2 {
		t.Errorf("expected 2 managers, got %d", managers.TotalItems)
	}
	if len(managers.Data) != 1 || managers.TotalPages != 2 {
		t.Errorf("expected 1 item on 2 pages, got %d on %d", len(managers.Data), managers.TotalPages)
	}
}

func TestUpdateUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)

	user := testutil.CreateTestUser(t, db, models.RoleManager)
	first := "Paolo"
	active := false

	updated, err := svc.UpdateUser(user.ID, UserUpdate{FirstName: &first, IsActive: &active})
	testutil.AssertNoError(t, err)

	if updated.FirstName != "Paolo" {
		t.Errorf("expected first name Paolo, got %s", updated.FirstName)
	}
	if updated.IsActive {
		t.Error("expected user to be deactivated")
	}
	if updated.LastName != user.LastName {
		t.Errorf("expected last name unchanged, got %s", updated.LastName)
	}
}

func TestChangeRole(t *testing.T) {
	t.Run("promotion_clears_assignments", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		manager := testutil.CreateTestUser(t, db, models.RoleManager)
		condo := testutil.CreateTestCondominium(t, db)
		testutil.AssignManager(t, db, manager, condo)

		user, err := svc.ChangeRole(manager.ID, models.RoleAdmin)
		testutil.AssertNoError(t, err)

		if user.Role != models.RoleAdmin {
			t.Errorf("expected admin role, got %s", user.Role)
		}
		if len(user.ManagedCondominiums) != 0 {
			t.Errorf("expected no managed condominiums, got %d", len(user.ManagedCondominiums))
		}
	})

	t.Run("invalid_role", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user := testutil.CreateTestUser(t, db, models.RoleManager)
		_, err := svc.ChangeRole(user.ID, models.Role("root"))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestDeleteUser(t *testing.T) {
	t.Run("removes_user_and_notifications", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user := testutil.CreateTestUser(t, db, models.RoleManager)
		condo := testutil.CreateTestCondominium(t, db)
		testutil.AssignManager(t, db, user, condo)
		testutil.CreateTestNotification(t, db, user.ID)

		testutil.AssertNoError(t, svc.DeleteUser(user.ID))

		var count int64
		db.Model(&models.User{}).Where("id = ?", user.ID).Count(&count)
		if count != 0 {
			t.Error("expected user to be deleted")
		}
		db.Model(&models.Notification{}).Where("user_id = ?", user.ID).Count(&count)
		if count != 0 {
			t.Error("expected notifications to be deleted")
		}
		db.Table("user_condominiums").Where("user_id = ?", user.ID).Count(&count)
		if count != 0 {
			t.Error("expected assignments to be deleted")
		}
	})

	t.Run("creator_of_expenses", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user := testutil.CreateTestUser(t, db, models.RoleManager)
		condo := testutil.CreateTestCondominium(t, db)
		testutil.CreateTestExpense(t, db, condo.ID, user.ID, "10.00")

		err := svc.DeleteUser(user.ID)
		testutil.AssertAppError(t, err, "USER_HAS_EXPENSES")
	})

	t.Run("approver_of_expenses", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		admin := testutil.CreateTestUser(t, db, models.RoleAdmin)
		manager := testutil.CreateTestUser(t, db, models.RoleManager)
		condo := testutil.CreateTestCondominium(t, db)
		expense := testutil.CreateTestExpense(t, db, condo.ID, manager.ID, "10.00")
		db.Model(expense).Updates(map[string]any{"status": models.ExpenseStatusApproved, "approved_by_id": admin.ID, "approved_at": time.Now()})

		err := svc.DeleteUser(admin.ID)
		testutil.AssertAppError(t, err, "USER_HAS_EXPENSES")
	})

	t.Run("uploader_of_attachment", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		admin := testutil.CreateTestUser(t, db, models.RoleAdmin)
		manager := testutil.CreateTestUser(t, db, models.RoleManager)
		condo := testutil.CreateTestCondominium(t, db)
		expense := testutil.CreateTestExpense(t, db, condo.ID, manager.ID, "10.00")
		file := &models.File{
			FileName:     "fattura.pdf",
			ContentType:  "application/pdf",
			StoragePath:  "2025/03/fattura.pdf",
			Size:         4,
			UploadedByID: admin.ID,
		}
		file.SetOwner(expense.Owner())
		testutil.AssertNoError(t, db.Create(file).Error)

		err := svc.DeleteUser(admin.ID)
		testutil.AssertAppError(t, err, "USER_HAS_EXPENSES")

		var count int64
		db.Model(&models.User{}).Where("id = ?", admin.ID).Count(&count)
		if count != 1 {
			t.Error("expected uploader to be kept")
		}
	})
}
