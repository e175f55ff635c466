package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"condomanager/internal/access"
	"condomanager/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with the given role, a hashed password and a unique email.
func CreateTestUser(t *testing.T, db *gorm.DB, role models.Role) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email, role)
}

// CreateTestUserWithEmail creates a user with the given email and role.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:     email,
		Password:  string(hash),
		FirstName: "Test",
		LastName:  fmt.Sprintf("User%d", nextID()),
		Role:      role,
		IsActive:  true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCondominium creates a condominium with unique name.
func CreateTestCondominium(t *testing.T, db *gorm.DB) *models.Condominium {
	t.Helper()

	condo := &models.Condominium{
		Name:       fmt.Sprintf("Condominio %d", nextID()),
		Address:    "Via Roma 1",
		City:       "Milano",
		Province:   "MI",
		PostalCode: "20100",
	}
	if err := db.Create(condo).Error; err != nil {
		t.Fatalf("failed to create test condominium: %v", err)
	}
	return condo
}

// AssignManager links a user to a condominium.
func AssignManager(t *testing.T, db *gorm.DB, user *models.User, condo *models.Condominium) {
	t.Helper()

	if err := db.Model(user).Association("ManagedCondominiums").Append(condo); err != nil {
		t.Fatalf("failed to assign manager: %v", err)
	}
}

// CreateTestExpense creates a pending expense.
func CreateTestExpense(t *testing.T, db *gorm.DB, condominiumID, creatorID string, amount string) *models.Expense {
	t.Helper()
	return CreateTestExpenseWithStatus(t, db, condominiumID, creatorID, amount, models.ExpenseStatusPending)
}

// CreateTestExpenseWithStatus creates an expense in the given status. Approved
// and rejected expenses get an approver and approval time equal to their creator
// and now, keeping the approval invariant.
func CreateTestExpenseWithStatus(t *testing.T, db *gorm.DB, condominiumID, creatorID, amount string, status models.ExpenseStatus) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		Description:   fmt.Sprintf("Spesa %d", nextID()),
		Amount:        decimal.RequireFromString(amount),
		Date:          time.Now().UTC().Truncate(time.Second),
		Category:      models.CategoryCleaning,
		Status:        status,
		CreatedByID:   creatorID,
		CondominiumID: condominiumID,
		Version:       1,
	}
	if status != models.ExpenseStatusPending {
		now := time.Now().UTC()
		expense.ApprovedByID = &creatorID
		expense.ApprovedAt = &now
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// CreateTestNotification creates an unread notification for userID.
func CreateTestNotification(t *testing.T, db *gorm.DB, userID string) *models.Notification {
	t.Helper()

	n := &models.Notification{
		Title:   fmt.Sprintf("Avviso %d", nextID()),
		Message: "Messaggio di prova",
		Type:    models.NotificationSystem,
		UserID:  userID,
	}
	if err := db.Create(n).Error; err != nil {
		t.Fatalf("failed to create test notification: %v", err)
	}
	return n
}

// PrincipalFor loads the access principal of user, including managed condominiums.
func PrincipalFor(t *testing.T, db *gorm.DB, user *models.User) *access.Principal {
	t.Helper()

	var loaded models.User
	if err := db.Preload("ManagedCondominiums").First(&loaded, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("failed to load principal: %v", err)
	}
	return access.NewPrincipal(&loaded)
}
