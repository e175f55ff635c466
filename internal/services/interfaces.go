package services

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"condomanager/internal/access"
	"condomanager/internal/models"
	"condomanager/internal/pagination"
)

// UserUpdate holds optional profile fields to change on a user.
type UserUpdate struct {
	FirstName *string
	LastName  *string
	IsActive  *bool
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string, role models.Role) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
	LoadPrincipal(userID string) (*access.Principal, error)
	ChangePassword(userID, currentPassword, newPassword string) error
	ListUsers(page pagination.PageRequest, role *models.Role) (*pagination.PageResponse[models.User], error)
	UpdateUser(userID string, update UserUpdate) (*models.User, error)
	ChangeRole(userID string, role models.Role) (*models.User, error)
	DeleteUser(userID string) error
}

// CondominiumInput holds the fields of a condominium. On update, empty
// strings leave the stored value unchanged.
type CondominiumInput struct {
	Name       string
	Address    string
	City       string
	Province   string
	PostalCode string
}

// CategoryTotal is the approved amount and count for one category.
type CategoryTotal struct {
	Category models.ExpenseCategory `json:"category"`
	Total    decimal.Decimal        `json:"total"`
	Count    int                    `json:"count"`
}

// ExpenseSummary aggregates the expenses of a condominium.
type ExpenseSummary struct {
	CondominiumID     string          `json:"condominium_id"`
	TotalApproved     decimal.Decimal `json:"total_approved"`
	ByCategory        []CategoryTotal `json:"by_category"`
	ApprovedCount     int             `json:"approved_count"`
	PendingCount      int             `json:"pending_count"`
	RejectedCount     int             `json:"rejected_count"`
	LatestExpenseDate *time.Time      `json:"latest_expense_date"`
}

// CondominiumServicer defines the contract for condominium-related business logic.
type CondominiumServicer interface {
	ListCondominiums(p *access.Principal, page pagination.PageRequest) (*pagination.PageResponse[models.Condominium], error)
	GetCondominium(p *access.Principal, id string) (*models.Condominium, error)
	CreateCondominium(input CondominiumInput) (*models.Condominium, error)
	UpdateCondominium(id string, input CondominiumInput) (*models.Condominium, error)
	DeleteCondominium(ctx context.Context, id string) error
	AssignManager(condominiumID, userID string) error
	RemoveManager(condominiumID, userID string) error
	ListManagers(condominiumID string) ([]models.User, error)
	Summarize(p *access.Principal, condominiumID string) (*ExpenseSummary, error)
}

// ExpenseDraft holds the fields of a new expense.
type ExpenseDraft struct {
	CondominiumID string
	Description   string
	Amount        decimal.Decimal
	Date          time.Time
	Category      models.ExpenseCategory
}

// ExpenseChanges holds optional fields to change on a pending expense.
// ExpectedVersion, when set, must match the stored version.
type ExpenseChanges struct {
	Description     *string
	Amount          *decimal.Decimal
	Date            *time.Time
	Category        *models.ExpenseCategory
	ExpectedVersion *int
}

// Upload is a file supplied with a create or update request.
type Upload struct {
	Reader      io.Reader
	FileName    string
	ContentType string
}

// ExpenseFilter holds optional filter parameters for listing expenses.
type ExpenseFilter struct {
	CondominiumID string
	Status        *models.ExpenseStatus
	Category      *models.ExpenseCategory
	FromDate      *time.Time
	ToDate        *time.Time
}

// ExpenseServicer defines the contract for the expense lifecycle.
type ExpenseServicer interface {
	CreateExpense(ctx context.Context, p *access.Principal, draft ExpenseDraft, file *Upload) (*models.Expense, error)
	GetExpense(p *access.Principal, id string) (*models.Expense, error)
	ListExpenses(p *access.Principal, filter ExpenseFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error)
	UpdateExpense(ctx context.Context, p *access.Principal, id string, changes ExpenseChanges, file *Upload) (*models.Expense, error)
	DeleteExpense(ctx context.Context, p *access.Principal, id string) error
	ApproveExpense(p *access.Principal, id string, expectedVersion *int) (*models.Expense, error)
	RejectExpense(p *access.Principal, id string, reason *string, expectedVersion *int) (*models.Expense, error)
	OpenAttachment(ctx context.Context, p *access.Principal, expenseID, fileID string) (*models.File, io.ReadCloser, error)
}

// NotificationInput holds the fields of a notification created through the API.
type NotificationInput struct {
	Title     string
	Message   string
	Type      models.NotificationType
	UserID    string
	ExpenseID *string
}

// NotificationServicer defines the contract for notification-related business logic.
type NotificationServicer interface {
	CreateNotification(input NotificationInput) (*models.Notification, error)
	ListMine(p *access.Principal, unreadOnly bool, page pagination.PageRequest) (*pagination.PageResponse[models.Notification], error)
	UnreadCount(p *access.Principal) (int64, error)
	MarkRead(p *access.Principal, id string) (*models.Notification, error)
	MarkAllRead(p *access.Principal) (int64, error)
	DeleteNotification(p *access.Principal, id string) error
	ListAll(page pagination.PageRequest, userID string) (*pagination.PageResponse[models.Notification], error)
	Broadcast(condominiumID, title, message string, notificationType models.NotificationType) (int, error)
}

// Report is a rendered expense report ready for download.
type Report struct {
	FileName    string
	ContentType string
	Content     []byte
}

// ReportServicer defines the contract for expense report generation.
type ReportServicer interface {
	GenerateReport(p *access.Principal, condominiumID string, from, to *time.Time) (*Report, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
