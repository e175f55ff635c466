// Package seed loads demo data: an admin, three managers with one
// condominium each, sample expenses in every status and a few notifications.
// Running it again only fills in what is missing.
package seed

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"condomanager/internal/logger"
	"condomanager/internal/models"
)

// AdminEmail is the login of the seeded administrator.
const AdminEmail = "admin@condomanager.local"

// Options sets the passwords of the seeded accounts.
type Options struct {
	AdminPassword   string
	ManagerPassword string
	// Now anchors sample dates; zero means time.Now.
	Now time.Time
}

// DefaultOptions returns the demo passwords.
func DefaultOptions() Options {
	return Options{AdminPassword: "Admin123!", ManagerPassword: "Manager123!"}
}

// Result counts the rows the run created.
type Result struct {
	Users         int
	Condominiums  int
	Assignments   int
	Expenses      int
	Notifications int
}

type managerSeed struct {
	email, firstName, lastName string
	condominium                models.Condominium
}

var managers = []managerSeed{
	{"gestore1@condomanager.local", "Giovanni", "Rossi", models.Condominium{Name: "Residenza del Sole", Address: "Via Roma 123", City: "Milano", Province: "MI", PostalCode: "20100"}},
	{"gestore2@condomanager.local", "Giulia", "Bianchi", models.Condominium{Name: "Villa Verde", Address: "Via Garibaldi 456", City: "Roma", Province: "RM", PostalCode: "00100"}},
	{"gestore3@condomanager.local", "Marco", "Esposito", models.Condominium{Name: "Palazzo Moderno", Address: "Via Dante 789", City: "Torino", Province: "TO", PostalCode: "10100"}},
}

// Run seeds db inside a single transaction.
func Run(db *gorm.DB, opts Options) (*Result, error) {
	if opts.AdminPassword == "" || opts.ManagerPassword == "" {
		return nil, errors.New("seed passwords must not be empty")
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	res := &Result{}
	err := db.Transaction(func(tx *gorm.DB) error {
		admin, err := ensureUser(tx, res, AdminEmail, "Amministratore", "Sistema", models.RoleAdmin, opts.AdminPassword)
		if err != nil {
			return err
		}

		var users []*models.User
		var condos []*models.Condominium
		for _, m := range managers {
			u, err := ensureUser(tx, res, m.email, m.firstName, m.lastName, models.RoleManager, opts.ManagerPassword)
			if err != nil {
				return err
			}
			c, err := ensureCondominium(tx, res, m.condominium)
			if err != nil {
				return err
			}
			if err := ensureAssignment(tx, res, u, c); err != nil {
				return err
			}
			users = append(users, u)
			condos = append(condos, c)
		}

		expenses, err := ensureExpenses(tx, res, admin, users[0], condos[0], now)
		if err != nil {
			return err
		}
		return ensureNotifications(tx, res, users, expenses, now)
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Infow("seed completed",
		"users", res.Users,
		"condominiums", res.Condominiums,
		"assignments", res.Assignments,
		"expenses", res.Expenses,
		"notifications", res.Notifications,
	)
	return res, nil
}

func ensureUser(tx *gorm.DB, res *Result, email, firstName, lastName string, role models.Role, password string) (*models.User, error) {
	var user models.User
	err := tx.Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up user %s: %w", email, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user = models.User{
		Email:     email,
		Password:  string(hash),
		FirstName: firstName,
		LastName:  lastName,
		Role:      role,
		IsActive:  true,
	}
	if err := tx.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", email, err)
	}
	res.Users++
	return &user, nil
}

func ensureCondominium(tx *gorm.DB, res *Result, c models.Condominium) (*models.Condominium, error) {
	var existing models.Condominium
	err := tx.Where("name = ?", c.Name).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up condominium %s: %w", c.Name, err)
	}
	if err := tx.Create(&c).Error; err != nil {
		return nil, fmt.Errorf("failed to create condominium %s: %w", c.Name, err)
	}
	res.Condominiums++
	return &c, nil
}

func ensureAssignment(tx *gorm.DB, res *Result, u *models.User, c *models.Condominium) error {
	var count int64
	if err := tx.Table("user_condominiums").
		Where("user_id = ? AND condominium_id = ?", u.ID, c.ID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check assignment: %w", err)
	}
	if count > 0 {
		return nil
	}
	if err := tx.Model(u).Association("ManagedCondominiums").Append(c); err != nil {
		return fmt.Errorf("failed to assign %s to %s: %w", u.Email, c.Name, err)
	}
	res.Assignments++
	return nil
}

func ensureExpenses(tx *gorm.DB, res *Result, admin, creator *models.User, condo *models.Condominium, now time.Time) ([]*models.Expense, error) {
	day := 24 * time.Hour
	approvedAt := now.Add(-2 * day)
	rejectedAt := now
	reason := "Preventivo troppo alto"

	samples := []models.Expense{
		{
			Description: "Pulizia scale",
			Amount:      decimal.RequireFromString("150.00"),
			Date:        now.Add(-5 * day),
			Category:    models.CategoryCleaning,
			Status:      models.ExpenseStatusPending,
		},
		{
			Description:  "Manutenzione ascensore",
			Amount:       decimal.RequireFromString("500.00"),
			Date:         now.Add(-3 * day),
			Category:     models.CategoryMaintenance,
			Status:       models.ExpenseStatusApproved,
			ApprovedByID: &admin.ID,
			ApprovedAt:   &approvedAt,
		},
		{
			Description:     "Bolletta luce",
			Amount:          decimal.RequireFromString("200.00"),
			Date:            now.Add(-1 * day),
			Category:        models.CategoryEnergy,
			Status:          models.ExpenseStatusRejected,
			RejectionReason: &reason,
			ApprovedByID:    &admin.ID,
			ApprovedAt:      &rejectedAt,
		},
	}

	out := make([]*models.Expense, 0, len(samples))
	for i := range samples {
		e := samples[i]
		var existing models.Expense
		err := tx.Where("description = ? AND condominium_id = ?", e.Description, condo.ID).First(&existing).Error
		if err == nil {
			out = append(out, &existing)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to look up expense: %w", err)
		}

		e.CreatedByID = creator.ID
		e.CondominiumID = condo.ID
		e.Version = 1
		if err := tx.Create(&e).Error; err != nil {
			return nil, fmt.Errorf("failed to create expense %q: %w", e.Description, err)
		}
		res.Expenses++
		out = append(out, &e)
	}
	return out, nil
}

func ensureNotifications(tx *gorm.DB, res *Result, users []*models.User, expenses []*models.Expense, now time.Time) error {
	day := 24 * time.Hour
	samples := []struct {
		n   models.Notification
		age time.Duration
	}{
		{models.Notification{
			Title:     "Spesa approvata",
			Message:   "La spesa \"Manutenzione ascensore\" è stata approvata",
			Type:      models.NotificationExpenseApproved,
			UserID:    users[0].ID,
			ExpenseID: &expenses[1].ID,
		}, 2 * day},
		{models.Notification{
			Title:     "Spesa rifiutata",
			Message:   "La spesa \"Bolletta luce\" è stata rifiutata: Preventivo troppo alto",
			Type:      models.NotificationExpenseRejected,
			UserID:    users[0].ID,
			ExpenseID: &expenses[2].ID,
		}, 0},
		{models.Notification{
			Title:   "Rate in scadenza",
			Message: "Ricorda che hai delle rate in scadenza per il mese corrente",
			Type:    models.NotificationPaymentDue,
			UserID:  users[1].ID,
		}, 5 * day},
	}

	for _, s := range samples {
		var count int64
		if err := tx.Model(&models.Notification{}).
			Where("title = ? AND user_id = ?", s.n.Title, s.n.UserID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to look up notification: %w", err)
		}
		if count > 0 {
			continue
		}
		n := s.n
		n.CreatedAt = now.Add(-s.age)
		if err := tx.Create(&n).Error; err != nil {
			return fmt.Errorf("failed to create notification %q: %w", n.Title, err)
		}
		res.Notifications++
	}
	return nil
}
