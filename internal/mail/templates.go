package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"

	"condomanager/internal/money"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"euro": func(d decimal.Decimal) string { return money.FormatEuro(d) },
	"date": func(t time.Time) string { return t.Format("02/01/2006") },
}).ParseFS(templateFS, "templates/*.html"))

// ExpenseDecision is the data for expense approval and rejection emails.
type ExpenseDecision struct {
	RecipientName   string
	Description     string
	Amount          decimal.Decimal
	Date            time.Time
	Condominium     string
	Approved        bool
	RejectionReason string
}

// subjectDescriptionMax bounds the part of a subject taken from free text.
const subjectDescriptionMax = 120

// Welcome is the data for the account-created email.
type Welcome struct {
	RecipientName string
	Email         string
	Role          string
}

// RenderExpenseDecision renders the subject and HTML body for an approve or
// reject outcome.
func RenderExpenseDecision(d ExpenseDecision) (string, string, error) {
	subject := "Spesa rifiutata: " + shorten(d.Description, subjectDescriptionMax)
	if d.Approved {
		subject = "Spesa approvata: " + shorten(d.Description, subjectDescriptionMax)
	}
	body, err := render("expense_decision.html", d)
	return subject, body, err
}

// RenderWelcome renders the subject and HTML body for a new account.
func RenderWelcome(w Welcome) (string, string, error) {
	body, err := render("welcome.html", w)
	return "Benvenuto in Gestione Condomini", body, err
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

// shorten cuts s to at most limit runes, marking the cut with an ellipsis.
func shorten(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
