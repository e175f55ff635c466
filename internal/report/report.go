// Package report renders condominium expense reports.
package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// Header identifies the condominium a report is about.
type Header struct {
	Name       string
	Address    string
	City       string
	Province   string
	PostalCode string
}

// StatusTotal is the amount and count of expenses in one status.
type StatusTotal struct {
	Label  string
	Amount decimal.Decimal
	Count  int
}

// Line is one expense row.
type Line struct {
	Date        time.Time
	Description string
	Category    string
	Amount      decimal.Decimal
	Status      string
	CreatedBy   string
}

// Document is everything a renderer needs to produce a report.
type Document struct {
	Title       string
	Header      Header
	From        *time.Time
	To          *time.Time
	Totals      []StatusTotal
	Lines       []Line
	GeneratedAt time.Time
}

// Renderer turns a Document into a byte stream.
type Renderer interface {
	Render(doc Document) ([]byte, error)
	ContentType() string
}
