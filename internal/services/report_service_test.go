package services

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"condomanager/internal/models"
	"condomanager/internal/report"
	"condomanager/internal/testutil"
)

type recordingRenderer struct {
	doc report.Document
	err error
}

func (r *recordingRenderer) Render(doc report.Document) ([]byte, error) {
	r.doc = doc
	if r.err != nil {
		return nil, r.err
	}
	return []byte("rendered"), nil
}

func (r *recordingRenderer) ContentType() string { return "application/pdf" }

func TestGenerateReport(t *testing.T) {
	t.Run("document_contents", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		renderer := &recordingRenderer{}
		svc := NewReportService(db, renderer)

		admin := testutil.CreateTestUser(t, db, models.RoleAdmin)
		condo := testutil.CreateTestCondominium(t, db)
		older := testutil.CreateTestExpenseWithStatus(t, db, condo.ID, admin.ID, "100.00", models.ExpenseStatusApproved)
		db.Model(older).Update("date", time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC))
		newer := testutil.CreateTestExpense(t, db, condo.ID, admin.ID, "25.50")
		db.Model(newer).Update("date", time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC))

		rep, err := svc.GenerateReport(testutil.PrincipalFor(t, db, admin), condo.ID, nil, nil)
		testutil.AssertNoError(t, err)

		if rep.ContentType != "application/pdf" || string(rep.Content) != "rendered" {
			t.Errorf("unexpected report %q / %q", rep.ContentType, rep.Content)
		}
		doc := renderer.doc
		if doc.Title != "Report Spese Condominio" {
			t.Errorf("unexpected title %q", doc.Title)
		}
		if doc.Header.Name != condo.Name || doc.Header.Province != condo.Province {
			t.Errorf("unexpected header %+v", doc.Header)
		}
		if len(doc.Lines) != 2 || doc.Lines[0].Description != newer.Description {
			t.Fatalf("expected newest expense first, got %+v", doc.Lines)
		}
		if doc.Lines[0].CreatedBy != admin.Email {
			t.Errorf("expected creator email, got %q", doc.Lines[0].CreatedBy)
		}
		if doc.Lines[1].Status != "Approvata" {
			t.Errorf("expected Italian status label, got %q", doc.Lines[1].Status)
		}
		testutil.AssertDecimal(t, "100.00", doc.Totals[0].Amount)
		testutil.AssertDecimal(t, "25.50", doc.Totals[1].Amount)
		if doc.Totals[2].Count != 0 {
			t.Errorf("expected no rejected expenses, got %d", doc.Totals[2].Count)
		}
	})

	t.Run("date_window", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		renderer := &recordingRenderer{}
		svc := NewReportService(db, renderer)

		admin := testutil.CreateTestUser(t, db, models.RoleAdmin)
		condo := testutil.CreateTestCondominium(t, db)
		for _, day := range []int{1, 15, 28} {
			e := testutil.CreateTestExpense(t, db, condo.ID, admin.ID, "10.00")
			db.Model(e).Update("date", time.Date(2025, 2, day, 0, 0, 0, 0, time.UTC))
		}

		from := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
		to := time.Date(2025, 2, 28, 23, 59, 59, 0, time.UTC)
		_, err := svc.GenerateReport(testutil.PrincipalFor(t, db, admin), condo.ID, &from, &to)
		testutil.AssertNoError(t, err)

		if len(renderer.doc.Lines) != 2 {
			t.Errorf("expected 2 expenses in window, got %d", len(renderer.doc.Lines))
		}

		_, err = svc.GenerateReport(testutil.PrincipalFor(t, db, admin), condo.ID, &to, &from)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("access_denied", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReportService(db, &recordingRenderer{})

		manager := testutil.CreateTestUser(t, db, models.RoleManager)
		condo := testutil.CreateTestCondominium(t, db)

		_, err := svc.GenerateReport(testutil.PrincipalFor(t, db, manager), condo.ID, nil, nil)
		testutil.AssertAppError(t, err, "ACCESS_DENIED")
	})

	t.Run("renderer_failure", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReportService(db, &recordingRenderer{err: errors.New("font missing")})

		admin := testutil.CreateTestUser(t, db, models.RoleAdmin)
		condo := testutil.CreateTestCondominium(t, db)

		_, err := svc.GenerateReport(testutil.PrincipalFor(t, db, admin), condo.ID, nil, nil)
		testutil.AssertAppError(t, err, "EXTERNAL_SERVICE_ERROR")
	})

	t.Run("real_pdf", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReportService(db, report.NewPDFRenderer())

		admin := testutil.CreateTestUser(t, db, models.RoleAdmin)
		condo := testutil.CreateTestCondominium(t, db)
		testutil.CreateTestExpense(t, db, condo.ID, admin.ID, "1234.56")

		rep, err := svc.GenerateReport(testutil.PrincipalFor(t, db, admin), condo.ID, nil, nil)
		testutil.AssertNoError(t, err)
		if !bytes.HasPrefix(rep.Content, []byte("%PDF-")) {
			t.Error("expected PDF output")
		}
	})
}
