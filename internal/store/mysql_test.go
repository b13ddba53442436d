// internal/store/mysql_test.go
//
// Unit-tests for the MySQL backend using sqlmock.
//
// Run: go test ./internal/store -v

package store

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/formrelay/internal/submission"
)

func newMock(t *testing.T) (*MySQL, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet SQL expectations: %v", err)
		}
		db.Close()
	})
	return NewMySQL(sqlx.NewDb(db, "sqlmock")), mock
}

func strp(s string) *string { return &s }

func TestMySQLInsertContact(t *testing.T) {
	s, mock := newMock(t)
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := &submission.Contact{
		Meta: submission.Meta{ID: "2f1c", SubmittedAt: at, RelayStatus: submission.RelayPending, ClientIP: "203.0.113.7"},
		ContactFields: submission.ContactFields{
			Name: "Ada", Email: "ada@example.com", Company: strp("Acme"), Message: "hi",
		},
	}

	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO contact_submissions (id, name, email, company, project_type, budget, message, submitted_at, relay_status, client_ip) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)).
		WithArgs("2f1c", "Ada", "ada@example.com", "Acme", nil, nil, "hi", at, "pending", "203.0.113.7").
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := s.Insert(context.Background(), rec); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if rec.StoreID != "" {
		t.Fatalf("Insert must not mutate the record, StoreID = %q", rec.StoreID)
	}
}

func TestMySQLInsertWaitlistError(t *testing.T) {
	s, mock := newMock(t)
	rec := &submission.Waitlist{
		Meta:           submission.Meta{ID: "w1", RelayStatus: submission.RelayPending, ClientIP: "unknown"},
		WaitlistFields: submission.WaitlistFields{Name: "Bo", Email: "bo@example.com"},
	}
	down := errors.New("connection reset")
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO waitlist_submissions (id, name, email, interests, submitted_at, relay_status, client_ip)`)).
		WillReturnError(down)

	err := s.Insert(context.Background(), rec)
	if !errors.Is(err, down) {
		t.Fatalf("err = %v; want wrapped %v", err, down)
	}
}

func TestMySQLSetRelayStatus(t *testing.T) {
	s, mock := newMock(t)
	q := regexp.QuoteMeta(`UPDATE contact_submissions SET relay_status = ? WHERE id = ? AND relay_status = ?`)

	mock.ExpectExec(q).WithArgs("sent", "id-1", "pending").WillReturnResult(sqlmock.NewResult(0, 1))
	if err := s.SetRelayStatus(context.Background(), submission.CategoryContact, "id-1", submission.RelaySent); err != nil {
		t.Fatalf("SetRelayStatus: %v", err)
	}

	mock.ExpectExec(q).WithArgs("failed", "id-1", "pending").WillReturnResult(sqlmock.NewResult(0, 0))
	err := s.SetRelayStatus(context.Background(), submission.CategoryContact, "id-1", submission.RelayFailed)
	if !errors.Is(err, submission.ErrNotPending) {
		t.Fatalf("err = %v; want ErrNotPending", err)
	}
}

func TestMySQLEmailExists(t *testing.T) {
	s, mock := newMock(t)
	q := regexp.QuoteMeta(`SELECT 1 FROM waitlist_submissions WHERE email = ? LIMIT 1`)

	mock.ExpectQuery(q).WithArgs("a@example.com").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(q).WithArgs("b@example.com").WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectQuery(q).WithArgs("c@example.com").WillReturnError(errors.New("timeout"))

	ctx := context.Background()
	if ok, err := s.EmailExists(ctx, submission.CategoryWaitlist, "a@example.com"); err != nil || !ok {
		t.Fatalf("a: ok=%v err=%v; want true, nil", ok, err)
	}
	if ok, err := s.EmailExists(ctx, submission.CategoryWaitlist, "b@example.com"); err != nil || ok {
		t.Fatalf("b: ok=%v err=%v; want false, nil", ok, err)
	}
	if _, err := s.EmailExists(ctx, submission.CategoryWaitlist, "c@example.com"); err == nil {
		t.Fatal("c: expected error")
	}
}

func TestMySQLRecentContacts(t *testing.T) {
	s, mock := newMock(t)
	newer := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT `+contactCols+` FROM contact_submissions ORDER BY submitted_at DESC, row_id DESC LIMIT ?`,
	)).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows(strings.Split(strings.ReplaceAll(contactCols, " ", ""), ",")).
			AddRow(int64(9), "id-9", "Ada", "ada@example.com", "Acme", nil, nil, "hi", newer, "sent", "203.0.113.7").
			AddRow(int64(8), "id-8", "Bo", "bo@example.com", nil, "web", "10k", "yo", older, "failed", "unknown"))

	got, err := s.RecentContacts(context.Background(), 2)
	if err != nil {
		t.Fatalf("RecentContacts: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d; want 2", len(got))
	}
	first := got[0]
	if first.StoreID != "9" || first.ID != "id-9" || first.RelayStatus != submission.RelaySent {
		t.Errorf("first meta = %+v", first.Meta)
	}
	if first.Company == nil || *first.Company != "Acme" || first.ProjectType != nil {
		t.Errorf("first optional fields = %v, %v", first.Company, first.ProjectType)
	}
	if !first.SubmittedAt.Equal(newer) || first.SubmittedAt.Location() != time.UTC {
		t.Errorf("SubmittedAt = %v", first.SubmittedAt)
	}
	if got[1].ProjectType == nil || *got[1].ProjectType != "web" {
		t.Errorf("second project type = %v", got[1].ProjectType)
	}
}

func TestMySQLRecentWaitlistEmpty(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM waitlist_submissions ORDER BY submitted_at DESC, row_id DESC LIMIT ?`)).
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows(strings.Split(strings.ReplaceAll(waitlistCols, " ", ""), ",")))

	got, err := s.RecentWaitlist(context.Background(), 50)
	if err != nil {
		t.Fatalf("RecentWaitlist: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("got %#v; want empty non-nil slice", got)
	}
}

func TestMySQLMigrate(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS contact_submissions").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS waitlist_submissions").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
}

func TestMySQLEmailIsExactMatch(t *testing.T) {
	for _, ddl := range mysqlSchema {
		if !strings.Contains(ddl, "email        VARCHAR(254)  COLLATE utf8mb4_bin NOT NULL") {
			t.Fatalf("email column not binary-collated in:\n%s", ddl)
		}
	}
}

func TestUnknownCategoryRejected(t *testing.T) {
	s, _ := newMock(t)
	err := s.SetRelayStatus(context.Background(), "newsletter", "x", submission.RelaySent)
	if !errors.Is(err, submission.ErrUnknownCategory) {
		t.Fatalf("err = %v; want ErrUnknownCategory", err)
	}
	if _, err := s.EmailExists(context.Background(), "newsletter", "x@example.com"); !errors.Is(err, submission.ErrUnknownCategory) {
		t.Fatalf("err = %v; want ErrUnknownCategory", err)
	}
}

func TestMySQLDSNForcesParseTime(t *testing.T) {
	got, err := mysqlDSN("forms:pw@tcp(127.0.0.1:3306)/forms")
	if err != nil {
		t.Fatalf("mysqlDSN: %v", err)
	}
	if !strings.Contains(got, "parseTime=true") {
		t.Fatalf("dsn %q lacks parseTime=true", got)
	}
	if _, err := mysqlDSN("not a dsn"); err == nil {
		t.Fatal("expected parse error")
	}
}
