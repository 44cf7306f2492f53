package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"

	"github.com/kailas-cloud/advsearch/internal/domain"
	"github.com/kailas-cloud/advsearch/internal/domain/document"
	"github.com/kailas-cloud/advsearch/internal/domain/search/criteria"
)

func newMockClient(t *testing.T) (*Client, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return New(db, zap.NewNop()), mock
}

func TestOpen_RequiresDSN(t *testing.T) {
	if _, err := Open("  ", zap.NewNop()); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestWrite_Ticket(t *testing.T) {
	c, mock := newMockClient(t)
	doc, err := document.NewTicket(document.Ticket{
		ID: 7, Summary: "Crash on save", Description: "boom", Reporter: "joe",
		Status: "new", Time: time.Date(2011, 4, 20, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatal(err)
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO " + TableName)).
		WithArgs("ticket_7", "ticket", sqlmock.AnyArg(), sqlmock.AnyArg(), "joe", "new",
			int64(7), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := c.Write(context.Background(), doc); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestRemove(t *testing.T) {
	c, mock := newMockClient(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM " + TableName + " WHERE id=$1")).
		WithArgs("wiki_TracGuide").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := c.Remove(context.Background(), "wiki_TracGuide"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestRemove_Error(t *testing.T) {
	c, mock := newMockClient(t)
	mock.ExpectExec("DELETE FROM").WillReturnError(errors.New("conn reset"))

	if err := c.Remove(context.Background(), "wiki_X"); err == nil {
		t.Fatal("expected error")
	}
}

func TestSearch(t *testing.T) {
	c, mock := newMockClient(t)
	ts := time.Date(2011, 4, 20, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "source", "name", "text", "author", "time", "ticket_id", "score", "total"}).
		AddRow("wiki_TracGuide", "wiki", "TracGuide", "The Trac user guide", "admin", ts, nil, 0.8, int64(2)).
		AddRow("ticket_7", "ticket", "Crash on save", "boom", "joe", nil, int64(7), 0.4, int64(2))

	mock.ExpectQuery(regexp.QuoteMeta("FROM " + TableName)).WillReturnRows(rows)

	set, err := c.Search(context.Background(), criteria.Criteria{Q: "trac", PerPage: 15}, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if set.Total != 2 || len(set.Items) != 2 {
		t.Fatalf("set = %+v", set)
	}
	first, second := set.Items[0], set.Items[1]
	if first.ID() != "wiki_TracGuide" || first.Date() != "Wed Apr 20 2011" || first.Score() != 0.8 {
		t.Errorf("first = %+v", first)
	}
	if second.TicketID() != 7 || second.Date() != "" {
		t.Errorf("second = %+v", second)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestSearch_PastLastMatchKeepsTotal(t *testing.T) {
	c, mock := newMockClient(t)
	empty := sqlmock.NewRows([]string{"id", "source", "name", "text", "author", "time", "ticket_id", "score", "total"})

	mock.ExpectQuery(regexp.QuoteMeta("COUNT(*) OVER() AS total")).WillReturnRows(empty)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM " + TableName + " WHERE")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(5)))

	set, err := c.Search(context.Background(), criteria.Criteria{Q: "trac", PerPage: 5}, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if set.Total != 5 || len(set.Items) != 0 {
		t.Errorf("set = %+v, want total 5 and no items", set)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestSearch_EmptyFirstPageSkipsCount(t *testing.T) {
	c, mock := newMockClient(t)
	mock.ExpectQuery(regexp.QuoteMeta("COUNT(*) OVER() AS total")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "source", "name", "text", "author", "time", "ticket_id", "score", "total"}))

	set, err := c.Search(context.Background(), criteria.Criteria{Q: "nothing", PerPage: 5}, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if set.Total != 0 {
		t.Errorf("Total = %d", set.Total)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestSearch_CountError(t *testing.T) {
	c, mock := newMockClient(t)
	mock.ExpectQuery(regexp.QuoteMeta("COUNT(*) OVER() AS total")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "source", "name", "text", "author", "time", "ticket_id", "score", "total"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM")).WillReturnError(errors.New("connection reset"))

	if _, err := c.Search(context.Background(), criteria.Criteria{Q: "x", PerPage: 5}, 10); err == nil {
		t.Fatal("expected error")
	}
}

func TestSearch_QueryError(t *testing.T) {
	c, mock := newMockClient(t)
	mock.ExpectQuery("SELECT").WillReturnError(errors.New("relation does not exist"))

	if _, err := c.Search(context.Background(), criteria.Criteria{Q: "x", PerPage: 5}, 0); err == nil {
		t.Fatal("expected error")
	}
}

func TestEnsureSchema(t *testing.T) {
	c, mock := newMockClient(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS " + TableName)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := c.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
}

func TestPing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()
	mock.ExpectPing().WillReturnError(errors.New("down"))

	if err := New(db, zap.NewNop()).Ping(context.Background()); err == nil {
		t.Error("expected ping error")
	}
}
