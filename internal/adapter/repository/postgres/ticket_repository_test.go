package postgres_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/srgjo27/altair_ticket/internal/adapter/repository/postgres"
	"github.com/srgjo27/altair_ticket/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

func sampleTicket() *domain.Ticket {
	return &domain.Ticket{
		ID:           domain.TicketID("alice", uuid.MustParse("0d9f6a1e-52a4-4c7c-a9e1-8f6c1b2f9a11"), 1, 2),
		UserID:       "alice",
		EventID:      uuid.MustParse("0d9f6a1e-52a4-4c7c-a9e1-8f6c1b2f9a11"),
		Seat:         domain.TicketSeat{Row: 1, Col: 2, Category: domain.CategoryOro},
		PosterURL:    "https://cdn.example.com/p.png",
		Price:        decimal.NewFromInt(75),
		PaymentRef:   "pi_1",
		PurchaseDate: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
		Available:    true,
	}
}

func expectEventLock(mock sqlmock.Sqlmock, eventID uuid.UUID, live bool) {
	mock.ExpectQuery(q(`SELECT event_available FROM events WHERE id = $1 FOR SHARE`)).
		WithArgs(eventID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"event_available"}).AddRow(live))
}

func TestPurchase_Success(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewTicketRepository(db)
	tk := sampleTicket()

	mock.ExpectBegin()
	expectEventLock(mock, tk.EventID, true)
	mock.ExpectExec(q(`UPDATE event_seats SET is_available = FALSE`)).
		WithArgs("alice", tk.EventID.String(), 1, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q(`INSERT INTO tickets`)).
		WithArgs(tk.ID, "alice", tk.EventID.String(), 1, 2, "oro", tk.PosterURL, sqlmock.AnyArg(), "pi_1", tk.PurchaseDate, true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.Purchase(context.Background(), tk))
}

func TestPurchase_SeatAlreadyTaken(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewTicketRepository(db)
	tk := sampleTicket()

	mock.ExpectBegin()
	expectEventLock(mock, tk.EventID, true)
	mock.ExpectExec(q(`UPDATE event_seats`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Purchase(context.Background(), tk)

	assert.ErrorIs(t, err, domain.ErrSeatUnavailable)
}

func TestPurchase_DuplicateTicket(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewTicketRepository(db)
	tk := sampleTicket()

	mock.ExpectBegin()
	expectEventLock(mock, tk.EventID, true)
	mock.ExpectExec(q(`UPDATE event_seats`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q(`INSERT INTO tickets`)).WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := repo.Purchase(context.Background(), tk)

	assert.ErrorIs(t, err, domain.ErrSeatUnavailable)
}

func TestPurchase_CancelledEvent(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewTicketRepository(db)
	tk := sampleTicket()

	mock.ExpectBegin()
	expectEventLock(mock, tk.EventID, false)
	mock.ExpectRollback()

	err := repo.Purchase(context.Background(), tk)

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestPurchase_ConnectionLost(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewTicketRepository(db)
	tk := sampleTicket()

	mock.ExpectBegin()
	expectEventLock(mock, tk.EventID, true)
	mock.ExpectExec(q(`UPDATE event_seats`)).WillReturnError(&pq.Error{Code: "08006"})
	mock.ExpectRollback()

	err := repo.Purchase(context.Background(), tk)

	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestCancelTicket_ReleaseThenDelete(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewTicketRepository(db)
	tk := sampleTicket()

	mock.ExpectBegin()
	mock.ExpectExec(q(`UPDATE event_seats SET is_available = TRUE, purchased_by = NULL`)).
		WithArgs(tk.EventID.String(), 1, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q(`DELETE FROM tickets WHERE id = $1`)).
		WithArgs(tk.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.Cancel(context.Background(), tk))
}

func TestCancelTicket_MissingTicketRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewTicketRepository(db)
	tk := sampleTicket()

	mock.ExpectBegin()
	mock.ExpectExec(q(`UPDATE event_seats`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q(`DELETE FROM tickets`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Cancel(context.Background(), tk)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTicketGetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewTicketRepository(db)
	tk := sampleTicket()

	mock.ExpectQuery(q(`FROM tickets WHERE id = $1`)).
		WithArgs(tk.ID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "event_id", "row_number", "col_number", "category",
			"poster_url", "price", "payment_ref", "purchase_date", "available",
		}).AddRow(tk.ID, "alice", tk.EventID.String(), 1, 2, "oro", tk.PosterURL, "75.00", "pi_1", tk.PurchaseDate, true))

	got, err := repo.GetByID(context.Background(), tk.ID)

	require.NoError(t, err)
	assert.Equal(t, tk.EventID, got.EventID)
	assert.Equal(t, domain.CategoryOro, got.Seat.Category)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(75)))

	mock.ExpectQuery(q(`FROM tickets WHERE id = $1`)).WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFindAndReleaseOrphanedSeats(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewTicketRepository(db)
	eventID := uuid.New()

	mock.ExpectQuery(q(`LEFT JOIN tickets t`)).
		WillReturnRows(sqlmock.NewRows([]string{"event_id", "row_number", "col_number"}).AddRow(eventID.String(), 3, 4))

	refs, err := repo.FindOrphanedSeats(context.Background())
	require.NoError(t, err)
	require.Equal(t, []domain.SeatRef{{EventID: eventID, Row: 3, Col: 4}}, refs)

	mock.ExpectExec(q(`AND NOT EXISTS`)).
		WithArgs(eventID.String(), 3, 4).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.ReleaseOrphanedSeat(context.Background(), refs[0]))
}
