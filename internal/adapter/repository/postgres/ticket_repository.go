package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/srgjo27/altair_ticket/internal/core/domain"
)

type TicketRepository struct {
	db *sql.DB
}

func NewTicketRepository(db *sql.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

const ticketColumns = `id, user_id, event_id, row_number, col_number, category, poster_url, price, payment_ref, purchase_date, available`

// Purchase takes the seat with a conditional update and inserts the ticket in
// the same transaction. The event row is share-locked so a concurrent
// cancellation either sees this ticket or makes this purchase fail.
func (r *TicketRepository) Purchase(ctx context.Context, ticket *domain.Ticket) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(err, "begin purchase")
	}

	defer tx.Rollback()

	var live bool
	err = tx.QueryRowContext(ctx, `SELECT event_available FROM events WHERE id = $1 FOR SHARE`, ticket.EventID).Scan(&live)
	if err != nil {
		return mapError(err, "event %s", ticket.EventID)
	}
	if !live {
		return fmt.Errorf("%w: event %s was cancelled", domain.ErrInvalidTransition, ticket.EventID)
	}

	query := `
	UPDATE event_seats
	SET is_available = FALSE,
		purchased_by = $1,
		version = version + 1
	WHERE event_id = $2 AND row_number = $3 AND col_number = $4 AND is_available
	`
	result, err := tx.ExecContext(ctx, query, ticket.UserID, ticket.EventID, ticket.Seat.Row, ticket.Seat.Col)
	if err != nil {
		return mapError(err, "reserve seat %d-%d", ticket.Seat.Row, ticket.Seat.Col)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return mapError(err, "reserve seat %d-%d", ticket.Seat.Row, ticket.Seat.Col)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: seat %d-%d was taken by another purchase", domain.ErrSeatUnavailable, ticket.Seat.Row, ticket.Seat.Col)
	}

	_, err = tx.ExecContext(ctx, `
	INSERT INTO tickets (`+ticketColumns+`)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		ticket.ID, ticket.UserID, ticket.EventID, ticket.Seat.Row, ticket.Seat.Col, string(ticket.Seat.Category),
		ticket.PosterURL, ticket.Price, ticket.PaymentRef, ticket.PurchaseDate, ticket.Available,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: ticket %s already exists", domain.ErrSeatUnavailable, ticket.ID)
		}
		return mapError(err, "insert ticket %s", ticket.ID)
	}

	if err = tx.Commit(); err != nil {
		return mapError(err, "commit purchase")
	}

	return nil
}

func scanTicket(row interface{ Scan(...any) error }) (*domain.Ticket, error) {
	var (
		t   domain.Ticket
		cat string
	)
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.EventID,
		&t.Seat.Row,
		&t.Seat.Col,
		&cat,
		&t.PosterURL,
		&t.Price,
		&t.PaymentRef,
		&t.PurchaseDate,
		&t.Available,
	)
	if err != nil {
		return nil, err
	}
	t.Seat.Category = domain.Category(cat)
	return &t, nil
}

func (r *TicketRepository) GetByID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	t, err := scanTicket(r.db.QueryRowContext(ctx, query, ticketID))
	if err != nil {
		return nil, mapError(err, "ticket %s", ticketID)
	}
	return t, nil
}

func (r *TicketRepository) ListByUser(ctx context.Context, userID string) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE user_id = $1 ORDER BY purchase_date DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, mapError(err, "list tickets of %s", userID)
	}

	defer rows.Close()

	tickets := []domain.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, mapError(err, "scan ticket")
		}
		tickets = append(tickets, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "list tickets of %s", userID)
	}

	return tickets, nil
}

// Cancel releases the seat before deleting the ticket, in one transaction.
func (r *TicketRepository) Cancel(ctx context.Context, ticket *domain.Ticket) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(err, "begin cancel ticket")
	}

	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
	UPDATE event_seats
	SET is_available = TRUE,
		purchased_by = NULL,
		version = version + 1
	WHERE event_id = $1 AND row_number = $2 AND col_number = $3
	`, ticket.EventID, ticket.Seat.Row, ticket.Seat.Col)
	if err != nil {
		return mapError(err, "release seat %d-%d", ticket.Seat.Row, ticket.Seat.Col)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM tickets WHERE id = $1`, ticket.ID)
	if err != nil {
		return mapError(err, "delete ticket %s", ticket.ID)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return mapError(err, "delete ticket %s", ticket.ID)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: ticket %s", domain.ErrNotFound, ticket.ID)
	}

	if err = tx.Commit(); err != nil {
		return mapError(err, "commit cancel ticket")
	}

	return nil
}

func (r *TicketRepository) FindOrphanedSeats(ctx context.Context) ([]domain.SeatRef, error) {
	query := `
	SELECT s.event_id, s.row_number, s.col_number
	FROM event_seats s
	JOIN events e ON e.id = s.event_id
	LEFT JOIN tickets t ON t.event_id = s.event_id AND t.row_number = s.row_number AND t.col_number = s.col_number
	WHERE e.event_available AND NOT s.is_available AND t.id IS NULL
	LIMIT 100
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err, "find orphaned seats")
	}

	defer rows.Close()

	var refs []domain.SeatRef
	for rows.Next() {
		var ref domain.SeatRef
		if err := rows.Scan(&ref.EventID, &ref.Row, &ref.Col); err != nil {
			return nil, mapError(err, "scan orphaned seat")
		}

		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "find orphaned seats")
	}

	return refs, nil
}

// ReleaseOrphanedSeat re-checks the orphan condition in the update itself, so
// a seat that gained a ticket since it was found is left alone.
func (r *TicketRepository) ReleaseOrphanedSeat(ctx context.Context, ref domain.SeatRef) error {
	query := `
	UPDATE event_seats s
	SET is_available = TRUE,
		purchased_by = NULL,
		version = s.version + 1
	WHERE s.event_id = $1 AND s.row_number = $2 AND s.col_number = $3 AND NOT s.is_available
		AND NOT EXISTS (
			SELECT 1 FROM tickets t
			WHERE t.event_id = s.event_id AND t.row_number = s.row_number AND t.col_number = s.col_number
		)
	`

	_, err := r.db.ExecContext(ctx, query, ref.EventID, ref.Row, ref.Col)

	return mapError(err, "release orphaned seat %d-%d", ref.Row, ref.Col)
}
