package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/srgjo27/altair_ticket/internal/core/domain"
)

type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, organizer_id, name, artist_name, category, description, poster_url, event_date,
	location_name, latitude, longitude, grid_rows, grid_cols, event_available, created_at`

func (r *EventRepository) Create(ctx context.Context, event *domain.Event) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(err, "begin create event")
	}

	defer tx.Rollback()

	queryHeader := `
	INSERT INTO events (` + eventColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err = tx.ExecContext(ctx, queryHeader,
		event.ID, event.OrganizerID, event.Name, event.ArtistName, event.Category, event.Description,
		event.PosterURL, event.DateTime, event.Location.Name, event.Location.Latitude, event.Location.Longitude,
		event.Seats.Rows, event.Seats.Cols, event.EventAvailable, event.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: event %s already exists", domain.ErrInvalidInput, event.ID)
		}
		return mapError(err, "insert event %s", event.ID)
	}

	priceStmt, err := tx.PrepareContext(ctx, `INSERT INTO event_prices (event_id, category, unit_price) VALUES ($1, $2, $3)`)
	if err != nil {
		return mapError(err, "prepare price statement")
	}

	defer priceStmt.Close()

	for _, c := range domain.Categories {
		if _, err := priceStmt.ExecContext(ctx, event.ID, string(c), event.Prices[c]); err != nil {
			return mapError(err, "insert %s price", c)
		}
	}

	seatStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO event_seats (event_id, row_number, col_number, category, is_available)
	VALUES ($1, $2, $3, $4, $5)
	`)
	if err != nil {
		return mapError(err, "prepare seat statement")
	}

	defer seatStmt.Close()

	for _, s := range event.Seats.Seats {
		if _, err := seatStmt.ExecContext(ctx, event.ID, s.Row, s.Col, string(s.Category), s.IsAvailable); err != nil {
			return mapError(err, "insert seat %d-%d", s.Row, s.Col)
		}
	}

	if err = tx.Commit(); err != nil {
		return mapError(err, "commit create event")
	}

	return nil
}

func scanEvent(row interface{ Scan(...any) error }) (*domain.Event, error) {
	var ev domain.Event
	err := row.Scan(
		&ev.ID,
		&ev.OrganizerID,
		&ev.Name,
		&ev.ArtistName,
		&ev.Category,
		&ev.Description,
		&ev.PosterURL,
		&ev.DateTime,
		&ev.Location.Name,
		&ev.Location.Latitude,
		&ev.Location.Longitude,
		&ev.Seats.Rows,
		&ev.Seats.Cols,
		&ev.EventAvailable,
		&ev.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	ev.Prices = make(map[domain.Category]decimal.Decimal, len(domain.Categories))
	ev.Seats.Seats = make([]domain.Seat, 0, ev.Seats.Rows*ev.Seats.Cols)
	return &ev, nil
}

func (r *EventRepository) GetByID(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	ev, err := scanEvent(r.db.QueryRowContext(ctx, query, eventID))
	if err != nil {
		return nil, mapError(err, "event %s", eventID)
	}

	byID := map[uuid.UUID]*domain.Event{ev.ID: ev}
	if err := r.loadDetails(ctx, byID); err != nil {
		return nil, err
	}
	return ev, nil
}

func (r *EventRepository) List(ctx context.Context, onlyAvailable bool) ([]domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE ($1 = FALSE OR event_available) ORDER BY event_date`

	rows, err := r.db.QueryContext(ctx, query, onlyAvailable)
	if err != nil {
		return nil, mapError(err, "list events")
	}

	defer rows.Close()

	var ordered []*domain.Event
	byID := make(map[uuid.UUID]*domain.Event)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, mapError(err, "scan event")
		}
		ordered = append(ordered, ev)
		byID[ev.ID] = ev
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "list events")
	}

	out := make([]domain.Event, 0, len(ordered))
	if len(ordered) == 0 {
		return out, nil
	}
	if err := r.loadDetails(ctx, byID); err != nil {
		return nil, err
	}
	for _, ev := range ordered {
		out = append(out, *ev)
	}
	return out, nil
}

// loadDetails fills prices and seats for all given events with one query each.
func (r *EventRepository) loadDetails(ctx context.Context, byID map[uuid.UUID]*domain.Event) error {
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id.String())
	}

	priceRows, err := r.db.QueryContext(ctx,
		`SELECT event_id, category, unit_price FROM event_prices WHERE event_id = ANY($1::uuid[])`, pq.Array(ids))
	if err != nil {
		return mapError(err, "load prices")
	}

	defer priceRows.Close()

	for priceRows.Next() {
		var (
			id    uuid.UUID
			cat   string
			price decimal.Decimal
		)
		if err := priceRows.Scan(&id, &cat, &price); err != nil {
			return mapError(err, "scan price")
		}
		if ev, ok := byID[id]; ok {
			ev.Prices[domain.Category(cat)] = price
		}
	}
	if err := priceRows.Err(); err != nil {
		return mapError(err, "load prices")
	}

	seatRows, err := r.db.QueryContext(ctx, `
	SELECT event_id, row_number, col_number, category, is_available, purchased_by
	FROM event_seats
	WHERE event_id = ANY($1::uuid[])
	ORDER BY event_id, row_number, col_number
	`, pq.Array(ids))
	if err != nil {
		return mapError(err, "load seats")
	}

	defer seatRows.Close()

	for seatRows.Next() {
		var (
			id          uuid.UUID
			seat        domain.Seat
			cat         string
			purchasedBy sql.NullString
		)
		if err := seatRows.Scan(&id, &seat.Row, &seat.Col, &cat, &seat.IsAvailable, &purchasedBy); err != nil {
			return mapError(err, "scan seat")
		}
		seat.Category = domain.Category(cat)
		if purchasedBy.Valid {
			seat.PurchasedBy = purchasedBy.String
		}
		if ev, ok := byID[id]; ok {
			ev.Seats.Seats = append(ev.Seats.Seats, seat)
		}
	}
	if err := seatRows.Err(); err != nil {
		return mapError(err, "load seats")
	}
	return nil
}

// CancelCascade runs the whole cancellation in one transaction: the event
// flag, every ticket flag and one alert per distinct holder.
func (r *EventRepository) CancelCascade(ctx context.Context, eventID uuid.UUID, alert string) (*domain.CascadeResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapError(err, "begin cancel event")
	}

	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
	UPDATE events
	SET event_available = FALSE
	WHERE id = $1 AND event_available
	`, eventID)
	if err != nil {
		return nil, mapError(err, "cancel event %s", eventID)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, mapError(err, "cancel event %s", eventID)
	}

	if rowsAffected == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, eventID).Scan(&exists); err != nil {
			return nil, mapError(err, "cancel event %s", eventID)
		}
		if !exists {
			return nil, fmt.Errorf("%w: event %s", domain.ErrNotFound, eventID)
		}
		return nil, fmt.Errorf("%w: event %s is already cancelled", domain.ErrInvalidTransition, eventID)
	}

	res := &domain.CascadeResult{EventID: eventID, UsersNotified: []string{}}
	holders, err := voidTickets(ctx, tx, eventID, res)
	if err != nil {
		return nil, err
	}

	if len(holders) > 0 {
		notified, err := appendAlert(ctx, tx, holders, alert)
		if err != nil {
			return nil, err
		}
		res.UsersNotified = notified
	}

	if err = tx.Commit(); err != nil {
		return nil, mapError(err, "commit cancel event %s", eventID)
	}

	return res, nil
}

func voidTickets(ctx context.Context, q querier, eventID uuid.UUID, res *domain.CascadeResult) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
	UPDATE tickets
	SET available = FALSE
	WHERE event_id = $1
	RETURNING user_id
	`, eventID)
	if err != nil {
		return nil, mapError(err, "void tickets of %s", eventID)
	}

	defer rows.Close()

	seen := make(map[string]struct{})
	var holders []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, mapError(err, "scan ticket holder")
		}
		res.TicketsVoided++
		if _, ok := seen[userID]; !ok {
			seen[userID] = struct{}{}
			holders = append(holders, userID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "void tickets of %s", eventID)
	}
	return holders, nil
}

func appendAlert(ctx context.Context, q querier, userIDs []string, alert string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
	UPDATE users
	SET alerts = array_append(alerts, $1)
	WHERE id = ANY($2)
	RETURNING id
	`, alert, pq.Array(userIDs))
	if err != nil {
		return nil, mapError(err, "append alerts")
	}

	defer rows.Close()

	notified := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, mapError(err, "scan notified user")
		}
		notified = append(notified, id)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "append alerts")
	}
	sort.Strings(notified)
	return notified, nil
}
