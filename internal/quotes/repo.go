package quotes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BuzzBrady/quotecraft/internal/pricing"
	"github.com/BuzzBrady/quotecraft/internal/textutil"
)

// Fixed-width UTC timestamps so created_at sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Repo stores quotes and their lines in SQLite.
type Repo struct {
	db    *sql.DB
	now   func() time.Time
	newID func() string
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db, now: time.Now, newID: uuid.NewString}
}

// Create assigns q an id and the user's next sequence number, then inserts it
// with its lines in one transaction. TotalAmount is recomputed from the lines.
func (r *Repo) Create(ctx context.Context, q *Quote) error {
	if q.Status == "" {
		q.Status = StatusDraft
	}
	if !q.Status.Valid() {
		return ErrInvalidStatus
	}
	cleanHeader(q)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create quote transaction: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO quote_counters (user_id, value) VALUES (?, 1)
		ON CONFLICT(user_id) DO UPDATE SET value = value + 1
		RETURNING value
	`, q.UserID).Scan(&seq); err != nil {
		return fmt.Errorf("increment quote counter: %w", err)
	}

	now := r.now().UTC()
	q.ID = r.newID()
	q.Number = FormatNumber(seq)
	q.CreatedAt = now
	q.UpdatedAt = now
	q.TotalAmount = Total(q.Lines)

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO quotes (id, user_id, number, client_name, client_email, job_title, job_address, notes, status, total_amount, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, q.ID, q.UserID, q.Number, q.ClientName, q.ClientEmail, q.JobTitle, q.JobAddress, q.Notes,
		string(q.Status), q.TotalAmount, now.Format(timeLayout), now.Format(timeLayout)); err != nil {
		return fmt.Errorf("insert quote: %w", err)
	}
	if err := r.insertLines(ctx, tx, q); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create quote: %w", err)
	}
	return nil
}

// Get loads a quote owned by userID with its lines in order.
func (r *Repo) Get(ctx context.Context, userID, id string) (Quote, error) {
	var (
		q                Quote
		status           string
		created, updated string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, number, client_name, client_email, job_title, job_address, notes, status, total_amount, created_at, updated_at
		FROM quotes
		WHERE id = ? AND user_id = ?
	`, id, userID).Scan(&q.ID, &q.UserID, &q.Number, &q.ClientName, &q.ClientEmail, &q.JobTitle, &q.JobAddress,
		&q.Notes, &status, &q.TotalAmount, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Quote{}, ErrNotFound
	}
	if err != nil {
		return Quote{}, fmt.Errorf("query quote: %w", err)
	}
	q.Status = Status(status)
	if q.CreatedAt, err = parseTime(created); err != nil {
		return Quote{}, err
	}
	if q.UpdatedAt, err = parseTime(updated); err != nil {
		return Quote{}, err
	}

	lines, err := r.lines(ctx, q.ID)
	if err != nil {
		return Quote{}, err
	}
	q.Lines = lines
	return q, nil
}

// List returns the user's quotes newest first. A non-empty query filters on
// number, job title, client name and notes.
func (r *Repo) List(ctx context.Context, userID, query string) ([]Summary, error) {
	query = strings.TrimSpace(query)
	search := "%" + query + "%"
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, number, client_name, job_title, status, total_amount, created_at
		FROM quotes
		WHERE user_id = ?
			AND (? = '' OR number LIKE ? OR job_title LIKE ? OR client_name LIKE ? OR notes LIKE ?)
		ORDER BY created_at DESC, rowid DESC
	`, userID, query, search, search, search, search)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	quotes := make([]Summary, 0)
	for rows.Next() {
		var (
			s       Summary
			status  string
			created string
		)
		if err := rows.Scan(&s.ID, &s.Number, &s.ClientName, &s.JobTitle, &status, &s.TotalAmount, &created); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		s.Status = Status(status)
		if s.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		quotes = append(quotes, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}
	return quotes, nil
}

// Update replaces the header fields and lines of an open quote. Number,
// status and creation time are kept from the stored record.
func (r *Repo) Update(ctx context.Context, q *Quote) error {
	cleanHeader(q)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update quote transaction: %w", err)
	}
	defer tx.Rollback()

	var status, number, created string
	err = tx.QueryRowContext(ctx, `
		SELECT status, number, created_at FROM quotes WHERE id = ? AND user_id = ?
	`, q.ID, q.UserID).Scan(&status, &number, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("query quote for update: %w", err)
	}
	if Status(status).Locked() {
		return ErrLocked
	}
	if q.CreatedAt, err = parseTime(created); err != nil {
		return err
	}

	q.Status = Status(status)
	q.Number = number
	q.UpdatedAt = r.now().UTC()
	q.TotalAmount = Total(q.Lines)

	if _, err := tx.ExecContext(ctx, `
		UPDATE quotes
		SET client_name = ?, client_email = ?, job_title = ?, job_address = ?, notes = ?, total_amount = ?, updated_at = ?
		WHERE id = ?
	`, q.ClientName, q.ClientEmail, q.JobTitle, q.JobAddress, q.Notes, q.TotalAmount,
		q.UpdatedAt.Format(timeLayout), q.ID); err != nil {
		return fmt.Errorf("update quote: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM quote_lines WHERE quote_id = ?`, q.ID); err != nil {
		return fmt.Errorf("clear quote lines: %w", err)
	}
	if err := r.insertLines(ctx, tx, q); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update quote: %w", err)
	}
	return nil
}

// SetStatus moves a quote to status. Accepted and rejected quotes cannot
// change status again.
func (r *Repo) SetStatus(ctx context.Context, userID, id string, status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin set status transaction: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM quotes WHERE id = ? AND user_id = ?`, id, userID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("query quote status: %w", err)
	}
	if Status(current) == status {
		return nil
	}
	if Status(current).Locked() {
		return ErrLocked
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE quotes SET status = ?, updated_at = ? WHERE id = ?
	`, string(status), r.now().UTC().Format(timeLayout), id); err != nil {
		return fmt.Errorf("update quote status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit set status: %w", err)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM quotes WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete quote: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete quote rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) insertLines(ctx context.Context, tx *sql.Tx, q *Quote) error {
	for i := range q.Lines {
		l := &q.Lines[i]
		l.ID = r.newID()
		l.Order = i
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO quote_lines (
				id, quote_id, position, section, task_id, material_id, material_option_id, material_option_name,
				display_name, description, quantity, price, unit, reference_rate, input_type, line_total, kit_template_id
			)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, l.ID, q.ID, i, l.Section, nullable(l.TaskID), nullable(l.MaterialID), nullable(l.MaterialOptionID),
			l.MaterialOptionName, l.DisplayName, l.Description, l.Quantity, l.Price, l.Unit, l.ReferenceRate,
			string(l.InputType), l.LineTotal, nullable(l.KitTemplateID)); err != nil {
			return fmt.Errorf("insert quote line: %w", err)
		}
	}
	return nil
}

func (r *Repo) lines(ctx context.Context, quoteID string) ([]Line, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, position, section, COALESCE(task_id, ''), COALESCE(material_id, ''), COALESCE(material_option_id, ''),
			material_option_name, display_name, description, quantity, price, unit, reference_rate, input_type,
			line_total, COALESCE(kit_template_id, '')
		FROM quote_lines
		WHERE quote_id = ?
		ORDER BY position
	`, quoteID)
	if err != nil {
		return nil, fmt.Errorf("query quote lines: %w", err)
	}
	defer rows.Close()

	lines := make([]Line, 0)
	for rows.Next() {
		var (
			l         Line
			qty, p    sql.NullFloat64
			inputType string
		)
		if err := rows.Scan(&l.ID, &l.Order, &l.Section, &l.TaskID, &l.MaterialID, &l.MaterialOptionID,
			&l.MaterialOptionName, &l.DisplayName, &l.Description, &qty, &p, &l.Unit, &l.ReferenceRate, &inputType,
			&l.LineTotal, &l.KitTemplateID); err != nil {
			return nil, fmt.Errorf("scan quote line: %w", err)
		}
		l.InputType = pricing.InputType(inputType)
		if qty.Valid {
			v := qty.Float64
			l.Quantity = &v
		}
		if p.Valid {
			v := p.Float64
			l.Price = &v
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quote lines: %w", err)
	}
	return lines, nil
}

func cleanHeader(q *Quote) {
	q.ClientName = textutil.Clean(q.ClientName)
	q.ClientEmail = strings.TrimSpace(q.ClientEmail)
	q.JobTitle = textutil.Clean(q.JobTitle)
	q.JobAddress = textutil.Clean(q.JobAddress)
	q.Notes = textutil.Clean(q.Notes)
	if q.Lines == nil {
		q.Lines = []Line{}
	}
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse quote timestamp %q: %w", raw, err)
	}
	return t, nil
}

func nullable(id string) any {
	if id == "" {
		return nil
	}
	return id
}
