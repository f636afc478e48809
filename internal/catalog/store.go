package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/BuzzBrady/quotecraft/internal/pricing"
	"github.com/BuzzBrady/quotecraft/internal/textutil"
)

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store persists catalog entries in SQLite. Rows with a NULL user_id form the
// global catalog shared by every user.
type Store struct {
	db    *sql.DB
	newID func() string
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, newID: uuid.NewString}
}

// LoadSnapshot reads the global catalog plus everything owned by userID.
func (s *Store) LoadSnapshot(ctx context.Context, userID string) (*Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	tasks, err := listTasks(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	materials, err := listMaterials(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	areas, err := listAreas(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	rates, err := listRates(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	kits, err := listKits(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	return NewSnapshot(tasks, materials, areas, rates, kits), nil
}

// SaveTask creates t when it has no id, otherwise updates it.
func (s *Store) SaveTask(ctx context.Context, userID string, t Task) (Task, error) {
	t.Name = textutil.Clean(t.Name)
	t.Description = textutil.Clean(t.Description)
	t.DefaultUnit = strings.TrimSpace(t.DefaultUnit)
	if t.Name == "" {
		return Task{}, fmt.Errorf("%w: task name is required", ErrInvalid)
	}

	if t.ID == "" {
		t.ID = s.newID()
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO tasks (id, user_id, name, description, default_unit)
			VALUES (?, ?, ?, ?, ?)
		`, t.ID, userID, t.Name, t.Description, t.DefaultUnit); err != nil {
			return Task{}, fmt.Errorf("insert task: %w", err)
		}
	} else {
		if err := checkEditable(ctx, s.db, "tasks", t.ID, userID); err != nil {
			return Task{}, err
		}
		if _, err := s.db.ExecContext(ctx, `
			UPDATE tasks
			SET name = ?, description = ?, default_unit = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`, t.Name, t.Description, t.DefaultUnit, t.ID); err != nil {
			return Task{}, fmt.Errorf("update task: %w", err)
		}
	}

	t.UserID = userID
	t.Kind = KindCustom
	return t, nil
}

// SaveMaterial creates or updates m and replaces its option list. Options
// missing from m.Options are deleted; options without an id are created.
func (s *Store) SaveMaterial(ctx context.Context, userID string, m Material) (Material, error) {
	m.Name = textutil.Clean(m.Name)
	m.Description = textutil.Clean(m.Description)
	m.DefaultUnit = strings.TrimSpace(m.DefaultUnit)
	if m.Name == "" {
		return Material{}, fmt.Errorf("%w: material name is required", ErrInvalid)
	}
	if m.OptionsRequired && len(m.Options) == 0 {
		return Material{}, fmt.Errorf("%w: material requires options but has none", ErrInvalid)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Material{}, fmt.Errorf("begin material transaction: %w", err)
	}
	defer tx.Rollback()

	existing := map[string]bool{}
	if m.ID == "" {
		m.ID = s.newID()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO materials (id, user_id, name, description, default_rate, default_unit, options_required)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, m.ID, userID, m.Name, m.Description, m.DefaultRate, m.DefaultUnit, m.OptionsRequired); err != nil {
			return Material{}, fmt.Errorf("insert material: %w", err)
		}
	} else {
		if err := checkEditable(ctx, tx, "materials", m.ID, userID); err != nil {
			return Material{}, err
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE materials
			SET name = ?, description = ?, default_rate = ?, default_unit = ?, options_required = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`, m.Name, m.Description, m.DefaultRate, m.DefaultUnit, m.OptionsRequired, m.ID); err != nil {
			return Material{}, fmt.Errorf("update material: %w", err)
		}
		if existing, err = optionIDs(ctx, tx, m.ID); err != nil {
			return Material{}, err
		}
	}

	options := make([]MaterialOption, 0, len(m.Options))
	keep := map[string]bool{}
	for _, o := range m.Options {
		o.Name = textutil.Clean(o.Name)
		o.Description = textutil.Clean(o.Description)
		if o.Name == "" {
			return Material{}, fmt.Errorf("%w: option name is required", ErrInvalid)
		}
		if o.ID == "" {
			o.ID = s.newID()
		} else if !existing[o.ID] {
			return Material{}, fmt.Errorf("%w: unknown option %s", ErrInvalid, o.ID)
		}
		keep[o.ID] = true
		options = append(options, o)
	}

	for id := range existing {
		if keep[id] {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM material_options WHERE id = ?`, id); err != nil {
			return Material{}, fmt.Errorf("delete material option: %w", err)
		}
	}
	for i, o := range options {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO material_options (id, material_id, name, description, position)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				description = excluded.description,
				position = excluded.position
		`, o.ID, m.ID, o.Name, o.Description, i); err != nil {
			return Material{}, fmt.Errorf("upsert material option: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Material{}, fmt.Errorf("commit material: %w", err)
	}

	m.UserID = userID
	m.Kind = KindCustom
	m.Options = options
	return m, nil
}

// SaveArea creates or updates a job area.
func (s *Store) SaveArea(ctx context.Context, userID string, a Area) (Area, error) {
	a.Name = textutil.Clean(a.Name)
	if a.Name == "" {
		return Area{}, fmt.Errorf("%w: area name is required", ErrInvalid)
	}

	if a.ID == "" {
		a.ID = s.newID()
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO areas (id, user_id, name, position) VALUES (?, ?, ?, ?)
		`, a.ID, userID, a.Name, a.Order); err != nil {
			return Area{}, fmt.Errorf("insert area: %w", err)
		}
	} else {
		if err := checkEditable(ctx, s.db, "areas", a.ID, userID); err != nil {
			return Area{}, err
		}
		if _, err := s.db.ExecContext(ctx, `
			UPDATE areas SET name = ?, position = ? WHERE id = ?
		`, a.Name, a.Order, a.ID); err != nil {
			return Area{}, fmt.Errorf("update area: %w", err)
		}
	}

	a.UserID = userID
	a.Kind = KindCustom
	return a, nil
}

// SaveRate creates or updates a rate template. The task, material and option
// it names must be visible to userID.
func (s *Store) SaveRate(ctx context.Context, userID string, r Rate) (Rate, error) {
	r.Name = textutil.Clean(r.Name)
	r.Unit = strings.TrimSpace(r.Unit)
	if err := s.validateRate(ctx, userID, r.RateTemplate); err != nil {
		return Rate{}, err
	}

	if r.ID == "" {
		r.ID = s.newID()
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO rate_templates (id, user_id, name, task_id, material_id, material_option_id, reference_rate, unit, input_type)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, r.ID, userID, r.Name, nullable(r.TaskID), nullable(r.MaterialID), nullable(r.MaterialOptionID),
			r.ReferenceRate, r.Unit, string(r.InputType)); err != nil {
			return Rate{}, fmt.Errorf("insert rate template: %w", err)
		}
	} else {
		if err := checkEditable(ctx, s.db, "rate_templates", r.ID, userID); err != nil {
			return Rate{}, err
		}
		if _, err := s.db.ExecContext(ctx, `
			UPDATE rate_templates
			SET name = ?, task_id = ?, material_id = ?, material_option_id = ?, reference_rate = ?, unit = ?, input_type = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`, r.Name, nullable(r.TaskID), nullable(r.MaterialID), nullable(r.MaterialOptionID),
			r.ReferenceRate, r.Unit, string(r.InputType), r.ID); err != nil {
			return Rate{}, fmt.Errorf("update rate template: %w", err)
		}
	}

	r.UserID = userID
	return r, nil
}

func (s *Store) validateRate(ctx context.Context, userID string, r pricing.RateTemplate) error {
	if !r.InputType.Valid() {
		return fmt.Errorf("%w: unknown input type %q", ErrInvalid, r.InputType)
	}
	if r.TaskID == "" && r.MaterialID == "" {
		return fmt.Errorf("%w: rate must name a task or a material", ErrInvalid)
	}
	if r.MaterialOptionID != "" && r.MaterialID == "" {
		return fmt.Errorf("%w: material option requires a material", ErrInvalid)
	}
	if r.TaskID != "" {
		if err := checkVisible(ctx, s.db, "tasks", r.TaskID, userID); err != nil {
			return err
		}
	}
	if r.MaterialID != "" {
		if err := checkVisible(ctx, s.db, "materials", r.MaterialID, userID); err != nil {
			return err
		}
	}
	if r.MaterialOptionID != "" {
		var ok bool
		if err := s.db.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM material_options WHERE id = ? AND material_id = ?)
		`, r.MaterialOptionID, r.MaterialID).Scan(&ok); err != nil {
			return fmt.Errorf("check material option: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: option %s does not belong to material %s", ErrInvalid, r.MaterialOptionID, r.MaterialID)
		}
	}
	return nil
}

// SaveKit creates or updates a kit and replaces its lines.
func (s *Store) SaveKit(ctx context.Context, userID string, k Kit) (Kit, error) {
	k.Name = textutil.Clean(k.Name)
	k.Description = textutil.Clean(k.Description)
	if k.Name == "" {
		return Kit{}, fmt.Errorf("%w: kit name is required", ErrInvalid)
	}
	for i, l := range k.Lines {
		if l.TaskID == "" && l.MaterialID == "" {
			return Kit{}, fmt.Errorf("%w: kit line %d must name a task or a material", ErrInvalid, i+1)
		}
		if l.InputType != "" && !l.InputType.Valid() {
			return Kit{}, fmt.Errorf("%w: kit line %d has unknown input type %q", ErrInvalid, i+1, l.InputType)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Kit{}, fmt.Errorf("begin kit transaction: %w", err)
	}
	defer tx.Rollback()

	if k.ID == "" {
		k.ID = s.newID()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO kits (id, user_id, name, description) VALUES (?, ?, ?, ?)
		`, k.ID, userID, k.Name, k.Description); err != nil {
			return Kit{}, fmt.Errorf("insert kit: %w", err)
		}
	} else {
		if err := checkEditable(ctx, tx, "kits", k.ID, userID); err != nil {
			return Kit{}, err
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE kits SET name = ?, description = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
		`, k.Name, k.Description, k.ID); err != nil {
			return Kit{}, fmt.Errorf("update kit: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM kit_lines WHERE kit_id = ?`, k.ID); err != nil {
			return Kit{}, fmt.Errorf("clear kit lines: %w", err)
		}
	}

	for i := range k.Lines {
		l := &k.Lines[i]
		l.Order = i
		l.DisplayName = textutil.Clean(l.DisplayName)
		l.Description = textutil.Clean(l.Description)
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO kit_lines (kit_id, position, task_id, material_id, material_option_id, display_name, description, quantity, override_rate, input_type)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, k.ID, i, nullable(l.TaskID), nullable(l.MaterialID), nullable(l.MaterialOptionID),
			l.DisplayName, l.Description, l.Quantity, strings.TrimSpace(l.OverrideRate), string(l.InputType)); err != nil {
			return Kit{}, fmt.Errorf("insert kit line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Kit{}, fmt.Errorf("commit kit: %w", err)
	}

	k.UserID = userID
	return k, nil
}

func (s *Store) DeleteTask(ctx context.Context, userID, id string) error {
	return deleteOwned(ctx, s.db, "tasks", id, userID)
}

func (s *Store) DeleteMaterial(ctx context.Context, userID, id string) error {
	return deleteOwned(ctx, s.db, "materials", id, userID)
}

func (s *Store) DeleteArea(ctx context.Context, userID, id string) error {
	return deleteOwned(ctx, s.db, "areas", id, userID)
}

func (s *Store) DeleteRate(ctx context.Context, userID, id string) error {
	return deleteOwned(ctx, s.db, "rate_templates", id, userID)
}

func (s *Store) DeleteKit(ctx context.Context, userID, id string) error {
	return deleteOwned(ctx, s.db, "kits", id, userID)
}

// checkEditable loads the owner of table row id and applies Kind rules.
// table is always a package constant, never user input.
func checkEditable(ctx context.Context, q queryer, table, id, userID string) error {
	var owner string
	err := q.QueryRowContext(ctx, `SELECT COALESCE(user_id, '') FROM `+table+` WHERE id = ?`, id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load %s owner: %w", table, err)
	}
	return kindFor(owner).EditableBy(owner, userID)
}

func checkVisible(ctx context.Context, q queryer, table, id, userID string) error {
	var ok bool
	if err := q.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM `+table+` WHERE id = ? AND (user_id IS NULL OR user_id = ?))
	`, id, userID).Scan(&ok); err != nil {
		return fmt.Errorf("check %s visibility: %w", table, err)
	}
	if !ok {
		return fmt.Errorf("%w: unknown %s id %s", ErrInvalid, strings.TrimSuffix(table, "s"), id)
	}
	return nil
}

func deleteOwned(ctx context.Context, q queryer, table, id, userID string) error {
	if err := checkEditable(ctx, q, table, id, userID); err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	return nil
}

func optionIDs(ctx context.Context, q queryer, materialID string) (map[string]bool, error) {
	rows, err := q.QueryContext(ctx, `SELECT id FROM material_options WHERE material_id = ?`, materialID)
	if err != nil {
		return nil, fmt.Errorf("query material options: %w", err)
	}
	defer rows.Close()

	ids := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan material option id: %w", err)
		}
		ids[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate material options: %w", err)
	}
	return ids, nil
}

// nullable maps the empty-string id sentinel to SQL NULL.
func nullable(id string) any {
	if id == "" {
		return nil
	}
	return id
}
