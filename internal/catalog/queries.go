package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/BuzzBrady/quotecraft/internal/pricing"
)

// Global rows sort before the user's own rows; within each group the
// insertion order is kept.

func listTasks(ctx context.Context, q queryer, userID string) ([]Task, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, COALESCE(user_id, ''), name, description, default_unit
		FROM tasks
		WHERE user_id IS NULL OR user_id = ?
		ORDER BY user_id IS NOT NULL, rowid
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.Description, &t.DefaultUnit); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Kind = kindFor(t.UserID)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func listMaterials(ctx context.Context, q queryer, userID string) ([]Material, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, COALESCE(user_id, ''), name, description, default_rate, default_unit, options_required
		FROM materials
		WHERE user_id IS NULL OR user_id = ?
		ORDER BY user_id IS NOT NULL, rowid
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query materials: %w", err)
	}
	defer rows.Close()

	materials := []Material{}
	index := map[string]int{}
	for rows.Next() {
		var (
			m    Material
			rate sql.NullFloat64
		)
		if err := rows.Scan(&m.ID, &m.UserID, &m.Name, &m.Description, &rate, &m.DefaultUnit, &m.OptionsRequired); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		if rate.Valid {
			v := rate.Float64
			m.DefaultRate = &v
		}
		m.Kind = kindFor(m.UserID)
		m.Options = []MaterialOption{}
		index[m.ID] = len(materials)
		materials = append(materials, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate materials: %w", err)
	}
	rows.Close()

	optRows, err := q.QueryContext(ctx, `
		SELECT o.id, o.material_id, o.name, o.description
		FROM material_options o
		JOIN materials m ON m.id = o.material_id
		WHERE m.user_id IS NULL OR m.user_id = ?
		ORDER BY o.material_id, o.position, o.rowid
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query material options: %w", err)
	}
	defer optRows.Close()

	for optRows.Next() {
		var (
			o          MaterialOption
			materialID string
		)
		if err := optRows.Scan(&o.ID, &materialID, &o.Name, &o.Description); err != nil {
			return nil, fmt.Errorf("scan material option: %w", err)
		}
		i, ok := index[materialID]
		if !ok {
			continue
		}
		materials[i].Options = append(materials[i].Options, o)
	}
	if err := optRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate material options: %w", err)
	}
	return materials, nil
}

func listAreas(ctx context.Context, q queryer, userID string) ([]Area, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, COALESCE(user_id, ''), name, position
		FROM areas
		WHERE user_id IS NULL OR user_id = ?
		ORDER BY user_id IS NOT NULL, position, rowid
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query areas: %w", err)
	}
	defer rows.Close()

	areas := []Area{}
	for rows.Next() {
		var a Area
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Order); err != nil {
			return nil, fmt.Errorf("scan area: %w", err)
		}
		a.Kind = kindFor(a.UserID)
		areas = append(areas, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate areas: %w", err)
	}
	return areas, nil
}

func listRates(ctx context.Context, q queryer, userID string) ([]Rate, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, user_id, name, COALESCE(task_id, ''), COALESCE(material_id, ''), COALESCE(material_option_id, ''),
			reference_rate, unit, input_type
		FROM rate_templates
		WHERE user_id = ?
		ORDER BY rowid
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query rate templates: %w", err)
	}
	defer rows.Close()

	rates := []Rate{}
	for rows.Next() {
		var (
			r         Rate
			inputType string
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.Name, &r.TaskID, &r.MaterialID, &r.MaterialOptionID,
			&r.ReferenceRate, &r.Unit, &inputType); err != nil {
			return nil, fmt.Errorf("scan rate template: %w", err)
		}
		r.InputType = pricing.InputType(inputType)
		rates = append(rates, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rate templates: %w", err)
	}
	return rates, nil
}

func listKits(ctx context.Context, q queryer, userID string) ([]Kit, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, user_id, name, description
		FROM kits
		WHERE user_id = ?
		ORDER BY rowid
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query kits: %w", err)
	}
	defer rows.Close()

	kits := []Kit{}
	index := map[string]int{}
	for rows.Next() {
		var k Kit
		if err := rows.Scan(&k.ID, &k.UserID, &k.Name, &k.Description); err != nil {
			return nil, fmt.Errorf("scan kit: %w", err)
		}
		k.Lines = []KitLine{}
		index[k.ID] = len(kits)
		kits = append(kits, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate kits: %w", err)
	}
	rows.Close()

	lineRows, err := q.QueryContext(ctx, `
		SELECT l.kit_id, COALESCE(l.task_id, ''), COALESCE(l.material_id, ''), COALESCE(l.material_option_id, ''),
			l.display_name, l.description, l.quantity, l.override_rate, l.input_type, l.position
		FROM kit_lines l
		JOIN kits k ON k.id = l.kit_id
		WHERE k.user_id = ?
		ORDER BY l.kit_id, l.position, l.id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query kit lines: %w", err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var (
			l         KitLine
			kitID     string
			inputType string
		)
		if err := lineRows.Scan(&kitID, &l.TaskID, &l.MaterialID, &l.MaterialOptionID,
			&l.DisplayName, &l.Description, &l.Quantity, &l.OverrideRate, &inputType, &l.Order); err != nil {
			return nil, fmt.Errorf("scan kit line: %w", err)
		}
		l.InputType = pricing.InputType(inputType)
		i, ok := index[kitID]
		if !ok {
			continue
		}
		kits[i].Lines = append(kits[i].Lines, l)
	}
	if err := lineRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate kit lines: %w", err)
	}
	return kits, nil
}
