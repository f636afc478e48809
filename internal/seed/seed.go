package seed

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

type globalTask struct {
	id, name, unit string
}

type globalMaterial struct {
	id, name, unit string
	rate           float64
	options        []string
}

// Global catalog rows have fixed ids so reruns find them.
var (
	defaultAreas = []string{"General", "Kitchen", "Bathroom", "Bedroom", "Living", "Exterior"}

	defaultTasks = []globalTask{
		{id: "task-labour", name: "Labour", unit: "hour"},
		{id: "task-painting", name: "Painting", unit: "m2"},
		{id: "task-tiling", name: "Tiling", unit: "m2"},
		{id: "task-call-out", name: "Call-out fee", unit: "item"},
	}

	defaultMaterials = []globalMaterial{
		{id: "mat-paint", name: "Interior paint", unit: "litre", rate: 12, options: []string{"Matte", "Low sheen", "Semi gloss"}},
		{id: "mat-tile", name: "Ceramic tile", unit: "m2", rate: 35, options: []string{"300x300", "600x600"}},
	}
)

// Run executes the startup seed in an idempotent way.
func Run(db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := seedAdmin(tx, cfg.AdminEmail, cfg.AdminPassword, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureAreas(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureTasks(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureMaterials(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func seedAdmin(tx *sql.Tx, email, password string, stats *Stats) error {
	if email == "" || password == "" {
		return nil
	}

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE email = ? LIMIT 1)`, email).Scan(&exists); err != nil {
		return fmt.Errorf("check admin user existence: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if _, err := tx.Exec(`INSERT INTO users (id, email, password_hash) VALUES (?, ?, ?)`, uuid.NewString(), email, string(hash)); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureAreas(tx *sql.Tx, stats *Stats) error {
	for i, name := range defaultAreas {
		var exists bool
		if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM areas WHERE user_id IS NULL AND name = ? LIMIT 1)`, name).Scan(&exists); err != nil {
			return fmt.Errorf("check area existence: %w", err)
		}
		if exists {
			continue
		}

		if _, err := tx.Exec(`INSERT INTO areas (id, name, position) VALUES (?, ?, ?)`, uuid.NewString(), name, i); err != nil {
			return fmt.Errorf("insert default area: %w", err)
		}
		stats.Inserts++
	}
	return nil
}

func ensureTasks(tx *sql.Tx, stats *Stats) error {
	for _, t := range defaultTasks {
		res, err := tx.Exec(`
			INSERT INTO tasks (id, name, default_unit)
			VALUES (?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`, t.id, t.name, t.unit)
		if err != nil {
			return fmt.Errorf("insert default task: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			stats.Inserts++
		}
	}
	return nil
}

func ensureMaterials(tx *sql.Tx, stats *Stats) error {
	for _, m := range defaultMaterials {
		res, err := tx.Exec(`
			INSERT INTO materials (id, name, default_rate, default_unit, options_required)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`, m.id, m.name, m.rate, m.unit, len(m.options) > 0)
		if err != nil {
			return fmt.Errorf("insert default material: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			continue
		}
		stats.Inserts++

		for i, name := range m.options {
			if _, err := tx.Exec(`
				INSERT INTO material_options (id, material_id, name, position) VALUES (?, ?, ?, ?)
			`, fmt.Sprintf("%s-%d", m.id, i+1), m.id, name, i); err != nil {
				return fmt.Errorf("insert default material option: %w", err)
			}
			stats.Inserts++
		}
	}
	return nil
}
