package sources

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/i474232898/runbuddy/internal/trails"
)

const createTrails = `CREATE TABLE IF NOT EXISTS trails (
	name TEXT NOT NULL,
	location TEXT NOT NULL,
	length_km REAL,
	difficulty TEXT,
	terrain_type TEXT,
	weather_sensitivity TEXT,
	shade_coverage TEXT,
	mud_rain_risk TEXT,
	elevation_gain TEXT,
	hazards TEXT
)`

// SQLiteCatalog reads trails from the trails table of a SQLite database.
// Column names go through trails.NormalizeRow like sheet headers do.
type SQLiteCatalog struct {
	db *sql.DB
}

func OpenSQLiteCatalog(path string) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(createTrails); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init trails table: %w", err)
	}
	return &SQLiteCatalog{db: db}, nil
}

func (s *SQLiteCatalog) Close() error {
	return s.db.Close()
}

func (s *SQLiteCatalog) Load(ctx context.Context) ([]trails.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT * FROM trails ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying trails: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	table := [][]string{cols}
	for rows.Next() {
		cells := make([]sql.NullString, len(cols))
		dest := make([]any, len(cols))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning trail: %w", err)
		}
		row := make([]string, len(cols))
		for i, c := range cells {
			row[i] = c.String
		}
		table = append(table, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return trails.FromRows(table), nil
}

// Replace swaps the table contents for records in one transaction.
func (s *SQLiteCatalog) Replace(ctx context.Context, records []trails.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM trails`); err != nil {
		return fmt.Errorf("clearing trails: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO trails
		(name, location, length_km, difficulty, terrain_type, weather_sensitivity, shade_coverage, mud_rain_risk, elevation_gain, hazards)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.Name, r.Location, r.LengthKm, r.Difficulty, r.TerrainType,
			r.WeatherSensitivity, r.ShadeCoverage, r.MudRainRisk, r.ElevationGain, r.Hazards); err != nil {
			return fmt.Errorf("inserting trail %q: %w", r.Name, err)
		}
	}
	return tx.Commit()
}
