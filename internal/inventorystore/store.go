package inventorystore

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/arnavjainpro/HackRice/internal/inventorycheck"
)

// Store persists the pharmacy inventory snapshot in SQLite. Reads are
// served straight from the database; the evaluation core receives a
// plain slice and never touches the store.
type Store struct {
	db    *sqlx.DB
	clock func() time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS inventory (
	drug_name              TEXT PRIMARY KEY,
	stock                  INTEGER NOT NULL DEFAULT 0,
	average_daily_dispense REAL NOT NULL DEFAULT 0,
	updated_at             TEXT NOT NULL
);
`

type inventoryRow struct {
	DrugName             string  `db:"drug_name"`
	Stock                int     `db:"stock"`
	AverageDailyDispense float64 `db:"average_daily_dispense"`
	UpdatedAt            string  `db:"updated_at"`
}

func Open(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, clock: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Upsert writes the given records, replacing any existing row with the
// same drug name.
func (s *Store) Upsert(records []inventorycheck.InventoryRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	now := s.clock().UTC().Format(time.RFC3339)
	for _, rec := range records {
		name := strings.TrimSpace(rec.DrugName)
		if name == "" {
			continue
		}
		row := inventoryRow{
			DrugName:             name,
			Stock:                rec.Stock,
			AverageDailyDispense: rec.AverageDailyDispense,
			UpdatedAt:            now,
		}
		if _, err := tx.NamedExec(`
			INSERT INTO inventory (drug_name, stock, average_daily_dispense, updated_at)
			VALUES (:drug_name, :stock, :average_daily_dispense, :updated_at)
			ON CONFLICT(drug_name) DO UPDATE SET
				stock = excluded.stock,
				average_daily_dispense = excluded.average_daily_dispense,
				updated_at = excluded.updated_at`, row); err != nil {
			tx.Rollback()
			return fmt.Errorf("upsert %q: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// List returns the full inventory snapshot ordered by drug name.
func (s *Store) List() ([]inventorycheck.InventoryRecord, error) {
	var rows []inventoryRow
	if err := s.db.Select(&rows, "SELECT drug_name, stock, average_daily_dispense, updated_at FROM inventory ORDER BY drug_name"); err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	out := make([]inventorycheck.InventoryRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, inventorycheck.InventoryRecord{
			DrugName:             row.DrugName,
			Stock:                row.Stock,
			AverageDailyDispense: row.AverageDailyDispense,
		})
	}
	return out, nil
}

func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.Get(&n, "SELECT COUNT(*) FROM inventory"); err != nil {
		return 0, fmt.Errorf("count inventory: %w", err)
	}
	return n, nil
}

// ImportCSV loads rows from a header-bearing CSV with columns
// drug_name, stock, average_daily_dispense. Returns the number of rows
// imported.
func (s *Store) ImportCSV(r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read csv header: %w", err)
	}
	idx := map[string]int{}
	for i, col := range header {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	nameIdx, ok := idx["drug_name"]
	if !ok {
		return 0, fmt.Errorf("csv missing drug_name column")
	}
	stockIdx, hasStock := idx["stock"]
	dispenseIdx, hasDispense := idx["average_daily_dispense"]

	var records []inventorycheck.InventoryRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read csv row: %w", err)
		}
		rec := inventorycheck.InventoryRecord{DrugName: strings.TrimSpace(row[nameIdx])}
		if rec.DrugName == "" {
			continue
		}
		if hasStock && stockIdx < len(row) {
			if v, err := strconv.Atoi(strings.TrimSpace(row[stockIdx])); err == nil && v >= 0 {
				rec.Stock = v
			}
		}
		if hasDispense && dispenseIdx < len(row) {
			if v, err := strconv.ParseFloat(strings.TrimSpace(row[dispenseIdx]), 64); err == nil && v >= 0 {
				rec.AverageDailyDispense = v
			}
		}
		records = append(records, rec)
	}
	if err := s.Upsert(records); err != nil {
		return 0, err
	}
	return len(records), nil
}
