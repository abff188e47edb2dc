package devapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/phillip-england/hrpulse/internal/apiclient"
	"github.com/phillip-england/hrpulse/internal/security"
)

var errNotFound = errors.New("not found")

type sqliteStore struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// openStore opens the database at path, creating parent directories and the
// schema as needed.
func openStore(path string, logger *slog.Logger) (*sqliteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	s := &sqliteStore{db: db, logger: logger, now: time.Now}
	if err := s.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	logger.Info("sqlite store initialized", "path", path)
	return s, nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func (s *sqliteStore) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS employees (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			department TEXT NOT NULL DEFAULT '',
			position TEXT NOT NULL DEFAULT '',
			risk_level TEXT NOT NULL DEFAULT '',
			turnover_probability REAL NOT NULL DEFAULT 0,
			email TEXT NOT NULL DEFAULT '',
			hire_date TEXT NOT NULL DEFAULT '',
			salary REAL NOT NULL DEFAULT 0,
			performance_score REAL NOT NULL DEFAULT 0,
			last_evaluation_date TEXT NOT NULL DEFAULT '',
			projects TEXT NOT NULL DEFAULT '[]',
			skills TEXT NOT NULL DEFAULT '[]',
			age REAL NOT NULL DEFAULT 0,
			years_of_experience REAL NOT NULL DEFAULT 0,
			work_hours REAL NOT NULL DEFAULT 0,
			training_hours REAL NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_employees_department ON employees(department);`,
		`CREATE TABLE IF NOT EXISTS risk_snapshots (
			month TEXT PRIMARY KEY,
			high_count INTEGER NOT NULL,
			average_risk REAL NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *sqliteStore) ensureAdminUser(ctx context.Context, username, password string) error {
	hash, err := security.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (username, password_hash, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET password_hash = excluded.password_hash;
	`, username, hash, s.now().UTC().Unix())
	return err
}

func (s *sqliteStore) passwordHash(ctx context.Context, username string) (string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE username = ?;`, username).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errNotFound
	}
	return hash, err
}

const employeeColumns = `id, name, first_name, last_name, department, position, risk_level,
	turnover_probability, email, hire_date, salary, performance_score, last_evaluation_date,
	projects, skills, age, years_of_experience, work_hours, training_hours`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (apiclient.Employee, error) {
	var (
		e                apiclient.Employee
		projects, skills string
	)
	err := row.Scan(&e.ID, &e.Name, &e.FirstName, &e.LastName, &e.Department, &e.Position, &e.RiskLevel,
		&e.TurnoverProbability, &e.Email, &e.HireDate, &e.Salary, &e.PerformanceScore, &e.LastEvaluationDate,
		&projects, &skills, &e.Age, &e.YearsOfExperience, &e.WorkHours, &e.TrainingHours)
	if err != nil {
		return e, err
	}
	e.Projects = decodeList(projects)
	e.Skills = decodeList(skills)
	return e, nil
}

func (s *sqliteStore) listEmployees(ctx context.Context) ([]apiclient.Employee, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY created_at, rowid;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []apiclient.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *sqliteStore) getEmployee(ctx context.Context, id string) (*apiclient.Employee, error) {
	e, err := scanEmployee(s.db.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = ?;`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *sqliteStore) countEmployees(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM employees;`).Scan(&n)
	return n, err
}

// createEmployee stores e under a fresh id and returns the stored copy.
func (s *sqliteStore) createEmployee(ctx context.Context, e apiclient.Employee) (*apiclient.Employee, error) {
	e.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (`+employeeColumns+`, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`, e.ID, e.Name, e.FirstName, e.LastName, e.Department, e.Position, e.RiskLevel,
		e.TurnoverProbability, e.Email, e.HireDate, e.Salary, e.PerformanceScore, e.LastEvaluationDate,
		encodeList(e.Projects), encodeList(e.Skills), e.Age, e.YearsOfExperience, e.WorkHours, e.TrainingHours,
		s.now().UTC().UnixNano())
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *sqliteStore) updateEmployee(ctx context.Context, e apiclient.Employee) (*apiclient.Employee, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE employees SET
			name = ?, first_name = ?, last_name = ?, department = ?, position = ?, risk_level = ?,
			turnover_probability = ?, email = ?, hire_date = ?, salary = ?, performance_score = ?,
			last_evaluation_date = ?, projects = ?, skills = ?, age = ?, years_of_experience = ?,
			work_hours = ?, training_hours = ?
		WHERE id = ?;
	`, e.Name, e.FirstName, e.LastName, e.Department, e.Position, e.RiskLevel,
		e.TurnoverProbability, e.Email, e.HireDate, e.Salary, e.PerformanceScore,
		e.LastEvaluationDate, encodeList(e.Projects), encodeList(e.Skills), e.Age, e.YearsOfExperience,
		e.WorkHours, e.TrainingHours, e.ID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, errNotFound
	}
	return &e, nil
}

func (s *sqliteStore) deleteEmployee(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM employees WHERE id = ?;`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errNotFound
	}
	return nil
}

type riskSnapshot struct {
	Month       string
	HighCount   int
	AverageRisk float64
}

// recordSnapshot upserts this month's figures and returns the most recent
// earlier month, if any.
func (s *sqliteStore) recordSnapshot(ctx context.Context, current riskSnapshot) (*riskSnapshot, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO risk_snapshots (month, high_count, average_risk, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(month) DO UPDATE SET
			high_count = excluded.high_count,
			average_risk = excluded.average_risk,
			updated_at = excluded.updated_at;
	`, current.Month, current.HighCount, current.AverageRisk, s.now().UTC().Unix())
	if err != nil {
		return nil, err
	}

	var prev riskSnapshot
	err = s.db.QueryRowContext(ctx, `
		SELECT month, high_count, average_risk FROM risk_snapshots
		WHERE month < ? ORDER BY month DESC LIMIT 1;
	`, current.Month).Scan(&prev.Month, &prev.HighCount, &prev.AverageRisk)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &prev, nil
}

func encodeList(items []string) string {
	if items == nil {
		items = []string{}
	}
	raw, _ := json.Marshal(items)
	return string(raw)
}

func decodeList(raw string) []string {
	out := []string{}
	_ = json.Unmarshal([]byte(raw), &out)
	return out
}
