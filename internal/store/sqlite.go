package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/codemate-app/matcher/pkg/types"
)

const driverName = "sqlite"

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db  *sql.DB
	dim int // expected vector dimensionality; 0 disables the check
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStore creates a new SQLite store instance. dim is the embedding
// dimensionality skills must have to be accepted; pass 0 to skip the check.
func NewSQLiteStore(dbPath string, dim int) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db, dim: dim}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateUser inserts a new user with its skills. An empty ID is replaced
// with a generated UUID.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *types.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Name == "" {
		return fmt.Errorf("user name is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var email interface{}
	if user.Email != "" {
		email = user.Email
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, name, email, profile_pic, bio, location, availability, college)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Name, email, user.ProfilePic, user.Bio,
		user.Location, user.Availability, user.College,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", user.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	for _, skill := range user.Skills {
		if err := s.insertSkill(ctx, tx, user.ID, skill.Name, skill.Vector); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetUser fetches a user and its skills by ID
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*types.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(email, ''), profile_pic, bio, location, availability, college
		FROM users WHERE id = ?`, id)

	var user types.User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.ProfilePic,
		&user.Bio, &user.Location, &user.Availability, &user.College)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	skills, err := s.loadSkills(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Skills = skills

	return &user, nil
}

// UpdateProfile applies the non-nil fields of update to the user
func (s *SQLiteStore) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) error {
	sets := make([]string, 0, 8)
	args := make([]interface{}, 0, 8)

	add := func(column string, value *string) {
		if value != nil {
			sets = append(sets, column+" = ?")
			args = append(args, *value)
		}
	}
	add("name", update.Name)
	add("email", update.Email)
	add("profile_pic", update.ProfilePic)
	add("bio", update.Bio)
	add("location", update.Location)
	add("availability", update.Availability)
	add("college", update.College)

	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	query := "UPDATE users SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	args = append(args, id)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}

	return nil
}

// AddSkill stores a new named skill vector for the user. Skill names are
// unique per user, case-insensitively. The vector must be non-empty and
// match the store's dimensionality.
func (s *SQLiteStore) AddSkill(ctx context.Context, userID, name string, vector []float64) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("skill name is required")
	}
	if err := s.insertSkill(ctx, s.db, userID, name, vector); err != nil {
		return err
	}
	return nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (s *SQLiteStore) insertSkill(ctx context.Context, q querier, userID, name string, vector []float64) error {
	if len(vector) == 0 {
		return types.ErrEmptyVector
	}
	if s.dim > 0 && len(vector) != s.dim {
		return fmt.Errorf("%w: got %d, want %d", types.ErrDimensionMismatch, len(vector), s.dim)
	}

	_, err := q.ExecContext(ctx,
		"INSERT INTO skills (user_id, name, vector) VALUES (?, ?, ?)",
		userID, name, serializeVector(vector),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("skill %q: %w", name, types.ErrDuplicateSkillName)
		}
		return fmt.Errorf("insert skill: %w", err)
	}

	return nil
}

// RemoveSkill deletes the named skill (case-insensitive) from the user
func (s *SQLiteStore) RemoveSkill(ctx context.Context, userID, name string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM skills WHERE user_id = ? AND name = ?",
		userID, name,
	)
	if err != nil {
		return fmt.Errorf("remove skill: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("skill %q: %w", name, ErrNotFound)
	}

	return nil
}

// ListCandidates returns every user except excludeID, skills eager-loaded.
// Skills whose stored vectors are empty or of the wrong dimensionality are
// dropped here so they never reach scoring.
func (s *SQLiteStore) ListCandidates(ctx context.Context, excludeID string) ([]types.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(email, ''), profile_pic, bio, location, availability, college
		FROM users WHERE id != ? ORDER BY created_at`, excludeID)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	users, err := scanUsers(rows)
	if err != nil {
		return nil, err
	}

	if err := s.attachSkills(ctx, users); err != nil {
		return nil, err
	}

	return users, nil
}

// FilterUsers returns users other than excludeID matching the filter.
// An empty filter yields no results rather than the full pool.
func (s *SQLiteStore) FilterUsers(ctx context.Context, excludeID string, filter Filter) ([]types.User, error) {
	if filter.Empty() {
		return []types.User{}, nil
	}

	query := `
		SELECT DISTINCT u.id, u.name, COALESCE(u.email, ''), u.profile_pic, u.bio,
			u.location, u.availability, u.college
		FROM users u
		LEFT JOIN skills sk ON sk.user_id = u.id
		WHERE u.id != ?`
	args := []interface{}{excludeID}

	// SQLite LIKE is case-insensitive for ASCII, which covers the
	// substring semantics the filter promises. Values are escaped so
	// literal % and _ in a profile field never act as wildcards.
	if filter.Query != "" {
		query += ` AND (u.name LIKE ? ESCAPE '\' OR sk.name LIKE ? ESCAPE '\')`
		pattern := likePattern(filter.Query)
		args = append(args, pattern, pattern)
	}
	if filter.Availability != "" && filter.Availability != "all" {
		query += " AND u.availability = ?"
		args = append(args, filter.Availability)
	}
	if filter.Location != "" {
		query += ` AND u.location LIKE ? ESCAPE '\'`
		args = append(args, likePattern(filter.Location))
	}
	if filter.College != "" {
		query += ` AND u.college LIKE ? ESCAPE '\'`
		args = append(args, likePattern(filter.College))
	}

	query += " ORDER BY u.created_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("filter users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	users, err := scanUsers(rows)
	if err != nil {
		return nil, err
	}

	if err := s.attachSkills(ctx, users); err != nil {
		return nil, err
	}

	return users, nil
}

// likePattern wraps value in substring wildcards, escaping LIKE
// metacharacters in the value itself.
func likePattern(value string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
	return "%" + escaped + "%"
}

func scanUsers(rows *sql.Rows) ([]types.User, error) {
	users := make([]types.User, 0)
	for rows.Next() {
		var u types.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.ProfilePic,
			&u.Bio, &u.Location, &u.Availability, &u.College); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// loadSkills returns the user's skills in insertion order
func (s *SQLiteStore) loadSkills(ctx context.Context, userID string) ([]types.SkillVector, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, vector FROM skills WHERE user_id = ? ORDER BY id", userID)
	if err != nil {
		return nil, fmt.Errorf("load skills: %w", err)
	}
	defer func() { _ = rows.Close() }()

	skills := make([]types.SkillVector, 0)
	for rows.Next() {
		var name string
		var blob []byte
		if err := rows.Scan(&name, &blob); err != nil {
			return nil, fmt.Errorf("scan skill: %w", err)
		}

		vector := deserializeVector(blob)
		if len(vector) == 0 {
			continue
		}
		if s.dim > 0 && len(vector) != s.dim {
			continue
		}

		skills = append(skills, types.SkillVector{Name: name, Vector: vector})
	}

	return skills, rows.Err()
}

func (s *SQLiteStore) attachSkills(ctx context.Context, users []types.User) error {
	for i := range users {
		skills, err := s.loadSkills(ctx, users[i].ID)
		if err != nil {
			return err
		}
		users[i].Skills = skills
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
