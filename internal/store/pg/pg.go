package pg

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"tripod.studio/internal/auth"
	"tripod.studio/internal/catalog"
	"tripod.studio/internal/rbac"
)

const (
	pgErrUniqueViolation     = "23505"
	pgErrForeignKeyViolation = "23503"
)

// Store holds the shared connection pool. Domain-specific stores are
// thin views over it.
type Store struct {
	db *sql.DB
}

var (
	_ auth.Store                = (*Store)(nil)
	_ rbac.Store                = (*Store)(nil)
	_ catalog.OrganizationStore = orgStore{}
	_ catalog.LanguageStore     = languageStore{}
	_ catalog.ProjectStore      = projectStore{}
	_ catalog.PhaseStore        = phaseStore{}
)

// Open connects to Postgres through the pgx stdlib driver.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewStore wraps an existing pool. Used by tests with sqlmock.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// Users returns the user store view.
func (s *Store) Users() auth.UserStore { return userStore{s.db} }

// RefreshTokens returns the refresh token store view.
func (s *Store) RefreshTokens() auth.RefreshTokenStore { return refreshTokenStore{s.db} }

// Organizations returns the organization store view.
func (s *Store) Organizations() catalog.OrganizationStore { return orgStore{s.db} }

// Languages returns the language store view.
func (s *Store) Languages() catalog.LanguageStore { return languageStore{s.db} }

// Projects returns the project store view.
func (s *Store) Projects() catalog.ProjectStore { return projectStore{s.db} }

// Phases returns the phase store view.
func (s *Store) Phases() catalog.PhaseStore { return phaseStore{s.db} }

func maybePgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

func nullIfEmpty(s string) sql.NullString {
	s = strings.TrimSpace(s)
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
