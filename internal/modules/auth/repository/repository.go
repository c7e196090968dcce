package repository

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"rainwatch-server/internal/modules/auth/types"
)

//go:embed sql/get-user-by-username.sql
var getUserByUsernameSQL string

//go:embed sql/insert-user.sql
var insertUserSQL string

// ErrDuplicateUsername is produced only by the UNIQUE constraint on
// users.username, so concurrent signups with the same name cannot both
// succeed.
var ErrDuplicateUsername = errors.New("username already registered")

type UserRepository interface {
	// GetByUsername is an exact-match lookup; usernames are case-sensitive,
	// unlike device codes. Returns nil when no user exists.
	GetByUsername(username string) (*types.User, error)
	Create(username string, passwordHash string) (*types.User, error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) UserRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) GetByUsername(username string) (*types.User, error) {
	var u types.User
	var created string
	err := r.db.QueryRow(getUserByUsernameSQL, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt, err = parseTimestamp(created)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repositoryImpl) Create(username string, passwordHash string) (*types.User, error) {
	now := time.Now().UTC()
	res, err := r.db.Exec(insertUserSQL, username, passwordHash, now.Format(time.RFC3339Nano))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert user id: %w", err)
	}
	return &types.User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}, nil
}

func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.Code == sqlite3.ErrConstraint && serr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

func parseTimestamp(ts string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		var err2 error
		t, err2 = time.Parse(time.RFC3339, ts)
		if err2 != nil {
			return time.Time{}, fmt.Errorf("parse timestamp %q: RFC3339Nano: %w; RFC3339: %w", ts, err, err2)
		}
	}
	return t, nil
}
