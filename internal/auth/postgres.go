package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/talDoFlemis/health-hub/internal/ids"
)

const pgUniqueViolation = "23505"

var (
	_ UserStore     = (*PGUserStore)(nil)
	_ TokenRegistry = (*PGTokenRegistry)(nil)
)

// PGUserStore implements UserStore over PostgreSQL.
type PGUserStore struct {
	db *sql.DB
}

func NewPGUserStore(db *sql.DB) *PGUserStore {
	return &PGUserStore{db: db}
}

func (s *PGUserStore) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = ids.New()
	}
	_, err := s.db.ExecContext(ctx,
		`insert into users(id, firstname, lastname, email, password_hash, role)
		 values($1,$2,$3,$4,$5,$6)`,
		u.ID, u.Firstname, u.Lastname, u.Email, u.PasswordHash, string(u.Role),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("%w: %s", ErrEmailTaken, u.Email)
		}
		return err
	}
	return nil
}

func (s *PGUserStore) Find(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, firstname, lastname, email, password_hash, role, created_at, updated_at
		 from users where id=$1`, id)
	return scanUser(row)
}

func (s *PGUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, firstname, lastname, email, password_hash, role, created_at, updated_at
		 from users where email=$1`, email)
	return scanUser(row)
}

func (s *PGUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`select exists(select 1 from users where email=$1)`, email).Scan(&exists)
	return exists, err
}

func scanUser(row *sql.Row) (*User, error) {
	var (
		u    User
		role string
	)
	if err := row.Scan(&u.ID, &u.Firstname, &u.Lastname, &u.Email, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.Role = Role(role)
	return &u, nil
}

// PGTokenRegistry implements TokenRegistry over PostgreSQL. Entries are only
// ever flipped to expired+revoked, never back, and never deleted.
type PGTokenRegistry struct {
	db *sql.DB
}

func NewPGTokenRegistry(db *sql.DB) *PGTokenRegistry {
	return &PGTokenRegistry{db: db}
}

func (r *PGTokenRegistry) Record(ctx context.Context, userID, tokenString string) error {
	_, err := r.db.ExecContext(ctx,
		`insert into tokens(id, user_id, token, kind, expired, revoked)
		 values($1,$2,$3,$4,false,false)`,
		ids.New(), userID, tokenString, string(TokenKindBearer),
	)
	return err
}

func (r *PGTokenRegistry) IsLive(ctx context.Context, tokenString string) (bool, error) {
	var expired, revoked bool
	err := r.db.QueryRowContext(ctx,
		`select expired, revoked from tokens where token=$1`, tokenString,
	).Scan(&expired, &revoked)
	if errors.Is(err, sql.ErrNoRows) {
		// Unknown tokens are rejected even when their signature verifies.
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !expired && !revoked, nil
}

func (r *PGTokenRegistry) RevokeAllForUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`update tokens set expired=true, revoked=true
		 where user_id=$1 and expired=false and revoked=false`, userID)
	return err
}

func (r *PGTokenRegistry) RevokeByToken(ctx context.Context, tokenString string) error {
	_, err := r.db.ExecContext(ctx,
		`update tokens set expired=true, revoked=true where token=$1`, tokenString)
	return err
}

func (r *PGTokenRegistry) Rotate(ctx context.Context, userID, tokenString string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`update tokens set expired=true, revoked=true
		 where user_id=$1 and expired=false and revoked=false`, userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`insert into tokens(id, user_id, token, kind, expired, revoked)
		 values($1,$2,$3,$4,false,false)`,
		ids.New(), userID, tokenString, string(TokenKindBearer)); err != nil {
		return err
	}
	return tx.Commit()
}
