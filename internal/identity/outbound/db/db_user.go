package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/otpauth/internal/identity/entity"
)

const userColumns = `id, identifier, name, email, mobile, password_hash,
	otp_code_hash, otp_purpose, otp_expires_at, session_hash, created_at, updated_at`

func (s *DB) CreateUser(ctx context.Context, u entity.User) (err error) {
	ctx, span := s.startSpan(ctx, "CreateUser")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO users (id, identifier, name, email, mobile, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Identifier, u.Name, u.Email, u.Mobile, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
	)

	return s.mapError(err)
}

func (s *DB) GetUserByEmail(ctx context.Context, email string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByEmail")
	defer func() { s.endSpan(span, err) }()

	u, err := scanUser(s.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, s.mapError(err)
	}

	return u, nil
}

func (s *DB) GetUserByIdentifier(ctx context.Context, identifier string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByIdentifier")
	defer func() { s.endSpan(span, err) }()

	u, err := scanUser(s.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE identifier = $1`, identifier))
	if err != nil {
		return nil, s.mapError(err)
	}

	return u, nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		u         entity.User
		codeHash  *string
		purpose   *string
		expiresAt *time.Time
	)

	if err := row.Scan(
		&u.ID, &u.Identifier, &u.Name, &u.Email, &u.Mobile, &u.PasswordHash,
		&codeHash, &purpose, &expiresAt, &u.SessionHash, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}

	// the table constraint keeps the three otp columns all set or all null.
	// A purpose this build does not know can never be verified, so it reads as none.
	if codeHash != nil && purpose != nil && expiresAt != nil && entity.Purpose(*purpose).Valid() {
		u.Challenge = &entity.Challenge{
			CodeHash:  *codeHash,
			Purpose:   entity.Purpose(*purpose),
			ExpiresAt: *expiresAt,
		}
	}

	return &u, nil
}
