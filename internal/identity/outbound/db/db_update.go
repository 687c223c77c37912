package db

import (
	"context"

	"github.com/shandysiswandi/otpauth/internal/identity/entity"
)

func (s *DB) UpdateUserChallenge(ctx context.Context, userID int64, ch entity.Challenge) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateUserChallenge")
	defer func() { s.endSpan(span, err) }()

	return s.affected(s.conn.Exec(ctx, `
		UPDATE users
		SET otp_code_hash = $2, otp_purpose = $3, otp_expires_at = $4, updated_at = now()
		WHERE id = $1`,
		userID, ch.CodeHash, string(ch.Purpose), ch.ExpiresAt,
	))
}

func (s *DB) UpdateUserProfile(ctx context.Context, userID int64, name, email string) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateUserProfile")
	defer func() { s.endSpan(span, err) }()

	return s.affected(s.conn.Exec(ctx, `
		UPDATE users SET name = $2, email = $3, updated_at = now() WHERE id = $1`,
		userID, name, email,
	))
}

// ConsumeChallengeWithSession clears the pending code and stores the new
// session in one statement, guarded by the code hash the caller checked.
func (s *DB) ConsumeChallengeWithSession(ctx context.Context, userID int64, codeHash, sessionHash string) (err error) {
	ctx, span := s.startSpan(ctx, "ConsumeChallengeWithSession")
	defer func() { s.endSpan(span, err) }()

	return s.affected(s.conn.Exec(ctx, `
		UPDATE users
		SET otp_code_hash = NULL, otp_purpose = NULL, otp_expires_at = NULL,
			session_hash = $3, updated_at = now()
		WHERE id = $1 AND otp_code_hash = $2`,
		userID, codeHash, sessionHash,
	))
}

func (s *DB) ConsumeChallengeWithPassword(ctx context.Context, userID int64, codeHash, passwordHash string) (err error) {
	ctx, span := s.startSpan(ctx, "ConsumeChallengeWithPassword")
	defer func() { s.endSpan(span, err) }()

	return s.affected(s.conn.Exec(ctx, `
		UPDATE users
		SET otp_code_hash = NULL, otp_purpose = NULL, otp_expires_at = NULL,
			password_hash = $3, updated_at = now()
		WHERE id = $1 AND otp_code_hash = $2`,
		userID, codeHash, passwordHash,
	))
}
