package db

import (
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/otpauth/internal/identity/entity"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	codeHash  *string
	purpose   *string
	expiresAt *time.Time
	err       error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}

	*dest[0].(*int64) = 7
	*dest[1].(*string) = "id-7"
	*dest[6].(**string) = r.codeHash
	*dest[7].(**string) = r.purpose
	*dest[8].(**time.Time) = r.expiresAt

	return nil
}

func TestScanUser(t *testing.T) {
	hash := "5f4dcc3b5aa765d61d8327deb882cf995f4dcc3b5aa765d61d8327deb882cf99"
	exp := time.Date(2024, 1, 1, 8, 10, 0, 0, time.UTC)

	t.Run("PendingChallenge", func(t *testing.T) {
		// Arrange
		purpose := string(entity.PurposePasswordChange)

		// Act
		u, err := scanUser(fakeRow{codeHash: &hash, purpose: &purpose, expiresAt: &exp})

		// Assert
		require.NoError(t, err)
		require.Equal(t, int64(7), u.ID)
		require.Equal(t, &entity.Challenge{CodeHash: hash, Purpose: entity.PurposePasswordChange, ExpiresAt: exp}, u.Challenge)
	})

	t.Run("NoChallenge", func(t *testing.T) {
		// Act
		u, err := scanUser(fakeRow{})

		// Assert
		require.NoError(t, err)
		require.Nil(t, u.Challenge)
	})

	t.Run("UnknownPurposeIsNoChallenge", func(t *testing.T) {
		// Arrange
		purpose := "email_change"

		// Act
		u, err := scanUser(fakeRow{codeHash: &hash, purpose: &purpose, expiresAt: &exp})

		// Assert
		require.NoError(t, err)
		require.Nil(t, u.Challenge)
	})

	t.Run("ScanError", func(t *testing.T) {
		// Arrange
		boom := errors.New("boom")

		// Act
		u, err := scanUser(fakeRow{err: boom})

		// Assert
		require.ErrorIs(t, err, boom)
		require.Nil(t, u)
	})
}
