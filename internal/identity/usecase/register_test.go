package usecase

import (
	"context"
	"testing"

	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
	"github.com/shandysiswandi/otpauth/internal/pkg/uid"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		f := newFixture(t)

		// Act
		out, err := f.uc.Register(context.Background(), RegisterInput{
			Name:     "  " + testName + " ",
			Email:    " ADA@Example.com",
			Mobile:   testMobile,
			Password: testPassword,
		})

		// Assert
		require.NoError(t, err)
		require.True(t, uid.IsUUID(out.Identifier))

		u := f.stored(t)
		require.Equal(t, testName, u.Name)
		require.Equal(t, out.Identifier, u.Identifier)
		require.NotEqual(t, testPassword, u.PasswordHash)
		require.Nil(t, u.Challenge)
		require.Nil(t, u.SessionHash)

		ok, err := f.password.Verify(u.PasswordHash, testPassword)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		f.register(t)

		// Act
		_, err := f.uc.Register(context.Background(), RegisterInput{
			Name:     "Other",
			Email:    testEmail,
			Mobile:   "+15559998888",
			Password: testPassword,
		})

		// Assert
		requireCode(t, err, goerror.CodeConflict)
	})

	t.Run("DuplicateMobile", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		f.register(t)

		// Act
		_, err := f.uc.Register(context.Background(), RegisterInput{
			Name:     "Other",
			Email:    "other@example.com",
			Mobile:   testMobile,
			Password: testPassword,
		})

		// Assert
		requireCode(t, err, goerror.CodeConflict)
	})

	t.Run("InvalidInput", func(t *testing.T) {
		// Arrange
		f := newFixture(t)

		// Act
		_, err := f.uc.Register(context.Background(), RegisterInput{
			Name:     "",
			Email:    "not-an-email",
			Mobile:   "12",
			Password: "short",
		})

		// Assert
		requireCode(t, err, goerror.CodeInvalidInput)
		require.Empty(t, f.repo.users)
	})
}
