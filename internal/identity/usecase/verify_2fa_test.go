package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
	"github.com/stretchr/testify/require"
)

func TestVerify2FA(t *testing.T) {
	login := func(t *testing.T, f *fixture) string {
		t.Helper()
		require.NoError(t, f.uc.Login(context.Background(), LoginInput{Email: testEmail, Password: testPassword}))
		return f.notifier.lastCode(t)
	}

	t.Run("WrongThenRightCode", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		id := f.register(t)
		code := login(t, f)

		// Act
		_, errWrong := f.uc.Verify2FA(context.Background(), Verify2FAInput{Email: testEmail, Code: wrongCode(code)})
		profile, err := f.uc.Verify2FA(context.Background(), Verify2FAInput{Email: testEmail, Code: code})

		// Assert
		requireCode(t, errWrong, goerror.CodeUnauthorized)
		require.NoError(t, err)
		require.Equal(t, id, profile.Identifier)
		require.Equal(t, testName, profile.Name)
		require.Equal(t, testMobile, profile.Mobile)

		clm, err := f.jwt.Verify(profile.Token)
		require.NoError(t, err)
		require.Equal(t, id, clm.UserIdentifier)
		require.Equal(t, f.clock.Now().Add(time.Hour).Unix(), clm.ExpiresAt.Unix())

		u := f.stored(t)
		require.Nil(t, u.Challenge)
		require.NotNil(t, u.SessionHash)
	})

	t.Run("ReplayFails", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		f.register(t)
		code := login(t, f)
		_, err := f.uc.Verify2FA(context.Background(), Verify2FAInput{Email: testEmail, Code: code})
		require.NoError(t, err)

		// Act
		_, err = f.uc.Verify2FA(context.Background(), Verify2FAInput{Email: testEmail, Code: code})

		// Assert
		requireCode(t, err, goerror.CodeUnauthorized)
	})

	t.Run("ExpiredAndMismatchLookAlike", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		f.register(t)
		code := login(t, f)
		_, errMismatch := f.uc.Verify2FA(context.Background(), Verify2FAInput{Email: testEmail, Code: wrongCode(code)})
		f.clock.Advance(11 * time.Minute)

		// Act
		_, errExpired := f.uc.Verify2FA(context.Background(), Verify2FAInput{Email: testEmail, Code: code})

		// Assert
		requireCode(t, errExpired, goerror.CodeUnauthorized)
		require.Equal(t, errMismatch.Error(), errExpired.Error())
		require.Equal(t, msgInvalidCode, errExpired.(*goerror.Error).Msg())
		require.Nil(t, f.stored(t).SessionHash)
	})

	t.Run("ExactExpiryStillValid", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		f.register(t)
		code := login(t, f)
		f.clock.Advance(defaultOTPTTL)

		// Act
		_, err := f.uc.Verify2FA(context.Background(), Verify2FAInput{Email: testEmail, Code: code})

		// Assert
		require.NoError(t, err)
	})

	t.Run("LastCodeWins", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		f.register(t)
		first := login(t, f)
		f.clock.Advance(time.Minute)
		second := login(t, f)
		if first == second {
			t.Skip("two windows produced the same code")
		}

		// Act
		_, errFirst := f.uc.Verify2FA(context.Background(), Verify2FAInput{Email: testEmail, Code: first})
		_, errSecond := f.uc.Verify2FA(context.Background(), Verify2FAInput{Email: testEmail, Code: second})

		// Assert
		requireCode(t, errFirst, goerror.CodeUnauthorized)
		require.NoError(t, errSecond)
	})

	t.Run("RecoveryCodeCannotLogIn", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		f.register(t)
		require.NoError(t, f.uc.PasswordForgot(context.Background(), PasswordForgotInput{Email: testEmail, Mobile: testMobile}))
		code := f.notifier.lastCode(t)

		// Act
		_, err := f.uc.Verify2FA(context.Background(), Verify2FAInput{Email: testEmail, Code: code})

		// Assert
		requireCode(t, err, goerror.CodeUnauthorized)
		require.NotNil(t, f.stored(t).Challenge)
	})

	t.Run("NoPendingCode", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		f.register(t)

		// Act
		_, err := f.uc.Verify2FA(context.Background(), Verify2FAInput{Email: testEmail, Code: "123456"})

		// Assert
		requireCode(t, err, goerror.CodeUnauthorized)
	})

	t.Run("MissingFields", func(t *testing.T) {
		// Arrange
		f := newFixture(t)

		// Act
		_, err := f.uc.Verify2FA(context.Background(), Verify2FAInput{})

		// Assert
		requireCode(t, err, goerror.CodeInvalidInput)
	})
}
