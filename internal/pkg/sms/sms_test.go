package sms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTwilio_Send(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		// Arrange
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "AC123", user)
			assert.Equal(t, "tok", pass)
			assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", r.URL.Path)
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "+1000", r.PostForm.Get("To"))
			assert.Equal(t, "+1999", r.PostForm.Get("From"))
			assert.Equal(t, "hello", r.PostForm.Get("Body"))

			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"sid":"SM1","status":"queued"}`))
		}))
		defer srv.Close()

		tw, err := NewTwilio(TwilioConfig{AccountSID: "AC123", AuthToken: "tok", From: "+1999", BaseURL: srv.URL})
		require.NoError(t, err)

		// Act
		ref, err := tw.Send(context.Background(), "+1000", "hello")

		// Assert
		require.NoError(t, err)
		require.Equal(t, "SM1", ref)
	})

	t.Run("api error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":21211,"message":"Invalid 'To' Phone Number","status":400}`))
		}))
		defer srv.Close()

		tw, err := NewTwilio(TwilioConfig{AccountSID: "AC", AuthToken: "t", From: "+1", BaseURL: srv.URL})
		require.NoError(t, err)

		_, err = tw.Send(context.Background(), "bad", "x")

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, 21211, apiErr.Code)
		require.Equal(t, http.StatusBadRequest, apiErr.Status)
	})

	t.Run("non json error body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		tw, err := NewTwilio(TwilioConfig{AccountSID: "AC", AuthToken: "t", From: "+1", BaseURL: srv.URL})
		require.NoError(t, err)

		_, err = tw.Send(context.Background(), "+1000", "x")

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusBadGateway, apiErr.Status)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := NewTwilio(TwilioConfig{From: "+1"})
		require.ErrorIs(t, err, ErrCredentialsRequired)

		_, err = NewTwilio(TwilioConfig{AccountSID: "AC", AuthToken: "t"})
		require.ErrorIs(t, err, ErrFromRequired)

		tw, err := NewTwilio(TwilioConfig{AccountSID: "AC", AuthToken: "t", From: "+1"})
		require.NoError(t, err)
		require.Equal(t, defaultBaseURL, tw.cfg.BaseURL)

		_, err = tw.Send(context.Background(), " ", "x")
		require.ErrorIs(t, err, ErrRecipientRequired)
	})
}
