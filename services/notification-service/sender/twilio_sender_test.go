package sender

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTwilioSender(t *testing.T) {
	t.Run("Posts a WhatsApp message", func(t *testing.T) {
		var gotPath, gotUser, gotPass string
		var form map[string]string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotUser, gotPass, _ = r.BasicAuth()
			require.NoError(t, r.ParseForm())
			form = map[string]string{"To": r.PostForm.Get("To"), "From": r.PostForm.Get("From"), "Body": r.PostForm.Get("Body")}
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"sid":"SM123"}`))
		}))
		defer server.Close()

		s := NewTwilioSender(TwilioConfig{AccountSID: "AC1", AuthToken: "tok", FromNumber: "+14155550000"})
		s.baseURL = server.URL

		res, err := s.SendWhatsApp(context.Background(), "+225707070707", "Bonjour")

		require.NoError(t, err)
		assert.Equal(t, "SM123", res.MessageID)
		assert.Equal(t, "/Accounts/AC1/Messages.json", gotPath)
		assert.Equal(t, "AC1", gotUser)
		assert.Equal(t, "tok", gotPass)
		assert.Equal(t, "whatsapp:+225707070707", form["To"])
		assert.Equal(t, "whatsapp:+14155550000", form["From"])
		assert.Equal(t, "Bonjour", form["Body"])
	})

	t.Run("API error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"invalid To"}`))
		}))
		defer server.Close()

		s := NewTwilioSender(TwilioConfig{AccountSID: "AC1", AuthToken: "tok"})
		s.baseURL = server.URL

		_, err := s.SendWhatsApp(context.Background(), "whatsapp:+225707070707", "Bonjour")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid To")
	})

	t.Run("Missing credentials", func(t *testing.T) {
		s := NewTwilioSender(TwilioConfig{})
		assert.Equal(t, DefaultWhatsAppFrom, s.cfg.FromNumber)

		_, err := s.SendWhatsApp(context.Background(), "+225707070707", "Bonjour")
		assert.ErrorIs(t, err, ErrNotConfigured)
	})
}
