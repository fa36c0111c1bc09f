package common

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// JsonHandler wraps a handler with OPTIONS handling, the session cookie and
// error logging. Handler errors are logged, never rendered to the client.
func JsonHandler(fn func(w http.ResponseWriter, r *http.Request, sessionId string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			RespondToOptions(w, r)
			return
		}
		sessionId := HandleSessionCookie(w, r)
		if err := fn(w, r, sessionId); err != nil {
			logrus.WithError(err).Error("request failed")
		}
	}
}

func RespondToOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if origin := r.Header.Get("Origin"); origin != "" {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Max-Age", "86400")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
	w.WriteHeader(http.StatusAccepted)
}

// HandleSessionCookie returns the visitor's session id, minting one when the
// cookie is missing.
func HandleSessionCookie(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie("sid"); err == nil && c.Value != "" {
		return c.Value
	}
	sessionId := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     "sid",
		Value:    sessionId,
		SameSite: http.SameSiteLaxMode,
		HttpOnly: true,
		MaxAge:   2592000,
		Path:     "/",
	})
	return sessionId
}
