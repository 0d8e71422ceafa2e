package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

const (
	stateSessionName = "oauth_state"
	stateKey         = "state"

	// how long a user has to finish the consent screen
	stateMaxAge = 600
)

// keeps the OAuth state value in a signed short-lived cookie
type StateStore struct {
	store *sessions.CookieStore
}

func NewStateStore(secret string, secure bool) *StateStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/api/auth",
		MaxAge:   stateMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &StateStore{store: store}
}

func (s *StateStore) Save(c *gin.Context, state string) error {
	session, err := s.store.New(c.Request, stateSessionName)
	if err != nil && session == nil {
		return err
	}

	session.Values[stateKey] = state

	return session.Save(c.Request, c.Writer)
}

// returns the stored state and expires the cookie so it cannot be replayed
func (s *StateStore) Pop(c *gin.Context) string {
	session, err := s.store.Get(c.Request, stateSessionName)
	if err != nil {
		return ""
	}

	state, _ := session.Values[stateKey].(string)

	session.Options.MaxAge = -1
	session.Save(c.Request, c.Writer) //nolint:errcheck

	return state
}
