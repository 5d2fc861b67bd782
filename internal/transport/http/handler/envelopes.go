package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-api-pool/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// SafeUser is the user view returned over the wire: no password hash, no
// soft-delete bookkeeping.
type SafeUser struct {
	UserID         string  `json:"id"`
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	Phone          *string `json:"phone,omitempty"`
	Role           string  `json:"role"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Birthday       string  `json:"birthday,omitempty"`
	EmailConfirmed bool    `json:"email_confirmed"`
	PhoneConfirmed bool    `json:"phone_confirmed"`
	Created        string  `json:"created"`
}

func toSafeUser(u *domain.User) *SafeUser {
	if u == nil {
		return nil
	}
	s := &SafeUser{
		UserID:         u.UserID,
		Username:       u.Username,
		Email:          u.Email,
		Phone:          u.Phone,
		Role:           u.Role,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		EmailConfirmed: u.EmailConfirmed,
		PhoneConfirmed: u.PhoneConfirmed,
		Created:        u.CreatedAt.UTC().Format(time.RFC3339),
	}
	if !u.Birthday.IsZero() {
		s.Birthday = u.Birthday.Format("2006-01-02")
	}
	return s
}

// PublicUser is the trimmed profile shown to users other than the owner:
// no contact details.
type PublicUser struct {
	UserID    string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Created   string `json:"created"`
}

func toPublicUser(u *domain.User) *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{
		UserID:    u.UserID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Created:   u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// SafeSession is the session view returned over the wire: the refresh token
// travels in its own field of the envelope, never inside the session.
type SafeSession struct {
	SessionID string `json:"id"`
	UserID    string `json:"user_id"`
	DeviceID  string `json:"device_id"`
	Created   string `json:"created"`
}

func toSafeSession(s *domain.Session) *SafeSession {
	if s == nil {
		return nil
	}
	return &SafeSession{
		SessionID: s.SessionID,
		UserID:    s.UserID,
		DeviceID:  s.DeviceID,
		Created:   s.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// AuthEnvelope wraps login/register/OTP-validation responses.
type AuthEnvelope struct {
	Bearer       string       `json:"Bearer,omitempty"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	Session      *SafeSession `json:"session,omitempty"`
	User         *SafeUser    `json:"user,omitempty"`
	Message      string       `json:"message,omitempty"`
	Error        string       `json:"error,omitempty"`
}

// SessionEnvelope wraps current-session responses.
type SessionEnvelope struct {
	Session *SafeSession `json:"session,omitempty"`
	User    *SafeUser    `json:"user,omitempty"`
	Message string       `json:"message,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// UsersPageEnvelope wraps cursor-paginated user list responses.
type UsersPageEnvelope struct {
	Data       []*SafeUser `json:"data"`
	NextCursor string      `json:"next_cursor,omitempty"`
	Error      string      `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps domain sentinel errors to HTTP status codes. Unrecognized
// errors become 500s with a generic body so internals do not leak.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenMalformed):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
