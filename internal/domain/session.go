package domain

import "time"

// Session is the persistent login record for a (user, device) pair.
// At most one enabled session exists per pair; repeated logins from the same
// device reuse the row and refresh UpdatedAt, which doubles as the staleness
// clock for the server-side expiration check.
type Session struct {
	SessionID        string    `json:"id" dynamodbav:"session_id"`
	UserID           string    `json:"user_id" dynamodbav:"user_id"`
	DeviceID         string    `json:"device_id" dynamodbav:"device_id"`
	Enable           bool      `json:"enable" dynamodbav:"enable"`
	RefreshToken     string    `json:"-" dynamodbav:"refresh_token"`
	RefreshExpiresAt int64     `json:"-" dynamodbav:"refresh_expires_at"`
	CreatedAt        time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt        time.Time `json:"updated" dynamodbav:"updated_at"`
	User             *User     `json:"user,omitempty" dynamodbav:"-"`
}
