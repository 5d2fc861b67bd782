package domain

// Verification record types. One row per (user, type); writing a new code
// replaces the previous one, consuming a code deletes the row, so code and
// timestamp always travel together.
const (
	VerificationOTP   = "otp"
	VerificationEmail = "email"
	VerificationPhone = "phone"
)

// UserVerification stores one-time codes for password recovery and
// email/phone confirmation.
// PK: user_id, SK: type. ExpiresAt doubles as the DynamoDB TTL; expiry is
// still checked at validation time, the TTL only garbage-collects.
type UserVerification struct {
	UserID    string `json:"user_id" dynamodbav:"user_id"`
	Type      string `json:"type" dynamodbav:"type"`
	Code      string `json:"code" dynamodbav:"code"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"`
}
