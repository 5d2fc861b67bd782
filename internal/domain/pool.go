package domain

import "time"

// Pool item statuses. A delivered item has no status: the row is removed and
// the sent log is the terminal record.
const (
	PoolStatusPending    = "PENDING"
	PoolStatusProcessing = "PROCESSING"
	PoolStatusError      = "ERROR"
)

// EmailPoolItem is a not-yet-delivered email held in the email pool table.
type EmailPoolItem struct {
	ItemID       string    `json:"id" dynamodbav:"item_id"`
	Email        string    `json:"email" dynamodbav:"email"`
	TemplateID   string    `json:"template_id" dynamodbav:"template_id"`
	Status       string    `json:"status" dynamodbav:"status"`
	Subject      string    `json:"subject" dynamodbav:"subject"`
	Content      string    `json:"content" dynamodbav:"content"`
	SendTime     time.Time `json:"send_time" dynamodbav:"send_time"`
	SendAttempts int       `json:"send_attempts" dynamodbav:"send_attempts"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated" dynamodbav:"updated_at"`
}

// SMSPoolItem is a not-yet-delivered SMS. Phone is denormalized at enqueue
// time so the worker never needs a user lookup.
type SMSPoolItem struct {
	ItemID       string    `json:"id" dynamodbav:"item_id"`
	UserID       string    `json:"user_id" dynamodbav:"user_id"`
	Phone        string    `json:"phone" dynamodbav:"phone"`
	TemplateID   string    `json:"template_id" dynamodbav:"template_id"`
	Status       string    `json:"status" dynamodbav:"status"`
	Message      string    `json:"message" dynamodbav:"message"`
	SendTime     time.Time `json:"send_time" dynamodbav:"send_time"`
	SendAttempts int       `json:"send_attempts" dynamodbav:"send_attempts"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated" dynamodbav:"updated_at"`
}

// PushPoolItem is a not-yet-delivered push notification. Data carries the
// JSON-encoded extra payload (catalogue action etc.).
type PushPoolItem struct {
	ItemID       string    `json:"id" dynamodbav:"item_id"`
	UserID       string    `json:"user_id" dynamodbav:"user_id"`
	TemplateID   string    `json:"template_id" dynamodbav:"template_id"`
	Status       string    `json:"status" dynamodbav:"status"`
	Message      string    `json:"message" dynamodbav:"message"`
	Data         string    `json:"data,omitempty" dynamodbav:"data"`
	SendTime     time.Time `json:"send_time" dynamodbav:"send_time"`
	SendAttempts int       `json:"send_attempts" dynamodbav:"send_attempts"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated" dynamodbav:"updated_at"`
}

// EmailSent is the terminal log row for a delivered email.
type EmailSent struct {
	SentID     string    `json:"id" dynamodbav:"sent_id"`
	Email      string    `json:"email" dynamodbav:"email"`
	TemplateID string    `json:"template_id" dynamodbav:"template_id"`
	Content    string    `json:"content" dynamodbav:"content"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
}

// SMSSent is the terminal log row for a delivered SMS.
type SMSSent struct {
	SentID     string    `json:"id" dynamodbav:"sent_id"`
	UserID     string    `json:"user_id" dynamodbav:"user_id"`
	TemplateID string    `json:"template_id" dynamodbav:"template_id"`
	Message    string    `json:"message" dynamodbav:"message"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
}

// PushSent is the terminal log row for a dispatched push notification.
type PushSent struct {
	SentID     string    `json:"id" dynamodbav:"sent_id"`
	UserID     string    `json:"user_id" dynamodbav:"user_id"`
	DeviceID   string    `json:"device_id" dynamodbav:"device_id"`
	TemplateID string    `json:"template_id" dynamodbav:"template_id"`
	Message    string    `json:"message" dynamodbav:"message"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
}
