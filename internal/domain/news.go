package domain

import "time"

// News type ids. Urgent news fans out a push notification to every user,
// scheduled at the news start date.
const (
	NewsTypeGeneral = "general"
	NewsTypeUrgent  = "urgent"
)

type News struct {
	NewsID          string    `json:"id" dynamodbav:"news_id"`
	UserID          string    `json:"user_id" dynamodbav:"user_id"`
	Type            string    `json:"type" dynamodbav:"type"`
	Title           string    `json:"title" dynamodbav:"title"`
	Body            string    `json:"body" dynamodbav:"body"`
	FileIDImage     *string   `json:"file_id,omitempty" dynamodbav:"file_id_image"`
	FileIDThumbnail *string   `json:"thumbnail_id,omitempty" dynamodbav:"file_id_thumbnail"`
	StartDate       time.Time `json:"startdate" dynamodbav:"start_date"`
	EndDate         time.Time `json:"enddate" dynamodbav:"end_date"`
	Enable          bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt       time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt       time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateNewsRequest struct {
	Type        string  `json:"type" validate:"required,oneof=general urgent"`
	Title       string  `json:"title" validate:"required"`
	Body        string  `json:"body" validate:"required"`
	FileID      *string `json:"file_id"`
	ThumbnailID *string `json:"thumbnail_id"`
	StartDate   string  `json:"startdate"` // RFC3339, defaults to now
	EndDate     string  `json:"enddate"`   // RFC3339, defaults to startdate+30d
}

type UpdateNewsRequest struct {
	Title     *string `json:"title"`
	Body      *string `json:"body"`
	StartDate *string `json:"startdate"`
	EndDate   *string `json:"enddate"`
	Enable    *bool   `json:"enable"`
}
