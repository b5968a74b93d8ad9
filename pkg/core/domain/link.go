package domain

import "time"

// Link represents a shortened URL owned by a single user.
type Link struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	OriginalURL string    `json:"original_url" db:"original_url"`
	CustomURL   *string   `json:"custom_url" db:"custom_url"`
	ShortURL    string    `json:"short_url" db:"short_url"`
	QR          string    `json:"qr" db:"qr"`
	UserID      string    `json:"user_id" db:"user_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Matches reports whether code resolves to this link.
func (l *Link) Matches(code string) bool {
	if l.ShortURL == code {
		return true
	}
	return l.CustomURL != nil && *l.CustomURL == code
}

// NewLink holds the caller-supplied fields of a link about to be created.
type NewLink struct {
	Title     string
	LongURL   string
	CustomURL string
	UserID    string
}
