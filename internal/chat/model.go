package chat

import "time"

// Thread is a back-office conversation.
type Thread struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Message belongs to a thread.
type Message struct {
	ID       string    `json:"id"`
	ThreadID string    `json:"thread_id"`
	AuthorID int64     `json:"author_id"`
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sent_at"`
}
