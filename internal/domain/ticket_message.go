package domain

import "time"

// TicketMessage is one entry in a ticket's conversation thread.
type TicketMessage struct {
	ID          string
	TicketID    string
	SenderID    string
	MessageText string
	CreatedAt   time.Time
}

// TicketAttachment stores metadata for an uploaded file. The binary itself
// lives in external storage; StorageKey points at it.
type TicketAttachment struct {
	ID         string
	TicketID   string
	UploadedBy string
	FileName   string
	MimeType   string
	SizeBytes  int64
	StorageKey string
	CreatedAt  time.Time
}
