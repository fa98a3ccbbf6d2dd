// Package mailsource reads a shared mailbox through Microsoft Graph.
package mailsource

import (
	"fmt"
	"strings"
	"time"
)

// Message is the subset of a Graph message the ingestion pipeline uses.
type Message struct {
	ID                string    `json:"id"`
	InternetMessageID string    `json:"internetMessageId"`
	Subject           string    `json:"subject"`
	Sender            string    `json:"-"`
	SenderName        string    `json:"-"`
	ReceivedAt        time.Time `json:"receivedDateTime"`
	HasAttachments    bool      `json:"hasAttachments"`
	IsRead            bool      `json:"isRead"`
}

// DedupKey identifies the message across folders and moves.
func (m Message) DedupKey() string {
	if m.InternetMessageID != "" {
		return m.InternetMessageID
	}

	return m.ID
}

type Attachment struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	IsInline    bool   `json:"isInline"`
}

// Query narrows a folder listing.
type Query struct {
	Keywords []string
	Since    time.Time
	Top      int
}

// Filter renders q as an OData $filter expression.
func (q Query) Filter() string {
	var parts []string

	if !q.Since.IsZero() {
		parts = append(parts, "receivedDateTime ge "+q.Since.UTC().Format(time.RFC3339))
	}

	var subject []string

	for _, k := range q.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			subject = append(subject, fmt.Sprintf("contains(subject,'%s')", strings.ReplaceAll(k, "'", "''")))
		}
	}

	switch len(subject) {
	case 0:
	case 1:
		parts = append(parts, subject[0])
	default:
		parts = append(parts, "("+strings.Join(subject, " or ")+")")
	}

	return strings.Join(parts, " and ")
}
