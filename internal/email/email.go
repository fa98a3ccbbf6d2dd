// Package email turns supplier invoices arriving in a shared mailbox into
// invoice drafts, keeping one processing log row per message.
package email

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Reasons attached to skipped messages.
const (
	ReasonAlreadyProcessed = "already_processed"
	ReasonNotWhitelisted   = "sender_not_whitelisted"
	ReasonNoAttachments    = "no_attachments"
	ReasonUnsupportedFiles = "unsupported_files"
)

// Config is the singleton auto-processing configuration.
type Config struct {
	Active          bool       `json:"is_active"`
	IntervalMinutes int        `json:"interval_minutes"`
	TargetFolders   []string   `json:"target_folders"`
	SubjectFilters  []string   `json:"subject_filters"`
	SenderWhitelist []string   `json:"sender_whitelist"`
	MaxEmailsPerRun int        `json:"max_emails_per_run"`
	LastRunAt       *time.Time `json:"last_run_at,omitempty"`
	LastRunStatus   string     `json:"last_run_status"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Due reports whether an automatic run should start at now.
func (c *Config) Due(now time.Time) bool {
	if !c.Active {
		return false
	}

	if c.LastRunAt == nil {
		return true
	}

	return !now.Before(c.LastRunAt.Add(time.Duration(c.IntervalMinutes) * time.Minute))
}

// Allows reports whether sender passes the whitelist. An entry starting
// with @ admits a whole domain. An empty whitelist admits everyone.
func (c *Config) Allows(sender string) bool {
	if len(c.SenderWhitelist) == 0 {
		return true
	}

	sender = strings.ToLower(strings.TrimSpace(sender))

	return slices.ContainsFunc(c.SenderWhitelist, func(entry string) bool {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if strings.HasPrefix(entry, "@") {
			return strings.HasSuffix(sender, entry)
		}

		return entry == sender
	})
}

// Log is the outcome of processing one message. Rows are never rewritten.
type Log struct {
	ID                  uuid.UUID   `json:"id"`
	MessageID           string      `json:"message_id"`
	Subject             string      `json:"subject"`
	Sender              string      `json:"sender"`
	ReceivedAt          *time.Time  `json:"received_at,omitempty"`
	Folder              string      `json:"folder"`
	AttachmentFilenames []string    `json:"attachment_filenames"`
	Status              Status      `json:"status"`
	Reason              string      `json:"reason,omitempty"`
	InvoicesCreated     []uuid.UUID `json:"invoices_created"`
	OTsMatched          int         `json:"ots_matched"`
	ProcessingMS        int64       `json:"processing_ms"`
	Error               string      `json:"error,omitempty"`
	CreatedAt           time.Time   `json:"created_at"`
}
