// Package importer ingests operational spreadsheets into work orders. Rows
// are deduplicated by content hash and field writes respect provenance:
// when a row would overwrite a value from a stronger source the whole file
// is parked as a pending batch until the conflicts are resolved.
package importer

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/forwarder/internal/importer/sheet"
	"github.com/MrJamesThe3rd/forwarder/internal/workorder"
)

var ErrAlreadyProcessed = errors.New("file already processed")

// Resolution answers one conflict.
type Resolution string

const (
	UseNew      Resolution = "use_new"
	KeepCurrent Resolution = "keep_current"
)

func (r Resolution) Valid() bool {
	return r == UseNew || r == KeepCurrent
}

// Conflict is a field whose current value comes from a source that
// outranks the incoming one.
type Conflict struct {
	OT            string                `json:"ot"`
	Field         workorder.Field       `json:"field"`
	CurrentValue  string                `json:"current_value"`
	NewValue      string                `json:"new_value"`
	CurrentSource workorder.FieldSource `json:"current_source"`
}

type ResolutionInput struct {
	OT         string          `json:"ot"`
	Field      workorder.Field `json:"field"`
	Resolution Resolution      `json:"resolution"`
}

// Warning reports a row left out of the import or a value ignored.
type Warning struct {
	Line    int    `json:"line,omitempty"`
	OT      string `json:"ot,omitempty"`
	Message string `json:"message"`
}

type Result struct {
	FileHash    string     `json:"file_hash"`
	Filename    string     `json:"filename"`
	Created     int        `json:"created"`
	Updated     int        `json:"updated"`
	Skipped     int        `json:"skipped"`
	FileSkipped bool       `json:"file_skipped"`
	BatchID     *uuid.UUID `json:"pending_batch_id,omitempty"`
	Conflicts   []Conflict `json:"conflicts"`
	Warnings    []Warning  `json:"warnings"`
}

// Pending reports whether the caller must resolve conflicts before
// anything is written.
func (r *Result) Pending() bool {
	return r.BatchID != nil
}

func (r *Result) warn(line int, ot, msg string) {
	r.Warnings = append(r.Warnings, Warning{Line: line, OT: ot, Message: msg})
}

// ProcessedFile remembers an imported spreadsheet by content hash.
type ProcessedFile struct {
	ID            uuid.UUID `json:"id"`
	FileHash      string    `json:"file_hash"`
	Filename      string    `json:"filename"`
	Created       int       `json:"created_count"`
	Updated       int       `json:"updated_count"`
	Skipped       int       `json:"skipped_count"`
	OperationType string    `json:"operation_type"`
	ProcessedBy   string    `json:"processed_by"`
	CreatedAt     time.Time `json:"created_at"`
}

// Batch is a parsed file waiting for conflict resolutions.
type Batch struct {
	ID            uuid.UUID    `json:"id"`
	FileHash      string       `json:"file_hash"`
	Filename      string       `json:"filename"`
	OperationType string       `json:"operation_type"`
	ProcessedBy   string       `json:"processed_by"`
	Payload       BatchPayload `json:"payload"`
	ExpiresAt     time.Time    `json:"expires_at"`
	CreatedAt     time.Time    `json:"created_at"`
}

type BatchPayload struct {
	Format    sheet.Format `json:"format"`
	Records   []Record     `json:"records"`
	Conflicts []Conflict   `json:"conflicts"`
	Warnings  []Warning    `json:"warnings"`
	// Skipped counts rows rejected while parsing.
	Skipped int `json:"skipped"`
}
