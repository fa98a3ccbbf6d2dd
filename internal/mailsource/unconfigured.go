package mailsource

import (
	"context"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
)

// Unconfigured stands in for a mailbox when no credentials are set. Every
// call fails with a fatal upstream error so tasks do not retry.
type Unconfigured struct{}

func errUnconfigured() error {
	return apperr.New(apperr.ErrUpstreamFatal, "mail source is not configured")
}

func (Unconfigured) ListMessages(context.Context, string, Query) ([]Message, error) {
	return nil, errUnconfigured()
}

func (Unconfigured) ListAttachments(context.Context, string) ([]Attachment, error) {
	return nil, errUnconfigured()
}

func (Unconfigured) DownloadAttachment(context.Context, string, string) ([]byte, error) {
	return nil, errUnconfigured()
}

func (Unconfigured) MarkAsRead(context.Context, string) error { return errUnconfigured() }

func (Unconfigured) MoveMessage(context.Context, string, string) error { return errUnconfigured() }

func (Unconfigured) TestConnection(context.Context) error { return errUnconfigured() }
