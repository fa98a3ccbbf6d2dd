package mailsource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
)

const messageFields = "id,internetMessageId,subject,from,receivedDateTime,hasAttachments,isRead"

type Options struct {
	BaseURL        string
	Mailbox        string
	RequestTimeout time.Duration
	// RequestsPerSecond paces outbound calls; zero disables pacing.
	RequestsPerSecond float64
	HTTPClient        *http.Client
	Logger            *slog.Logger
}

// Client talks to one mailbox.
type Client struct {
	base    string
	mailbox string
	timeout time.Duration
	http    *http.Client
	tokens  TokenSource
	limiter *rate.Limiter
	logger  *slog.Logger
}

func New(tokens TokenSource, opts Options) *Client {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &Client{
		base:    strings.TrimSuffix(opts.BaseURL, "/"),
		mailbox: opts.Mailbox,
		timeout: opts.RequestTimeout,
		http:    opts.HTTPClient,
		tokens:  tokens,
		limiter: limiter,
		logger:  opts.Logger,
	}
}

func (c *Client) userPath(format string, args ...any) string {
	escaped := make([]any, len(args))
	for i, a := range args {
		escaped[i] = url.PathEscape(fmt.Sprint(a))
	}

	return c.base + "/users/" + url.PathEscape(c.mailbox) + fmt.Sprintf(format, escaped...)
}

// do sends one request and returns the response body. Throttling and server
// errors come back as transient, other failures as fatal.
func (c *Client) do(ctx context.Context, method, target string, body any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader

	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}

		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.Transient(fmt.Errorf("%s %s: %w", method, req.URL.Path, err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Transient(fmt.Errorf("reading %s response: %w", req.URL.Path, err))
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, nil
	}

	statusErr := fmt.Errorf("%s %s: status %d: %s", method, req.URL.Path, resp.StatusCode, graphError(data))

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		if after, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
			c.logger.Warn("graph throttled", "path", req.URL.Path, "retry_after_s", after)
		}

		return nil, apperr.Transient(statusErr)
	}

	return nil, apperr.Fatal(statusErr)
}

func graphError(body []byte) string {
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &payload); err != nil || payload.Error.Code == "" {
		return strings.TrimSpace(string(body))
	}

	return payload.Error.Code + ": " + payload.Error.Message
}

type graphMessage struct {
	Message
	From struct {
		EmailAddress struct {
			Name    string `json:"name"`
			Address string `json:"address"`
		} `json:"emailAddress"`
	} `json:"from"`
}

func (g graphMessage) toMessage() Message {
	m := g.Message
	m.Sender = strings.ToLower(g.From.EmailAddress.Address)
	m.SenderName = g.From.EmailAddress.Name

	return m
}

// ListMessages returns up to q.Top messages of folder, newest first,
// following server-side paging.
func (c *Client) ListMessages(ctx context.Context, folder string, q Query) ([]Message, error) {
	params := url.Values{}
	params.Set("$select", messageFields)
	params.Set("$orderby", "receivedDateTime desc")

	if f := q.Filter(); f != "" {
		params.Set("$filter", f)
	}

	if q.Top > 0 {
		params.Set("$top", strconv.Itoa(min(q.Top, 100)))
	}

	next := c.userPath("/mailFolders/%s/messages", folder) + "?" + params.Encode()

	var out []Message

	for next != "" {
		data, err := c.do(ctx, http.MethodGet, next, nil)
		if err != nil {
			return out, fmt.Errorf("listing messages in %s: %w", folder, err)
		}

		var page struct {
			Value    []graphMessage `json:"value"`
			NextLink string         `json:"@odata.nextLink"`
		}

		if err := json.Unmarshal(data, &page); err != nil {
			return out, apperr.Fatal(fmt.Errorf("decoding message page: %w", err))
		}

		for _, m := range page.Value {
			out = append(out, m.toMessage())

			if q.Top > 0 && len(out) >= q.Top {
				return out, nil
			}
		}

		next = page.NextLink
	}

	return out, nil
}

func (c *Client) GetMessage(ctx context.Context, id string) (*Message, error) {
	data, err := c.do(ctx, http.MethodGet, c.userPath("/messages/%s", id)+"?$select="+messageFields, nil)
	if err != nil {
		return nil, fmt.Errorf("getting message: %w", err)
	}

	var g graphMessage
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, apperr.Fatal(fmt.Errorf("decoding message: %w", err))
	}

	m := g.toMessage()

	return &m, nil
}

func (c *Client) ListAttachments(ctx context.Context, messageID string) ([]Attachment, error) {
	target := c.userPath("/messages/%s/attachments", messageID) + "?$select=id,name,contentType,size,isInline"

	var out []Attachment

	for target != "" {
		data, err := c.do(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, fmt.Errorf("listing attachments: %w", err)
		}

		var page struct {
			Value    []Attachment `json:"value"`
			NextLink string       `json:"@odata.nextLink"`
		}

		if err := json.Unmarshal(data, &page); err != nil {
			return nil, apperr.Fatal(fmt.Errorf("decoding attachments: %w", err))
		}

		out = append(out, page.Value...)
		target = page.NextLink
	}

	return out, nil
}

// DownloadAttachment returns the raw bytes of a file attachment.
func (c *Client) DownloadAttachment(ctx context.Context, messageID, attachmentID string) ([]byte, error) {
	data, err := c.do(ctx, http.MethodGet, c.userPath("/messages/%s/attachments/%s/$value", messageID, attachmentID), nil)
	if err != nil {
		return nil, fmt.Errorf("downloading attachment: %w", err)
	}

	return data, nil
}

func (c *Client) MarkAsRead(ctx context.Context, messageID string) error {
	_, err := c.do(ctx, http.MethodPatch, c.userPath("/messages/%s", messageID), map[string]bool{"isRead": true})
	if err != nil {
		return fmt.Errorf("marking message read: %w", err)
	}

	return nil
}

// MoveMessage moves a message to destination, a folder id or well-known
// folder name.
func (c *Client) MoveMessage(ctx context.Context, messageID, destination string) error {
	_, err := c.do(ctx, http.MethodPost, c.userPath("/messages/%s/move", messageID),
		map[string]string{"destinationId": destination})
	if err != nil {
		return fmt.Errorf("moving message: %w", err)
	}

	return nil
}

// TestConnection only checks that a token can be acquired.
func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.tokens.Token(ctx)
	return err
}
