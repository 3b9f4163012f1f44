package directline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/soyeahso/botline/internal/logging"
)

const defaultRequestTimeout = 30 * time.Second

// Dispatcher builds and sends authenticated protocol requests and decodes
// typed responses or structured errors. It owns no session state beyond the
// credential gate it was given.
type Dispatcher struct {
	http             *http.Client
	creds            *CredentialGate
	conversationBase string
	tokenBase        string
	log              *logging.Logger
}

// NewDispatcher creates a dispatcher sending through the given credential
// gate. Empty base URLs fall back to the production endpoints; zero timeout
// falls back to the default.
func NewDispatcher(creds *CredentialGate, conversationBase, tokenBase string, timeout time.Duration, log *logging.Logger) *Dispatcher {
	if conversationBase == "" {
		conversationBase = DefaultConversationBase
	}
	if tokenBase == "" {
		tokenBase = DefaultTokenBase
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Dispatcher{
		http:             &http.Client{Timeout: timeout},
		creds:            creds,
		conversationBase: conversationBase,
		tokenBase:        tokenBase,
		log:              log.Sub("dispatcher"),
	}
}

// StartConversation opens a new conversation.
func (d *Dispatcher) StartConversation(ctx context.Context) (*Conversation, error) {
	var c Conversation
	if err := d.send(ctx, apiRequest{op: opStartConversation}, "", nil, "", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Reconnect refreshes the stream endpoint and token for an existing
// conversation, optionally resuming from a watermark.
func (d *Dispatcher) Reconnect(ctx context.Context, conversationID, watermark string) (*Conversation, error) {
	var c Conversation
	req := apiRequest{op: opReconnect, conversationID: conversationID}
	query := buildQuery(queryParam{"watermark", watermark})
	if err := d.send(ctx, req, query, nil, "", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetActivities polls activities from the given watermark.
func (d *Dispatcher) GetActivities(ctx context.Context, conversationID, watermark string) (*ActivitySet, error) {
	var set ActivitySet
	req := apiRequest{op: opGetActivities, conversationID: conversationID}
	query := buildQuery(queryParam{"watermark", watermark})
	if err := d.send(ctx, req, query, nil, "", &set); err != nil {
		return nil, err
	}
	return &set, nil
}

// PostActivity sends an activity into the conversation.
func (d *Dispatcher) PostActivity(ctx context.Context, conversationID string, activity Activity) (*ResourceResponse, error) {
	body, err := json.Marshal(activity)
	if err != nil {
		return nil, fmt.Errorf("encoding activity: %w", err)
	}
	var res ResourceResponse
	req := apiRequest{op: opPostActivity, conversationID: conversationID}
	if err := d.send(ctx, req, "", body, "", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Upload sends image bytes as a multipart body, optionally attributed to a
// user id.
func (d *Dispatcher) Upload(ctx context.Context, conversationID, userID string, image []byte) (*ResourceResponse, error) {
	body, boundary, err := multipartImageBody(image)
	if err != nil {
		return nil, fmt.Errorf("building multipart body: %w", err)
	}
	var res ResourceResponse
	req := apiRequest{op: opUpload, conversationID: conversationID}
	query := buildQuery(queryParam{"userId", userID})
	if err := d.send(ctx, req, query, body, boundary, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// RefreshToken exchanges the current token for a fresh one.
func (d *Dispatcher) RefreshToken(ctx context.Context) (*Conversation, error) {
	var c Conversation
	if err := d.send(ctx, apiRequest{op: opRefreshToken}, "", nil, "", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// GenerateToken requests a token scoped to a new conversation.
func (d *Dispatcher) GenerateToken(ctx context.Context, params *TokenParameters) (*Conversation, error) {
	var body []byte
	if params != nil {
		var err error
		body, err = json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("encoding token parameters: %w", err)
		}
	}
	var c Conversation
	if err := d.send(ctx, apiRequest{op: opGenerateToken}, "", body, "", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// send performs one request with the single-retry-on-403 credential policy:
// when a 403 arrives, the secret is configured, and the failing request is
// not itself the token refresh, the token is invalidated and the request
// resent once with the rebuilt authorization header. A second 403 surfaces
// as an APIError with no further retry.
func (d *Dispatcher) send(ctx context.Context, api apiRequest, query string, body []byte, boundary string, out any) error {
	if !api.validIDs() {
		return ErrInvalidID
	}

	rawURL := api.urlString(d.conversationBase, d.tokenBase, query)
	if _, err := url.Parse(rawURL); err != nil {
		return &URLError{URL: rawURL, Err: err}
	}

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, api.method(), rawURL, bytes.NewReader(body))
		if err != nil {
			return &URLError{URL: rawURL, Err: err}
		}
		req.Header.Set("Content-Type", api.contentType(boundary))
		req.Header.Set("Authorization", d.creds.Authorization())

		resp, err := d.http.Do(req)
		if err != nil {
			return &TransportError{Err: err}
		}

		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return &TransportError{Err: readErr}
		}

		if resp.StatusCode >= 400 {
			if resp.StatusCode == http.StatusForbidden && attempt == 0 &&
				d.creds.HasSecret() && api.op != opRefreshToken {
				d.log.Debug().Str("url", rawURL).Msg("403; invalidating token and retrying with secret")
				d.creds.InvalidateToken()
				continue
			}
			return d.apiError(resp.StatusCode, data)
		}

		if len(data) == 0 {
			return ErrUnknown
		}
		if err := json.Unmarshal(data, out); err != nil {
			return &DecodeError{Raw: data, Err: err}
		}
		return nil
	}
}

func (d *Dispatcher) apiError(status int, data []byte) error {
	apiErr := &APIError{StatusCode: status}
	var body errorResponse
	if err := json.Unmarshal(data, &body); err == nil {
		apiErr.Code = body.Error.Code
		apiErr.Message = body.Error.Message
	}
	return apiErr
}

// multipartImageBody wraps image bytes in a multipart form with one part
// named "file" and a generated filename, returning the body and boundary.
func multipartImageBody(image []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s.jpeg"`, uuid.New().String()))
	h.Set("Content-Type", "image/jpg")

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(image); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.Boundary(), nil
}
