package directline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/soyeahso/botline/internal/location"
	"github.com/soyeahso/botline/internal/logging"
)

// State is the session manager's lifecycle state.
type State int

const (
	StateNoSession State = iota
	StateStarting
	StateActive
	StateReconnecting
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNoSession:
		return "no-session"
	case StateStarting:
		return "starting"
	case StateActive:
		return "active"
	case StateReconnecting:
		return "reconnecting"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// SessionRecord is the minimal durable session state: the conversation
// handle plus the delivery cursor to resume polling from.
type SessionRecord struct {
	Conversation Conversation `json:"conversation"`
	Watermark    string       `json:"watermark,omitempty"`
}

// SessionStore persists one SessionRecord under a single well-known key.
// Load returns (nil, nil) when no prior session exists. Save is treated as
// fire-and-forget and must be idempotent.
type SessionStore interface {
	Load(ctx context.Context) (*SessionRecord, error)
	Save(ctx context.Context, rec SessionRecord) error
	Clear(ctx context.Context) error
}

// ReconnectPolicy bounds automatic recovery after live channel loss. Zero
// MaxAttempts disables automatic reconnection entirely.
type ReconnectPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// Options configures a Client.
type Options struct {
	// Secret is the long-lived credential. Optional when a token will be
	// generated out of band, but then a 403 is unrecoverable.
	Secret string

	// User is the local participant attached to outbound activities.
	User ChannelAccount

	// ConversationBase and TokenBase override the production endpoints.
	ConversationBase string
	TokenBase        string

	// RequestTimeout bounds each HTTP request.
	RequestTimeout time.Duration

	// Store persists the session across restarts. Nil disables persistence.
	Store SessionStore

	// Location supplies coordinates for outbound message enrichment. Nil
	// disables enrichment.
	Location location.Provider

	// LocationTimeout bounds the enrichment lookup during Send.
	LocationTimeout time.Duration

	Reconnect ReconnectPolicy

	Log *logging.Logger
}

const defaultLocationTimeout = 2 * time.Second

// Client is the session manager: it orchestrates conversation creation,
// restore, and reconnect, and drives the dispatcher, credential gate, live
// channel, and timeline. One Client manages exactly one active conversation.
type Client struct {
	opts     Options
	log      *logging.Logger
	creds    *CredentialGate
	api      *Dispatcher
	timeline *Timeline
	channel  *LiveChannel
	user     ChannelAccount

	mu           sync.Mutex
	state        State
	conversation *Conversation
	closed       bool
}

// NewClient constructs a client from options. Construct, Start, and Close;
// the caller owns the lifecycle.
func NewClient(opts Options) *Client {
	log := opts.Log
	if log == nil {
		log = logging.Silent()
	}
	log = log.Sub("directline")

	if opts.User.ID == "" {
		opts.User = ChannelAccount{ID: "default-user", Name: "User"}
	}
	if opts.LocationTimeout <= 0 {
		opts.LocationTimeout = defaultLocationTimeout
	}

	c := &Client{
		opts:     opts,
		log:      log,
		creds:    NewCredentialGate(opts.Secret),
		timeline: NewTimeline(log),
		user:     opts.User,
		state:    StateNoSession,
	}
	c.api = NewDispatcher(c.creds, opts.ConversationBase, opts.TokenBase, opts.RequestTimeout, log)
	c.channel = NewLiveChannel(c.timeline.Merge, c.handleDisconnect, log)
	return c
}

// Timeline exposes the read-only merged view for the consuming UI.
func (c *Client) Timeline() *Timeline { return c.timeline }

// User returns the local participant.
func (c *Client) User() ChannelAccount { return c.user }

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Conversation returns a copy of the current session handle, or nil.
func (c *Client) Conversation() *Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conversation == nil {
		return nil
	}
	conv := *c.conversation
	return &conv
}

// Start establishes the session. A persisted session is restored without a
// network call, caught up by polling from the stored watermark, and then
// revalidated through the reconnect exchange; otherwise a fresh conversation
// is started. On success the live channel is open and the state is Active.
func (c *Client) Start(ctx context.Context) (*Conversation, error) {
	if c.creds.Empty() {
		return nil, ErrNoCredentials
	}

	c.mu.Lock()
	starting := c.conversation == nil
	c.state = StateStarting
	if starting {
		c.restoreLocked(ctx)
	}
	fresh := c.conversation == nil
	c.mu.Unlock()

	if fresh {
		return c.startFresh(ctx)
	}
	return c.resume(ctx, starting)
}

// restoreLocked loads the persisted session, if any. Called with the lock
// held; never touches the network.
func (c *Client) restoreLocked(ctx context.Context) {
	if c.opts.Store == nil {
		return
	}
	rec, err := c.opts.Store.Load(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("failed to load persisted session")
		return
	}
	if rec == nil || rec.Conversation.ConversationID == "" {
		return
	}
	conv := rec.Conversation
	c.conversation = &conv
	if conv.Token != "" {
		c.creds.SetToken(conv.Token)
	}
	c.timeline.AdvanceWatermark(rec.Watermark)
	c.log.Info().Str("conversation", conv.ConversationID).Msg("restored persisted session")
}

func (c *Client) startFresh(ctx context.Context) (*Conversation, error) {
	conv, err := c.api.StartConversation(ctx)
	if err != nil {
		c.fail(err)
		return nil, err
	}
	c.adopt(ctx, conv)

	if conv.StreamURL != "" {
		if err := c.channel.Open(ctx, conv.StreamURL); err != nil {
			c.fail(err)
			return nil, err
		}
	}

	c.setState(StateActive)
	c.log.Info().Str("conversation", conv.ConversationID).Msg("conversation started")
	return conv, nil
}

// resume catches up from the stored watermark, revalidates the conversation
// through the reconnect exchange, and reopens the live channel. When this
// process had never seen the conversation before, a synthetic member-joined
// conversationUpdate announces the local user.
func (c *Client) resume(ctx context.Context, starting bool) (*Conversation, error) {
	c.mu.Lock()
	if c.conversation == nil {
		// the session was cleared out from under us (Reset during a
		// reconnect delay); nothing to resume
		c.mu.Unlock()
		return nil, ErrNoSession
	}
	convID := c.conversation.ConversationID
	c.mu.Unlock()

	// catch-up gap poll; the reconnect exchange below is what decides
	// whether the conversation is still live, so a failed poll is not fatal
	if set, err := c.api.GetActivities(ctx, convID, c.timeline.Watermark()); err != nil {
		c.log.Warn().Err(err).Msg("catch-up poll failed")
	} else {
		c.timeline.Merge(*set)
	}

	conv, err := c.api.Reconnect(ctx, convID, c.timeline.Watermark())
	if err != nil {
		c.fail(err)
		return nil, err
	}
	if conv.ConversationID == "" {
		conv.ConversationID = convID
	}
	c.adopt(ctx, conv)

	if conv.StreamURL != "" {
		if err := c.channel.Open(ctx, conv.StreamURL); err != nil {
			c.fail(err)
			return nil, err
		}
	}

	if starting {
		joined := Activity{
			Type:         ActivityConversationUpdate,
			From:         &c.user,
			Conversation: &ConversationAccount{ID: conv.ConversationID},
			MembersAdded: []ChannelAccount{c.user},
		}
		if _, err := c.api.PostActivity(ctx, conv.ConversationID, joined); err != nil {
			c.log.Warn().Err(err).Msg("failed to announce member joined")
		}
	}

	c.setState(StateActive)
	c.log.Info().Str("conversation", conv.ConversationID).Msg("conversation resumed")
	return conv, nil
}

// adopt installs a (re)connect response as the current session and persists
// it. Persistence is fire-and-forget.
func (c *Client) adopt(ctx context.Context, conv *Conversation) {
	c.mu.Lock()
	c.conversation = conv
	c.mu.Unlock()

	if conv.Token != "" {
		c.creds.SetToken(conv.Token)
	}
	c.persist(ctx)
}

func (c *Client) persist(ctx context.Context) {
	if c.opts.Store == nil {
		return
	}
	c.mu.Lock()
	if c.conversation == nil {
		c.mu.Unlock()
		return
	}
	rec := SessionRecord{Conversation: *c.conversation, Watermark: c.timeline.Watermark()}
	c.mu.Unlock()

	if err := c.opts.Store.Save(ctx, rec); err != nil {
		c.log.Warn().Err(err).Msg("failed to persist session")
	}
}

// Send posts a message activity to the conversation. The returned resource
// holds the server-assigned id; the canonical echo arrives through the live
// channel or a later poll, so the result is not merged into the timeline
// here. Location enrichment, when configured, resolves within a bounded
// timeout before the post is dispatched and never fails the send.
func (c *Client) Send(ctx context.Context, text string) (*ResourceResponse, error) {
	if c.creds.Empty() {
		return nil, ErrNoCredentials
	}

	c.mu.Lock()
	conv := c.conversation
	c.mu.Unlock()
	if conv == nil || conv.ConversationID == "" {
		return nil, ErrNoSession
	}

	activity := NewMessageActivity(text, c.user, conv, NewTimestamp(time.Now()))

	if c.opts.Location != nil {
		locCtx, cancel := context.WithTimeout(ctx, c.opts.LocationTimeout)
		coords, err := c.opts.Location.CurrentLocation(locCtx)
		cancel()
		if err != nil {
			c.log.Debug().Err(err).Msg("location enrichment unavailable")
		} else {
			activity.Entities = []any{GeoCoordinates{
				Type:      "GeoCoordinates",
				Name:      "location",
				Latitude:  coords.Latitude,
				Longitude: coords.Longitude,
				Elevation: coords.Elevation,
			}}
		}
	}

	return c.api.PostActivity(ctx, conv.ConversationID, activity)
}

// Upload sends image bytes into the conversation attributed to the local
// user.
func (c *Client) Upload(ctx context.Context, image []byte) (*ResourceResponse, error) {
	c.mu.Lock()
	conv := c.conversation
	c.mu.Unlock()
	if conv == nil || conv.ConversationID == "" {
		return nil, ErrNoSession
	}
	return c.api.Upload(ctx, conv.ConversationID, c.user.ID, image)
}

// RefreshToken exchanges the session token for a fresh one and persists the
// update.
func (c *Client) RefreshToken(ctx context.Context) (*Conversation, error) {
	conv, err := c.api.RefreshToken(ctx)
	if err != nil {
		return nil, err
	}
	if conv.Token != "" {
		c.creds.SetToken(conv.Token)
		c.mu.Lock()
		if c.conversation != nil {
			c.conversation.Token = conv.Token
			c.conversation.ExpiresIn = conv.ExpiresIn
		}
		c.mu.Unlock()
		c.persist(ctx)
	}
	return conv, nil
}

// GenerateToken requests a token scoped to a new conversation and installs
// it as the current bearer credential.
func (c *Client) GenerateToken(ctx context.Context, params *TokenParameters) (*Conversation, error) {
	conv, err := c.api.GenerateToken(ctx, params)
	if err != nil {
		return nil, err
	}
	if conv.Token != "" {
		c.creds.SetToken(conv.Token)
	}
	return conv, nil
}

// Reset abandons the session: closes the live channel, clears the timeline,
// the in-memory conversation, and the persisted record.
func (c *Client) Reset(ctx context.Context) error {
	c.channel.Close()
	c.creds.InvalidateToken()
	c.timeline.Reset()

	c.mu.Lock()
	c.conversation = nil
	c.state = StateNoSession
	c.mu.Unlock()

	if c.opts.Store != nil {
		if err := c.opts.Store.Clear(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the live channel. The persisted session survives for the
// next Start.
func (c *Client) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return c.channel.Close()
}

// handleDisconnect runs the bounded reconnection policy after live channel
// loss: the full reconnect exchange with capped attempts and a fixed delay,
// then Failed. A zero MaxAttempts preserves manual-restart-only behavior.
func (c *Client) handleDisconnect(cause error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state = StateReconnecting
	c.mu.Unlock()

	policy := c.opts.Reconnect
	if policy.MaxAttempts <= 0 {
		c.log.Warn().Err(cause).Msg("live channel lost; automatic reconnection disabled")
		c.setState(StateFailed)
		return
	}
	if policy.Delay <= 0 {
		policy.Delay = time.Second
	}

	go func() {
		for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
			time.Sleep(policy.Delay)

			c.mu.Lock()
			if c.closed {
				c.mu.Unlock()
				return
			}
			c.mu.Unlock()

			if _, err := c.resume(context.Background(), false); err != nil {
				if errors.Is(err, ErrNoSession) {
					c.log.Info().Msg("session cleared; abandoning reconnect")
					return
				}
				if terminalError(err) {
					c.log.Error().Err(err).Int("attempt", attempt).Msg("reconnect rejected; not retrying")
					return
				}
				c.log.Warn().Err(err).Int("attempt", attempt).Msg("reconnect attempt failed")
				continue
			}
			c.log.Info().Int("attempt", attempt).Msg("live channel reestablished")
			return
		}
		c.log.Error().Err(cause).Msg("reconnect attempts exhausted")
		c.setState(StateFailed)
	}()
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// terminalError reports whether an error can never succeed on a retry:
// authorization rejections (the dispatcher's single credential retry has
// already been spent) and unusable identifiers.
func terminalError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 403 || apiErr.StatusCode == 401
	}
	return errors.Is(err, ErrInvalidID)
}

func (c *Client) fail(err error) {
	if terminalError(err) {
		c.setState(StateFailed)
		return
	}
	c.setState(StateNoSession)
}
