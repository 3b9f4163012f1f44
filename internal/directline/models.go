package directline

// Conversation is the session handle issued by the service: the conversation
// id, a short-lived token superseding the secret while valid, and the
// streaming endpoint for real-time delivery.
type Conversation struct {
	ConversationID     string `json:"conversationId,omitempty"`
	Token              string `json:"token,omitempty"`
	ExpiresIn          int    `json:"expires_in,omitempty"`
	StreamURL          string `json:"streamUrl,omitempty"`
	ReferenceGrammarID string `json:"referenceGrammarId,omitempty"`
	ETag               string `json:"eTag,omitempty"`
}

// ActivityType discriminates activities on the wire.
type ActivityType string

const (
	ActivityMessage               ActivityType = "message"
	ActivityContactRelationUpdate ActivityType = "contactRelationUpdate"
	ActivityConversationUpdate    ActivityType = "conversationUpdate"
	ActivityTyping                ActivityType = "typing"
	ActivityEndOfConversation     ActivityType = "endOfConversation"
	ActivityEvent                 ActivityType = "event"
	ActivityInvoke                ActivityType = "invoke"
)

// Activity is a single conversational event. Instances received from the
// service are immutable; locally created pending sends carry only a
// LocalTimestamp until the service echoes a server-assigned id.
type Activity struct {
	Type           ActivityType         `json:"type,omitempty"`
	ID             string               `json:"id,omitempty"`
	Timestamp      *Timestamp           `json:"timestamp,omitempty"`
	LocalTimestamp *Timestamp           `json:"localTimestamp,omitempty"`
	ServiceURL     string               `json:"serviceUrl,omitempty"`
	ChannelID      string               `json:"channelId,omitempty"`
	From           *ChannelAccount      `json:"from,omitempty"`
	Conversation   *ConversationAccount `json:"conversation,omitempty"`
	Recipient      *ChannelAccount      `json:"recipient,omitempty"`
	MembersAdded   []ChannelAccount     `json:"membersAdded,omitempty"`
	MembersRemoved []ChannelAccount     `json:"membersRemoved,omitempty"`
	Locale         string               `json:"locale,omitempty"`
	Text           string               `json:"text,omitempty"`
	Speak          string               `json:"speak,omitempty"`
	InputHint      string               `json:"inputHint,omitempty"`
	Summary        string               `json:"summary,omitempty"`
	Attachments    []Attachment         `json:"attachments,omitempty"`
	Entities       []any                `json:"entities,omitempty"`
	ReplyToID      string               `json:"replyToId,omitempty"`
	Name           string               `json:"name,omitempty"`
	Code           string               `json:"code,omitempty"`
}

// NewMessageActivity builds a pending outbound message from the given user
// within a conversation. The local timestamp is set; the id stays empty
// until the service assigns one.
func NewMessageActivity(text string, from ChannelAccount, conv *Conversation, now *Timestamp) Activity {
	a := Activity{
		Type:           ActivityMessage,
		LocalTimestamp: now,
		Text:           text,
		From:           &from,
	}
	if conv != nil {
		a.Conversation = &ConversationAccount{ID: conv.ConversationID}
	}
	return a
}

// hasID reports whether the activity carries a server-assigned id.
func (a Activity) hasID() bool { return a.ID != "" }

// anyTimestamp returns the server timestamp, falling back to the local one.
func (a Activity) anyTimestamp() *Timestamp {
	if a.Timestamp != nil {
		return a.Timestamp
	}
	return a.LocalTimestamp
}

// before reports whether a sorts ahead of b in the timeline, which keeps the
// newest activity first. The server-assigned id is the authoritative order
// and compares as a plain string; failing that, timestamps compare rounded
// to the nearest second. Two activities with neither comparable field are
// unordered: before is false both ways and insertion order decides.
func (a Activity) before(b Activity) bool {
	if a.hasID() && b.hasID() {
		return a.ID > b.ID
	}
	at, bt := a.anyTimestamp(), b.anyTimestamp()
	if at != nil && bt != nil {
		return roundedUnix(at.Time) > roundedUnix(bt.Time)
	}
	return false
}

// equals reports wire-level identity: matching ids when both are present,
// else matching server timestamps rounded to the second, else matching
// local timestamps. Activities with no comparable field are never equal.
func (a Activity) equals(b Activity) bool {
	if a.hasID() && b.hasID() {
		return a.ID == b.ID
	}
	if a.Timestamp != nil && b.Timestamp != nil {
		return roundedUnix(a.Timestamp.Time) == roundedUnix(b.Timestamp.Time)
	}
	if a.LocalTimestamp != nil && b.LocalTimestamp != nil {
		return roundedUnix(a.LocalTimestamp.Time) == roundedUnix(b.LocalTimestamp.Time)
	}
	return false
}

// ActivitySet is one delivered batch: an ordered run of activities plus the
// watermark cursor current as of the batch.
type ActivitySet struct {
	Activities []Activity `json:"activities"`
	Watermark  string     `json:"watermark,omitempty"`
}

// ChannelAccount identifies a participant.
type ChannelAccount struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// ConversationAccount references the conversation an activity belongs to.
type ConversationAccount struct {
	IsGroup bool   `json:"isGroup,omitempty"`
	ID      string `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
}

// Attachment is a file or media attachment on an activity.
type Attachment struct {
	ContentType  string `json:"contentType,omitempty"`
	ContentURL   string `json:"contentUrl,omitempty"`
	Name         string `json:"name,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// GeoCoordinates is a WGS 84 location entity attached to outbound messages.
type GeoCoordinates struct {
	Type      string  `json:"type,omitempty"`
	Name      string  `json:"name,omitempty"`
	Elevation float64 `json:"elevation,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
}

// TokenParameters is the request body for generating a conversation token.
type TokenParameters struct {
	User *ChannelAccount `json:"user,omitempty"`
	ETag string          `json:"eTag,omitempty"`
}

// ResourceResponse acknowledges a posted activity or upload with the
// server-assigned resource id.
type ResourceResponse struct {
	ID string `json:"id,omitempty"`
}

// errorResponse is the structured protocol error body.
type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
