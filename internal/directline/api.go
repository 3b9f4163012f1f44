package directline

import (
	"net/http"
	"strings"
)

// DefaultConversationBase and DefaultTokenBase are the production endpoints.
// Both are overridable through Options for alternate deployments and tests.
const (
	DefaultConversationBase = "https://directline.botframework.com/v3/directline/conversations/"
	DefaultTokenBase        = "https://directline.botframework.com/v3/directline/tokens/"
)

// operation enumerates the protocol operations.
type operation int

const (
	opStartConversation operation = iota
	opReconnect
	opGetActivities
	opPostActivity
	opUpload
	opRefreshToken
	opGenerateToken
)

// apiRequest describes one protocol request: the operation plus the
// conversation id for conversation-scoped operations.
type apiRequest struct {
	op             operation
	conversationID string
}

// tokenScoped reports whether the operation lives under the token base path.
func (r apiRequest) tokenScoped() bool {
	return r.op == opRefreshToken || r.op == opGenerateToken
}

// validIDs reports whether the request carries every id it needs. A
// conversation-scoped request with an empty id must never reach the network.
func (r apiRequest) validIDs() bool {
	switch r.op {
	case opReconnect, opGetActivities, opPostActivity, opUpload:
		return r.conversationID != ""
	default:
		return true
	}
}

func (r apiRequest) method() string {
	switch r.op {
	case opReconnect, opGetActivities:
		return http.MethodGet
	default:
		return http.MethodPost
	}
}

// urlString joins the base, the operation's path suffix, and the query.
func (r apiRequest) urlString(conversationBase, tokenBase, query string) string {
	switch r.op {
	case opStartConversation:
		return conversationBase + query
	case opReconnect:
		return conversationBase + r.conversationID + query
	case opGetActivities, opPostActivity:
		return conversationBase + r.conversationID + "/activities" + query
	case opUpload:
		return conversationBase + r.conversationID + "/upload" + query
	case opRefreshToken:
		return tokenBase + "refresh" + query
	case opGenerateToken:
		return tokenBase + "generate" + query
	}
	return conversationBase
}

// contentType returns the request Content-Type. Upload is multipart with the
// caller's boundary; everything else is JSON.
func (r apiRequest) contentType(boundary string) string {
	if r.op == opUpload {
		return "multipart/form-data; boundary=" + boundary
	}
	return "application/json"
}

// queryParam is one key/value pair for buildQuery. Values may be a string or
// a string slice; slices join with commas.
type queryParam struct {
	key   string
	value any
}

// buildQuery renders parameters as "?k=v" with subsequent pairs joined by
// "&". Empty values are skipped and spaces are escaped as %20, matching the
// service's expected encoding.
func buildQuery(params ...queryParam) string {
	var sb strings.Builder
	for _, p := range params {
		var v string
		switch val := p.value.(type) {
		case string:
			v = val
		case []string:
			v = strings.Join(val, ",")
		default:
			continue
		}
		if v == "" {
			continue
		}
		v = strings.ReplaceAll(v, " ", "%20")
		if sb.Len() == 0 {
			sb.WriteByte('?')
		} else {
			sb.WriteByte('&')
		}
		sb.WriteString(p.key)
		sb.WriteByte('=')
		sb.WriteString(v)
	}
	return sb.String()
}
