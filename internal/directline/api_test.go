package directline

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	testConvBase  = "https://example.com/v3/directline/conversations/"
	testTokenBase = "https://example.com/v3/directline/tokens/"
)

func TestAPIRequestURL(t *testing.T) {
	tests := []struct {
		name  string
		req   apiRequest
		query string
		want  string
	}{
		{
			name: "start conversation",
			req:  apiRequest{op: opStartConversation},
			want: testConvBase,
		},
		{
			name: "reconnect",
			req:  apiRequest{op: opReconnect, conversationID: "C1"},
			want: testConvBase + "C1",
		},
		{
			name:  "reconnect with watermark",
			req:   apiRequest{op: opReconnect, conversationID: "C1"},
			query: buildQuery(queryParam{"watermark", "42"}),
			want:  testConvBase + "C1?watermark=42",
		},
		{
			name: "get activities",
			req:  apiRequest{op: opGetActivities, conversationID: "C1"},
			want: testConvBase + "C1/activities",
		},
		{
			name: "post activity",
			req:  apiRequest{op: opPostActivity, conversationID: "C1"},
			want: testConvBase + "C1/activities",
		},
		{
			name:  "upload with user id",
			req:   apiRequest{op: opUpload, conversationID: "C1"},
			query: buildQuery(queryParam{"userId", "u-1"}),
			want:  testConvBase + "C1/upload?userId=u-1",
		},
		{
			name: "refresh token",
			req:  apiRequest{op: opRefreshToken},
			want: testTokenBase + "refresh",
		},
		{
			name: "generate token",
			req:  apiRequest{op: opGenerateToken},
			want: testTokenBase + "generate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.urlString(testConvBase, testTokenBase, tt.query))
		})
	}
}

func TestAPIRequestMethod(t *testing.T) {
	assert.Equal(t, http.MethodPost, apiRequest{op: opStartConversation}.method())
	assert.Equal(t, http.MethodGet, apiRequest{op: opReconnect}.method())
	assert.Equal(t, http.MethodGet, apiRequest{op: opGetActivities}.method())
	assert.Equal(t, http.MethodPost, apiRequest{op: opPostActivity}.method())
	assert.Equal(t, http.MethodPost, apiRequest{op: opUpload}.method())
	assert.Equal(t, http.MethodPost, apiRequest{op: opRefreshToken}.method())
	assert.Equal(t, http.MethodPost, apiRequest{op: opGenerateToken}.method())
}

func TestAPIRequestValidIDs(t *testing.T) {
	assert.True(t, apiRequest{op: opStartConversation}.validIDs())
	assert.True(t, apiRequest{op: opRefreshToken}.validIDs())
	assert.True(t, apiRequest{op: opGetActivities, conversationID: "C1"}.validIDs())

	assert.False(t, apiRequest{op: opGetActivities}.validIDs())
	assert.False(t, apiRequest{op: opPostActivity}.validIDs())
	assert.False(t, apiRequest{op: opReconnect}.validIDs())
	assert.False(t, apiRequest{op: opUpload}.validIDs())
}

func TestAPIRequestContentType(t *testing.T) {
	assert.Equal(t, "application/json", apiRequest{op: opPostActivity}.contentType(""))
	assert.Equal(t, "multipart/form-data; boundary=abc123", apiRequest{op: opUpload}.contentType("abc123"))
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name   string
		params []queryParam
		want   string
	}{
		{
			name: "empty",
			want: "",
		},
		{
			name:   "single",
			params: []queryParam{{"watermark", "42"}},
			want:   "?watermark=42",
		},
		{
			name:   "empty value skipped",
			params: []queryParam{{"watermark", ""}},
			want:   "",
		},
		{
			name:   "multiple joined with ampersand",
			params: []queryParam{{"watermark", "42"}, {"userId", "u-1"}},
			want:   "?watermark=42&userId=u-1",
		},
		{
			name:   "first empty second kept",
			params: []queryParam{{"watermark", ""}, {"userId", "u-1"}},
			want:   "?userId=u-1",
		},
		{
			name:   "spaces escape as percent-20",
			params: []queryParam{{"q", "hello world"}},
			want:   "?q=hello%20world",
		},
		{
			name:   "list values comma join",
			params: []queryParam{{"ids", []string{"a", "b", "c"}}},
			want:   "?ids=a,b,c",
		},
		{
			name:   "empty list skipped",
			params: []queryParam{{"ids", []string{}}},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildQuery(tt.params...))
		})
	}
}
