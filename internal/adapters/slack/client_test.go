package slack

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchHistoryPagina(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/conversations.history", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "C123", r.Form.Get("channel"))

		calls++
		w.Header().Set("Content-Type", "application/json")
		switch calls {
		case 1:
			assert.Empty(t, r.Form.Get("cursor"))
			fmt.Fprint(w, `{"ok":true,"messages":[
				{"type":"message","text":"Score: 10 | Lima, Peru | Web | aa1 #1","ts":"1717243200.000100"}
			],"has_more":true,"response_metadata":{"next_cursor":"abc"}}`)
		default:
			assert.Equal(t, "abc", r.Form.Get("cursor"))
			fmt.Fprint(w, `{"ok":true,"messages":[
				{"type":"message","text":"hola","ts":"1717243300.000200"}
			],"has_more":false,"response_metadata":{"next_cursor":""}}`)
		}
	}))
	defer srv.Close()

	c := New("xoxb-test", WithAPIURL(srv.URL+"/"))
	msgs, err := c.FetchHistory(context.Background(), "C123")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, 2, calls)

	assert.Equal(t, "1717243200.000100", msgs[0].TS)
	assert.Equal(t, "Score: 10 | Lima, Peru | Web | aa1 #1", msgs[0].Text)
	assert.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), msgs[0].At.Truncate(time.Second))
}

func TestFetchHistoryError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ok":false,"error":"channel_not_found"}`)
	}))
	defer srv.Close()

	c := New("xoxb-test", WithAPIURL(srv.URL+"/"))
	_, err := c.FetchHistory(context.Background(), "C404")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel_not_found")
}

func TestParseTS(t *testing.T) {
	assert.True(t, parseTS("").IsZero())
	assert.True(t, parseTS("nope").IsZero())
	assert.Equal(t, int64(1717243200), parseTS("1717243200.000100").Unix())
}
