package wecom

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWebhookServer(t *testing.T, reply string, got *textMessage) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	}))
}

func TestWebhookSender_Send(t *testing.T) {
	var got textMessage
	srv := newWebhookServer(t, `{"errcode":0,"errmsg":"ok"}`, &got)
	defer srv.Close()

	s := NewWebhookSender(resty.New(), srv.URL)
	require.NoError(t, s.Send(context.Background(), "price", "⚠️ 价格预警"))
	assert.Equal(t, "text", got.MsgType)
	assert.Equal(t, "⚠️ 价格预警", got.Text.Content)
}

func TestWebhookSender_ErrCode(t *testing.T) {
	var got textMessage
	srv := newWebhookServer(t, `{"errcode":45009,"errmsg":"api freq out of limit"}`, &got)
	defer srv.Close()

	s := NewWebhookSender(resty.New(), srv.URL)
	err := s.Send(context.Background(), "ma", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "45009")
}

func TestWebhookSender_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewWebhookSender(resty.New(), srv.URL)
	assert.Error(t, s.Send(context.Background(), "price", "hi"))
}

func TestWebhookSender_InvalidReply(t *testing.T) {
	testCases := []struct {
		name        string
		contentType string
		body        string
	}{
		{name: "text/plain 返回错误码", contentType: "text/plain", body: `{"errcode":45009,"errmsg":"api freq out of limit"}`},
		{name: "空 body", contentType: "application/json", body: ""},
		{name: "没有 errcode", contentType: "application/json", body: `{"errmsg":"ok"}`},
		{name: "非 json", contentType: "text/html", body: "<html>gateway</html>"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tc.contentType)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			s := NewWebhookSender(resty.New(), srv.URL)
			assert.Error(t, s.Send(context.Background(), "price", "hi"))
		})
	}
}

func TestWebhookSender_SuccessAsTextPlain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(`{"errcode":0,"errmsg":"ok"}`))
	}))
	defer srv.Close()

	s := NewWebhookSender(resty.New(), srv.URL)
	assert.NoError(t, s.Send(context.Background(), "price", "hi"))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short"))
	long := ""
	for i := 0; i < 60; i++ {
		long += "股"
	}
	assert.Equal(t, 53, len([]rune(preview(long))))
}
