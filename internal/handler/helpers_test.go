package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postforlife/internal/config"
	handlers "postforlife/internal/handler"
	"postforlife/internal/service"
)

type testMocks struct {
	auth    *MockAuthService
	users   *MockUserService
	posts   *MockPostService
	comment *MockCommentService
}

func createTestHandler() (*handlers.Handlers, testMocks) {
	m := testMocks{
		auth:    new(MockAuthService),
		users:   new(MockUserService),
		posts:   new(MockPostService),
		comment: new(MockCommentService),
	}

	cfg := &config.Config{
		RefreshTokenDuration: 168 * time.Hour,
		MaxUploadSize:        1 << 20,
		LimitPosts:           10,
		MaxLimitPosts:        100,
	}

	h := handlers.NewHandlers(&service.Service{
		User:    m.users,
		Post:    m.posts,
		Auth:    m.auth,
		Comment: m.comment,
	}, nil, cfg)

	return h, m
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var r io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body
}

func assertJSONError(t *testing.T, rr *httptest.ResponseRecorder, status int, mess string) {
	t.Helper()

	assert.Equal(t, status, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	body := decodeBody(t, rr)
	assert.Equal(t, false, body["success"])
	if mess != "" {
		assert.Equal(t, mess, body["mess"])
	}
}
