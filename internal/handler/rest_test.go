package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rifaque/ZeroLink/internal/domain"
)

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestVerifyEndpoint(t *testing.T) {
	env := newTestEnv(t)

	req, _ := http.NewRequest("POST", env.server.URL+"/api/auth/verify", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, "uid-alice", "alice@example.com", ""))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "uid-alice", body["uid"])
	assert.Equal(t, "alice@example.com", body["email"])
}

func TestVerifyEndpointRejectsMissingToken(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Post(env.server.URL+"/api/auth/verify", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUsersEndpointFallsBackToEmail(t *testing.T) {
	env := newTestEnv(t)
	env.userRepo.UpsertUser(&domain.User{UID: "u1", Email: "a@example.com", DisplayName: "Alice", CreatedAt: time.Now()})
	env.userRepo.UpsertUser(&domain.User{UID: "u2", Email: "b@example.com", CreatedAt: time.Now()})

	resp, err := http.Get(env.server.URL + "/api/users")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 2)

	names := []string{body[0].Name, body[1].Name}
	assert.Contains(t, names, "Alice")
	assert.Contains(t, names, "b@example.com")

	// The id must be addressable as a DM target, so it carries the chat
	// identity label rather than the token subject.
	for _, e := range body {
		assert.Equal(t, e.Name, e.ID)
		assert.NotContains(t, []string{"u1", "u2"}, e.ID)
	}
}

func TestMessagesEndpointRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	env.msgRepo.seed("alice", domain.GlobalRoomID, "logged")

	resp, err := http.Get(env.server.URL + "/api/messages")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest("GET", env.server.URL+"/api/messages", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, "uid-alice", "alice@example.com", ""))
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var messages []*domain.Message
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&messages))
	require.Len(t, messages, 1)
	assert.Equal(t, "logged", messages[0].Text)
}

func TestProtectedEndpointGreetsVerifiedIdentity(t *testing.T) {
	env := newTestEnv(t)

	req, _ := http.NewRequest("GET", env.server.URL+"/api/protected", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, "uid-alice", "alice@example.com", ""))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Hello, alice@example.com", body["message"])
}

func multipartFile(t *testing.T, fieldName, fileName, contentType, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+fieldName+`"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

func TestUploadStoresFileAndReturnsURL(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartFile(t, "file", "cat.png", "image/png", "png-bytes")
	resp, err := http.Post(env.server.URL+"/api/upload", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.Contains(t, result["fileUrl"], "/uploads/cat-")

	// The blob landed on disk and is served back under /uploads/.
	name := result["fileUrl"][strings.LastIndex(result["fileUrl"], "/")+1:]
	content, err := os.ReadFile(filepath.Join(env.uploadDir, name))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(content))

	served, err := http.Get(env.server.URL + "/uploads/" + name)
	require.NoError(t, err)
	defer served.Body.Close()
	assert.Equal(t, http.StatusOK, served.StatusCode)
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartFile(t, "file", "evil.exe", "application/octet-stream", "nope")
	resp, err := http.Post(env.server.URL+"/api/upload", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadRejectsMissingFile(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Post(env.server.URL+"/api/upload", "multipart/form-data; boundary=x", strings.NewReader("--x--"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
