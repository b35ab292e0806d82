package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"equion/internal/dispatch"
	"equion/internal/fabric"
	"equion/internal/service"
	"equion/internal/storage/memory"
	"equion/internal/voice"
)

func newTestServer(t *testing.T) (*httptest.Server, *voice.Registry) {
	t.Helper()
	store := memory.New()
	f := fabric.New(nil)
	v := voice.New()
	users := service.NewUsers(store, f, v, 16)
	sets := service.NewSets(store, f, v, users)
	messages := service.NewMessages(store, f)
	files := service.NewFiles(store, f, v)
	voiceSvc := service.NewVoice(store, f, v)
	dsp := dispatch.New(users, sets, messages, files, voiceSvc, f, v)

	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
	server := NewServer(dsp, files, v, logger)
	return httptest.NewServer(server.Router), v
}

func postCommand(t *testing.T, base, command string, body map[string]any) (int, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	resp, err := http.Post(base+"/api/"+command, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST /api/%s error = %v", command, err)
	}
	defer resp.Body.Close()

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decoding response error = %v", err)
	}
	return resp.StatusCode, out
}

func TestCommandEndpointSignupSuccess(t *testing.T) {
	srv, _ := newTestServer(t)
	defer srv.Close()

	status, body := postCommand(t, srv.URL, "signup", map[string]any{
		"username": "alice", "password": "password1", "displayName": "Alice", "email": "a@example.com",
	})
	if status != http.StatusOK {
		t.Fatalf("status = %d, want %d", status, http.StatusOK)
	}
	if body["success"] != true {
		t.Fatalf("success = %v, want true", body["success"])
	}
	if body["token"] == "" || body["token"] == nil {
		t.Fatalf("expected a token field, got %v", body)
	}
}

func TestCommandEndpointValidationErrorIsHTTP400(t *testing.T) {
	srv, _ := newTestServer(t)
	defer srv.Close()

	status, body := postCommand(t, srv.URL, "signup", map[string]any{
		"username": "ab", "password": "password1", "displayName": "Alice", "email": "a@example.com",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", status, http.StatusBadRequest)
	}
	if body["success"] != false {
		t.Fatalf("success = %v, want false", body["success"])
	}
	if body["error"] != "Username must be at least 3 characters long." {
		t.Fatalf("error = %v", body["error"])
	}
}

func TestCommandEndpointUnknownCommandIsHTTP400(t *testing.T) {
	srv, _ := newTestServer(t)
	defer srv.Close()

	status, body := postCommand(t, srv.URL, "doesNotExist", map[string]any{})
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", status, http.StatusBadRequest)
	}
	if body["error"] != "Invalid API command" {
		t.Fatalf("error = %v, want %q", body["error"], "Invalid API command")
	}
}

func TestCommandEndpointStreamOnlyCommandRejected(t *testing.T) {
	srv, _ := newTestServer(t)
	defer srv.Close()

	status, body := postCommand(t, srv.URL, "ping", map[string]any{})
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", status, http.StatusBadRequest)
	}
	if body["error"] != "Invalid API command" {
		t.Fatalf("error = %v", body["error"])
	}
}

func TestStatusEndpointReportsOnlineCount(t *testing.T) {
	srv, v := newTestServer(t)
	defer srv.Close()

	v.Connect("usr_1", "peer_1", "addr_1")

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET / error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("reading body error = %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("1 users online")) {
		t.Fatalf("expected body to mention online count, got %q", buf.String())
	}
}
