package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	enginex "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/agent/engine"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubEngine struct {
	reply string
	err   error

	gotSession string
	gotMessage string
}

func (s *stubEngine) HandleMessage(ctx context.Context, sessionID, text string) (string, error) {
	s.gotSession = sessionID
	s.gotMessage = text
	return s.reply, s.err
}

func postChat(t *testing.T, engine *stubEngine, body string) *httptest.ResponseRecorder {
	t.Helper()
	srv := New(Config{Addr: ":0"}, engine)
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, req)
	return rec
}

func TestChatOK(t *testing.T) {
	t.Parallel()

	engine := &stubEngine{reply: "Your tour is confirmed! Confirmation email sent."}
	rec := postChat(t, engine, `{"session_id":"sess-1","message":"book me a tour"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Reply != engine.reply {
		t.Fatalf("reply = %q, want %q", resp.Reply, engine.reply)
	}
	if engine.gotSession != "sess-1" || engine.gotMessage != "book me a tour" {
		t.Fatalf("engine received (%q, %q)", engine.gotSession, engine.gotMessage)
	}
}

func TestChatRejectsMalformedBody(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
	}{
		{"not json", "not json at all"},
		{"missing session_id", `{"message":"hi"}`},
		{"missing message", `{"session_id":"sess-1"}`},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			engine := &stubEngine{}
			rec := postChat(t, engine, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if engine.gotSession != "" || engine.gotMessage != "" {
				t.Fatal("malformed request must not reach the engine")
			}
		})
	}
}

func TestChatMapsEngineValidationTo400(t *testing.T) {
	t.Parallel()

	engine := &stubEngine{err: enginex.ErrInvalidMessage}
	rec := postChat(t, engine, `{"session_id":"sess-1","message":"   "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestChatMapsEngineFailureTo500(t *testing.T) {
	t.Parallel()

	engine := &stubEngine{err: errors.New("model timed out")}
	rec := postChat(t, engine, `{"session_id":"sess-1","message":"hello"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "model timed out") {
		t.Fatal("internal error details must not leak to the client")
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv := New(Config{Addr: ":0"}, &stubEngine{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}
