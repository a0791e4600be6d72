package handlers

import (
	"net/http"
	"testing"
	"time"
)

func TestSessions_Lifecycle(t *testing.T) {
	api := newTestAPI(t, false)

	if w := api.do(t, http.MethodPost, "/api/create-session", CreateSessionRequest{UserID: "u1"}, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("missing username = %d", w.Code)
	}

	w := api.do(t, http.MethodPost, "/api/create-session", CreateSessionRequest{UserID: "u1", Username: "alice"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("create = %d %s", w.Code, w.Body.String())
	}
	created := decode[CreateSessionResponse](t, w)
	if created.Message != "Session created" || created.SessionID == "" {
		t.Fatalf("create body: %+v", created)
	}
	ck := cookieNamed(w, "sid")
	if ck == nil || ck.Value != created.SessionID || !ck.HttpOnly || ck.Path != "/" {
		t.Fatalf("cookie: %+v", ck)
	}
	if ck.Secure || ck.SameSite != http.SameSiteLaxMode {
		t.Fatalf("development cookie should be Lax and not Secure: %+v", ck)
	}

	w = api.do(t, http.MethodGet, "/api/session-status", nil, nil, ck)
	status := decode[SessionStatusResponse](t, w)
	if w.Code != http.StatusOK || !status.LoggedIn || status.User == nil || status.User.UserID != "u1" || status.User.Username != "alice" {
		t.Fatalf("status = %d %+v", w.Code, status)
	}

	w = api.do(t, http.MethodPost, "/api/heartbeat", nil, nil, ck)
	if w.Code != http.StatusOK {
		t.Fatalf("heartbeat = %d", w.Code)
	}
	if _, err := time.Parse(time.RFC3339, decode[HeartbeatResponse](t, w).LastActivity); err != nil {
		t.Fatalf("lastActivity not RFC3339: %v", err)
	}

	w = api.do(t, http.MethodPost, "/api/logout", nil, nil, ck)
	if w.Code != http.StatusOK || decode[MessageResponse](t, w).Message != "Logged out" {
		t.Fatalf("logout = %d %s", w.Code, w.Body.String())
	}
	if cleared := cookieNamed(w, "sid"); cleared == nil || cleared.MaxAge >= 0 {
		t.Fatalf("logout should expire the cookie: %+v", cleared)
	}

	w = api.do(t, http.MethodGet, "/api/session-status", nil, nil, ck)
	if w.Code != http.StatusUnauthorized || decode[SessionStatusResponse](t, w).LoggedIn {
		t.Fatalf("status after logout = %d %s", w.Code, w.Body.String())
	}
	if w := api.do(t, http.MethodPost, "/api/heartbeat", nil, nil, ck); w.Code != http.StatusUnauthorized {
		t.Fatalf("heartbeat after logout = %d", w.Code)
	}
	if w := api.do(t, http.MethodPost, "/api/logout", nil, nil, ck); w.Code != http.StatusOK {
		t.Fatalf("second logout = %d", w.Code)
	}
}

func TestSessions_NoCookie(t *testing.T) {
	api := newTestAPI(t, false)
	w := api.do(t, http.MethodGet, "/api/session-status", nil, nil)
	if w.Code != http.StatusUnauthorized || w.Body.String() != `{"loggedIn":false}` {
		t.Fatalf("status = %d %q", w.Code, w.Body.String())
	}
	w = api.do(t, http.MethodPost, "/api/heartbeat", nil, nil)
	if er := decode[ErrorResponse](t, w); w.Code != http.StatusUnauthorized || er.Code != ErrCodeUnauthorized {
		t.Fatalf("heartbeat = %d %+v", w.Code, er)
	}
}

func TestSessions_ProductionCookiePolicy(t *testing.T) {
	api := newTestAPI(t, true)
	w := api.do(t, http.MethodPost, "/api/create-session", CreateSessionRequest{UserID: "u1", Username: "alice"}, nil)
	ck := cookieNamed(w, "sid")
	if ck == nil || !ck.Secure || ck.SameSite != http.SameSiteNoneMode || !ck.HttpOnly {
		t.Fatalf("production cookie: %+v", ck)
	}
}
