package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"tumblelog/internal/service"
)

func postForm(router http.Handler, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sessionCookieFrom(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range w.Result().Cookies() {
		if ck.Name == sessionCookieName {
			return ck
		}
	}
	return nil
}

func TestLogIn_Success(t *testing.T) {
	auth := &mockAuth{loginID: 7}
	sessions := &mockSessionSvc{nextID: "sid-1"}
	router := newTestRouter(t, &service.Service{Authenticator: auth, Sessions: sessions})

	w := postForm(router, "/login", url.Values{
		"username": {"alice"},
		"password": {"s3cret"},
	}, nil)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("redirect = %q, want /", loc)
	}
	if auth.lastUsername != "alice" || auth.lastPassword != "s3cret" {
		t.Errorf("login called with (%q, %q)", auth.lastUsername, auth.lastPassword)
	}
	if len(sessions.attached) != 1 || sessions.attached[0] != (attachCall{"sid-1", 7}) {
		t.Errorf("attach calls = %+v, want [{sid-1 7}]", sessions.attached)
	}
	ck := sessionCookieFrom(t, w)
	if ck == nil || ck.Value != "sid-1" {
		t.Fatalf("session cookie = %+v, want value sid-1", ck)
	}
	if ck.MaxAge != 0 {
		t.Errorf("cookie MaxAge = %d, want 0 (browser-session cookie)", ck.MaxAge)
	}
	if !ck.HttpOnly {
		t.Error("cookie should be HttpOnly")
	}
}

func TestLogIn_ReusesExistingCookie(t *testing.T) {
	sessions := &mockSessionSvc{nextID: "fresh"}
	router := newTestRouter(t, &service.Service{
		Authenticator: &mockAuth{loginID: 9},
		Sessions:      sessions,
	})

	w := postForm(router, "/login", url.Values{
		"username": {"bob"},
		"password": {"pw"},
	}, &http.Cookie{Name: sessionCookieName, Value: "old-sid"})

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	if sessions.newIDRequests != 0 {
		t.Errorf("NewID called %d times, want 0", sessions.newIDRequests)
	}
	if len(sessions.attached) != 1 || sessions.attached[0] != (attachCall{"old-sid", 9}) {
		t.Errorf("attach calls = %+v, want rebind of old-sid", sessions.attached)
	}
}

func TestLogIn_InvalidCredentials(t *testing.T) {
	sessions := &mockSessionSvc{nextID: "sid-1"}
	router := newTestRouter(t, &service.Service{
		Authenticator: &mockAuth{loginErr: service.ErrInvalidCredentials},
		Sessions:      sessions,
	})

	w := postForm(router, "/login", url.Values{
		"username": {"ghost"},
		"password": {"nope"},
	}, nil)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if !strings.Contains(w.Body.String(), "Invalid username or password") {
		t.Errorf("body = %q, want generic credential message", w.Body.String())
	}
	if len(sessions.attached) != 0 {
		t.Errorf("attach calls = %+v, want none", sessions.attached)
	}
	if sessionCookieFrom(t, w) != nil {
		t.Error("no session cookie should be set on failed login")
	}
}

func TestLogIn_StoreError(t *testing.T) {
	router := newTestRouter(t, &service.Service{
		Authenticator: &mockAuth{loginErr: errors.New("db down")},
		Sessions:      &mockSessionSvc{},
	})

	w := postForm(router, "/login", url.Values{
		"username": {"alice"},
		"password": {"pw"},
	}, nil)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if !strings.Contains(w.Body.String(), "Something went wrong") {
		t.Errorf("body = %q, want error page", w.Body.String())
	}
	if strings.Contains(w.Body.String(), "db down") {
		t.Error("internal error detail must not leak to the client")
	}
}

func TestSignUp_Success(t *testing.T) {
	reg := &mockRegistrar{registerID: 42}
	sessions := &mockSessionSvc{nextID: "sid-new"}
	router := newTestRouter(t, &service.Service{Registrar: reg, Sessions: sessions})

	w := postForm(router, "/signup", url.Values{
		"username": {"carol"},
		"email":    {"carol@example.com"},
		"password": {"longenough"},
	}, nil)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	if reg.lastUsername != "carol" || reg.lastEmail != "carol@example.com" {
		t.Errorf("register called with (%q, %q)", reg.lastUsername, reg.lastEmail)
	}
	// Signup logs the new account in immediately.
	if len(sessions.attached) != 1 || sessions.attached[0] != (attachCall{"sid-new", 42}) {
		t.Errorf("attach calls = %+v, want [{sid-new 42}]", sessions.attached)
	}
}

func TestSignUp_DuplicateUsername(t *testing.T) {
	router := newTestRouter(t, &service.Service{
		Registrar: &mockRegistrar{registerErr: service.ErrDuplicateUsername},
		Sessions:  &mockSessionSvc{},
	})

	w := postForm(router, "/signup", url.Values{
		"username": {"taken"},
		"email":    {"x@example.com"},
		"password": {"longenough"},
	}, nil)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusConflict)
	}
	if !strings.Contains(w.Body.String(), "already taken") {
		t.Errorf("body = %q, want duplicate message", w.Body.String())
	}
}

func TestSignUp_ValidationError(t *testing.T) {
	router := newTestRouter(t, &service.Service{
		Registrar: &mockRegistrar{registerErr: &service.ValidationError{
			Fields: map[string]string{"password": "must be at least 6 characters"},
		}},
		Sessions: &mockSessionSvc{},
	})

	w := postForm(router, "/signup", url.Values{
		"username": {"dave"},
		"email":    {"dave@example.com"},
		"password": {"no"},
	}, nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if !strings.Contains(w.Body.String(), "password:must be at least 6 characters") {
		t.Errorf("body = %q, want per-field message", w.Body.String())
	}
}

func TestLogOut(t *testing.T) {
	sessions := &mockSessionSvc{}
	router := newTestRouter(t, &service.Service{Sessions: sessions})

	w := postForm(router, "/logout", nil, &http.Cookie{Name: sessionCookieName, Value: "sid-9"})

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	if len(sessions.detached) != 1 || sessions.detached[0] != "sid-9" {
		t.Errorf("detach calls = %v, want [sid-9]", sessions.detached)
	}
	ck := sessionCookieFrom(t, w)
	if ck == nil || ck.MaxAge >= 0 {
		t.Fatalf("cookie = %+v, want expired session cookie", ck)
	}
}

func TestLogOut_Anonymous(t *testing.T) {
	sessions := &mockSessionSvc{}
	router := newTestRouter(t, &service.Service{Sessions: sessions})

	w := postForm(router, "/logout", nil, nil)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	if len(sessions.detached) != 0 {
		t.Errorf("detach calls = %v, want none", sessions.detached)
	}
}

func TestIssueToken(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		loginID    int
		loginErr   error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "ok",
			body:       `{"username":"alice","password":"s3cret"}`,
			loginID:    7,
			wantStatus: http.StatusOK,
			wantBody:   `"token":"tok-7"`,
		},
		{
			name:       "bad credentials",
			body:       `{"username":"alice","password":"wrong"}`,
			loginErr:   service.ErrInvalidCredentials,
			wantStatus: http.StatusUnauthorized,
			wantBody:   "invalid credentials",
		},
		{
			name:       "missing password",
			body:       `{"username":"alice"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "store error",
			body:       `{"username":"alice","password":"s3cret"}`,
			loginErr:   errors.New("db down"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "internal error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := &mockTokens{token: "tok-7"}
			router := newTestRouter(t, &service.Service{
				Authenticator: &mockAuth{loginID: tt.loginID, loginErr: tt.loginErr},
				APITokens:     tokens,
				Sessions:      &mockSessionSvc{},
			})

			req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want containing %q", w.Body.String(), tt.wantBody)
			}
			if tt.wantStatus == http.StatusOK && tokens.lastIssueID != 7 {
				t.Errorf("token issued for user %d, want 7", tokens.lastIssueID)
			}
		})
	}
}
