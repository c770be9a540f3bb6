package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type publicSet map[string]bool

func (p publicSet) IsPublic(method, path string) bool { return p[method+" "+path] }

type countingRecorder struct{ results []string }

func (r *countingRecorder) RecordAuthValidation(ctx context.Context, result string) {
	r.results = append(r.results, result)
}

type gateResult struct {
	code      int
	principal Principal
	anonymous bool
	reached   bool
}

func runGate(t *testing.T, cfg GateConfig, method, path, header string, pre gin.HandlerFunc) gateResult {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var res gateResult
	handlers := []gin.HandlerFunc{}
	if pre != nil {
		handlers = append(handlers, pre)
	}
	handlers = append(handlers, Gate(cfg), func(c *gin.Context) {
		res.reached = true
		res.principal, _ = PrincipalFrom(c.Request.Context())
		res.anonymous = IsAnonymous(c.Request.Context())
		c.Status(http.StatusOK)
	})

	r := gin.New()
	r.Handle(method, path, handlers...)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	r.ServeHTTP(w, req)
	res.code = w.Code
	return res
}

func TestExtractBearer(t *testing.T) {
	if tok, err := ExtractBearer("bearer abc"); err != nil || tok != "abc" {
		t.Fatalf("expected abc, got %q %v", tok, err)
	}
	if _, err := ExtractBearer(""); err != ErrMissingToken {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
	for _, h := range []string{"Basic abc", "Bearer", "Bearer   ", "abc"} {
		if _, err := ExtractBearer(h); err != ErrMalformedHeader {
			t.Fatalf("%q: expected ErrMalformedHeader, got %v", h, err)
		}
	}
}

func TestGate_StateMachine(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	a := newTestAuthenticator(t, now)
	sess, err := a.AuthenticateByCredential(context.Background(), "hr@acme.io", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	public := publicSet{"GET /open": true}
	cfg := GateConfig{Authenticator: a, Public: public, Bypass: []string{"/login"}}

	t.Run("no token on public route is anonymous", func(t *testing.T) {
		res := runGate(t, cfg, http.MethodGet, "/open", "", nil)
		if res.code != 200 || !res.anonymous {
			t.Fatalf("expected anonymous pass, got %+v", res)
		}
	})
	t.Run("no token on protected route is 401", func(t *testing.T) {
		res := runGate(t, cfg, http.MethodGet, "/closed", "", nil)
		if res.code != 401 || res.reached {
			t.Fatalf("expected 401, got %+v", res)
		}
	})
	t.Run("malformed header on public route is 400", func(t *testing.T) {
		res := runGate(t, cfg, http.MethodGet, "/open", "Token abc", nil)
		if res.code != 400 {
			t.Fatalf("expected 400, got %d", res.code)
		}
	})
	t.Run("malformed header on protected route is 401", func(t *testing.T) {
		res := runGate(t, cfg, http.MethodGet, "/closed", "Token abc", nil)
		if res.code != 401 {
			t.Fatalf("expected 401, got %d", res.code)
		}
	})
	t.Run("valid token attaches principal", func(t *testing.T) {
		res := runGate(t, cfg, http.MethodGet, "/closed", "Bearer "+sess.Token, nil)
		if res.code != 200 || res.principal.ID != "user-hr" || res.anonymous {
			t.Fatalf("expected authenticated pass, got %+v", res)
		}
	})
	t.Run("invalid token on public route is still 401", func(t *testing.T) {
		res := runGate(t, cfg, http.MethodGet, "/open", "Bearer "+strings.Repeat("x", 20), nil)
		if res.code != 401 || res.reached {
			t.Fatalf("expected 401 without downgrade, got %+v", res)
		}
	})
	t.Run("bypass ignores the header entirely", func(t *testing.T) {
		res := runGate(t, cfg, http.MethodPost, "/login", "Bearer garbage", nil)
		if res.code != 200 || !res.anonymous {
			t.Fatalf("expected bypass, got %+v", res)
		}
	})
}

func TestGate_ExpiredTokenRejected(t *testing.T) {
	issued := time.Unix(1700000000, 0).UTC()
	codec := newTestCodec(t)
	tok, _ := codec.Issue(issued, "u", "u@x.io", []Role{RoleStudent})
	a := NewAuthenticator(codec, nil, func() time.Time { return issued.Add(24*time.Hour + time.Second) })
	rec := &countingRecorder{}

	res := runGate(t, GateConfig{Authenticator: a, Metrics: rec}, http.MethodGet, "/x", "Bearer "+tok, nil)
	if res.code != 401 {
		t.Fatalf("expected 401, got %d", res.code)
	}
	if len(rec.results) != 1 || rec.results[0] != "failure" {
		t.Fatalf("expected one failure metric, got %v", rec.results)
	}
}

func TestGate_IdempotentAttachment(t *testing.T) {
	a := newTestAuthenticator(t, time.Unix(1700000000, 0).UTC())
	existing := Principal{ID: "already", Email: "a@x.io", Roles: []Role{RoleAdmin}}
	pre := func(c *gin.Context) {
		c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), existing))
		c.Next()
	}

	// A second gate must not replace or reject the principal already attached.
	res := runGate(t, GateConfig{Authenticator: a}, http.MethodGet, "/x", "Bearer garbage", pre)
	if res.code != 200 || res.principal.ID != "already" {
		t.Fatalf("expected existing principal kept, got %+v", res)
	}
}
