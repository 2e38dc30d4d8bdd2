package groups

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	perr "rankbot/internal/platform/errors"
)

func newTestClient(t *testing.T, h http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(Options{
		BaseURL:  srv.URL,
		UsersURL: srv.URL,
		Cookie:   "test-cookie",
		Timeout:  2 * time.Second,
		RPS:      -1, // no pacing against the local test server
	})
	return c, srv
}

func TestVerifyOKAndUnauthorized(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/users/authenticated", func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie(".ROBLOSECURITY")
		if err != nil || ck.Value != "test-cookie" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"id": 42, "name": "ranker"}`))
	})
	c, _ := newTestClient(t, mux)

	me, err := c.Verify(context.Background())
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if me.ID != 42 || me.Name != "ranker" {
		t.Fatalf("Verify = %+v", me)
	}

	c.opts.Cookie = "stale"
	_, err = c.Verify(context.Background())
	if !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
		t.Fatalf("Verify with bad cookie: code = %v, err = %v", perr.CodeOf(err), err)
	}
}

func TestGroupRolesDecodeAndNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/groups/7/roles", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"groupId":7,"roles":[
			{"id":101,"name":"Recruit","rank":1,"memberCount":10},
			{"id":102,"name":"Veteran","rank":5,"memberCount":3}]}`))
	})
	mux.HandleFunc("/v1/groups/8/roles", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errors":[{"code":1,"message":"group is invalid"}]}`))
	})
	c, _ := newTestClient(t, mux)

	roles, err := c.GroupRoles(context.Background(), 7)
	if err != nil {
		t.Fatalf("GroupRoles: %v", err)
	}
	if len(roles) != 2 || roles[0].Name != "Recruit" || roles[1].ID != 102 {
		t.Fatalf("GroupRoles = %+v", roles)
	}

	_, err = c.GroupRoles(context.Background(), 8)
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("GroupRoles missing group: code = %v", perr.CodeOf(err))
	}
}

func TestRolePageCursorFlow(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/groups/7/roles/101/users", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("cursor") {
		case "":
			_, _ = w.Write([]byte(`{"nextPageCursor":"c2","data":[{"userId":1,"username":"a"}]}`))
		case "c2":
			_, _ = w.Write([]byte(`{"nextPageCursor":"","data":[{"userId":2,"username":"b","created":"2015-06-01T00:00:00Z"}]}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})
	c, _ := newTestClient(t, mux)

	rows, next, err := c.RolePage(context.Background(), 7, 101, "")
	if err != nil {
		t.Fatalf("RolePage: %v", err)
	}
	if len(rows) != 1 || rows[0].UserID != 1 || next != "c2" {
		t.Fatalf("page 1 = %+v next %q", rows, next)
	}
	if !rows[0].Created.IsZero() {
		t.Fatalf("page 1 created should be zero, got %v", rows[0].Created)
	}

	rows, next, err = c.RolePage(context.Background(), 7, 101, next)
	if err != nil {
		t.Fatalf("RolePage 2: %v", err)
	}
	if len(rows) != 1 || rows[0].UserID != 2 || next != "" {
		t.Fatalf("page 2 = %+v next %q", rows, next)
	}
	if rows[0].Created.IsZero() {
		t.Fatalf("page 2 created should be set")
	}
}

func TestUserDetails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/users/9", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":9,"name":"old-timer","created":"2008-03-05T12:00:00Z"}`))
	})
	c, _ := newTestClient(t, mux)

	u, err := c.UserDetails(context.Background(), 9)
	if err != nil {
		t.Fatalf("UserDetails: %v", err)
	}
	if u.ID != 9 || u.Created.Year() != 2008 {
		t.Fatalf("UserDetails = %+v", u)
	}
}

func TestSetMemberRoleOutcomes(t *testing.T) {
	var gotCSRF atomic.Value
	gotCSRF.Store("")
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/groups/7/users/1", func(w http.ResponseWriter, r *http.Request) {
		// CSRF challenge on the first uncredentialed mutation
		if r.Header.Get("X-Csrf-Token") == "" {
			w.Header().Set("X-Csrf-Token", "tok-1")
			w.WriteHeader(http.StatusForbidden)
			return
		}
		gotCSRF.Store(r.Header.Get("X-Csrf-Token"))
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/v1/groups/7/users/2", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"code":26,"message":"user already has role"}]}`))
	})
	mux.HandleFunc("/v1/groups/7/users/3", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"errors":[{"code":3,"message":"role is stale"}]}`))
	})
	mux.HandleFunc("/v1/groups/7/users/4", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	})
	c, _ := newTestClient(t, mux)
	ctx := context.Background()

	// csrf challenge is re-issued transparently
	if err := c.SetMemberRole(ctx, 7, 1, 101); err != nil {
		t.Fatalf("SetMemberRole with challenge: %v", err)
	}
	if gotCSRF.Load().(string) != "tok-1" {
		t.Fatalf("csrf token not replayed, got %q", gotCSRF.Load())
	}

	// remote code 26 means the desired state already holds
	if err := c.SetMemberRole(ctx, 7, 2, 101); err != nil {
		t.Fatalf("SetMemberRole already-has-role: %v", err)
	}

	// conflicts are surfaced, not retried here
	err := c.SetMemberRole(ctx, 7, 3, 101)
	if !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("SetMemberRole conflict: code = %v", perr.CodeOf(err))
	}
	if RemoteCodeOf(err) != 3 {
		t.Fatalf("RemoteCodeOf = %d", RemoteCodeOf(err))
	}

	// rate limits carry the retry hint
	err = c.SetMemberRole(ctx, 7, 4, 101)
	if !perr.IsCode(err, perr.ErrorCodeTooManyRequests) {
		t.Fatalf("SetMemberRole 429: code = %v", perr.CodeOf(err))
	}
	if RetryAfterOf(err) != 7*time.Second {
		t.Fatalf("RetryAfterOf = %v", RetryAfterOf(err))
	}
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	c, srv := newTestClient(t, http.NewServeMux())
	srv.Close()

	_, err := c.Verify(context.Background())
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("closed server: code = %v, err = %v", perr.CodeOf(err), err)
	}
	if !perr.Retryable(err) {
		t.Fatalf("transport failures should be retryable")
	}
}

func TestRetryAfterHelpersOnForeignErrors(t *testing.T) {
	if RetryAfterOf(context.Canceled) != 0 {
		t.Fatalf("RetryAfterOf(foreign) should be 0")
	}
	if RemoteCodeOf(context.Canceled) != 0 {
		t.Fatalf("RemoteCodeOf(foreign) should be 0")
	}
}
