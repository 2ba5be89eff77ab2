package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newTestClient starts a fake GitHub API serving handler
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClientWithBaseURL(server.Client(), server.URL)
	if err != nil {
		t.Fatalf("NewClientWithBaseURL() error = %v", err)
	}
	return client
}

// TestClient_FindToolComment tests finding the marker comment across pages
func TestClient_FindToolComment(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/repo/issues/7/comments", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprintf(w, `[{"id": 3, "body": %q, "user": {"login": "bot"}}]`, GH_COMMENT_MARKER+"\nold report")
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<http://%s%s?page=2>; rel="next"`, r.Host, r.URL.Path))
		fmt.Fprint(w, `[{"id": 1, "body": "LGTM"}, {"id": 2, "body": "nit"}]`)
	})
	client := newTestClient(t, mux)

	comment, err := client.FindToolComment(context.Background(), "owner/repo", 7)
	if err != nil {
		t.Fatalf("FindToolComment() error = %v", err)
	}
	if comment == nil || comment.ID != 3 || comment.User != "bot" {
		t.Errorf("FindToolComment() = %+v, want comment 3 by bot", comment)
	}
}

// TestClient_FindToolComment_NotFound tests that no marker yields nil
func TestClient_FindToolComment_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/repo/issues/7/comments", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id": 1, "body": "LGTM"}]`)
	})
	client := newTestClient(t, mux)

	comment, err := client.FindToolComment(context.Background(), "owner/repo", 7)
	if err != nil {
		t.Fatalf("FindToolComment() error = %v", err)
	}
	if comment != nil {
		t.Errorf("FindToolComment() = %+v, want nil", comment)
	}
}

// TestClient_CreateAndUpdateComment tests the write endpoints
func TestClient_CreateAndUpdateComment(t *testing.T) {
	var created, updated string
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/repo/issues/7/comments", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		created = readBody(t, r)
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id": 42, "body": "report"}`)
	})
	mux.HandleFunc("/repos/owner/repo/issues/comments/42", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("unexpected method %s", r.Method)
		}
		updated = readBody(t, r)
		fmt.Fprint(w, `{"id": 42, "body": "report v2"}`)
	})
	client := newTestClient(t, mux)

	comment, err := client.CreateComment(context.Background(), "owner/repo", 7, "report")
	if err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}
	if comment.ID != 42 || created != "report" {
		t.Errorf("CreateComment() = %+v, sent %q", comment, created)
	}

	if err := client.UpdateComment(context.Background(), "owner/repo", 42, "report v2"); err != nil {
		t.Fatalf("UpdateComment() error = %v", err)
	}
	if updated != "report v2" {
		t.Errorf("UpdateComment() sent %q", updated)
	}
}

// TestClient_GetPR tests reading pull request refs
func TestClient_GetPR(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/repo/pulls/7", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"number": 7, "title": "JIT: fold casts", "base": {"ref": "main", "sha": "aaaaaaaaaa"}, "head": {"ref": "fold", "sha": "bbbbbbbbbb"}}`)
	})
	client := newTestClient(t, mux)

	pr, err := client.GetPR(context.Background(), "owner/repo", 7)
	if err != nil {
		t.Fatalf("GetPR() error = %v", err)
	}
	if pr.Title != "JIT: fold casts" || pr.BaseRef != "main" || pr.HeadSHA != "bbbbbbbbbb" {
		t.Errorf("GetPR() = %+v", pr)
	}
}

// TestClient_InvalidRepo tests that malformed repository names are rejected
func TestClient_InvalidRepo(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())
	if _, err := client.GetComments(context.Background(), "no-slash", 1); err == nil {
		t.Error("GetComments() expected error for invalid repo")
	}
}

func readBody(t *testing.T, r *http.Request) string {
	t.Helper()
	data, err := io.ReadAll(r.Body)
	if err != nil {
		t.Fatalf("failed to read request body: %v", err)
	}
	var payload struct {
		Body string `json:"body"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("failed to parse request body: %v", err)
	}
	return payload.Body
}
