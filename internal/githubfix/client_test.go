package githubfix

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestBranchName(t *testing.T) {
	now := time.Date(2025, 3, 1, 14, 30, 45, 0, time.UTC)

	cases := []struct {
		title string
		want  string
	}{
		{"Fix NPE in PaymentService", "fix-npe-in-paymentse-20250301-143045"},
		{"  weird   spacing!!  ", "weird-spacing-20250301-143045"},
		{"Short", "short-20250301-143045"},
	}
	for _, tc := range cases {
		if got := BranchName(tc.title, now); got != tc.want {
			t.Errorf("BranchName(%q) = %s, want %s", tc.title, got, tc.want)
		}
	}
}

func TestParseRepoURL(t *testing.T) {
	cases := []struct {
		in          string
		owner, repo string
		ok          bool
	}{
		{"https://github.com/acme/shop", "acme", "shop", true},
		{"https://github.com/acme/shop/", "acme", "shop", true},
		{"https://github.com/acme/shop.git", "acme", "shop", true},
		{"https://gitlab.com/acme/shop", "", "", false},
		{"not a url", "", "", false},
	}
	for _, tc := range cases {
		owner, repo, err := ParseRepoURL(tc.in)
		if tc.ok != (err == nil) {
			t.Errorf("ParseRepoURL(%q) err = %v", tc.in, err)
			continue
		}
		if owner != tc.owner || repo != tc.repo {
			t.Errorf("ParseRepoURL(%q) = %s/%s", tc.in, owner, repo)
		}
	}
}

func TestNewRequiresToken(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Error("expected error for missing token")
	}
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// fakeGitHub serves just enough of the REST API for the PR flow.
func fakeGitHub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("GET /user", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"login": "opsmind-bot"}`)
	})
	mux.HandleFunc("GET /repos/acme/shop", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"full_name": "acme/shop", "private": false}`)
	})
	mux.HandleFunc("GET /repos/acme/shop/git/ref/heads/main", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ref": "refs/heads/main", "object": {"sha": "abc123"}}`)
	})
	mux.HandleFunc("POST /repos/acme/shop/git/refs", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("bad ref body: %v", err)
		}
		if body["sha"] != "abc123" {
			t.Errorf("branch created from sha %v", body["sha"])
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"ref": %q}`, body["ref"])
	})
	mux.HandleFunc("GET /repos/acme/shop/contents/src/Payment.java", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	})
	mux.HandleFunc("PUT /repos/acme/shop/contents/src/Payment.java", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"content": {"path": "src/Payment.java"}}`)
	})
	mux.HandleFunc("POST /repos/acme/shop/pulls", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("bad pull body: %v", err)
		}
		if desc, _ := body["body"].(string); !strings.Contains(desc, "**Files Modified:**") {
			t.Errorf("PR body missing file list: %v", body["body"])
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"number": 42, "html_url": "https://github.com/acme/shop/pull/42"}`)
	})

	return httptest.NewServer(mux)
}

func TestCreateFixPR(t *testing.T) {
	srv := fakeGitHub(t)
	defer srv.Close()

	client, err := New(Options{
		Token:   "test-token",
		BaseURL: srv.URL,
		Log:     quietLogger(),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result, err := client.CreateFixPR(
		context.Background(),
		"https://github.com/acme/shop",
		"Fix NPE in PaymentService",
		"Root cause: null user reference.",
		map[string]string{"src/Payment.java": "public class Payment {}"},
		"main",
	)
	if err != nil {
		t.Fatalf("CreateFixPR failed: %v", err)
	}

	if !result.Success {
		t.Error("expected success")
	}
	if result.PRNumber != 42 {
		t.Errorf("pr_number = %d", result.PRNumber)
	}
	if result.PRURL != "https://github.com/acme/shop/pull/42" {
		t.Errorf("pr_url = %s", result.PRURL)
	}
	if result.Repository != "acme/shop" {
		t.Errorf("repository = %s", result.Repository)
	}
	if len(result.CommittedFiles) != 1 || result.CommittedFiles[0] != "src/Payment.java" {
		t.Errorf("committed_files = %v", result.CommittedFiles)
	}
	if !strings.HasPrefix(result.BranchName, "fix-npe-in-paymentse-") {
		t.Errorf("branch_name = %s", result.BranchName)
	}
}

func TestCreateFixPRBadToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /user", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message": "Bad credentials"}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := New(Options{Token: "bad", BaseURL: srv.URL, Log: quietLogger()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = client.CreateFixPR(context.Background(),
		"https://github.com/acme/shop", "t", "d",
		map[string]string{"a.txt": "x"}, "main")

	var rejection *RejectionError
	if !errors.As(err, &rejection) {
		t.Fatalf("expected RejectionError, got %v", err)
	}
	if rejection.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d", rejection.StatusCode)
	}
}

func TestCreateFixPRNoChanges(t *testing.T) {
	client, err := New(Options{Token: "x", Log: quietLogger()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := client.CreateFixPR(context.Background(),
		"https://github.com/acme/shop", "t", "d", nil, "main"); err == nil {
		t.Error("expected error for empty change set")
	}
}

func TestCreateFixPRInvalidURL(t *testing.T) {
	client, err := New(Options{Token: "x", Log: quietLogger()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := client.CreateFixPR(context.Background(),
		"https://example.com/acme/shop", "t", "d",
		map[string]string{"a": "b"}, "main"); err == nil {
		t.Error("expected error for non-GitHub URL")
	}
}

func TestGetFileContent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/shop/contents/README.md", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"type": "file", "encoding": "base64", "content": "aGVsbG8="}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := New(Options{Token: "x", BaseURL: srv.URL, Log: quietLogger()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	content, err := client.GetFileContent(context.Background(),
		"https://github.com/acme/shop", "README.md", "")
	if err != nil {
		t.Fatalf("GetFileContent failed: %v", err)
	}
	if content != "hello" {
		t.Errorf("content = %q", content)
	}
}

func TestListTree(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/shop/git/trees/main", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tree": [
			{"path": "src/app.go", "type": "blob"},
			{"path": "src", "type": "tree"},
			{"path": "README.md", "type": "blob"}
		]}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := New(Options{Token: "x", BaseURL: srv.URL, Log: quietLogger()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	paths, err := client.ListTree(context.Background(), "https://github.com/acme/shop", "main")
	if err != nil {
		t.Fatalf("ListTree failed: %v", err)
	}
	if len(paths) != 2 || paths[0] != "src/app.go" || paths[1] != "README.md" {
		t.Errorf("paths = %v", paths)
	}
}

func TestRetryTransportRecovers(t *testing.T) {
	attempts := 0
	flaky := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("connection reset")
		}
		rec := httptest.NewRecorder()
		rec.WriteString(`{}`)
		return rec.Result(), nil
	})

	rt := &retryTransport{base: flaky, maxRetries: 2, delay: time.Millisecond, log: quietLogger()}
	req := httptest.NewRequest(http.MethodGet, "https://api.github.com/user", nil)

	resp, err := rt.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip failed: %v", err)
	}
	resp.Body.Close()
	if attempts != 2 {
		t.Errorf("attempts = %d", attempts)
	}
}

func TestRetryTransportGivesUp(t *testing.T) {
	attempts := 0
	down := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		attempts++
		return nil, errors.New("no route to host")
	})

	rt := &retryTransport{base: down, maxRetries: 2, delay: time.Millisecond, log: quietLogger()}
	req := httptest.NewRequest(http.MethodGet, "https://api.github.com/user", nil)

	if _, err := rt.RoundTrip(req); err == nil {
		t.Error("expected failure after retries")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d", attempts)
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }
