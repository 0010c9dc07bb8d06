package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/nooksapp/nooks/internal/domain"
)

// docServer is a minimal document API for exercising HTTPClient: PUT
// stores raw JSON by path, GET returns it, collections list children.
type docServer struct {
	mu   sync.Mutex
	docs map[string]json.RawMessage
}

func newDocServer() *docServer {
	return &docServer{docs: make(map[string]json.RawMessage)}
}

func (s *docServer) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		switch r.Method {
		case http.MethodPut:
			var raw json.RawMessage
			if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
				t.Errorf("bad body for %s: %v", r.URL.Path, err)
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			s.docs[r.URL.Path] = raw
			w.WriteHeader(http.StatusNoContent)
		case http.MethodGet:
			if doc, ok := s.docs[r.URL.Path]; ok {
				w.Write(doc)
				return
			}
			// Collection read: children of the path as a JSON array.
			var children []json.RawMessage
			prefix := r.URL.Path + "/"
			for path, doc := range s.docs {
				if len(path) > len(prefix) && path[:len(prefix)] == prefix {
					children = append(children, doc)
				}
			}
			if children == nil {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			json.NewEncoder(w).Encode(children)
		case http.MethodDelete:
			if _, ok := s.docs[r.URL.Path]; !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			delete(s.docs, r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		}
	})
}

func TestHTTPClientBucketLifecycle(t *testing.T) {
	srv := httptest.NewServer(newDocServer().handler(t))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "")
	ctx := context.Background()

	b := domain.Bucket{ID: 1, Name: "Work", Emoji: "💼", CreatedAt: time.Now().UTC().Truncate(time.Second)}
	if err := client.PutBucket(ctx, "acct-1", b); err != nil {
		t.Fatal(err)
	}

	data, err := client.FetchData(ctx, "acct-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(data.Buckets) != 1 || data.Buckets[0].Name != "Work" {
		t.Fatalf("fetched %+v", data.Buckets)
	}

	if err := client.DeleteBucket(ctx, "acct-1", 1); err != nil {
		t.Fatal(err)
	}
	// Deleting again is a no-op, not an error.
	if err := client.DeleteBucket(ctx, "acct-1", 1); err != nil {
		t.Fatal(err)
	}
}

func TestHTTPClientFetchDataEmptyAccount(t *testing.T) {
	srv := httptest.NewServer(newDocServer().handler(t))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "")
	data, err := client.FetchData(context.Background(), "nobody")
	if err != nil {
		t.Fatal(err)
	}
	if len(data.Buckets) != 0 || len(data.Tasks) != 0 {
		t.Errorf("data = %+v", data)
	}
}

func TestHTTPClientGetInviteNotFound(t *testing.T) {
	srv := httptest.NewServer(newDocServer().handler(t))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "")
	_, err := client.GetInvite(context.Background(), "MISSING1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestHTTPClientSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "tok-123")
	if err := client.PutBucket(context.Background(), "a", domain.Bucket{ID: 1, Name: "x", CreatedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("auth header = %q", gotAuth)
	}
}

func TestHTTPClientSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "")
	err := client.PutBucket(context.Background(), "a", domain.Bucket{ID: 1, Name: "x", CreatedAt: time.Now()})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
}
