package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nooksapp/nooks/internal/domain"
)

const defaultTimeout = 10 * time.Second

// HTTPClient implements Client against a REST document API. Documents
// are PUT wholesale to their logical path and collections are read with
// a single GET returning a JSON array.
type HTTPClient struct {
	base  string
	token string
	hc    *http.Client
}

// NewHTTPClient creates a client for the document API at baseURL.
// An empty token disables the Authorization header.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		base:  strings.TrimRight(baseURL, "/"),
		token: token,
		hc:    &http.Client{Timeout: defaultTimeout},
	}
}

func (c *HTTPClient) PutBucket(ctx context.Context, accountID string, b domain.Bucket) error {
	return c.put(ctx, fmt.Sprintf("accounts/%s/buckets/%d", url.PathEscape(accountID), b.ID), bucketToDoc(b))
}

func (c *HTTPClient) DeleteBucket(ctx context.Context, accountID string, id int64) error {
	return c.del(ctx, fmt.Sprintf("accounts/%s/buckets/%d", url.PathEscape(accountID), id))
}

func (c *HTTPClient) PutTask(ctx context.Context, accountID string, t domain.Task) error {
	return c.put(ctx, fmt.Sprintf("accounts/%s/tasks/%d", url.PathEscape(accountID), t.ID), taskToDoc(t))
}

func (c *HTTPClient) DeleteTask(ctx context.Context, accountID string, id int64) error {
	return c.del(ctx, fmt.Sprintf("accounts/%s/tasks/%d", url.PathEscape(accountID), id))
}

func (c *HTTPClient) FetchData(ctx context.Context, accountID string) (Data, error) {
	var bucketDocs []bucketDoc
	if err := c.get(ctx, fmt.Sprintf("accounts/%s/buckets", url.PathEscape(accountID)), &bucketDocs); err != nil && err != domain.ErrNotFound {
		return Data{}, fmt.Errorf("fetch buckets: %w", err)
	}
	var taskDocs []taskDoc
	if err := c.get(ctx, fmt.Sprintf("accounts/%s/tasks", url.PathEscape(accountID)), &taskDocs); err != nil && err != domain.ErrNotFound {
		return Data{}, fmt.Errorf("fetch tasks: %w", err)
	}

	var data Data
	for _, doc := range bucketDocs {
		b, err := bucketFromDoc(doc)
		if err != nil {
			return Data{}, fmt.Errorf("invalid bucket document: %w", err)
		}
		data.Buckets = append(data.Buckets, b)
	}
	for _, doc := range taskDocs {
		t, err := taskFromDoc(doc)
		if err != nil {
			return Data{}, fmt.Errorf("invalid task document: %w", err)
		}
		data.Tasks = append(data.Tasks, t)
	}
	return data, nil
}

func (c *HTTPClient) PutInvite(ctx context.Context, inv domain.Invite) error {
	return c.put(ctx, "invites/"+url.PathEscape(inv.Code), inviteToDoc(inv))
}

func (c *HTTPClient) GetInvite(ctx context.Context, code string) (*domain.Invite, error) {
	var doc inviteDoc
	if err := c.get(ctx, "invites/"+url.PathEscape(code), &doc); err != nil {
		return nil, err
	}
	inv, err := inviteFromDoc(doc)
	if err != nil {
		return nil, fmt.Errorf("invalid invite document: %w", err)
	}
	return &inv, nil
}

func (c *HTTPClient) PutPermission(ctx context.Context, contributorUID string, p domain.Permission) error {
	return c.put(ctx, fmt.Sprintf("accounts/%s/permissions/contributor", url.PathEscape(contributorUID)), permissionToDoc(p))
}

func (c *HTTPClient) GetPermission(ctx context.Context, contributorUID string) (*domain.Permission, error) {
	var doc permissionDoc
	if err := c.get(ctx, fmt.Sprintf("accounts/%s/permissions/contributor", url.PathEscape(contributorUID)), &doc); err != nil {
		return nil, err
	}
	p, err := permissionFromDoc(doc)
	if err != nil {
		return nil, fmt.Errorf("invalid permission document: %w", err)
	}
	return &p, nil
}

func (c *HTTPClient) PutInboxItem(ctx context.Context, ownerUID string, item domain.InboxItem) error {
	return c.put(ctx, fmt.Sprintf("accounts/%s/inbox/%s", url.PathEscape(ownerUID), url.PathEscape(item.ID)), inboxItemToDoc(item))
}

func (c *HTTPClient) ListInbox(ctx context.Context, ownerUID string) ([]domain.InboxItem, error) {
	var docs []inboxItemDoc
	if err := c.get(ctx, fmt.Sprintf("accounts/%s/inbox", url.PathEscape(ownerUID)), &docs); err != nil {
		if err == domain.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	items := make([]domain.InboxItem, 0, len(docs))
	for _, doc := range docs {
		item, err := inboxItemFromDoc(doc)
		if err != nil {
			return nil, fmt.Errorf("invalid inbox document: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (c *HTTPClient) put(ctx context.Context, path string, doc interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return c.do(ctx, http.MethodPut, path, bytes.NewReader(body), nil)
}

func (c *HTTPClient) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// del tolerates 404: deleting an already-absent document is a no-op.
func (c *HTTPClient) del(ctx context.Context, path string) error {
	err := c.do(ctx, http.MethodDelete, path, nil, nil)
	if err == domain.ErrNotFound {
		return nil
	}
	return err
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base+"/"+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
