package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ssabro/MailVista-sub001/internal/domain"
)

// ErrNotFound is returned by Fetch when the directory has no bundle for the
// requested account.
var ErrNotFound = errors.New("directory: bundle not found")

// Client talks to a key-directory server over HTTP.
type Client struct {
	Base string
	HTTP *http.Client
}

// NewClient returns a Client for the directory at base. httpClient may be
// nil, in which case http.DefaultClient is used.
func NewClient(base string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{Base: base, HTTP: httpClient}
}

// Upload publishes the account's public bundle.
func (c *Client) Upload(
	ctx context.Context,
	account domain.AccountID,
	bundle domain.PreKeyBundle,
) error {
	return c.post(ctx, "/v1/accounts/"+url.PathEscape(account.String())+"/bundle", bundle)
}

// UploadPreKeys publishes additional one-time prekey publics for the account.
func (c *Client) UploadPreKeys(
	ctx context.Context,
	account domain.AccountID,
	keys []domain.OneTimePreKeyPublic,
) error {
	body := preKeyUpload{Keys: keys}
	return c.post(ctx, "/v1/accounts/"+url.PathEscape(account.String())+"/prekeys", body)
}

// Fetch retrieves a peer's bundle. A 404 maps to ErrNotFound.
func (c *Client) Fetch(
	ctx context.Context,
	peer domain.PeerID,
) (domain.PreKeyBundle, error) {
	u := c.Base + "/v1/accounts/" + url.PathEscape(peer.String()) + "/bundle"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.PreKeyBundle{}, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return domain.PreKeyBundle{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return domain.PreKeyBundle{}, fmt.Errorf("%w: %s", ErrNotFound, peer)
	}
	if resp.StatusCode/100 != 2 {
		return domain.PreKeyBundle{}, fmt.Errorf("directory get %s: %s", u, resp.Status)
	}
	var b domain.PreKeyBundle
	if err := json.NewDecoder(resp.Body).Decode(&b); err != nil {
		return domain.PreKeyBundle{}, err
	}
	return b, nil
}

func (c *Client) post(ctx context.Context, path string, in any) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("directory post %s: %s", path, resp.Status)
	}
	return nil
}

// preKeyUpload is the request body for UploadPreKeys.
type preKeyUpload struct {
	Keys []domain.OneTimePreKeyPublic `json:"keys"`
}

// Compile-time assertion that Client implements domain.DirectoryClient.
var _ domain.DirectoryClient = (*Client)(nil)
