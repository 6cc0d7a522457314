package directory_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/ssabro/MailVista-sub001/internal/directory"
	"github.com/ssabro/MailVista-sub001/internal/domain"
)

func newServerAndClient(t *testing.T) *directory.Client {
	t.Helper()
	srv := httptest.NewServer(directory.NewHandler())
	t.Cleanup(srv.Close)
	return directory.NewClient(srv.URL, srv.Client())
}

func TestUploadAndFetch(t *testing.T) {
	c := newServerAndClient(t)
	ctx := context.Background()

	bundle := domain.PreKeyBundle{
		RegistrationID: 4217,
		IdentityKey:    domain.X25519Public{0x01},
		SigningKey:     domain.Ed25519Public{0x02},
		SignedPreKeyID: 1,
		SignedPreKey:   domain.X25519Public{0x03},
	}
	if err := c.Upload(ctx, "bob@test", bundle); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	got, err := c.Fetch(ctx, "bob@test")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got.RegistrationID != 4217 || got.IdentityKey != bundle.IdentityKey {
		t.Fatal("bundle mismatch after fetch")
	}
}

func TestFetch_Unknown(t *testing.T) {
	c := newServerAndClient(t)
	if _, err := c.Fetch(context.Background(), "nobody@test"); !errors.Is(err, directory.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestFetch_ConsumesSparePreKeys(t *testing.T) {
	c := newServerAndClient(t)
	ctx := context.Background()

	if err := c.Upload(ctx, "bob@test", domain.PreKeyBundle{RegistrationID: 1}); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	spares := []domain.OneTimePreKeyPublic{
		{ID: 1, Pub: domain.X25519Public{0x01}},
		{ID: 2, Pub: domain.X25519Public{0x02}},
	}
	if err := c.UploadPreKeys(ctx, "bob@test", spares); err != nil {
		t.Fatalf("UploadPreKeys: %v", err)
	}

	// Each fetch hands out one spare, in upload order, then none.
	for _, want := range []domain.PreKeyID{1, 2} {
		b, err := c.Fetch(ctx, "bob@test")
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if b.OneTimePreKey == nil || b.OneTimePreKey.ID != want {
			t.Fatalf("want spare prekey %d, got %+v", want, b.OneTimePreKey)
		}
	}
	b, err := c.Fetch(ctx, "bob@test")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if b.OneTimePreKey != nil {
		t.Fatalf("spares exhausted but fetch returned %+v", b.OneTimePreKey)
	}
}
