package listings

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/aarav-aiphi/Backend/internal/engagement"
	"github.com/aarav-aiphi/Backend/pkg/assets"
	"github.com/aarav-aiphi/Backend/pkg/assets/assetstest"
	"github.com/aarav-aiphi/Backend/pkg/db/dbtest"
	"github.com/aarav-aiphi/Backend/pkg/enums"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"github.com/google/uuid"
)

type captureRecorder struct {
	mu     sync.Mutex
	events []engagement.Event
}

func (c *captureRecorder) Record(_ context.Context, e engagement.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func newTestService(t *testing.T) (Service, Repository, *assetstest.Memory, *captureRecorder) {
	t.Helper()
	repo := NewRepository(dbtest.Open(t))
	store := assetstest.NewMemory()
	rec := &captureRecorder{}
	svc, err := NewService(repo, store, rec)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo, store, rec
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(nil, assetstest.NewMemory(), nil); err == nil {
		t.Fatal("expected error without repository")
	}
	if _, err := NewService(NewRepository(nil), nil, nil); err == nil {
		t.Fatal("expected error without asset store")
	}
}

func TestServiceSearchValidatesQuery(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Search(ctx, "  "); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for blank query, got %v", err)
	}
	_, err := svc.Search(ctx, "the best tools")
	if err != nil {
		t.Fatalf("expected 'best' to survive stop words, got %v", err)
	}
	if _, err := svc.Search(ctx, "the agents"); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for stop words only, got %v", err)
	}
}

func TestServiceSearchOnlyReturnsAccepted(t *testing.T) {
	svc, repo, _, rec := newTestService(t)
	seedListing(t, repo, "Legal Eagle", "Law", enums.ListingStatusAccepted)
	seedListing(t, repo, "Legal Draft", "Law", enums.ListingStatusRequested)

	results, err := svc.Search(context.Background(), "legal")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].Name != "Legal Eagle" {
		t.Fatalf("unexpected results %+v", results)
	}
	if len(rec.events) != 1 || rec.events[0].Type != enums.EngagementSearched {
		t.Fatalf("expected a search event, got %+v", rec.events)
	}
}

func TestServiceTopLikedByCategory(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()
	seedListing(t, repo, "Low", "Sales", enums.ListingStatusAccepted)
	high := seedListing(t, repo, "High", "Sales", enums.ListingStatusAccepted)
	seedListing(t, repo, "Solo", "Art", enums.ListingStatusAccepted)

	if err := repo.AdjustCounters(ctx, high.ID, Counters{Likes: 3}); err != nil {
		t.Fatalf("adjust: %v", err)
	}

	top, err := svc.TopLikedByCategory(ctx)
	if err != nil {
		t.Fatalf("top liked: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("expected one listing per category, got %d", len(top))
	}
	if top[0].Name != "Solo" || top[1].Name != "High" {
		t.Fatalf("unexpected top listings %s, %s", top[0].Name, top[1].Name)
	}
}

func TestServiceCreateUploadsImages(t *testing.T) {
	svc, _, store, _ := newTestService(t)

	dto, err := svc.Create(context.Background(), CreateInput{
		Fields: validFields(),
		Logo:   &assets.File{Filename: "logo.png", ContentType: "image/png", Body: strings.NewReader("png")},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Logo == nil || !strings.HasPrefix(*dto.Logo, assetstest.URL(assets.FolderAgents+"/")) {
		t.Fatalf("expected permanent logo url, got %v", dto.Logo)
	}
	if dto.Thumbnail != nil {
		t.Fatal("expected no thumbnail")
	}
	if len(store.Keys()) != 1 {
		t.Fatalf("expected one stored object, got %v", store.Keys())
	}

	if _, err := svc.Create(context.Background(), CreateInput{Fields: validFields()}); !pkgerrors.Is(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected duplicate name conflict, got %v", err)
	}
}

func TestServiceMarkTried(t *testing.T) {
	svc, repo, _, rec := newTestService(t)
	listing := seedListing(t, repo, "Scribe", "Writing", enums.ListingStatusAccepted)
	user := uuid.New()

	dto, err := svc.MarkTried(context.Background(), listing.ID, &user)
	if err != nil {
		t.Fatalf("mark tried: %v", err)
	}
	if dto.TriedBy != 1 || dto.PopularityScore != 1 {
		t.Fatalf("unexpected counters %+v", dto)
	}
	if len(rec.events) != 1 || *rec.events[0].UserID != user {
		t.Fatalf("expected tried event, got %+v", rec.events)
	}

	if _, err := svc.MarkTried(context.Background(), uuid.New(), nil); !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceByStatusRejectsUnknown(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	if _, err := svc.ByStatus(context.Background(), enums.ListingStatus("archived")); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceSimilar(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	base := seedListing(t, repo, "Base", "Sales", enums.ListingStatusRequested)
	seedListing(t, repo, "Peer", "Sales", enums.ListingStatusAccepted)
	seedListing(t, repo, "Hidden", "Sales", enums.ListingStatusRejected)

	out, err := svc.Similar(context.Background(), base.ID)
	if err != nil {
		t.Fatalf("similar: %v", err)
	}
	if out.Listing.ID != base.ID {
		t.Fatal("expected base listing in response")
	}
	if len(out.BestMatches) != 1 || out.BestMatches[0].Name != "Peer" {
		t.Fatalf("unexpected matches %+v", out.BestMatches)
	}
}
