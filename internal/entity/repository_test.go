package entity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/chainvoice/chainvoice/internal/clock"
	"github.com/chainvoice/chainvoice/internal/golemdb"
	"go.uber.org/zap"
)

type note struct {
	Meta

	Title   string `json:"title"`
	TitleLc string `json:"titleLc,omitempty"`
	Pinned  bool   `json:"pinned"`
}

type noteFilter struct {
	Title  string
	Pinned *bool
}

func newNoteRepo(client golemdb.Client, clk clock.Clock) *Repository[*note, noteFilter] {
	return New(client, clk, zap.NewNop(), Config[*note, noteFilter]{
		Kind: "notes",
		New:  func() *note { return &note{} },
		Normalize: func(n *note) {
			n.TitleLc = strings.ToLower(strings.TrimSpace(n.Title))
		},
		Annotate: func(n *note) Annotations {
			var a Annotations
			a.Str("type", "notes")
			a.Str("id", n.ID)
			a.StrOpt("title_lc", n.TitleLc)
			a.Num("version", n.Version)
			a.Num("created_at_epoch", n.CreatedAtEpoch)
			a.Num("updated_at_epoch", n.UpdatedAtEpoch)
			a.Bool("pinned_num", n.Pinned)
			return a
		},
		BuildQuery: func(f noteFilter) (string, error) {
			return NewQuery("notes").
				Eq("title_lc", strings.ToLower(strings.TrimSpace(f.Title))).
				EqBool("pinned_num", f.Pinned).
				Build()
		},
	})
}

func testClock() *clock.FakeClock {
	return clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
}

func TestCreateReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	clk := testClock()
	repo := newNoteRepo(golemdb.NewMemoryClient(), clk)

	handle, err := repo.Create(ctx, &note{Title: "Hello World"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if handle.ID == "" || handle.EntityKey == "" {
		t.Fatalf("handle incomplete: %+v", handle)
	}
	if handle.Version != 1 {
		t.Fatalf("version = %d, want 1", handle.Version)
	}

	got, err := repo.Read(ctx, handle.ID)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got == nil {
		t.Fatal("read returned nil")
	}
	if got.Title != "Hello World" || got.TitleLc != "hello world" {
		t.Fatalf("title = %q, mirror = %q", got.Title, got.TitleLc)
	}
	if got.EntityKey != handle.EntityKey {
		t.Fatalf("entityKey = %q, want %q", got.EntityKey, handle.EntityKey)
	}
	if want := clk.Now().Unix(); got.CreatedAtEpoch != want || got.UpdatedAtEpoch != want {
		t.Fatalf("epochs = %d/%d, want %d", got.CreatedAtEpoch, got.UpdatedAtEpoch, want)
	}
}

func TestReadMissingReturnsNil(t *testing.T) {
	repo := newNoteRepo(golemdb.NewMemoryClient(), testClock())
	got, err := repo.Read(context.Background(), "no-such-id")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestUpdateIncrementsVersionAndRefreshesMirrors(t *testing.T) {
	ctx := context.Background()
	clk := testClock()
	repo := newNoteRepo(golemdb.NewMemoryClient(), clk)

	handle, err := repo.Create(ctx, &note{Title: "Draft"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	clk.Advance(90 * time.Second)
	updated, newHandle, err := repo.Update(ctx, ByID(handle.ID), 1, func(n *note) error {
		n.Title = "FINAL"
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if newHandle.Version != 2 || updated.Version != 2 {
		t.Fatalf("version = %d/%d, want 2", newHandle.Version, updated.Version)
	}
	if updated.TitleLc != "final" {
		t.Fatalf("mirror not refreshed: %q", updated.TitleLc)
	}
	if updated.UpdatedAtEpoch != clk.Now().Unix() {
		t.Fatalf("updatedAtEpoch = %d, want %d", updated.UpdatedAtEpoch, clk.Now().Unix())
	}
	if updated.CreatedAtEpoch == updated.UpdatedAtEpoch {
		t.Fatal("createdAtEpoch should not move on update")
	}

	got, err := repo.Read(ctx, handle.ID)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if got.Title != "FINAL" || got.Version != 2 {
		t.Fatalf("stored state = %q v%d", got.Title, got.Version)
	}
}

func TestUpdateVersionConflictLeavesRecordUntouched(t *testing.T) {
	ctx := context.Background()
	repo := newNoteRepo(golemdb.NewMemoryClient(), testClock())

	handle, err := repo.Create(ctx, &note{Title: "Original"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, _, err = repo.Update(ctx, ByID(handle.ID), 7, func(n *note) error {
		n.Title = "Clobbered"
		return nil
	})
	if !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	got, err := repo.Read(ctx, handle.ID)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Title != "Original" || got.Version != 1 {
		t.Fatalf("record mutated on conflict: %q v%d", got.Title, got.Version)
	}
}

func TestUpdateMissingTarget(t *testing.T) {
	repo := newNoteRepo(golemdb.NewMemoryClient(), testClock())
	_, _, err := repo.Update(context.Background(), ByID("ghost"), 1, func(n *note) error { return nil })
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteRemovesEntity(t *testing.T) {
	ctx := context.Background()
	repo := newNoteRepo(golemdb.NewMemoryClient(), testClock())

	handle, err := repo.Create(ctx, &note{Title: "Gone"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !repo.Exists(ctx, ByID(handle.ID)) {
		t.Fatal("expected entity to exist before delete")
	}

	if err := repo.Delete(ctx, ByID(handle.ID)); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, err := repo.Read(ctx, handle.ID)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil after delete, got %+v", got)
	}
	if repo.Exists(ctx, ByID(handle.ID)) {
		t.Fatal("exists should be false after delete")
	}
}

func TestReadByEntityKey(t *testing.T) {
	ctx := context.Background()
	repo := newNoteRepo(golemdb.NewMemoryClient(), testClock())

	handle, err := repo.Create(ctx, &note{Title: "Keyed"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.ReadByEntityKey(ctx, handle.EntityKey)
	if err != nil {
		t.Fatalf("read by key: %v", err)
	}
	if got == nil || got.ID != handle.ID {
		t.Fatalf("got %+v, want id %s", got, handle.ID)
	}
}

// queryOnlyClient hides the KeyReader capability of the wrapped client.
type queryOnlyClient struct {
	golemdb.Client
}

func TestReadByEntityKeyNotSupported(t *testing.T) {
	repo := newNoteRepo(queryOnlyClient{Client: golemdb.NewMemoryClient()}, testClock())
	_, err := repo.ReadByEntityKey(context.Background(), "0xabc")
	if !errors.Is(err, ErrNotSupported) {
		t.Fatalf("expected ErrNotSupported, got %v", err)
	}
}

func TestPaginationWalksEveryItemOnce(t *testing.T) {
	ctx := context.Background()
	repo := newNoteRepo(golemdb.NewMemoryClient(), testClock())

	const total = 5
	for i := 0; i < total; i++ {
		if _, err := repo.Create(ctx, &note{Title: fmt.Sprintf("note %d", i)}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	seen := map[string]int{}
	cursor := ""
	pages := 0
	for {
		page, err := repo.ReadMany(ctx, noteFilter{}, Pagination{Limit: 2, Cursor: cursor})
		if err != nil {
			t.Fatalf("page %d: %v", pages, err)
		}
		for _, item := range page.Items {
			seen[item.ID]++
		}
		pages++
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	if len(seen) != total {
		t.Fatalf("saw %d distinct items, want %d", len(seen), total)
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("item %s seen %d times", id, n)
		}
	}
	if pages != 3 {
		t.Fatalf("walked %d pages, want 3", pages)
	}
}

func TestCountMatchesDrain(t *testing.T) {
	ctx := context.Background()
	repo := newNoteRepo(golemdb.NewMemoryClient(), testClock())

	pinned := true
	for i := 0; i < 7; i++ {
		n := &note{Title: fmt.Sprintf("n%d", i), Pinned: i%2 == 0}
		if _, err := repo.Create(ctx, n); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	count, err := repo.Count(ctx, noteFilter{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 7 {
		t.Fatalf("count = %d, want 7", count)
	}

	pinnedCount, err := repo.Count(ctx, noteFilter{Pinned: &pinned})
	if err != nil {
		t.Fatalf("count pinned: %v", err)
	}
	if pinnedCount != 4 {
		t.Fatalf("pinned count = %d, want 4", pinnedCount)
	}
}

func TestExistsFalseOnStoreFailure(t *testing.T) {
	client := golemdb.NewMemoryClient()
	repo := newNoteRepo(client, testClock())

	handle, err := repo.Create(context.Background(), &note{Title: "x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	client.WithError(errors.New("store down"))
	if repo.Exists(context.Background(), ByID(handle.ID)) {
		t.Fatal("exists should report false when the store fails")
	}
}
