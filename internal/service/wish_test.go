package service

import (
	"context"
	"errors"
	"testing"

	"github.com/wishwall/wishwall/internal/messages"
	"github.com/wishwall/wishwall/internal/metrics"
	"github.com/wishwall/wishwall/internal/model"
	"github.com/wishwall/wishwall/internal/testutil"
)

type countingTracker struct {
	count int
}

func (c *countingTracker) TrackMessageSubmission(context.Context) { c.count++ }

type recordingNotifier struct {
	ids []string
}

func (r *recordingNotifier) WishSubmitted(_ context.Context, w *model.Wish) { r.ids = append(r.ids, w.ID) }

func newTestService(t *testing.T) (*WishService, *messages.MemoryDocuments, *countingTracker, *metrics.InMemoryRecorder) {
	t.Helper()

	docs := messages.NewMemoryDocuments()
	store := messages.New(docs, 0, testutil.DiscardLogger())
	tracker := &countingTracker{}
	recorder := metrics.NewInMemory()
	return NewWishService(store, tracker, recorder, testutil.DiscardLogger()), docs, tracker, recorder
}

func containsWish(wishes []*model.Wish, id string) bool {
	for _, w := range wishes {
		if w.ID == id {
			return true
		}
	}
	return false
}

func TestWishService_SubmitApproveDelete(t *testing.T) {
	svc, _, tracker, recorder := newTestService(t)
	ctx := context.Background()

	wish, err := svc.Submit(ctx, SubmitInput{Name: "Jo Ann", Message: "Happiest birthday ever, enjoy your day!"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if wish.Approved {
		t.Fatal("submitted wish must be unapproved")
	}
	if tracker.count != 1 {
		t.Errorf("tracker count = %d, want 1", tracker.count)
	}

	public, _ := svc.ListPublic(ctx)
	if containsWish(public, wish.ID) {
		t.Fatal("unapproved wish must not be public")
	}

	approved, err := svc.Moderate(ctx, ModerateInput{ID: wish.ID, Action: "approve"})
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if !approved.Approved {
		t.Error("approve should return the approved wish")
	}

	public, _ = svc.ListPublic(ctx)
	if !containsWish(public, wish.ID) {
		t.Fatal("approved wish should be public")
	}

	deleted, err := svc.Moderate(ctx, ModerateInput{ID: wish.ID, Action: "delete"})
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if deleted != nil {
		t.Error("delete should return no record")
	}

	public, _ = svc.ListPublic(ctx)
	if containsWish(public, wish.ID) {
		t.Fatal("deleted wish must never be public again")
	}

	snap := recorder.Snapshot()
	if snap.WishesSubmitted != 1 || snap.WishesApproved != 1 || snap.WishesDeleted != 1 {
		t.Errorf("unexpected metrics: %+v", snap)
	}
}

func TestWishService_NotifiesOnlyStoredSubmissions(t *testing.T) {
	svc, docs, _, _ := newTestService(t)
	n := &recordingNotifier{}
	svc.SetNotifier(n)
	ctx := context.Background()

	wish, err := svc.Submit(ctx, SubmitInput{Name: "Jo Ann", Message: "Happy birthday to you!"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	_, _ = svc.Submit(ctx, SubmitInput{Name: "A", Message: "short"})

	docs.FailWith(errors.New("db down"))
	_, _ = svc.Submit(ctx, SubmitInput{Name: "Sam", Message: "Many happy returns!"})

	if len(n.ids) != 1 || n.ids[0] != wish.ID {
		t.Errorf("notified ids = %v, want [%s]", n.ids, wish.ID)
	}
}

func TestWishService_SubmitInvalid(t *testing.T) {
	svc, _, tracker, recorder := newTestService(t)

	_, err := svc.Submit(context.Background(), SubmitInput{Name: "A", Message: "short"})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields) != 2 || verr.Fields[0].Field != "name" || verr.Fields[1].Field != "message" {
		t.Errorf("expected name and message errors, got %+v", verr.Fields)
	}
	if tracker.count != 0 {
		t.Error("invalid submissions must not be counted")
	}
	if recorder.Snapshot().WishesInvalid != 1 {
		t.Error("invalid submission should be recorded")
	}
}

func TestWishService_SubmitStoreFailure(t *testing.T) {
	svc, docs, tracker, _ := newTestService(t)
	docs.FailWith(errors.New("db down"))

	_, err := svc.Submit(context.Background(), SubmitInput{Name: "Jo Ann", Message: "Happy birthday to you!"})

	var werr *messages.RemoteWriteError
	if !errors.As(err, &werr) {
		t.Fatalf("expected RemoteWriteError, got %v", err)
	}
	if tracker.count != 0 {
		t.Error("failed submissions must not be counted")
	}
}

func TestWishService_ModerateValidation(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input ModerateInput
	}{
		{"missing_id", ModerateInput{Action: "approve"}},
		{"missing_action", ModerateInput{ID: "abc"}},
		{"missing_both", ModerateInput{}},
		{"unknown_action", ModerateInput{ID: "abc", Action: "reject"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := svc.Moderate(ctx, test.input)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestWishService_ModerateNotFound(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	for _, action := range []string{"approve", "delete"} {
		_, err := svc.Moderate(ctx, ModerateInput{ID: "missing", Action: action})
		if !errors.Is(err, messages.ErrNotFound) {
			t.Errorf("%s: expected ErrNotFound, got %v", action, err)
		}
	}
}

func TestWishService_ApproveTwice(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	wish, _ := svc.Submit(ctx, SubmitInput{Name: "Jo Ann", Message: "Happy birthday to you!"})

	for i := 0; i < 2; i++ {
		got, err := svc.Moderate(ctx, ModerateInput{ID: wish.ID, Action: "approve"})
		if err != nil {
			t.Fatalf("approve #%d failed: %v", i+1, err)
		}
		if !got.Approved {
			t.Errorf("approve #%d returned unapproved wish", i+1)
		}
	}
}

func TestModeration_RefetchesAfterMutation(t *testing.T) {
	svc, docs, _, _ := newTestService(t)
	ctx := context.Background()

	mine, _ := svc.Submit(ctx, SubmitInput{Name: "Jo Ann", Message: "Happy birthday to you!"})
	if _, err := svc.ListAll(ctx); err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}

	// Another admin's submission lands after our cache was filled.
	other, _ := docs.CreateDocument(ctx, "Bob", "Another lovely message")

	if _, err := svc.Moderate(ctx, ModerateInput{ID: mine.ID, Action: "approve"}); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	cached, err := svc.Moderation().Wishes()
	if err != nil {
		t.Fatalf("unexpected refetch error: %v", err)
	}
	if !containsWish(cached, other.ID) {
		t.Error("cache should include changes made outside this admin's actions")
	}
}

// flakyListStore fails ListAll on demand.
type flakyListStore struct {
	WishStore
	failList bool
}

func (f *flakyListStore) ListAll(ctx context.Context) ([]*model.Wish, error) {
	if f.failList {
		return nil, &messages.RemoteReadError{Op: "list all", Err: errors.New("timeout")}
	}
	return f.WishStore.ListAll(ctx)
}

func TestModeration_KeepsPatchedListWhenRefetchFails(t *testing.T) {
	docs := messages.NewMemoryDocuments()
	store := &flakyListStore{WishStore: messages.New(docs, 0, testutil.DiscardLogger())}
	m := NewModeration(store, testutil.DiscardLogger())
	ctx := context.Background()

	a, _ := store.Create(ctx, "Alice", "First message here")
	b, _ := store.Create(ctx, "Bob", "Second message here")
	if _, err := m.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	store.failList = true

	if _, err := m.Approve(ctx, a.ID); err != nil {
		t.Fatalf("Approve should succeed even if refetch fails: %v", err)
	}
	if err := m.Delete(ctx, b.ID); err != nil {
		t.Fatalf("Delete should succeed even if refetch fails: %v", err)
	}

	cached, lastErr := m.Wishes()
	if lastErr == nil {
		t.Error("last refetch error should be reported")
	}
	if len(cached) != 1 || cached[0].ID != a.ID || !cached[0].Approved {
		t.Errorf("expected patched list [approved %s], got %+v", a.ID, cached)
	}
}
