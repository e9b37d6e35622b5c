package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/studyhub/studyhub-backend/internal/model"
)

func newCatalog(store *fakeSubjectStore) *CatalogService {
	return NewCatalogService(store, &fakeFeed{}, &fakeAudit{}, zerolog.Nop())
}

func seedSubjects(t *testing.T, svc *CatalogService, names ...string) []model.Subject {
	t.Helper()
	ctx := context.Background()
	for _, name := range names {
		if _, err := svc.Create(ctx, testActor(), &model.CreateSubjectRequest{Name: name}); err != nil {
			t.Fatalf("create %q: %v", name, err)
		}
	}
	subjects, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	return subjects
}

func TestCatalogCreateAppendsAtEnd(t *testing.T) {
	svc := newCatalog(newFakeSubjectStore())
	subjects := seedSubjects(t, svc, "Math", "Physics", "History")

	for i, want := range []string{"Math", "Physics", "History"} {
		if subjects[i].Name != want {
			t.Errorf("position %d = %q, want %q", i, subjects[i].Name, want)
		}
	}
}

func TestCatalogUpdateKeepsPosition(t *testing.T) {
	svc := newCatalog(newFakeSubjectStore())
	subjects := seedSubjects(t, svc, "Math", "Physics", "History")

	if _, err := svc.Update(context.Background(), testActor(), subjects[1].ID, &model.UpdateSubjectRequest{Name: "Chemistry"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	after, _ := svc.List(context.Background())
	if after[1].Name != "Chemistry" {
		t.Fatalf("position 1 = %q after rename, want Chemistry", after[1].Name)
	}
	if after[0].Name != "Math" || after[2].Name != "History" {
		t.Error("rename disturbed neighboring positions")
	}
}

func TestCatalogSwap(t *testing.T) {
	svc := newCatalog(newFakeSubjectStore())
	subjects := seedSubjects(t, svc, "Math", "Physics", "History")
	ctx := context.Background()

	if err := svc.Swap(ctx, testActor(), subjects[0].ID, subjects[2].ID); err != nil {
		t.Fatalf("swap: %v", err)
	}

	after, _ := svc.List(ctx)
	if after[0].Name != "History" || after[2].Name != "Math" {
		t.Fatalf("order after swap = [%s %s %s]", after[0].Name, after[1].Name, after[2].Name)
	}
	if after[1].Name != "Physics" {
		t.Error("swap disturbed an uninvolved subject")
	}

	// A second identical swap restores the original order.
	if err := svc.Swap(ctx, testActor(), subjects[0].ID, subjects[2].ID); err != nil {
		t.Fatalf("second swap: %v", err)
	}
	restored, _ := svc.List(ctx)
	for i, want := range []string{"Math", "Physics", "History"} {
		if restored[i].Name != want {
			t.Errorf("double swap position %d = %q, want %q", i, restored[i].Name, want)
		}
	}
}

func TestCatalogSwapMissingSubject(t *testing.T) {
	svc := newCatalog(newFakeSubjectStore())
	subjects := seedSubjects(t, svc, "Math")

	if err := svc.Swap(context.Background(), testActor(), subjects[0].ID, 999); err != ErrNotFound {
		t.Fatalf("swap with missing subject = %v, want ErrNotFound", err)
	}
}

func TestCatalogDeleteCompactsNothing(t *testing.T) {
	store := newFakeSubjectStore()
	svc := newCatalog(store)
	subjects := seedSubjects(t, svc, "Math", "Physics", "History")
	ctx := context.Background()

	if err := svc.Delete(ctx, testActor(), subjects[1].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	after, _ := svc.List(ctx)
	if len(after) != 2 {
		t.Fatalf("len = %d after delete, want 2", len(after))
	}
	// Remaining order indexes keep their gaps; relative order is unchanged.
	if after[0].Name != "Math" || after[1].Name != "History" {
		t.Fatalf("order after delete = [%s %s]", after[0].Name, after[1].Name)
	}
}
