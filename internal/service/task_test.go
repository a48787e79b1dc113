package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kmatsui/go-todo-service/internal/model"
	"github.com/kmatsui/go-todo-service/internal/repository"
)

func newTaskService(t *testing.T, tasks ...model.Task) *TaskService {
	t.Helper()
	store := repository.NewMemoryStore()
	store.Load(tasks)
	return NewTaskService(store)
}

func TestListPagePartition(t *testing.T) {
	var tasks []model.Task
	for i := 0; i < 23; i++ {
		tasks = append(tasks, model.Task{Title: fmt.Sprintf("task-%02d", i)})
	}
	svc := newTaskService(t, tasks...)
	ctx := context.Background()

	full, err := svc.List(ctx, model.Pagination{Page: 1, Size: 100, OrderBy: model.OrderByTitle})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(full) != 23 {
		t.Fatalf("full listing has %d records; want 23", len(full))
	}

	var concatenated []model.Task
	for page := 1; ; page++ {
		p := model.Pagination{Page: page, Size: 5, OrderBy: model.OrderByTitle}
		got, err := svc.List(ctx, p)
		if err != nil {
			t.Fatalf("List page %d failed: %v", page, err)
		}
		if len(got) > 5 {
			t.Fatalf("page %d has %d records; want at most 5", page, len(got))
		}
		concatenated = append(concatenated, got...)
		if len(got) < 5 {
			break
		}
	}

	if len(concatenated) != len(full) {
		t.Fatalf("concatenated pages have %d records; want %d", len(concatenated), len(full))
	}
	for i := range full {
		if concatenated[i].ID != full[i].ID {
			t.Errorf("record %d: page concatenation diverges from full listing", i)
		}
	}
}

func TestListRejectsInvalidPagination(t *testing.T) {
	svc := newTaskService(t)
	_, err := svc.List(context.Background(), model.Pagination{Page: 0, Size: 10, OrderBy: model.OrderByTitle})
	if !errors.Is(err, model.ErrInvalidPagination) {
		t.Errorf("List = %v; want ErrInvalidPagination", err)
	}
}

func TestSearchByIDIgnoresPagination(t *testing.T) {
	svc := newTaskService(t, model.Task{ID: "fixed-id", Title: "target"})
	ctx := context.Background()

	small, err := svc.Search(ctx, model.SearchQuery{
		Type: model.SearchByID, Value: "fixed-id",
		Pagination: model.Pagination{Page: 1, Size: 1, OrderBy: model.OrderByTitle},
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	large, err := svc.Search(ctx, model.SearchQuery{
		Type: model.SearchByID, Value: "fixed-id",
		Pagination: model.Pagination{Page: 99, Size: 999, OrderBy: model.OrderByTitle},
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(small) != 1 || len(large) != 1 || small[0].ID != large[0].ID {
		t.Errorf("ID search depends on pagination: %v vs %v", small, large)
	}

	missing, err := svc.Search(ctx, model.SearchQuery{
		Type: model.SearchByID, Value: "absent",
		Pagination: model.Pagination{Page: 7, Size: 3, OrderBy: model.OrderByTitle},
	})
	if err != nil || len(missing) != 0 {
		t.Errorf("Search(absent id) = %v, %v; want empty, nil", missing, err)
	}
}

func TestSearchByTitleExactMatch(t *testing.T) {
	svc := newTaskService(t,
		model.Task{Title: "groceries"},
		model.Task{Title: "groceries list"},
		model.Task{Title: "groceries"},
	)

	got, err := svc.Search(context.Background(), model.SearchQuery{
		Type: model.SearchByTitle, Value: "groceries",
		Pagination: model.Pagination{Page: 1, Size: 10, OrderBy: model.OrderByTitle},
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("title search returned %d records; want 2 exact matches", len(got))
	}
}

func TestSearchByPriorityCaseInsensitive(t *testing.T) {
	svc := newTaskService(t,
		model.Task{Title: "a", Priority: model.PriorityHigh},
		model.Task{Title: "b", Priority: model.PriorityLow},
		model.Task{Title: "c", Priority: model.PriorityHigh},
	)
	ctx := context.Background()
	p := model.Pagination{Page: 1, Size: 10, OrderBy: model.OrderByTitle}

	lower, err := svc.Search(ctx, model.SearchQuery{Type: model.SearchByPriority, Value: "high", Pagination: p})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	upper, err := svc.Search(ctx, model.SearchQuery{Type: model.SearchByPriority, Value: "HIGH", Pagination: p})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(lower) != 2 || len(upper) != 2 {
		t.Fatalf("priority search returned %d and %d records; want 2 each", len(lower), len(upper))
	}
	for i := range lower {
		if lower[i].ID != upper[i].ID {
			t.Errorf("case variants diverge at record %d", i)
		}
	}
}

func TestSearchByPriorityInvalidValue(t *testing.T) {
	svc := newTaskService(t)
	_, err := svc.Search(context.Background(), model.SearchQuery{
		Type: model.SearchByPriority, Value: "urgent",
		Pagination: model.Pagination{Page: 1, Size: 10, OrderBy: model.OrderByTitle},
	})
	if !errors.Is(err, model.ErrInvalidPriority) {
		t.Errorf("Search(priority=urgent) = %v; want ErrInvalidPriority", err)
	}
}

func TestSearchUnsupportedAttribute(t *testing.T) {
	svc := newTaskService(t)
	_, err := svc.Search(context.Background(), model.SearchQuery{
		Type: "STATUS", Value: "Pending",
		Pagination: model.Pagination{Page: 1, Size: 10, OrderBy: model.OrderByTitle},
	})
	if !errors.Is(err, model.ErrUnsupportedAttribute) {
		t.Errorf("Search(STATUS) = %v; want ErrUnsupportedAttribute", err)
	}
}

func TestSearchPriorityScenario(t *testing.T) {
	priorities := []model.Priority{
		model.PriorityHigh, model.PriorityMedium, model.PriorityHigh, model.PriorityLow,
		model.PriorityMedium, model.PriorityHigh, model.PriorityLow, model.PriorityMedium,
		model.PriorityHigh, model.PriorityLow,
	}
	var tasks []model.Task
	for i, p := range priorities {
		tasks = append(tasks, model.Task{Title: fmt.Sprintf("title-%d", i), Priority: p})
	}
	svc := newTaskService(t, tasks...)
	ctx := context.Background()

	page, err := svc.Search(ctx, model.SearchQuery{
		Type: model.SearchByPriority, Value: "high",
		Pagination: model.Pagination{Page: 1, Size: 2, OrderBy: model.OrderByTitle},
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("page has %d records; want exactly 2 of the 5 HIGH tasks", len(page))
	}
	for _, task := range page {
		if task.Priority != model.PriorityHigh {
			t.Errorf("record %q has priority %v; want HIGH", task.Title, task.Priority)
		}
	}
	if page[0].Title > page[1].Title {
		t.Errorf("page not sorted by title ascending: %q before %q", page[0].Title, page[1].Title)
	}

	// All HIGH tasks, paged in twos, reconstruct the matched set exactly once.
	var all []model.Task
	for p := 1; p <= 3; p++ {
		got, err := svc.Search(ctx, model.SearchQuery{
			Type: model.SearchByPriority, Value: "HIGH",
			Pagination: model.Pagination{Page: p, Size: 2, OrderBy: model.OrderByTitle},
		})
		if err != nil {
			t.Fatalf("Search page %d failed: %v", p, err)
		}
		all = append(all, got...)
	}
	if len(all) != 5 {
		t.Fatalf("concatenated HIGH pages have %d records; want 5", len(all))
	}
	seen := map[string]bool{}
	for _, task := range all {
		if seen[task.ID] {
			t.Errorf("task %s appears on more than one page", task.ID)
		}
		seen[task.ID] = true
	}
}

func TestCreateUpdateDeleteFlow(t *testing.T) {
	svc := newTaskService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, model.CreateTaskRequest{Title: "roundtrip", Description: "d"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == "" || created.Status != "Pending" || created.Priority != model.PriorityLow {
		t.Errorf("created = %+v; want assigned id and defaults", created)
	}

	got, err := svc.Search(ctx, model.SearchQuery{Type: model.SearchByID, Value: created.ID, Pagination: model.DefaultPagination()})
	if err != nil || len(got) != 1 || got[0] != created {
		t.Errorf("round trip = %+v, %v; want the created task", got, err)
	}

	if _, err := svc.Create(ctx, model.CreateTaskRequest{}); !errors.Is(err, model.ErrTitleRequired) {
		t.Errorf("Create without title = %v; want ErrTitleRequired", err)
	}

	status := "Done"
	updated, err := svc.Update(ctx, created.ID, model.TaskUpdate{Status: &status})
	if err != nil || updated == nil || updated.Status != "Done" || updated.Title != "roundtrip" {
		t.Errorf("Update = %+v, %v", updated, err)
	}

	deleted, err := svc.Delete(ctx, created.ID)
	if err != nil || !deleted {
		t.Fatalf("Delete = %v, %v; want true, nil", deleted, err)
	}
	deleted, err = svc.Delete(ctx, created.ID)
	if err != nil || deleted {
		t.Errorf("second Delete = %v, %v; want false, nil", deleted, err)
	}
}
