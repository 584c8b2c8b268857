package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Spok95/supply-bot/internal/backend"
	"github.com/Spok95/supply-bot/internal/domain/supplies"
)

type fakeSource struct {
	mu        sync.Mutex
	list      []supplies.Supply
	listErr   error
	adjustErr error
	listCalls int
	adds      []supplies.VariantQuantityOperation
	subs      []supplies.VariantQuantityOperation
	supplyIDs []int64
	// block, если задан, держит ListSupplies до закрытия канала
	block chan struct{}
}

func (f *fakeSource) ListSupplies(ctx context.Context, _ backend.ListFilter) ([]supplies.Supply, error) {
	f.mu.Lock()
	f.listCalls++
	list, err, block := f.list, f.listErr, f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return list, err
}

func (f *fakeSource) AddVariantStock(_ context.Context, id int64, op supplies.VariantQuantityOperation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.supplyIDs = append(f.supplyIDs, id)
	f.adds = append(f.adds, op)
	return f.adjustErr
}

func (f *fakeSource) SubtractVariantStock(_ context.Context, id int64, op supplies.VariantQuantityOperation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.supplyIDs = append(f.supplyIDs, id)
	f.subs = append(f.subs, op)
	return f.adjustErr
}

func (f *fakeSource) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func zipperRows() []supplies.Supply {
	return supplies.FromVariants(supplies.BackendSupplyWithVariants{
		ID:           7,
		Description:  "Zipper",
		Active:       true,
		TypeName:     "Closures",
		CategoryName: "Haberdashery",
		Variants: []supplies.BackendVariant{
			{ID: 71, ColorID: 1, ColorName: "Red", StockActual: 3},
			{ID: 72, ColorID: 2, ColorName: "Blue", StockActual: 0},
		},
	})
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestRefresh_StoresList(t *testing.T) {
	src := &fakeSource{list: zipperRows()}
	s := New(src, nil, nil, time.Minute)
	defer s.Close()

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Expected refresh to succeed: %v", err)
	}
	st := s.Snapshot()
	if st.Loading {
		t.Error("Expected loading to be cleared")
	}
	if len(st.Supplies) != 2 || len(st.Filtered) != 2 {
		t.Fatalf("Expected 2 supplies, got %d/%d", len(st.Supplies), len(st.Filtered))
	}
	if st.CategoryFilter != supplies.AllCategories {
		t.Errorf("Expected default category filter 'all', got %q", st.CategoryFilter)
	}
	if len(st.Categories) != 1 || st.Categories[0] != "Haberdashery" {
		t.Errorf("Unexpected categories %v", st.Categories)
	}
}

func TestRefresh_FailureSetsError(t *testing.T) {
	src := &fakeSource{list: zipperRows()}
	s := New(src, nil, nil, time.Minute)
	defer s.Close()
	_ = s.Refresh(context.Background())

	src.mu.Lock()
	src.listErr = errors.New("Error 503: Service Unavailable")
	src.mu.Unlock()

	if err := s.Refresh(context.Background()); err == nil {
		t.Fatal("Expected refresh error")
	}
	st := s.Snapshot()
	if st.Error != "Error 503: Service Unavailable" {
		t.Errorf("Expected error text, got %q", st.Error)
	}
	if st.Loading {
		t.Error("Expected loading to be cleared after failure")
	}
	if len(st.Supplies) != 2 {
		t.Errorf("Expected previous list to be kept, got %d rows", len(st.Supplies))
	}
}

func TestAddQuantity_SuccessRefreshesOnce(t *testing.T) {
	src := &fakeSource{list: zipperRows()}
	s := New(src, nil, nil, time.Minute)
	defer s.Close()

	op := supplies.VariantQuantityOperation{ColorID: 2, Quantity: 5}
	if err := s.AddQuantity(context.Background(), 7, op); err != nil {
		t.Fatalf("Expected add to succeed: %v", err)
	}
	if got := src.calls(); got != 1 {
		t.Errorf("Expected exactly one refresh, got %d", got)
	}
	if len(src.adds) != 1 || src.adds[0] != op || src.supplyIDs[0] != 7 {
		t.Errorf("Unexpected add calls %v / %v", src.adds, src.supplyIDs)
	}
	st := s.Snapshot()
	if st.SuccessMessage != MsgAdded {
		t.Errorf("Expected success message %q, got %q", MsgAdded, st.SuccessMessage)
	}
	if st.Error != "" {
		t.Errorf("Expected error to be cleared, got %q", st.Error)
	}
}

func TestSubtractQuantity_Success(t *testing.T) {
	src := &fakeSource{list: zipperRows()}
	s := New(src, nil, nil, time.Minute)
	defer s.Close()

	if err := s.SubtractQuantity(context.Background(), 7, supplies.VariantQuantityOperation{ColorID: 1, Quantity: 1}); err != nil {
		t.Fatalf("Expected subtract to succeed: %v", err)
	}
	if len(src.subs) != 1 || src.calls() != 1 {
		t.Errorf("Expected one subtract and one refresh, got %d/%d", len(src.subs), src.calls())
	}
	if got := s.Snapshot().SuccessMessage; got != MsgSubtracted {
		t.Errorf("Expected %q, got %q", MsgSubtracted, got)
	}
}

func TestAddQuantity_BackendRejects(t *testing.T) {
	src := &fakeSource{
		list:      zipperRows(),
		adjustErr: &backend.HTTPError{StatusCode: 400, Status: "Bad Request", Message: "insufficient stock"},
	}
	s := New(src, nil, nil, time.Minute)
	defer s.Close()

	err := s.SubtractQuantity(context.Background(), 7, supplies.VariantQuantityOperation{ColorID: 2, Quantity: 50})
	if err == nil {
		t.Fatal("Expected the error to be returned to the caller")
	}
	st := s.Snapshot()
	if st.Error != "insufficient stock" {
		t.Errorf("Expected error 'insufficient stock', got %q", st.Error)
	}
	if st.SuccessMessage != "" {
		t.Errorf("Expected no success message, got %q", st.SuccessMessage)
	}
	if got := src.calls(); got != 0 {
		t.Errorf("Expected no refresh after failure, got %d", got)
	}
}

func TestAdjust_ClearsPreviousError(t *testing.T) {
	src := &fakeSource{list: zipperRows(), listErr: errors.New("boom")}
	s := New(src, nil, nil, time.Minute)
	defer s.Close()
	_ = s.Refresh(context.Background())

	src.mu.Lock()
	src.listErr = nil
	src.mu.Unlock()

	if err := s.AddQuantity(context.Background(), 7, supplies.VariantQuantityOperation{ColorID: 1, Quantity: 2}); err != nil {
		t.Fatalf("Expected add to succeed: %v", err)
	}
	if st := s.Snapshot(); st.Error != "" {
		t.Errorf("Expected error cleared, got %q", st.Error)
	}
}

func TestFilters_AreDerived(t *testing.T) {
	src := &fakeSource{list: zipperRows()}
	s := New(src, nil, nil, time.Minute)
	defer s.Close()
	_ = s.Refresh(context.Background())

	s.SetSearchTerm("BLUE")
	st := s.Snapshot()
	if len(st.Filtered) != 1 || st.Filtered[0].Description != "Zipper - Blue" {
		t.Errorf("Unexpected search result %+v", st.Filtered)
	}
	if len(st.Supplies) != 2 {
		t.Error("Expected base list to stay intact")
	}

	s.SetSearchTerm("")
	s.SetCategoryFilter("textiles")
	if got := s.Snapshot().Filtered; len(got) != 0 {
		t.Errorf("Expected no rows for other category, got %d", len(got))
	}

	s.SetCategoryFilter("HABERDASHERY")
	if got := s.Snapshot().Filtered; len(got) != 2 {
		t.Errorf("Expected 2 rows for matching category, got %d", len(got))
	}

	s.SetCategoryFilter("")
	if got := s.Snapshot().CategoryFilter; got != supplies.AllCategories {
		t.Errorf("Expected empty category to mean 'all', got %q", got)
	}
}

func TestFeedback_Expires(t *testing.T) {
	src := &fakeSource{list: zipperRows()}
	s := New(src, nil, nil, 200*time.Millisecond)
	defer s.Close()

	_ = s.AddQuantity(context.Background(), 7, supplies.VariantQuantityOperation{ColorID: 1, Quantity: 1})
	if s.Snapshot().SuccessMessage == "" {
		t.Fatal("Expected success message right after add")
	}
	waitFor(t, time.Second, func() bool {
		st := s.Snapshot()
		return st.SuccessMessage == "" && st.Error == ""
	})
}

func TestFeedback_NewMessageResetsTimer(t *testing.T) {
	src := &fakeSource{list: zipperRows()}
	s := New(src, nil, nil, 300*time.Millisecond)
	defer s.Close()

	op := supplies.VariantQuantityOperation{ColorID: 1, Quantity: 1}
	_ = s.AddQuantity(context.Background(), 7, op)
	time.Sleep(200 * time.Millisecond)
	_ = s.SubtractQuantity(context.Background(), 7, op)
	// первое сообщение уже истекло бы, второе ещё живо
	time.Sleep(200 * time.Millisecond)

	if got := s.Snapshot().SuccessMessage; got != MsgSubtracted {
		t.Fatalf("Expected the newer message to survive, got %q", got)
	}
	waitFor(t, time.Second, func() bool { return s.Snapshot().SuccessMessage == "" })
}

func TestClearMessages(t *testing.T) {
	src := &fakeSource{listErr: errors.New("down")}
	s := New(src, nil, nil, time.Minute)
	defer s.Close()
	_ = s.Refresh(context.Background())

	s.ClearMessages()
	st := s.Snapshot()
	if st.Error != "" || st.SuccessMessage != "" {
		t.Errorf("Expected messages cleared, got %+v", st)
	}
}

func TestRefresh_StaleResponseDropped(t *testing.T) {
	old := zipperRows()
	src := &fakeSource{list: old, block: make(chan struct{})}
	s := New(src, nil, nil, time.Minute)
	defer s.Close()

	firstDone := make(chan struct{})
	go func() {
		_ = s.Refresh(context.Background())
		close(firstDone)
	}()
	waitFor(t, time.Second, func() bool { return src.calls() == 1 })

	// второй запрос отвечает сразу и новым списком
	fresh := old[:1]
	src.mu.Lock()
	firstBlock := src.block
	src.block = nil
	src.list = fresh
	src.mu.Unlock()

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Expected second refresh to succeed: %v", err)
	}
	close(firstBlock)
	<-firstDone

	st := s.Snapshot()
	if len(st.Supplies) != 1 {
		t.Errorf("Expected the newer list (1 row) to win, got %d rows", len(st.Supplies))
	}
	if st.Loading {
		t.Error("Expected loading to be cleared")
	}
}

func TestOnChange_ReceivesSnapshots(t *testing.T) {
	src := &fakeSource{list: zipperRows()}
	s := New(src, nil, nil, time.Minute)
	defer s.Close()

	var mu sync.Mutex
	var states []State
	s.OnChange(func(st State) {
		mu.Lock()
		states = append(states, st)
		mu.Unlock()
	})
	_ = s.Refresh(context.Background())

	mu.Lock()
	defer mu.Unlock()
	if len(states) < 2 {
		t.Fatalf("Expected loading and loaded notifications, got %d", len(states))
	}
	if !states[0].Loading {
		t.Error("Expected first notification to report loading")
	}
	if last := states[len(states)-1]; last.Loading || len(last.Supplies) != 2 {
		t.Errorf("Unexpected final state %+v", last)
	}
}

func TestRegistry(t *testing.T) {
	src := &fakeSource{}
	r := NewRegistry(func() *Store { return New(src, nil, nil, time.Minute) })
	defer r.Close()

	a, created := r.Get(1)
	if !created {
		t.Error("Expected first Get to create a store")
	}
	b, created := r.Get(1)
	if created || a != b {
		t.Error("Expected the same store for the same chat")
	}
	c, _ := r.Get(2)
	if c == a {
		t.Error("Expected separate stores per chat")
	}
	n := 0
	r.Each(func(int64, *Store) { n++ })
	if n != 2 {
		t.Errorf("Expected 2 stores, got %d", n)
	}
}
