package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stockledger/inventory-service/internal/domain"
	"github.com/stockledger/inventory-service/pkg/events"
	"github.com/stockledger/inventory-service/pkg/logging"
	"github.com/stockledger/inventory-service/pkg/metrics"
)

// fakeItemRepo is an in-memory ItemRepository. It stores copies so unsaved
// aggregate mutations stay invisible, like a real datastore.
type fakeItemRepo struct {
	mu         sync.Mutex
	items      map[string]*domain.InventoryItem
	saveErr    error
	saveErrFor map[string]error
	findErr    error
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{
		items:      make(map[string]*domain.InventoryItem),
		saveErrFor: make(map[string]error),
	}
}

func cloneItem(item *domain.InventoryItem) *domain.InventoryItem {
	clone := *item
	return &clone
}

func (r *fakeItemRepo) Save(ctx context.Context, item *domain.InventoryItem) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	if err := r.saveErrFor[item.ID]; err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = cloneItem(item)
	return nil
}

func (r *fakeItemRepo) FindByID(ctx context.Context, id string) (*domain.InventoryItem, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return cloneItem(item), nil
}

func (r *fakeItemRepo) FindBySKUAndBranch(ctx context.Context, sku, branchID string) (*domain.InventoryItem, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.SKU == sku && item.BranchID == branchID {
			return cloneItem(item), nil
		}
	}
	return nil, nil
}

func (r *fakeItemRepo) FindByBranch(ctx context.Context, branchID string) ([]*domain.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.InventoryItem
	for _, item := range r.items {
		if item.BranchID == branchID {
			out = append(out, cloneItem(item))
		}
	}
	return out, nil
}

func (r *fakeItemRepo) FindAll(ctx context.Context) ([]*domain.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.InventoryItem, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, cloneItem(item))
	}
	return out, nil
}

func (r *fakeItemRepo) FindBelowThreshold(ctx context.Context) ([]*domain.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.InventoryItem
	for _, item := range r.items {
		if item.IsBelowThreshold() {
			out = append(out, cloneItem(item))
		}
	}
	return out, nil
}

func (r *fakeItemRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *fakeItemRepo) quantity(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item, ok := r.items[id]; ok {
		return item.Quantity
	}
	return -1
}

// fakeTxnRepo is an in-memory TransactionRepository
type fakeTxnRepo struct {
	mu      sync.Mutex
	txns    map[string]*domain.Transaction
	saveErr error
}

func newFakeTxnRepo() *fakeTxnRepo {
	return &fakeTxnRepo{txns: make(map[string]*domain.Transaction)}
}

func cloneTxn(txn *domain.Transaction) *domain.Transaction {
	clone := *txn
	return &clone
}

func (r *fakeTxnRepo) Save(ctx context.Context, txn *domain.Transaction) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txns[txn.ID.String()] = cloneTxn(txn)
	return nil
}

func (r *fakeTxnRepo) FindByID(ctx context.Context, id domain.TransactionID) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	txn, ok := r.txns[id.String()]
	if !ok {
		return nil, nil
	}
	return cloneTxn(txn), nil
}

func (r *fakeTxnRepo) Find(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Transaction
	for _, txn := range r.txns {
		if filter.BranchID != "" && txn.BranchID != filter.BranchID {
			continue
		}
		if filter.ItemID != "" && txn.ItemID != filter.ItemID {
			continue
		}
		if filter.Type != "" && txn.Type != filter.Type {
			continue
		}
		if filter.Status != "" && txn.Status != filter.Status {
			continue
		}
		out = append(out, cloneTxn(txn))
	}
	return out, nil
}

func (r *fakeTxnRepo) FindPending(ctx context.Context) ([]*domain.Transaction, error) {
	return r.Find(ctx, domain.TransactionFilter{Status: domain.StatusPending})
}

func (r *fakeTxnRepo) CountPending(ctx context.Context) (int64, error) {
	pending, _ := r.FindPending(ctx)
	return int64(len(pending)), nil
}

func (r *fakeTxnRepo) Delete(ctx context.Context, id domain.TransactionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.txns, id.String())
	return nil
}

func (r *fakeTxnRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.txns)
}

// fakeBranchRepo is an in-memory BranchRepository
type fakeBranchRepo struct {
	mu       sync.Mutex
	branches map[string]*domain.Branch
}

func newFakeBranchRepo() *fakeBranchRepo {
	return &fakeBranchRepo{branches: make(map[string]*domain.Branch)}
}

func (r *fakeBranchRepo) Save(ctx context.Context, branch *domain.Branch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *branch
	r.branches[branch.ID] = &clone
	return nil
}

func (r *fakeBranchRepo) FindByID(ctx context.Context, id string) (*domain.Branch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	branch, ok := r.branches[id]
	if !ok {
		return nil, nil
	}
	clone := *branch
	return &clone, nil
}

func (r *fakeBranchRepo) FindAll(ctx context.Context) ([]*domain.Branch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Branch, 0, len(r.branches))
	for _, branch := range r.branches {
		clone := *branch
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeBranchRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.branches, id)
	return nil
}

// fakePublisher records published events
type fakePublisher struct {
	mu        sync.Mutex
	published []*events.CloudEvent
}

func (p *fakePublisher) Publish(ctx context.Context, topic string, event *events.CloudEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, event)
}

func (p *fakePublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.published))
	for _, e := range p.published {
		types = append(types, e.Type)
	}
	return types
}

// fakeTxRunner mimics datastore transactions by snapshotting both repos
// before fn and restoring them when fn fails. The engine holds the item
// locks around each call, so snapshotting under them is race free.
type fakeTxRunner struct {
	items *fakeItemRepo
	txns  *fakeTxnRepo
}

func (r *fakeTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	itemSnap := r.snapshotItems()
	txnSnap := r.snapshotTxns()
	if err := fn(ctx); err != nil {
		r.restore(itemSnap, txnSnap)
		return err
	}
	return nil
}

func (r *fakeTxRunner) snapshotItems() map[string]*domain.InventoryItem {
	r.items.mu.Lock()
	defer r.items.mu.Unlock()
	snap := make(map[string]*domain.InventoryItem, len(r.items.items))
	for id, item := range r.items.items {
		snap[id] = cloneItem(item)
	}
	return snap
}

func (r *fakeTxRunner) snapshotTxns() map[string]*domain.Transaction {
	r.txns.mu.Lock()
	defer r.txns.mu.Unlock()
	snap := make(map[string]*domain.Transaction, len(r.txns.txns))
	for id, txn := range r.txns.txns {
		snap[id] = cloneTxn(txn)
	}
	return snap
}

func (r *fakeTxRunner) restore(items map[string]*domain.InventoryItem, txns map[string]*domain.Transaction) {
	r.items.mu.Lock()
	r.items.items = items
	r.items.mu.Unlock()
	r.txns.mu.Lock()
	r.txns.txns = txns
	r.txns.mu.Unlock()
}

func testLogger() *logging.Logger {
	return logging.New(logging.Config{ServiceName: "test", Environment: "test", Level: "error"})
}

func mustParseTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time %q: %v", value, err)
	}
	return parsed
}

type testEnv struct {
	engine    *ReconciliationService
	items     *fakeItemRepo
	txns      *fakeTxnRepo
	publisher *fakePublisher
	metrics   *metrics.Metrics
}

func newTestEnv() *testEnv {
	items := newFakeItemRepo()
	txns := newFakeTxnRepo()
	publisher := &fakePublisher{}
	m := metrics.New("test")

	engine := NewReconciliationService(
		items, txns, &fakeTxRunner{items: items, txns: txns},
		publisher, events.NewFactory(events.Source), m, testLogger())

	return &testEnv{engine: engine, items: items, txns: txns, publisher: publisher, metrics: m}
}
