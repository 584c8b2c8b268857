package inventory

import "sync"

// Registry: по Store на чат: у каждого оператора свои фильтры и сообщения.
type Registry struct {
	mu     sync.Mutex
	stores map[int64]*Store
	build  func() *Store
}

func NewRegistry(build func() *Store) *Registry {
	return &Registry{stores: map[int64]*Store{}, build: build}
}

// Get возвращает Store чата; created=true, если он только что создан и ещё пуст.
func (r *Registry) Get(chatID int64) (st *Store, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.stores[chatID]; ok {
		return st, false
	}
	st = r.build()
	r.stores[chatID] = st
	return st, true
}

// Each обходит все Store (например, чтобы перечитать после импорта).
func (r *Registry) Each(fn func(chatID int64, st *Store)) {
	r.mu.Lock()
	snapshot := make(map[int64]*Store, len(r.stores))
	for id, st := range r.stores {
		snapshot[id] = st
	}
	r.mu.Unlock()
	for id, st := range snapshot {
		fn(id, st)
	}
}

func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, st := range r.stores {
		st.Close()
		delete(r.stores, id)
	}
}
