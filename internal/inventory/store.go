package inventory

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Spok95/supply-bot/internal/backend"
	"github.com/Spok95/supply-bot/internal/domain/supplies"
	"github.com/Spok95/supply-bot/internal/infra/metrics"
)

const (
	MsgAdded      = "Cantidad agregada exitosamente"
	MsgSubtracted = "Cantidad restada exitosamente"

	DefaultFeedbackTTL = 5 * time.Second
)

type Action string

const (
	ActionAdd      Action = "add"
	ActionSubtract Action = "subtract"
)

// Source: то, что Store нужно от бэкенда.
type Source interface {
	ListSupplies(ctx context.Context, f backend.ListFilter) ([]supplies.Supply, error)
	AddVariantStock(ctx context.Context, supplyID int64, op supplies.VariantQuantityOperation) error
	SubtractVariantStock(ctx context.Context, supplyID int64, op supplies.VariantQuantityOperation) error
}

// State: снимок для отрисовки. Filtered и Categories считаются из Supplies и фильтров.
type State struct {
	Supplies       []supplies.Supply
	Filtered       []supplies.Supply
	Categories     []string
	Loading        bool
	Error          string
	SuccessMessage string
	SearchTerm     string
	CategoryFilter string
}

// Store держит список материалов, фильтры и флаги одного экрана (одного чата).
// Список никогда не правится локально: после изменения остатка всегда перечитываем.
type Store struct {
	src         Source
	log         *slog.Logger
	metrics     *metrics.Metrics
	feedbackTTL time.Duration

	mu             sync.Mutex
	list           []supplies.Supply
	searchTerm     string
	categoryFilter string
	loading        bool
	errMsg         string
	successMsg     string
	onChange       func(State)

	// refreshSeq: публикует результат только последний начатый Refresh
	refreshSeq uint64
	// feedbackGen: сработавший, но уже заменённый таймер ничего не чистит
	feedbackGen uint64
	timer       *time.Timer
	closed      bool
}

func New(src Source, log *slog.Logger, m *metrics.Metrics, feedbackTTL time.Duration) *Store {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if feedbackTTL <= 0 {
		feedbackTTL = DefaultFeedbackTTL
	}
	return &Store{
		src:            src,
		log:            log,
		metrics:        m,
		feedbackTTL:    feedbackTTL,
		categoryFilter: supplies.AllCategories,
	}
}

// OnChange вызывается после каждого изменения состояния, вне блокировки.
func (s *Store) OnChange(fn func(State)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	list := append([]supplies.Supply(nil), s.list...)
	return State{
		Supplies:       list,
		Filtered:       supplies.Apply(list, s.searchTerm, s.categoryFilter),
		Categories:     supplies.Categories(list),
		Loading:        s.loading,
		Error:          s.errMsg,
		SuccessMessage: s.successMsg,
		SearchTerm:     s.searchTerm,
		CategoryFilter: s.categoryFilter,
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	fn := s.onChange
	var st State
	if fn != nil {
		st = s.snapshotLocked()
	}
	s.mu.Unlock()
	if fn != nil {
		fn(st)
	}
}

// Refresh перечитывает весь список. Ошибка попадает в Error и возвращается.
// Если за время запроса начался более новый Refresh, результат выбрасывается.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.refreshSeq++
	seq := s.refreshSeq
	s.loading = true
	s.clearErrorLocked()
	s.mu.Unlock()
	s.notify()

	list, err := s.src.ListSupplies(ctx, backend.ListFilter{})
	s.metrics.ObserveRefresh(len(list), err)

	s.mu.Lock()
	if seq != s.refreshSeq {
		s.mu.Unlock()
		s.log.Debug("stale refresh dropped", "seq", seq)
		return err
	}
	s.loading = false
	if err != nil {
		s.setErrorLocked(err.Error())
	} else {
		s.list = list
	}
	s.mu.Unlock()
	if err != nil {
		s.log.Error("refresh supplies failed", "err", err)
	}
	s.notify()
	return err
}

// AddQuantity приходует количество на вариант и перечитывает список.
// Ошибка бэкенда попадает в Error и возвращается вызывающему (форма остаётся открытой).
func (s *Store) AddQuantity(ctx context.Context, supplyID int64, op supplies.VariantQuantityOperation) error {
	return s.adjust(ctx, ActionAdd, supplyID, op)
}

// SubtractQuantity списывает количество с варианта и перечитывает список.
func (s *Store) SubtractQuantity(ctx context.Context, supplyID int64, op supplies.VariantQuantityOperation) error {
	return s.adjust(ctx, ActionSubtract, supplyID, op)
}

func (s *Store) adjust(ctx context.Context, action Action, supplyID int64, op supplies.VariantQuantityOperation) error {
	s.mu.Lock()
	s.clearErrorLocked()
	s.mu.Unlock()
	s.notify()

	var (
		err error
		msg string
	)
	switch action {
	case ActionAdd:
		err = s.src.AddVariantStock(ctx, supplyID, op)
		msg = MsgAdded
	default:
		err = s.src.SubtractVariantStock(ctx, supplyID, op)
		msg = MsgSubtracted
	}
	s.metrics.ObserveAdjustment(string(action), err)

	if err != nil {
		s.log.Error("stock adjustment failed",
			"action", action, "supply_id", supplyID, "color_id", op.ColorID, "qty", op.Quantity, "err", err)
		s.mu.Lock()
		s.setErrorLocked(err.Error())
		s.mu.Unlock()
		s.notify()
		return err
	}

	s.mu.Lock()
	s.setSuccessLocked(msg)
	s.mu.Unlock()
	s.notify()

	// ошибка перечитывания уже лежит в Error, сама операция прошла
	_ = s.Refresh(ctx)
	return nil
}

func (s *Store) SetSearchTerm(term string) {
	s.mu.Lock()
	s.searchTerm = term
	s.mu.Unlock()
	s.notify()
}

func (s *Store) SetCategoryFilter(category string) {
	if category == "" {
		category = supplies.AllCategories
	}
	s.mu.Lock()
	s.categoryFilter = category
	s.mu.Unlock()
	s.notify()
}

func (s *Store) ClearMessages() {
	s.mu.Lock()
	s.errMsg, s.successMsg = "", ""
	s.rearmLocked()
	s.mu.Unlock()
	s.notify()
}

// Close гасит таймер сообщений; после Close сообщения больше не истекают сами.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.feedbackGen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

/* feedback */

func (s *Store) setErrorLocked(msg string) {
	s.errMsg = msg
	s.rearmLocked()
}

func (s *Store) setSuccessLocked(msg string) {
	s.successMsg = msg
	s.rearmLocked()
}

func (s *Store) clearErrorLocked() {
	if s.errMsg == "" {
		return
	}
	s.errMsg = ""
	s.rearmLocked()
}

// rearmLocked заменяет таймер: один на Store, отсчёт заново от последнего сообщения.
func (s *Store) rearmLocked() {
	if s.closed {
		return
	}
	s.feedbackGen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.errMsg == "" && s.successMsg == "" {
		return
	}
	gen := s.feedbackGen
	s.timer = time.AfterFunc(s.feedbackTTL, func() { s.expire(gen) })
}

func (s *Store) expire(gen uint64) {
	s.mu.Lock()
	if gen != s.feedbackGen {
		s.mu.Unlock()
		return
	}
	s.errMsg, s.successMsg = "", ""
	s.timer = nil
	s.mu.Unlock()
	s.notify()
}
