package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/ports"
)

// DefaultPageSize is the number of ledger rows per page.
const DefaultPageSize = 10

// Totals is the unsigned sum of amounts per transaction type over one range.
type Totals map[core.TransactionType]decimal.Decimal

// LedgerPage is one slice of the date-grouped ledger.
type LedgerPage struct {
	Ledger     core.GroupedLedger
	Offset     int
	NextOffset int
	HasMore    bool
}

// Dashboard is everything the dashboard page renders.
type Dashboard struct {
	Selector string
	Range    core.DateRange
	Trends   []core.TrendSummary
	Page     LedgerPage
	// Demo is set for anonymous visitors, who see fixed sample data.
	Demo bool
}

type DashboardService struct {
	store    ports.TransactionStore
	trends   cache.Store[Totals]
	pageSize int
	logger   *log.Logger
	now      func() time.Time
}

// NewDashboardService wires the service. trends may be nil to disable caching.
func NewDashboardService(store ports.TransactionStore, trends cache.Store[Totals], pageSize int, logger *log.Logger) *DashboardService {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &DashboardService{
		store:    store,
		trends:   trends,
		pageSize: pageSize,
		logger:   logger.WithComponent(log.ComponentDashboard),
		now:      time.Now,
	}
}

func (s *DashboardService) PageSize() int { return s.pageSize }

// Load builds the dashboard for userID. An empty userID yields demo data.
func (s *DashboardService) Load(ctx context.Context, userID, selector string, offset int) (Dashboard, error) {
	selector = core.NormalizeSelector(selector)
	r := core.Resolve(selector, s.now())
	if offset < 0 {
		offset = 0
	}

	if userID == "" {
		return Dashboard{
			Selector: selector,
			Range:    r,
			Trends:   demoTrends(),
			Page:     s.demoPage(offset),
			Demo:     true,
		}, nil
	}

	var (
		page          LedgerPage
		current, prev Totals
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		page, err = s.page(gctx, userID, r, offset)
		return err
	})
	g.Go(func() error {
		var err error
		current, err = s.totals(gctx, userID, r)
		return err
	})
	g.Go(func() error {
		var err error
		prev, err = s.totals(gctx, userID, r.Previous())
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	s.logger.DebugContext(ctx, "Dashboard loaded",
		log.FieldUserID, userID,
		log.FieldSelector, selector,
		log.FieldRange, r.String(),
		log.FieldCount, page.Ledger.Len())

	return Dashboard{
		Selector: selector,
		Range:    r,
		Trends:   core.Summarize(current, prev),
		Page:     page,
	}, nil
}

// Page returns the ledger page starting at offset.
func (s *DashboardService) Page(ctx context.Context, userID, selector string, offset int) (LedgerPage, error) {
	if offset < 0 {
		offset = 0
	}
	if userID == "" {
		return s.demoPage(offset), nil
	}
	r := core.Resolve(core.NormalizeSelector(selector), s.now())
	return s.page(ctx, userID, r, offset)
}

// Chart returns every transaction in the selected range grouped by day.
func (s *DashboardService) Chart(ctx context.Context, userID, selector string) (core.GroupedLedger, core.DateRange, error) {
	r := core.Resolve(core.NormalizeSelector(selector), s.now())
	if userID == "" {
		return core.GroupByDate(demoTransactions()), r, nil
	}
	txs, err := s.store.FetchTransactions(ctx, userID, r, 0, 0)
	if err != nil {
		return nil, r, fmt.Errorf("fetch chart data: %w", err)
	}
	return core.GroupByDate(txs), r, nil
}

// page fetches one row beyond the page size to learn whether more exist.
func (s *DashboardService) page(ctx context.Context, userID string, r core.DateRange, offset int) (LedgerPage, error) {
	txs, err := s.store.FetchTransactions(ctx, userID, r, offset, s.pageSize+1)
	if err != nil {
		return LedgerPage{}, fmt.Errorf("fetch transactions: %w", err)
	}
	return makePage(txs, offset, s.pageSize), nil
}

func makePage(txs []core.Transaction, offset, size int) LedgerPage {
	more := len(txs) > size
	if more {
		txs = txs[:size]
	}
	return LedgerPage{
		Ledger:     core.GroupByDate(txs),
		Offset:     offset,
		NextOffset: offset + len(txs),
		HasMore:    more,
	}
}

// guardedTotals is a trend cache that can refuse a write made stale by an
// invalidation that happened while the totals were being computed.
type guardedTotals interface {
	Token() uint64
	SetIfUnchanged(ctx context.Context, key string, value Totals, token uint64) (bool, error)
}

func (s *DashboardService) totals(ctx context.Context, userID string, r core.DateRange) (Totals, error) {
	key := trendKey(userID, r)
	guard, guarded := s.trends.(guardedTotals)
	var token uint64
	if guarded {
		token = guard.Token()
	}
	if s.trends != nil {
		cached, ok, err := s.trends.Get(ctx, key)
		if err != nil {
			s.logger.WarnContext(ctx, "Trend cache read failed", "key", key, log.FieldError, err)
		} else if ok {
			return cached, nil
		}
	}

	txs, err := s.store.FetchTransactions(ctx, userID, r, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("fetch totals for %s: %w", r, err)
	}
	totals := Totals(core.SumByType(txs))

	switch {
	case guarded:
		var stored bool
		stored, err = guard.SetIfUnchanged(ctx, key, totals, token)
		if err == nil && !stored {
			s.logger.DebugContext(ctx, "Trend cache write skipped after invalidation", "key", key)
		}
	case s.trends != nil:
		err = s.trends.Set(ctx, key, totals)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "Trend cache write failed", "key", key, log.FieldError, err)
	}
	return totals, nil
}

func (s *DashboardService) demoPage(offset int) LedgerPage {
	txs := demoTransactions()
	if offset >= len(txs) {
		return makePage(nil, offset, s.pageSize)
	}
	end := offset + s.pageSize + 1
	if end > len(txs) {
		end = len(txs)
	}
	return makePage(txs[offset:end], offset, s.pageSize)
}

func trendKeyPrefix(userID string) string {
	return "trends:" + userID + ":"
}

func trendKey(userID string, r core.DateRange) string {
	return trendKeyPrefix(userID) + r.String()
}
