package services

import (
	"sync"
	"sync/atomic"

	"inventoritoko/internal/history"
	"inventoritoko/internal/models"

	"go.uber.org/zap"
)

// HistoryAPI is the part of the REST client the history screen needs.
type HistoryAPI interface {
	PurchaseHistory() ([]byte, error)
}

// HistoryService fetches and decodes the purchase history.
type HistoryService struct {
	api    HistoryAPI
	logger *zap.Logger

	mu    sync.RWMutex
	items []models.PurchaseHistoryItem

	loading atomic.Bool
	errMsg  Slot[string]
}

// NewHistoryService creates a HistoryService.
func NewHistoryService(api HistoryAPI, logger *zap.Logger) *HistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryService{api: api, logger: logger, items: []models.PurchaseHistoryItem{}}
}

// FetchHistory loads the history. A body that does not decode is rejected as
// a whole and the previous items are kept.
func (s *HistoryService) FetchHistory() bool {
	s.errMsg.Clear()
	s.loading.Store(true)
	defer s.loading.Store(false)

	raw, err := s.api.PurchaseHistory()
	if err != nil {
		msg := failureMessage(err, fetchHistoryText)
		s.errMsg.Set(msg)
		s.logger.Error("fetch history failed", zap.String("message", msg), zap.Error(err))
		return false
	}
	items, err := history.Decode(raw)
	if err != nil {
		s.errMsg.Set(ParseHistoryFailed)
		s.logger.Error("decode history failed", zap.Int("bytes", len(raw)), zap.Error(err))
		return false
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	s.logger.Debug("history fetched", zap.Int("items", len(items)))
	return true
}

// Items returns the decoded rows in server order.
func (s *HistoryService) Items() []models.PurchaseHistoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.PurchaseHistoryItem(nil), s.items...)
}

// Transactions returns the rows grouped by transaction.
func (s *HistoryService) Transactions() []history.Transaction {
	return history.Group(s.Items())
}

// Loading reports whether a fetch is in flight.
func (s *HistoryService) Loading() bool { return s.loading.Load() }

// Error returns the pending error message.
func (s *HistoryService) Error() (string, bool) { return s.errMsg.Get() }

// ClearError acknowledges the error message.
func (s *HistoryService) ClearError() bool { return s.errMsg.Clear() }
