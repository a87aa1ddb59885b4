package marketplace

import (
	"time"

	"github.com/google/uuid"
)

// Storage key for exchange history. One shared collection, filtered per user
// at read time like posted books.
const keyExchangeHistory = "exchangeHistory"

// HistoryService manages the exchange-history collection.
type HistoryService struct {
	col *Collection[ExchangeRecord]
}

// NewHistoryService binds the service to its storage key.
func NewHistoryService(store *Store) *HistoryService {
	return &HistoryService{col: NewCollection[ExchangeRecord](store, keyExchangeHistory)}
}

// Record appends a new exchange record, assigning its id and timestamp. An
// empty status defaults to pending.
func (s *HistoryService) Record(rec ExchangeRecord) (ExchangeRecord, error) {
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now().UTC()
	if rec.Status == "" {
		rec.Status = ExchangePending
	}
	if err := s.col.Append(rec); err != nil {
		return ExchangeRecord{}, err
	}
	return rec, nil
}

// ForUser returns the records belonging to userID, newest first.
func (s *HistoryService) ForUser(userID string) ([]ExchangeRecord, error) {
	records, err := s.col.Filter(func(r ExchangeRecord) bool { return r.UserID == userID })
	if err != nil {
		return nil, err
	}
	// Stored order is append order; flip so recent exchanges come first.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// UpdateStatus moves the record with id to the given status.
func (s *HistoryService) UpdateStatus(id, status string) error {
	if status != ExchangePending && status != ExchangeCompleted && status != ExchangeCancelled {
		return &ValidationError{Fields: map[string]string{"status": "must be pending, completed or cancelled"}}
	}
	return s.col.Update(
		func(r ExchangeRecord) bool { return r.ID == id },
		func(r ExchangeRecord) ExchangeRecord {
			r.Status = status
			return r
		},
	)
}
