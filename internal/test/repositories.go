package test

import (
	"context"
	"strconv"
	"sync"
	"time"

	domainErrors "github.com/haidarz/remitbot/internal/domain/errors"
	"github.com/haidarz/remitbot/internal/domain/model"
	"github.com/haidarz/remitbot/internal/domain/repository"
)

// OrderRepositoryStub stores orders in-memory, honoring the same status
// guards the real storage applies.
type OrderRepositoryStub struct {
	mu     sync.Mutex
	ByID   map[int64]*model.Order
	NextID int64
	Err    error

	CreateFn func(context.Context, repository.OrderFields) (*model.Order, error)
	UpdateFn func(context.Context, int64, repository.OrderUpdate) error
}

// NewOrderRepositoryStub constructs the stub with initialized state.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{ByID: make(map[int64]*model.Order), NextID: 1}
}

// Seed inserts an order directly, returning it for convenience.
func (s *OrderRepositoryStub) Seed(order model.Order) *model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order.ID == 0 {
		order.ID = s.NextID
		s.NextID++
	} else if order.ID >= s.NextID {
		s.NextID = order.ID + 1
	}
	if order.Status == "" {
		order.Status = model.OrderStatusNew
	}
	stored := order
	s.ByID[order.ID] = &stored
	return &stored
}

func (s *OrderRepositoryStub) Create(ctx context.Context, fields repository.OrderFields) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, fields)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order := &model.Order{
		ID:            s.NextID,
		CustomerID:    fields.CustomerID,
		Phone:         fields.Phone,
		Network:       fields.Network,
		Amount:        fields.Amount,
		NotifyMessage: fields.NotifyMessage,
		ProofRef:      fields.ProofRef,
		Paid:          fields.Paid,
		Status:        model.OrderStatusNew,
	}
	s.NextID++
	s.ByID[order.ID] = order
	copied := *order
	return &copied, nil
}

func (s *OrderRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.ByID[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *OrderRepositoryStub) OpenByCustomer(ctx context.Context, customerID int64) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, order := range s.ByID {
		if order.CustomerID == customerID && order.Status == model.OrderStatusNew {
			copied := *order
			return &copied, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (s *OrderRepositoryStub) ListRecent(ctx context.Context, limit int) ([]model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Order
	for id := s.NextID - 1; id > 0 && len(result) < limit; id-- {
		if order, ok := s.ByID[id]; ok {
			result = append(result, *order)
		}
	}
	return result, nil
}

func (s *OrderRepositoryStub) Update(ctx context.Context, orderID int64, update repository.OrderUpdate) error {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, orderID, update)
	}
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.ByID[orderID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	switch update.Guard {
	case repository.GuardNew:
		if order.Status != model.OrderStatusNew {
			return domainErrors.ErrConflict
		}
	case repository.GuardUnpaidDone:
		if order.Status != model.OrderStatusDone || order.Paid {
			return domainErrors.ErrConflict
		}
	}
	if update.NotifyMessage != nil {
		order.NotifyMessage = *update.NotifyMessage
	}
	if update.ProofRef != nil {
		order.ProofRef = *update.ProofRef
	}
	if update.TransactionID != nil {
		order.TransactionID = *update.TransactionID
	}
	if update.Paid != nil {
		order.Paid = *update.Paid
	}
	if update.ActivationCode != nil {
		order.ActivationCode = *update.ActivationCode
	}
	if update.CustomerMsg != nil {
		order.CustomerMsg = *update.CustomerMsg
	}
	if update.MerchantMsg != nil {
		order.MerchantMsg = *update.MerchantMsg
	}
	return nil
}

func (s *OrderRepositoryStub) SetStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.ByID[orderID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if order.Status != model.OrderStatusNew {
		return domainErrors.ErrConflict
	}
	order.Status = status
	return nil
}

// MessageRepositoryStub keeps ephemeral handles in memory.
type MessageRepositoryStub struct {
	mu      sync.Mutex
	Handles map[int64]map[model.Party][]model.Handle
	Err     error
}

// NewMessageRepositoryStub constructs the stub with initialized maps.
func NewMessageRepositoryStub() *MessageRepositoryStub {
	return &MessageRepositoryStub{Handles: make(map[int64]map[model.Party][]model.Handle)}
}

func (s *MessageRepositoryStub) Append(ctx context.Context, orderID int64, party model.Party, handle model.Handle) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Handles[orderID] == nil {
		s.Handles[orderID] = make(map[model.Party][]model.Handle)
	}
	s.Handles[orderID][party] = append(s.Handles[orderID][party], handle)
	return nil
}

func (s *MessageRepositoryStub) ListByOrder(ctx context.Context, orderID int64) (map[model.Party][]model.Handle, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make(map[model.Party][]model.Handle)
	for party, handles := range s.Handles[orderID] {
		result[party] = append([]model.Handle(nil), handles...)
	}
	return result, nil
}

func (s *MessageRepositoryStub) DeleteByOrder(ctx context.Context, orderID int64) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Handles, orderID)
	return nil
}

// SubscriberRepositoryStub tracks broadcast subscribers for tests.
type SubscriberRepositoryStub struct {
	mu       sync.Mutex
	IDs      []string
	Notified []int64
	Err      error
	MarkErr  error
}

func (s *SubscriberRepositoryStub) Add(ctx context.Context, userID int64) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := strconv.FormatInt(userID, 10)
	for _, existing := range s.IDs {
		if existing == id {
			return nil
		}
	}
	s.IDs = append(s.IDs, id)
	return nil
}

func (s *SubscriberRepositoryStub) ListIDs(ctx context.Context) ([]string, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.IDs...), nil
}

func (s *SubscriberRepositoryStub) List(ctx context.Context) ([]model.Subscriber, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]model.Subscriber, 0, len(s.IDs))
	for _, raw := range s.IDs {
		id, _ := strconv.ParseInt(raw, 10, 64)
		sub := model.Subscriber{UserID: id}
		for _, notified := range s.Notified {
			if notified == id {
				now := time.Now()
				sub.LastNotified = &now
				break
			}
		}
		result = append(result, sub)
	}
	return result, nil
}

func (s *SubscriberRepositoryStub) Count(ctx context.Context) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.IDs)), nil
}

func (s *SubscriberRepositoryStub) MarkNotified(ctx context.Context, userID int64) error {
	if s.MarkErr != nil {
		return s.MarkErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Notified = append(s.Notified, userID)
	return nil
}

// NotifiedCount returns how many successful notifications were recorded.
func (s *SubscriberRepositoryStub) NotifiedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Notified)
}
