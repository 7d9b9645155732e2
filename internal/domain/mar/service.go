package mar

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect/internal/platform/apperr"
	"github.com/careconnect/careconnect/internal/platform/realtime"
)

const table = "mar_orders"

type Service struct {
	orders  OrderRepository
	pub     realtime.Publisher
	metrics *Metrics
	now     func() time.Time
}

func NewService(orders OrderRepository, pub realtime.Publisher, metrics *Metrics) *Service {
	return &Service{orders: orders, pub: pub, metrics: metrics, now: time.Now}
}

func (s *Service) publish(ctx context.Context, op string, o *Order) {
	if s.pub == nil {
		return
	}
	_ = s.pub.Publish(ctx, realtime.Change{
		Table:     table,
		Op:        op,
		RecordID:  o.ID.String(),
		PatientID: o.PatientID.String(),
	})
}

func (s *Service) CreateOrder(ctx context.Context, in NewOrderInput, createdBy *uuid.UUID) (*Order, error) {
	o, err := NewOrder(in)
	if err != nil {
		return nil, err
	}
	o.CreatedBy = createdBy
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create medication order: %w", err)
	}
	s.publish(ctx, realtime.OpInsert, o)
	return o, nil
}

func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context, patientID uuid.UUID, f OrderFilter, limit, offset int) ([]*Order, int, error) {
	if f.Status != "" && f.Status != StatusPending && f.Status != StatusCompleted {
		return nil, 0, apperr.Validation("status", "must be pending or completed")
	}
	return s.orders.ListByPatient(ctx, patientID, f, limit, offset)
}

// checkVersion rejects a request made against a stale copy of the order.
// A zero version means the client did not send one.
func checkVersion(o *Order, clientVersion int) error {
	if clientVersion != 0 && clientVersion != o.Version {
		return apperr.Conflict("medication order is at version %d, request was for version %d; reload and try again",
			o.Version, clientVersion)
	}
	return nil
}

// AdministerInput toggles one dose slot.
type AdministerInput struct {
	Index   int
	Given   bool
	Nurse   string
	Version int
}

// Administer records or clears one dose and persists the order with an
// optimistic version check.
func (s *Service) Administer(ctx context.Context, id uuid.UUID, in AdministerInput) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(o, in.Version); err != nil {
		return nil, err
	}

	expected := o.Version
	wasCompleted := o.IsCompleted
	if err := o.Administer(in.Index, in.Given, in.Nurse, s.now()); err != nil {
		return nil, err
	}
	if err := s.orders.Update(ctx, o, expected); err != nil {
		return nil, err
	}

	s.metrics.observe(in.Given, o.IsCompleted && !wasCompleted)
	s.publish(ctx, realtime.OpUpdate, o)
	return o, nil
}

// EditOrder applies p to a pending order.
func (s *Service) EditOrder(ctx context.Context, id uuid.UUID, p Patch, version int) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(o, version); err != nil {
		return nil, err
	}
	expected := o.Version
	if err := o.Edit(p); err != nil {
		return nil, err
	}
	if err := s.orders.Update(ctx, o, expected); err != nil {
		return nil, err
	}
	s.publish(ctx, realtime.OpUpdate, o)
	return o, nil
}

// DeleteOrder removes an order. Completed orders need force.
func (s *Service) DeleteOrder(ctx context.Context, id uuid.UUID, force bool) error {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := o.CheckDelete(force); err != nil {
		return err
	}
	if err := s.orders.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, realtime.OpDelete, o)
	return nil
}

// ParseIndex converts a path segment to a dose index.
func ParseIndex(raw string) (int, error) {
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation("dose_index", "must be a number")
	}
	return i, nil
}
