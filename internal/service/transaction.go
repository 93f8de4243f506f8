package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/centsible/centsible-go/internal/cache"
	"github.com/centsible/centsible-go/internal/model"
	"github.com/centsible/centsible-go/internal/repository"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// TransactionStore is the slice of the transaction repository the
// transaction service needs.
type TransactionStore interface {
	Create(ctx context.Context, t *model.Transaction) error
	GetByID(ctx context.Context, id string) (*model.Transaction, error)
	Update(ctx context.Context, t *model.Transaction) error
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID, search string, limit, offset int64) ([]model.Transaction, error)
	CountByUser(ctx context.Context, userID, search string) (int64, error)
}

// ListQuery carries the pagination and search parameters of a listing.
type ListQuery struct {
	Page   int
	Limit  int
	Search string
}

// TransactionService handles transaction business logic. Every write
// invalidates the owner's cached reports so analytics never serve
// stale aggregates.
type TransactionService struct {
	store   TransactionStore
	reports cache.Store
	logger  *slog.Logger
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(store TransactionStore, reports cache.Store, logger *slog.Logger) *TransactionService {
	return &TransactionService{store: store, reports: reports, logger: logger}
}

// Create records a new transaction owned by userID.
func (s *TransactionService) Create(ctx context.Context, userID string, req model.TransactionRequest) (model.TransactionResponse, error) {
	if err := validateStruct(req); err != nil {
		return model.TransactionResponse{}, err
	}

	date, err := model.ParseDate(req.Date)
	if err != nil {
		return model.TransactionResponse{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	t := &model.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        model.TransactionType(req.Type),
		AmountCents: model.AmountToCents(req.Amount),
		Description: req.Description,
		Category:    req.Category,
		Date:        date,
	}

	if err := s.store.Create(ctx, t); err != nil {
		return model.TransactionResponse{}, err
	}

	s.invalidateReports(ctx, userID)
	return t.Response(), nil
}

// Get returns a single transaction. Non-admins only see their own;
// anything else reads as not found so IDs cannot be probed.
func (s *TransactionService) Get(ctx context.Context, p model.Principal, id string) (model.TransactionResponse, error) {
	t, err := s.fetchOwned(ctx, p, id)
	if err != nil {
		return model.TransactionResponse{}, err
	}
	return t.Response(), nil
}

// List returns one page of the user's transactions, newest first,
// optionally filtered by a substring match on description or category.
func (s *TransactionService) List(ctx context.Context, userID string, q ListQuery) (model.TransactionList, error) {
	if q.Page < 1 {
		q.Page = defaultPage
	}
	if q.Limit < 1 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}

	offset := int64(q.Page-1) * int64(q.Limit)

	items, err := s.store.ListByUser(ctx, userID, q.Search, int64(q.Limit), offset)
	if err != nil {
		return model.TransactionList{}, err
	}

	total, err := s.store.CountByUser(ctx, userID, q.Search)
	if err != nil {
		return model.TransactionList{}, err
	}

	totalPages := int(total) / q.Limit
	if int(total)%q.Limit != 0 {
		totalPages++
	}

	// Pre-sized non-nil slice so an empty page serializes as [].
	out := make([]model.TransactionResponse, 0, len(items))
	for i := range items {
		out = append(out, items[i].Response())
	}

	return model.TransactionList{
		Transactions: out,
		Pagination: model.Pagination{
			Page:       q.Page,
			Limit:      q.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// Update replaces the mutable fields of a transaction. Ownership rules
// match Get.
func (s *TransactionService) Update(ctx context.Context, p model.Principal, id string, req model.TransactionRequest) (model.TransactionResponse, error) {
	if err := validateStruct(req); err != nil {
		return model.TransactionResponse{}, err
	}

	date, err := model.ParseDate(req.Date)
	if err != nil {
		return model.TransactionResponse{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	t, err := s.fetchOwned(ctx, p, id)
	if err != nil {
		return model.TransactionResponse{}, err
	}

	t.Type = model.TransactionType(req.Type)
	t.AmountCents = model.AmountToCents(req.Amount)
	t.Description = req.Description
	t.Category = req.Category
	t.Date = date

	if err := s.store.Update(ctx, t); err != nil {
		return model.TransactionResponse{}, err
	}

	s.invalidateReports(ctx, t.UserID)
	return t.Response(), nil
}

// Delete removes a transaction. Ownership rules match Get.
func (s *TransactionService) Delete(ctx context.Context, p model.Principal, id string) error {
	t, err := s.fetchOwned(ctx, p, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, t.ID); err != nil {
		return err
	}

	s.invalidateReports(ctx, t.UserID)
	return nil
}

// fetchOwned loads a transaction and enforces ownership: admins reach
// every row, everyone else only their own. Foreign rows surface as
// ErrTransactionNotFound, never as a permission error.
func (s *TransactionService) fetchOwned(ctx context.Context, p model.Principal, id string) (*model.Transaction, error) {
	t, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.UserID != p.UserID && p.Role != model.RoleAdmin {
		return nil, repository.ErrTransactionNotFound
	}
	return t, nil
}

// invalidateReports drops the owner's cached overview and detailed
// reports. Failures are logged and swallowed: the write already
// happened, and stale entries die with their TTL.
func (s *TransactionService) invalidateReports(ctx context.Context, userID string) {
	for _, prefix := range []string{overviewKey(userID), analyticsPrefix(userID)} {
		if err := s.reports.Invalidate(ctx, prefix); err != nil {
			s.logger.Warn("report cache invalidation failed",
				slog.String("prefix", prefix),
				slog.String("error", err.Error()))
		}
	}
}
