package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/hyunwoo-dev/elkmart/internal/domain"
	"github.com/hyunwoo-dev/elkmart/internal/logging"
)

type accountService interface {
	Deposit(ctx context.Context, userID uuid.UUID, amount int64, occurredOn time.Time) (*domain.LedgerEntry, error)
	Withdraw(ctx context.Context, userID uuid.UUID, amount int64, occurredOn time.Time) (*domain.LedgerEntry, error)
	GetBalance(ctx context.Context, userID uuid.UUID) (*domain.Account, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.LedgerEntry, int, error)
}

type AccountHandler struct {
	accounts accountService
}

func NewAccountHandler(accounts accountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

type moneyRequest struct {
	Amount     string `json:"amount"`
	OccurredOn string `json:"occurred_on"`
}

func (r moneyRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Amount == "" {
		errs = append(errs, FieldError{Field: "amount", Message: "required"})
	}
	if r.OccurredOn != "" {
		if _, err := time.Parse("2006-01-02", r.OccurredOn); err != nil {
			errs = append(errs, FieldError{Field: "occurred_on", Message: "must be YYYY-MM-DD"})
		}
	}
	return errs
}

func (r moneyRequest) occurredOn() time.Time {
	if r.OccurredOn == "" {
		return time.Now().UTC()
	}
	parsed, _ := time.Parse("2006-01-02", r.OccurredOn)
	return parsed
}

type ledgerEntryDTO struct {
	ID            uuid.UUID `json:"id"`
	Kind          string    `json:"kind"`
	Amount        string    `json:"amount"`
	BalanceBefore string    `json:"balance_before"`
	BalanceAfter  string    `json:"balance_after"`
	OccurredOn    time.Time `json:"occurred_on"`
	CreatedAt     time.Time `json:"created_at"`
}

func toLedgerEntryDTO(e *domain.LedgerEntry) ledgerEntryDTO {
	return ledgerEntryDTO{
		ID:            e.ID,
		Kind:          string(e.Kind),
		Amount:        domain.FormatAmount(e.Amount),
		BalanceBefore: domain.FormatAmount(e.BalanceBefore),
		BalanceAfter:  domain.FormatAmount(e.BalanceAfter),
		OccurredOn:    e.OccurredOn,
		CreatedAt:     e.CreatedAt,
	}
}

func (h *AccountHandler) mutate(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, userID uuid.UUID, amount int64, occurredOn time.Time) (*domain.LedgerEntry, error),
) {
	userID, appErr := ownerFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req moneyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	entry, err := op(r.Context(), userID, amount, req.occurredOn())
	if err != nil {
		logging.FromContext(r.Context()).Error("balance mutation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toLedgerEntryDTO(entry))
}

func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.accounts.Deposit)
}

func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.accounts.Withdraw)
}

func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	userID, appErr := ownerFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	account, err := h.accounts.GetBalance(r.Context(), userID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to fetch balance", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]any{
		"account_id": account.ID,
		"balance":    domain.FormatAmount(account.Balance),
	})
}

func (h *AccountHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	userID, appErr := ownerFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	limit := queryInt(r, "limit", 20, 100)
	offset := queryInt(r, "offset", 0, 1<<30)

	entries, total, err := h.accounts.ListTransactions(r.Context(), userID, limit, offset)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list transactions", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]ledgerEntryDTO, len(entries))
	for i := range entries {
		dtos[i] = toLedgerEntryDTO(&entries[i])
	}

	RespondSuccess(w, http.StatusOK, map[string]any{
		"transactions": dtos,
		"total":        total,
		"limit":        limit,
		"offset":       offset,
	})
}

func queryInt(r *http.Request, key string, def, max int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}
