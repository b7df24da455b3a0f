package contract

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/epic-events-crm/internal"
	"github.com/frahmantamala/epic-events-crm/internal/auth"
	"github.com/frahmantamala/epic-events-crm/internal/client"
	contractDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/contract"
	"github.com/frahmantamala/epic-events-crm/internal/core/events"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound       = errors.New("contract not found")
	ErrPaymentExceeds = errors.New("payment exceeds remaining amount")
)

type RepositoryAPI interface {
	List(ctx context.Context, filter Filter) ([]*contractDatamodel.Contract, error)
	GetByID(ctx context.Context, id int64) (*contractDatamodel.Contract, error)
	Create(ctx context.Context, c *contractDatamodel.Contract) error
	UpdateAmounts(ctx context.Context, id int64, total, remaining decimal.Decimal) error
	MarkSigned(ctx context.Context, id int64) error
	// RecordPayment lowers the remaining amount atomically and returns the
	// updated row, or ErrPaymentExceeds.
	RecordPayment(ctx context.Context, id int64, amount decimal.Decimal) (*contractDatamodel.Contract, error)
	// Delete removes the contract and the events booked against it.
	Delete(ctx context.Context, id int64) error
}

// ClientLoader resolves the client a contract is drawn for.
type ClientLoader interface {
	Load(ctx context.Context, id int64) (*client.Client, error)
}

type Service struct {
	repo      RepositoryAPI
	clients   ClientLoader
	policy    *auth.Policy
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, clients ClientLoader, policy *auth.Policy, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		clients:   clients,
		policy:    policy,
		publisher: publisher,
		logger:    logger,
	}
}

// List applies filter; mine narrows to the actor's own contracts.
func (s *Service) List(ctx context.Context, actor *auth.Actor, filter Filter, mine bool) ([]*Contract, error) {
	if err := s.policy.ViewContracts(ctx, actor).Err(); err != nil {
		return nil, err
	}
	if mine {
		filter.CommercialID = actor.ID
	}
	if filter.MinAmount != nil && filter.MaxAmount != nil && filter.MinAmount.GreaterThan(*filter.MaxAmount) {
		return nil, internal.NewValidationFieldError("min_amount", "min amount cannot exceed max amount", internal.ErrCodeInvalidAmount)
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list contracts", "error", err)
		return nil, internal.NewInternalError("failed to list contracts", err)
	}
	contracts := make([]*Contract, 0, len(rows))
	for _, row := range rows {
		contracts = append(contracts, FromDataModel(row))
	}
	return contracts, nil
}

func (s *Service) Get(ctx context.Context, actor *auth.Actor, id int64) (*Contract, error) {
	if err := s.policy.ViewContracts(ctx, actor).Err(); err != nil {
		return nil, err
	}
	return s.Load(ctx, id)
}

// Load fetches a contract without an authorization check.
func (s *Service) Load(ctx context.Context, id int64) (*Contract, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.ErrContractNotFound
		}
		s.logger.ErrorContext(ctx, "failed to load contract", "error", err, "contract_id", id)
		return nil, internal.NewInternalError("failed to load contract", err)
	}
	return FromDataModel(row), nil
}

// Create draws a contract for a client. The owning salesperson is the
// client's.
func (s *Service) Create(ctx context.Context, actor *auth.Actor, dto CreateContractDTO) (*Contract, error) {
	if dto.ClientID == 0 {
		return nil, internal.NewValidationFieldError("client_id", "client_id is required", internal.ErrCodeValidationFailed)
	}
	c, err := s.clients.Load(ctx, dto.ClientID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CreateContract(ctx, actor, c.CommercialID).Err(); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	contract := &Contract{
		TotalAmount:     dto.TotalAmount,
		RemainingAmount: dto.Remaining(),
		IsSigned:        dto.IsSigned,
		ClientID:        c.ID,
		CommercialID:    c.CommercialID,
	}
	row := ToDataModel(contract)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.ErrorContext(ctx, "failed to create contract", "error", err, "client_id", c.ID)
		return nil, internal.NewInternalError("failed to create contract", err)
	}
	created := FromDataModel(row)

	s.logger.InfoContext(ctx, "contract created", "contract_id", created.ID, "client_id", c.ID, "by", actor.ID)
	events.Record(ctx, s.publisher, s.logger, events.NewAuditEvent(events.EventTypeContractCreated, actor.Ref(), "contract", created.ID,
		map[string]interface{}{"client_id": c.ID, "total_amount": created.TotalAmount.StringFixed(2), "is_signed": created.IsSigned}))
	return created, nil
}

func (s *Service) Update(ctx context.Context, actor *auth.Actor, id int64, dto UpdateContractDTO) (*Contract, error) {
	existing, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.ModifyContract(ctx, actor, auth.ContractUpdate, existing.CommercialID).Err(); err != nil {
		return nil, err
	}
	if dto.Empty() {
		return nil, internal.NewValidationError("nothing to update", internal.ErrCodeValidationFailed)
	}
	total, remaining := dto.Apply(existing)
	if err := validateAmounts(total, remaining); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateAmounts(ctx, id, total, remaining); err != nil {
		return nil, s.writeErr(ctx, "update", id, err)
	}
	existing.TotalAmount, existing.RemainingAmount = total, remaining

	s.logger.InfoContext(ctx, "contract updated", "contract_id", id, "by", actor.ID)
	events.Record(ctx, s.publisher, s.logger, events.NewAuditEvent(events.EventTypeContractUpdated, actor.Ref(), "contract", id,
		map[string]interface{}{"total_amount": total.StringFixed(2), "remaining_amount": remaining.StringFixed(2)}))
	return existing, nil
}

// Sign is idempotent; signing a signed contract records nothing.
func (s *Service) Sign(ctx context.Context, actor *auth.Actor, id int64) (*Contract, error) {
	existing, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.ModifyContract(ctx, actor, auth.ContractSign, existing.CommercialID).Err(); err != nil {
		return nil, err
	}
	if existing.IsSigned {
		return existing, nil
	}

	if err := s.repo.MarkSigned(ctx, id); err != nil {
		return nil, s.writeErr(ctx, "sign", id, err)
	}
	existing.IsSigned = true

	s.logger.InfoContext(ctx, "contract signed", "contract_id", id, "by", actor.ID)
	events.Record(ctx, s.publisher, s.logger, events.NewAuditEvent(events.EventTypeContractSigned, actor.Ref(), "contract", id, nil))
	return existing, nil
}

func (s *Service) Pay(ctx context.Context, actor *auth.Actor, id int64, dto PaymentDTO) (*Contract, error) {
	existing, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.ModifyContract(ctx, actor, auth.ContractPay, existing.CommercialID).Err(); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.RecordPayment(ctx, id, dto.Amount)
	if err != nil {
		if errors.Is(err, ErrPaymentExceeds) {
			return nil, internal.NewValidationFieldError("amount", "payment exceeds remaining amount", internal.ErrCodePaymentExceeds)
		}
		return nil, s.writeErr(ctx, "record payment on", id, err)
	}
	paid := FromDataModel(row)

	s.logger.InfoContext(ctx, "contract payment recorded", "contract_id", id, "amount", dto.Amount.StringFixed(2), "by", actor.ID)
	events.Record(ctx, s.publisher, s.logger, events.NewAuditEvent(events.EventTypeContractPaid, actor.Ref(), "contract", id,
		map[string]interface{}{"amount": dto.Amount.StringFixed(2), "remaining_amount": paid.RemainingAmount.StringFixed(2)}))
	return paid, nil
}

func (s *Service) Delete(ctx context.Context, actor *auth.Actor, id int64) error {
	existing, err := s.Load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.policy.ModifyContract(ctx, actor, auth.ContractDelete, existing.CommercialID).Err(); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.writeErr(ctx, "delete", id, err)
	}

	s.logger.InfoContext(ctx, "contract deleted", "contract_id", id, "by", actor.ID)
	events.Record(ctx, s.publisher, s.logger, events.NewAuditEvent(events.EventTypeContractDeleted, actor.Ref(), "contract", id,
		map[string]interface{}{"client_id": existing.ClientID}))
	return nil
}

func (s *Service) writeErr(ctx context.Context, op string, id int64, err error) error {
	if errors.Is(err, ErrNotFound) {
		return internal.ErrContractNotFound
	}
	s.logger.ErrorContext(ctx, "failed to "+op+" contract", "error", err, "contract_id", id)
	return internal.NewInternalError("failed to "+op+" contract", err)
}
