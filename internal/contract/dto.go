package contract

import (
	"github.com/frahmantamala/epic-events-crm/internal"
	"github.com/frahmantamala/epic-events-crm/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

type CreateContractDTO struct {
	ClientID    int64           `json:"client_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	// RemainingAmount defaults to TotalAmount.
	RemainingAmount *decimal.Decimal `json:"remaining_amount,omitempty"`
	IsSigned        bool             `json:"is_signed"`
}

func (d CreateContractDTO) Remaining() decimal.Decimal {
	if d.RemainingAmount == nil {
		return d.TotalAmount
	}
	return *d.RemainingAmount
}

func (d CreateContractDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("client_id", d.ClientID).Required()
	v.Field("total_amount", d.TotalAmount).NonNegative()
	v.Field("remaining_amount", d.Remaining()).NonNegative().Custom(remainingWithin(d.TotalAmount))
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type UpdateContractDTO struct {
	TotalAmount     *decimal.Decimal `json:"total_amount,omitempty"`
	RemainingAmount *decimal.Decimal `json:"remaining_amount,omitempty"`
}

func (d UpdateContractDTO) Empty() bool {
	return d.TotalAmount == nil && d.RemainingAmount == nil
}

// Apply returns the amounts that would result from the update.
func (d UpdateContractDTO) Apply(c *Contract) (total, remaining decimal.Decimal) {
	total, remaining = c.TotalAmount, c.RemainingAmount
	if d.TotalAmount != nil {
		total = *d.TotalAmount
	}
	if d.RemainingAmount != nil {
		remaining = *d.RemainingAmount
	}
	return total, remaining
}

func validateAmounts(total, remaining decimal.Decimal) error {
	v := validation.NewValidator()
	v.Field("total_amount", total).NonNegative()
	v.Field("remaining_amount", remaining).NonNegative().Custom(remainingWithin(total))
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type PaymentDTO struct {
	Amount decimal.Decimal `json:"amount"`
}

func (d PaymentDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("amount", d.Amount).Positive()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func remainingWithin(total decimal.Decimal) func(interface{}) *internal.AppError {
	return func(value interface{}) *internal.AppError {
		if remaining, ok := value.(decimal.Decimal); ok && remaining.GreaterThan(total) {
			return internal.NewValidationFieldError("remaining_amount", "remaining amount cannot exceed total amount", internal.ErrCodeRemainingExceeds)
		}
		return nil
	}
}

// Filter narrows a contract listing. Zero values mean "no constraint".
type Filter struct {
	Signed       *bool
	Unpaid       bool
	CommercialID int64
	ClientName   string
	MinAmount    *decimal.Decimal
	MaxAmount    *decimal.Decimal
}
