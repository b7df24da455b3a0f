package report

import "github.com/shopspring/decimal"

type ContractSummary struct {
	Total           int64           `json:"total" db:"total"`
	Signed          int64           `json:"signed" db:"signed"`
	Unsigned        int64           `json:"unsigned" db:"-"`
	TotalAmount     decimal.Decimal `json:"total_amount" db:"total_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount" db:"remaining_amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount" db:"-"`
}

// complete derives the columns not computed in SQL.
func (s *ContractSummary) complete() {
	s.Unsigned = s.Total - s.Signed
	s.PaidAmount = s.TotalAmount.Sub(s.RemainingAmount)
}

type EventSummary struct {
	Total          int64 `json:"total" db:"total"`
	WithoutSupport int64 `json:"without_support" db:"without_support"`
	WithSupport    int64 `json:"with_support" db:"-"`
	Upcoming       int64 `json:"upcoming" db:"upcoming"`
	Ongoing        int64 `json:"ongoing" db:"-"`
	Past           int64 `json:"past" db:"past"`
}

func (s *EventSummary) complete() {
	s.WithSupport = s.Total - s.WithoutSupport
	s.Ongoing = s.Total - s.Upcoming - s.Past
}

type DepartmentCount struct {
	Department string `json:"department" db:"department"`
	Count      int64  `json:"count" db:"count"`
}

type UserSummary struct {
	Total        int64            `json:"total"`
	ByDepartment map[string]int64 `json:"by_department"`
}
