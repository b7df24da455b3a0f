package cmd

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"

	"github.com/frahmantamala/epic-events-crm/internal"
	"github.com/frahmantamala/epic-events-crm/internal/event"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, internal.NewValidationFieldError("id", fmt.Sprintf("%q is not a valid id", s), internal.ErrCodeValidationFailed)
	}
	return id, nil
}

// changedString returns nil unless the flag was set, so updates only touch
// the fields the user named.
func changedString(f *pflag.FlagSet, name string) *string {
	if !f.Changed(name) {
		return nil
	}
	v, _ := f.GetString(name)
	return &v
}

func changedInt64(f *pflag.FlagSet, name string) *int64 {
	if !f.Changed(name) {
		return nil
	}
	v, _ := f.GetInt64(name)
	return &v
}

func changedDecimal(f *pflag.FlagSet, name string) (*decimal.Decimal, error) {
	if !f.Changed(name) {
		return nil, nil
	}
	raw, _ := f.GetString(name)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, internal.NewValidationFieldError(name, fmt.Sprintf("%q is not a valid amount", raw), internal.ErrCodeInvalidAmount)
	}
	return &d, nil
}

func changedTime(f *pflag.FlagSet, name string) (*time.Time, error) {
	if !f.Changed(name) {
		return nil, nil
	}
	raw, _ := f.GetString(name)
	t, err := event.ParseDate(name, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// flagQuery turns the changed flags into query values so the CLI shares the
// HTTP filter parsing. keys maps flag names to query keys.
func flagQuery(f *pflag.FlagSet, keys map[string]string) url.Values {
	q := url.Values{}
	for flag, key := range keys {
		if fl := f.Lookup(flag); fl != nil && fl.Changed {
			q.Set(key, fl.Value.String())
		}
	}
	return q
}
