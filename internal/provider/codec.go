package provider

import (
	"encoding/json"
	"fmt"

	"github.com/seenimoa/divlens/pkg/models"
)

// EncodePayload serializes a category payload to plain JSON for persistence.
func EncodePayload(data any) (json.RawMessage, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return raw, nil
}

// DecodePayload rebuilds the category's model type from persisted JSON.
//
//	overview  -> *models.CompanyOverview
//	dividends -> []models.DividendRecord
//	income    -> []models.IncomeStatement
//	balance   -> []models.BalanceSheet
//	cashflow  -> []models.CashFlow
//	earnings  -> *models.EarningsData
//
// Lists decode to non-nil slices so an empty success stays distinct from nil.
func DecodePayload(c Category, raw json.RawMessage) (any, error) {
	var (
		out any
		err error
	)
	switch c {
	case CategoryOverview:
		var v models.CompanyOverview
		err = json.Unmarshal(raw, &v)
		out = &v
	case CategoryDividends:
		v := []models.DividendRecord{}
		err = json.Unmarshal(raw, &v)
		out = nonNil(v)
	case CategoryIncome:
		v := []models.IncomeStatement{}
		err = json.Unmarshal(raw, &v)
		out = nonNil(v)
	case CategoryBalance:
		v := []models.BalanceSheet{}
		err = json.Unmarshal(raw, &v)
		out = nonNil(v)
	case CategoryCashFlow:
		v := []models.CashFlow{}
		err = json.Unmarshal(raw, &v)
		out = nonNil(v)
	case CategoryEarnings:
		var v models.EarningsData
		err = json.Unmarshal(raw, &v)
		if v.Annual == nil {
			v.Annual = []models.AnnualEarnings{}
		}
		if v.Quarterly == nil {
			v.Quarterly = []models.QuarterlyEarnings{}
		}
		out = &v
	default:
		return nil, &ErrUnknownCategory{Value: string(c)}
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", c, err)
	}
	return out, nil
}

// nonNil turns a JSON null into an empty slice.
func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
