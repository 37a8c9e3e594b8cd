package tools

import (
	"errors"

	"github.com/LeJamon/rwaxrpl/internal/errs"
)

// Status tags a Result.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Result is the tagged outcome of a tool call.
type Result struct {
	Status Status     `json:"status"`
	Data   any        `json:"data,omitempty"`
	Error  *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo is the structured form of an error.
type ErrorInfo struct {
	Kind    errs.Kind      `json:"kind"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// OK reports whether the call succeeded.
func (r Result) OK() bool { return r.Status == StatusSuccess }

// Success wraps data.
func Success(data any) Result {
	return Result{Status: StatusSuccess, Data: data}
}

// Failure converts err into an error Result.
func Failure(err error) Result {
	return Result{Status: StatusError, Error: &ErrorInfo{
		Kind:    errs.KindOf(err),
		Message: err.Error(),
		Details: details(err),
	}}
}

func details(err error) map[string]any {
	var (
		validation   *errs.ValidationError
		address      *errs.InvalidAddressError
		pair         *errs.InvalidPairError
		insufficient *errs.InsufficientBalanceError
		account      *errs.AccountNotFoundError
		destination  *errs.DestinationNotFoundError
		asset        *errs.AssetNotFoundError
		partial      *errs.PartialCompletionError
		rejection    *errs.LedgerRejectionError
	)
	switch {
	case errors.As(err, &partial):
		d := map[string]any{
			"operation": partial.Operation,
			"completed": partial.Completed,
			"failed":    partial.Failed,
		}
		if errors.As(partial.Cause, &rejection) {
			d["code"] = rejection.Code
			d["remediation"] = rejection.Remediation
		}
		return d
	case errors.As(err, &validation):
		return map[string]any{"field": validation.Field, "reason": validation.Reason}
	case errors.As(err, &address):
		return map[string]any{"address": address.Address}
	case errors.As(err, &pair):
		return map[string]any{"asset1": pair.Asset1, "asset2": pair.Asset2, "reason": pair.Reason}
	case errors.As(err, &insufficient):
		return map[string]any{
			"asset":     insufficient.Asset,
			"available": insufficient.Available.String(),
			"requested": insufficient.Requested.String(),
			"shortfall": insufficient.Shortfall().String(),
		}
	case errors.As(err, &account):
		return map[string]any{"account": account.Account}
	case errors.As(err, &destination):
		return map[string]any{"account": destination.Account}
	case errors.As(err, &asset):
		return map[string]any{"assetId": asset.AssetID}
	case errors.As(err, &rejection):
		return map[string]any{"code": rejection.Code, "remediation": rejection.Remediation, "hash": rejection.Hash}
	}
	return nil
}
