// Package errs holds the error taxonomy shared by every operation. Each error
// type reports a Kind so the tool boundary can tag results without string
// matching.
package errs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind identifies the category of a failure.
type Kind string

const (
	KindValidation          Kind = "ValidationError"
	KindInsufficientBalance Kind = "InsufficientBalanceError"
	KindAccountNotFound     Kind = "AccountNotFoundError"
	KindAssetNotFound       Kind = "AssetNotFoundError"
	KindDestinationNotFound Kind = "DestinationNotFoundError"
	KindInvalidAddress      Kind = "InvalidAddressError"
	KindInvalidPair         Kind = "InvalidPairError"
	KindLedgerRejection     Kind = "LedgerRejectionError"
	KindPartialCompletion   Kind = "PartialCompletionError"
	KindInternal            Kind = "InternalError"
)

// Kinded is implemented by every error in this package.
type Kinded interface {
	error
	Kind() Kind
}

// KindOf returns the Kind of the first Kinded error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var k Kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindInternal
}

// ValidationError reports malformed input detected before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Kind() Kind { return KindValidation }

// Invalid is shorthand for a ValidationError.
func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// InvalidAddressError reports an account identifier that fails format checks.
type InvalidAddressError struct {
	Address string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid address %q: expected a classic address starting with 'r'", e.Address)
}

func (e *InvalidAddressError) Kind() Kind { return KindInvalidAddress }

// InvalidPairError reports an AMM asset pair that cannot form a pool.
type InvalidPairError struct {
	Asset1 string
	Asset2 string
	Reason string
}

func (e *InvalidPairError) Error() string {
	return fmt.Sprintf("invalid asset pair %s/%s: %s", e.Asset1, e.Asset2, e.Reason)
}

func (e *InvalidPairError) Kind() Kind { return KindInvalidPair }

// InsufficientBalanceError reports a shortfall found by a pre-submission check.
type InsufficientBalanceError struct {
	Asset     string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient %s balance: available %s, requested %s (short %s)",
		e.Asset, e.Available.String(), e.Requested.String(), e.Shortfall().String())
}

func (e *InsufficientBalanceError) Kind() Kind { return KindInsufficientBalance }

// Shortfall is the amount missing to satisfy the request.
func (e *InsufficientBalanceError) Shortfall() decimal.Decimal {
	return e.Requested.Sub(e.Available)
}

// AccountNotFoundError reports an account that does not exist on the ledger.
type AccountNotFoundError struct {
	Account string
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account %s not found; fund it with the base reserve to activate it", e.Account)
}

func (e *AccountNotFoundError) Kind() Kind { return KindAccountNotFound }

// DestinationNotFoundError reports a payment destination that does not exist.
type DestinationNotFoundError struct {
	Account string
}

func (e *DestinationNotFoundError) Error() string {
	return fmt.Sprintf("destination account %s not found; it must be funded before receiving tokens", e.Account)
}

func (e *DestinationNotFoundError) Kind() Kind { return KindDestinationNotFound }

// AssetNotFoundError reports an asset id with no tokenization record.
type AssetNotFoundError struct {
	AssetID string
}

func (e *AssetNotFoundError) Error() string {
	return fmt.Sprintf("asset %s not found; verify the asset id (CURRENCY.issuer)", e.AssetID)
}

func (e *AssetNotFoundError) Kind() Kind { return KindAssetNotFound }

// LedgerRejectionError carries a non-success settlement code.
type LedgerRejectionError struct {
	Code        string
	Message     string
	Remediation string
	Hash        string
}

func (e *LedgerRejectionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ledger rejected transaction: %s", e.Code)
	if e.Message != "" {
		b.WriteString(" (" + e.Message + ")")
	}
	if e.Remediation != "" {
		b.WriteString("; " + e.Remediation)
	}
	return b.String()
}

func (e *LedgerRejectionError) Kind() Kind { return KindLedgerRejection }

// Step is one completed unit of a multi-step operation.
type Step struct {
	Name        string `json:"name"`
	Hash        string `json:"hash,omitempty"`
	LedgerIndex uint32 `json:"ledgerIndex,omitempty"`
	Code        string `json:"code,omitempty"`
}

// PartialCompletionError reports a multi-step operation that stopped part way.
// Completed steps are not rolled back.
type PartialCompletionError struct {
	Operation string
	Completed []Step
	Failed    string
	Cause     error
}

func (e *PartialCompletionError) Error() string {
	names := make([]string, 0, len(e.Completed))
	for _, s := range e.Completed {
		names = append(names, s.Name)
	}
	return fmt.Sprintf("%s stopped at step %q after completing [%s]: %v",
		e.Operation, e.Failed, strings.Join(names, ", "), e.Cause)
}

func (e *PartialCompletionError) Kind() Kind { return KindPartialCompletion }

func (e *PartialCompletionError) Unwrap() error { return e.Cause }
