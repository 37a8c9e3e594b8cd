package ledger

import (
	"strings"

	"github.com/LeJamon/rwaxrpl/internal/errs"
)

// Result is a settlement code as reported by the ledger.
type Result string

// Settlement codes the orchestrators have remediation advice for.
const (
	TesSUCCESS Result = "tesSUCCESS"

	TecPATH_PARTIAL          Result = "tecPATH_PARTIAL"
	TecUNFUNDED_PAYMENT      Result = "tecUNFUNDED_PAYMENT"
	TecINSUF_RESERVE_LINE    Result = "tecINSUF_RESERVE_LINE"
	TecNO_DST                Result = "tecNO_DST"
	TecNO_DST_INSUF_XRP      Result = "tecNO_DST_INSUF_XRP"
	TecNO_LINE_INSUF_RESERVE Result = "tecNO_LINE_INSUF_RESERVE"
	TecPATH_DRY              Result = "tecPATH_DRY"
	TecNO_AUTH               Result = "tecNO_AUTH"
	TecNO_LINE               Result = "tecNO_LINE"
	TecFROZEN                Result = "tecFROZEN"
	TecNO_PERMISSION         Result = "tecNO_PERMISSION"
	TecINSUFFICIENT_RESERVE  Result = "tecINSUFFICIENT_RESERVE"
	TecDST_TAG_NEEDED        Result = "tecDST_TAG_NEEDED"
	TecDUPLICATE             Result = "tecDUPLICATE"
	TecKILLED                Result = "tecKILLED"
	TecUNFUNDED_AMM          Result = "tecUNFUNDED_AMM"
	TecAMM_BALANCE           Result = "tecAMM_BALANCE"
	TecAMM_FAILED            Result = "tecAMM_FAILED"
	TecAMM_INVALID_TOKENS    Result = "tecAMM_INVALID_TOKENS"
	TecAMM_NOT_EMPTY         Result = "tecAMM_NOT_EMPTY"
	TecAMM_EMPTY             Result = "tecAMM_EMPTY"

	TefPAST_SEQ        Result = "tefPAST_SEQ"
	TefMAX_LEDGER      Result = "tefMAX_LEDGER"
	TefBAD_SIGNATURE   Result = "tefBAD_SIGNATURE"
	TefMASTER_DISABLED Result = "tefMASTER_DISABLED"

	TelINSUF_FEE_P Result = "telINSUF_FEE_P"

	TemBAD_AMOUNT     Result = "temBAD_AMOUNT"
	TemBAD_CURRENCY   Result = "temBAD_CURRENCY"
	TemBAD_FEE        Result = "temBAD_FEE"
	TemDST_IS_SRC     Result = "temDST_IS_SRC"
	TemINVALID_FLAG   Result = "temINVALID_FLAG"
	TemDISABLED       Result = "temDISABLED"
	TemBAD_AMM_TOKENS Result = "temBAD_AMM_TOKENS"
	TemREDUNDANT      Result = "temREDUNDANT"

	TerNO_ACCOUNT  Result = "terNO_ACCOUNT"
	TerINSUF_FEE_B Result = "terINSUF_FEE_B"
	TerPRE_SEQ     Result = "terPRE_SEQ"
	TerNO_AMM      Result = "terNO_AMM"
	TerQUEUED      Result = "terQUEUED"
)

func (r Result) String() string { return string(r) }

// IsSuccess returns true if the result indicates success
func (r Result) IsSuccess() bool {
	return r == TesSUCCESS
}

// IsTec returns true if this is a tec (claimed cost) code
func (r Result) IsTec() bool { return strings.HasPrefix(string(r), "tec") }

// IsTef returns true if this is a tef (failure) code
func (r Result) IsTef() bool { return strings.HasPrefix(string(r), "tef") }

// IsTel returns true if this is a tel (local error) code
func (r Result) IsTel() bool { return strings.HasPrefix(string(r), "tel") }

// IsTem returns true if this is a tem (malformed) code
func (r Result) IsTem() bool { return strings.HasPrefix(string(r), "tem") }

// IsTer returns true if this is a ter (retry) code
func (r Result) IsTer() bool { return strings.HasPrefix(string(r), "ter") }

// IsFinalPreliminary reports whether a preliminary submit result already
// guarantees the transaction will never be included in a ledger.
func (r Result) IsFinalPreliminary() bool {
	return r.IsTem() || r.IsTef() || r.IsTel()
}

// Message returns a human-readable message for the result
func (r Result) Message() string {
	switch r {
	case TesSUCCESS:
		return "The transaction was applied. Only final in a validated ledger."
	case TecUNFUNDED_PAYMENT:
		return "Insufficient XRP balance to send."
	case TecNO_DST:
		return "Destination account does not exist."
	case TecNO_DST_INSUF_XRP:
		return "Destination account does not exist. Too little XRP sent to create it."
	case TecINSUFFICIENT_RESERVE:
		return "Insufficient reserve to complete requested operation."
	case TecINSUF_RESERVE_LINE:
		return "Insufficient reserve to add trust line."
	case TecNO_LINE_INSUF_RESERVE:
		return "No such line. Too little reserve to create it."
	case TecDST_TAG_NEEDED:
		return "A destination tag is required."
	case TecNO_AUTH:
		return "Not authorized to hold asset."
	case TecNO_LINE:
		return "No such line."
	case TecFROZEN:
		return "Asset is frozen."
	case TecPATH_DRY:
		return "Path could not send partial amount."
	case TecPATH_PARTIAL:
		return "Path could not send full amount."
	case TecDUPLICATE:
		return "Ledger object already exists."
	case TecKILLED:
		return "No funds transferred and no offer created."
	case TecUNFUNDED_AMM:
		return "Insufficient balance to fund AMM."
	case TecAMM_BALANCE:
		return "AMM has invalid balance."
	case TecAMM_FAILED:
		return "AMM transaction failed."
	case TecAMM_INVALID_TOKENS:
		return "AMM invalid LP tokens."
	case TecAMM_EMPTY:
		return "AMM is in empty state."
	case TemBAD_AMOUNT:
		return "Can only send positive amounts."
	case TemBAD_FEE:
		return "Invalid fee, negative or not XRP."
	case TemDST_IS_SRC:
		return "Destination may not be source."
	case TemINVALID_FLAG:
		return "Invalid flags."
	case TemDISABLED:
		return "The transaction requires an amendment that is not enabled."
	case TerNO_ACCOUNT:
		return "The source account does not exist."
	case TerNO_AMM:
		return "AMM doesn't exist for the asset pair."
	case TerPRE_SEQ:
		return "Missing/inapplicable prior transaction."
	case TerINSUF_FEE_B:
		return "Account balance can't pay fee."
	case TefBAD_SIGNATURE:
		return "Invalid signature."
	case TefPAST_SEQ:
		return "Sequence number has already passed."
	case TefMAX_LEDGER:
		return "Ledger sequence too high."
	default:
		return "Transaction failed with an unrecognized settlement code."
	}
}

// Remediation suggests what the caller can do about a rejection.
func (r Result) Remediation() string {
	switch r {
	case TecNO_LINE, TecPATH_DRY:
		return "the receiving account must first create a trust line to the issuer for this currency"
	case TecNO_AUTH:
		return "the issuer requires authorization; ask the issuer to authorize the trust line"
	case TecUNFUNDED_PAYMENT, TecUNFUNDED_AMM, TerINSUF_FEE_B:
		return "fund the sending account or reduce the amount"
	case TecINSUF_RESERVE_LINE, TecNO_LINE_INSUF_RESERVE, TecINSUFFICIENT_RESERVE:
		return "the account needs more XRP to cover the owner reserve for the new ledger object"
	case TecNO_DST, TecNO_DST_INSUF_XRP, TerNO_ACCOUNT:
		return "fund the account with at least the base reserve before using it"
	case TecFROZEN:
		return "the trust line or asset is frozen by the issuer"
	case TecDUPLICATE:
		return "the object already exists; query it instead of creating it again"
	case TecPATH_PARTIAL, TecKILLED:
		return "the pool could not deliver the minimum amount; retry with a higher slippage tolerance or a smaller trade"
	case TecAMM_BALANCE, TecAMM_INVALID_TOKENS, TecAMM_FAILED:
		return "re-read the pool state and recompute the amounts"
	case TerNO_AMM:
		return "create the pool before depositing, withdrawing or swapping"
	case TefPAST_SEQ, TerPRE_SEQ:
		return "another transaction from this account was submitted concurrently; serialize submissions per account"
	case TefMAX_LEDGER:
		return "the transaction expired before validation; build and submit a new one"
	case TemDISABLED:
		return "the network has not enabled the amendment this transaction needs"
	default:
		return ""
	}
}

// CheckResult converts a non-success settlement into a LedgerRejectionError.
func CheckResult(res *SubmitResult) error {
	if res == nil {
		return &errs.LedgerRejectionError{Code: "unknown", Message: "no settlement result"}
	}
	code := Result(res.Code)
	if code.IsSuccess() {
		return nil
	}
	return &errs.LedgerRejectionError{
		Code:        res.Code,
		Message:     code.Message(),
		Remediation: code.Remediation(),
		Hash:        res.Hash,
	}
}
