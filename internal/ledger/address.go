package ledger

import (
	"regexp"

	addresscodec "github.com/Peersyst/xrpl-go/address-codec"

	"github.com/LeJamon/rwaxrpl/internal/errs"
)

var (
	addressPattern  = regexp.MustCompile(`^r[1-9A-HJ-NP-Za-km-z]{24,33}$`)
	currencyPattern = regexp.MustCompile(`^[A-Z0-9]{3}$`)
)

// ValidateAddress checks the classic address format and checksum without a
// network round trip.
func ValidateAddress(address string) error {
	if !addressPattern.MatchString(address) {
		return &errs.InvalidAddressError{Address: address}
	}
	// version byte + 20-byte account id
	payload, err := addresscodec.Base58CheckDecode(address)
	if err != nil || len(payload) != 1+addresscodec.AccountAddressLength || payload[0] != addresscodec.AccountAddressPrefix {
		return &errs.InvalidAddressError{Address: address}
	}
	return nil
}

// ValidateCurrency checks the standard 3-character currency code format.
func ValidateCurrency(field, currency string) error {
	if !currencyPattern.MatchString(currency) {
		return errs.Invalid(field, "%q must be exactly 3 uppercase letters or digits", currency)
	}
	return nil
}
