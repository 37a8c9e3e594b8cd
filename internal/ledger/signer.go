package ledger

import (
	"fmt"

	"github.com/Peersyst/xrpl-go/xrpl/wallet"

	"github.com/LeJamon/rwaxrpl/internal/errs"
)

// WalletSigner signs with a keypair derived from a family seed.
type WalletSigner struct {
	w wallet.Wallet
}

// NewWalletSigner derives the keypair for seed. The seed itself is not kept
// beyond the wallet.
func NewWalletSigner(seed string) (*WalletSigner, error) {
	if seed == "" {
		return nil, errs.Invalid("seed", "signing credential is not configured")
	}
	w, err := wallet.FromSeed(seed, "")
	if err != nil {
		return nil, errs.Invalid("seed", "malformed signing credential")
	}
	return &WalletSigner{w: w}, nil
}

// Address returns the classic address of the signing account.
func (s *WalletSigner) Address() string {
	return string(s.w.ClassicAddress)
}

// Sign signs a flattened transaction.
func (s *WalletSigner) Sign(tx map[string]any) (string, string, error) {
	blob, hash, err := s.w.Sign(tx)
	if err != nil {
		return "", "", fmt.Errorf("sign transaction: %w", err)
	}
	return blob, hash, nil
}

// String never exposes key material.
func (s *WalletSigner) String() string {
	return "signer(" + s.Address() + ")"
}

// GoString never exposes key material.
func (s *WalletSigner) GoString() string {
	return s.String()
}
