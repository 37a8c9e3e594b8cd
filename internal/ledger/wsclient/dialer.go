package wsclient

import (
	"context"

	"github.com/LeJamon/rwaxrpl/internal/ledger"
)

// Dialer opens one Client per operation.
type Dialer struct {
	Endpoint string
	Config   Config
}

var _ ledger.Dialer = (*Dialer)(nil)

// NewDialer returns a Dialer for endpoint.
func NewDialer(endpoint string, cfg Config) *Dialer {
	return &Dialer{Endpoint: endpoint, Config: cfg}
}

// Dial implements ledger.Dialer.
func (d *Dialer) Dial(ctx context.Context) (ledger.Ledger, error) {
	c, err := Dial(ctx, d.Endpoint, d.Config)
	if err != nil {
		return nil, err
	}
	return c, nil
}
