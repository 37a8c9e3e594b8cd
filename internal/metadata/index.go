package metadata

import (
	"context"
	"sync"

	"github.com/LeJamon/rwaxrpl/internal/ledger"
)

// Index resolves token symbols to one issuer's tokenization records. It
// pages through the issuer's history, newest first, only as far as a lookup
// needs, and remembers the newest record seen for every symbol.
//
// An Index is safe for concurrent use; lookups on one Index are serialized.
type Index struct {
	issuer   string
	pageSize int

	mu     sync.Mutex
	found  map[string]*Metadata
	marker any
	pages  int
	done   bool
}

// NewIndex returns an empty index over issuer's history.
func NewIndex(issuer string, pageSize int) *Index {
	return &Index{issuer: issuer, pageSize: pageSize, found: make(map[string]*Metadata)}
}

// Lookup returns the newest tokenization record for currency, or nil once
// the whole history has been read without a match.
func (x *Index) Lookup(ctx context.Context, conn ledger.Ledger, currency string) (*Metadata, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	for {
		if m, ok := x.found[currency]; ok {
			return m, nil
		}
		if x.done {
			return nil, nil
		}
		if err := x.next(ctx, conn); err != nil {
			return nil, err
		}
	}
}

// Pages reports how many history pages have been read.
func (x *Index) Pages() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.pages
}

func (x *Index) next(ctx context.Context, conn ledger.Ledger) error {
	page, err := conn.AccountTransactions(ctx, x.issuer, x.pageSize, x.marker)
	if err != nil {
		return err
	}
	x.pages++
	for _, rec := range page.Records {
		m := tokenization(rec)
		if m == nil {
			continue
		}
		if _, seen := x.found[m.TokenSymbol]; !seen {
			x.found[m.TokenSymbol] = m
		}
	}
	x.marker = page.Marker
	x.done = page.Marker == nil || len(page.Records) == 0
	return nil
}
