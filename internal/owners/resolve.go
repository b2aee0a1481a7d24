// Package owners links a unit address to every other address held by the
// same landlord, matching on owner name or owner mailing address.
package owners

import (
	"errors"
	"log/slog"

	"landlords/internal/address"
	"landlords/internal/dataset"
)

// ErrNotFound reports that the queried address is not in the dataset.
var ErrNotFound = errors.New("no such address in the dataset")

// Match is the landlord behind a queried address and the other addresses
// they own.
type Match struct {
	Query        string   `json:"query"`
	OwnerName    string   `json:"owner_name"`
	OwnerAddress string   `json:"owner_address"`
	Addresses    []string `json:"addresses"`
}

// Empty reports whether the landlord owns nothing besides the queried address.
func (m Match) Empty() bool { return len(m.Addresses) == 0 }

// Resolve canonicalizes raw, finds its first record in ds and returns every
// other canonical address sharing that record's owner name or owner address.
// Addresses are distinct and in dataset order.
func Resolve(raw string, ds *dataset.Dataset) (Match, error) {
	key := address.Normalize(raw)
	found := ds.Lookup(key)
	if len(found) == 0 {
		return Match{Query: key}, ErrNotFound
	}

	// First record wins when several share the address.
	owner := found[0]
	m := Match{
		Query:        key,
		OwnerName:    owner.OwnerName,
		OwnerAddress: owner.OwnerAddress,
		Addresses:    []string{},
	}

	seen := map[string]bool{key: true}
	for _, i := range union(ds.OwnedBy(owner.OwnerName), ds.MailedTo(owner.OwnerAddress)) {
		addr := ds.Record(i).CanonicalAddress
		if seen[addr] {
			continue
		}
		seen[addr] = true
		m.Addresses = append(m.Addresses, addr)
	}
	return m, nil
}

// union merges two ascending position lists, dropping duplicates.
func union(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case j == len(b) || (i < len(a) && a[i] < b[j]):
			out = append(out, a[i])
			i++
		case i == len(a) || b[j] < a[i]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

// Resolver answers queries against whatever dataset the store currently
// publishes.
type Resolver struct {
	store  *dataset.Store
	logger *slog.Logger
}

// NewResolver returns a Resolver reading from store. A nil logger falls back
// to slog.Default().
func NewResolver(store *dataset.Store, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{store: store, logger: logger}
}

// Dataset returns the dataset queries currently run against.
func (r *Resolver) Dataset() *dataset.Dataset { return r.store.Load() }

// Resolve runs Resolve against the current dataset and returns that
// dataset, so callers render from the same snapshot the match came from.
func (r *Resolver) Resolve(raw string) (Match, *dataset.Dataset, error) {
	ds := r.store.Load()
	m, err := Resolve(raw, ds)
	switch {
	case errors.Is(err, ErrNotFound):
		r.logger.Info("address not found", "input", raw, "canonical", m.Query)
	case err == nil:
		attrs := []any{"canonical", m.Query, "owner", m.OwnerName, "matches", len(m.Addresses)}
		if unit, ok := address.UnitNumber(m.Query); ok {
			attrs = append(attrs, "unit", unit)
		}
		r.logger.Debug("resolved landlord", attrs...)
	}
	return m, ds, err
}
