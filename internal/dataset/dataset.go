// Package dataset holds the load-once, read-many table of property records.
package dataset

import (
	"sync/atomic"

	shp "github.com/jonas-p/go-shp"

	"landlords/internal/address"
	"landlords/internal/types"
)

// Dataset is an ordered, immutable collection of properties indexed for
// equality lookup. It is safe for concurrent readers without locking.
type Dataset struct {
	records []types.Property

	// Index values are record positions in ascending order.
	byAddress      map[string][]int
	byOwner        map[string][]int
	byOwnerAddress map[string][]int

	addresses []string
}

// New copies records, fills in each record's canonical address and builds the
// lookup indexes.
func New(records []types.Property) *Dataset {
	d := &Dataset{
		records:        make([]types.Property, len(records)),
		byAddress:      make(map[string][]int, len(records)),
		byOwner:        make(map[string][]int),
		byOwnerAddress: make(map[string][]int),
	}
	for i, rec := range records {
		rec.CanonicalAddress = address.Normalize(rec.RawAddress)
		d.records[i] = rec

		if _, seen := d.byAddress[rec.CanonicalAddress]; !seen {
			d.addresses = append(d.addresses, rec.CanonicalAddress)
		}
		d.byAddress[rec.CanonicalAddress] = append(d.byAddress[rec.CanonicalAddress], i)
		if rec.OwnerName != "" {
			d.byOwner[rec.OwnerName] = append(d.byOwner[rec.OwnerName], i)
		}
		if rec.OwnerAddress != "" {
			d.byOwnerAddress[rec.OwnerAddress] = append(d.byOwnerAddress[rec.OwnerAddress], i)
		}
	}
	return d
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// Record returns the i-th record in load order.
func (d *Dataset) Record(i int) types.Property { return d.records[i] }

// Lookup returns the records whose canonical address equals key, in load order.
func (d *Dataset) Lookup(key string) []types.Property {
	idx := d.byAddress[key]
	if len(idx) == 0 {
		return nil
	}
	out := make([]types.Property, len(idx))
	for i, j := range idx {
		out[i] = d.records[j]
	}
	return out
}

// OwnedBy returns the positions of records with the given owner name.
// Blank names are not indexed.
func (d *Dataset) OwnedBy(name string) []int { return d.byOwner[name] }

// MailedTo returns the positions of records with the given owner mailing
// address. Blank addresses are not indexed.
func (d *Dataset) MailedTo(ownerAddress string) []int { return d.byOwnerAddress[ownerAddress] }

// Addresses returns the distinct canonical addresses in first-seen order.
func (d *Dataset) Addresses() []string {
	out := make([]string, len(d.addresses))
	copy(out, d.addresses)
	return out
}

// Geometry returns the geometry of the first record at the canonical address.
func (d *Dataset) Geometry(key string) (shp.Shape, bool) {
	idx := d.byAddress[key]
	if len(idx) == 0 || d.records[idx[0]].Geometry == nil {
		return nil, false
	}
	return d.records[idx[0]].Geometry, true
}

// Store publishes the current dataset. Reloads build a new Dataset and Swap
// it in; readers holding the old one keep a consistent view.
type Store struct {
	current atomic.Pointer[Dataset]
}

// NewStore returns a store publishing d.
func NewStore(d *Dataset) *Store {
	s := &Store{}
	s.current.Store(d)
	return s
}

// Load returns the published dataset.
func (s *Store) Load() *Dataset { return s.current.Load() }

// Swap publishes d and returns the previous dataset.
func (s *Store) Swap(d *Dataset) *Dataset { return s.current.Swap(d) }
