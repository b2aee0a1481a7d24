package types

import shp "github.com/jonas-p/go-shp"

// Property is one unit record from the assessor dataset. Records are
// immutable once loaded; CanonicalAddress is filled in by the dataset.
type Property struct {
	RawAddress       string
	CanonicalAddress string

	OwnerName    string
	OwnerAddress string

	// Descriptive fields, shown in record details when the source has them.
	AccountNum     string
	OwnerCityState string
	OwnerZip       string
	City           string

	// Geometry is the parcel shape (or point) as supplied by the source.
	// Matching never looks inside it; it is handed to the map layer as-is.
	Geometry shp.Shape
}
