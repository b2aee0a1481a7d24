package loader

import (
	"fmt"
	"strings"

	shp "github.com/jonas-p/go-shp"

	"landlords/internal/types"
)

// ReadShapefile reads parcel shapes and their DBF attributes. The address and
// owner columns come from the attribute table; the shape itself becomes the
// record's geometry. Latitude/longitude columns are ignored.
func ReadShapefile(path string, cols Columns) ([]types.Property, error) {
	cols = cols.WithDefaults(DefaultShapefileColumns)

	r, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open shapefile %s: %w", path, err)
	}
	defer r.Close()

	fieldIdx := make(map[string]int)
	for i, f := range r.Fields() {
		fieldIdx[strings.TrimSpace(f.String())] = i
	}
	addrIdx, ok := fieldIdx[cols.Address]
	if !ok {
		return nil, fmt.Errorf("shapefile %s: missing address field %q", path, cols.Address)
	}

	attr := func(row int, name string) string {
		i, ok := fieldIdx[name]
		if !ok {
			return ""
		}
		return dbfString(r.ReadAttribute(row, i))
	}

	var props []types.Property
	for r.Next() {
		row, shape := r.Shape()
		if _, isNull := shape.(*shp.Null); isNull {
			shape = nil
		}
		props = append(props, types.Property{
			RawAddress:   dbfString(r.ReadAttribute(row, addrIdx)),
			OwnerName:    attr(row, cols.Owner),
			OwnerAddress: attr(row, cols.OwnerAddress),
			Geometry:     shape,
		})
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("read shapefile %s: %w", path, err)
	}
	return props, nil
}

// dbfString strips the space and NUL padding of a fixed-width DBF value.
func dbfString(s string) string {
	return strings.Trim(s, " \x00")
}
