// Package loader reads property records from assessor exports on disk.
package loader

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"

	shp "github.com/jonas-p/go-shp"

	"landlords/internal/types"
)

// Columns names the source fields that feed a Property.
type Columns struct {
	Address      string `yaml:"address"`
	Owner        string `yaml:"owner"`
	OwnerAddress string `yaml:"owner_address"`
	Latitude     string `yaml:"latitude"`
	Longitude    string `yaml:"longitude"`
}

// DefaultColumns matches the unit-level landlord table.
var DefaultColumns = Columns{
	Address:      "UNIT_ADDRESS",
	Owner:        "OWNER",
	OwnerAddress: "OWNER_ADDRESS",
	Latitude:     "LATITUDE",
	Longitude:    "LONGITUDE",
}

// DefaultShapefileColumns fits the 10-character DBF field name limit.
var DefaultShapefileColumns = Columns{
	Address:      "UNIT_ADDR",
	Owner:        "OWNER",
	OwnerAddress: "OWNER_ADDR",
}

// WithDefaults fills blank column names from base.
func (c Columns) WithDefaults(base Columns) Columns {
	if c.Address == "" {
		c.Address = base.Address
	}
	if c.Owner == "" {
		c.Owner = base.Owner
	}
	if c.OwnerAddress == "" {
		c.OwnerAddress = base.OwnerAddress
	}
	if c.Latitude == "" {
		c.Latitude = base.Latitude
	}
	if c.Longitude == "" {
		c.Longitude = base.Longitude
	}
	return c
}

// Property builds a Property from one record keyed by column name. Latitude
// and longitude, when both parse, become a lon/lat point geometry.
func (c Columns) Property(record map[string]string) types.Property {
	p := types.Property{
		RawAddress:   record[c.Address],
		OwnerName:    record[c.Owner],
		OwnerAddress: record[c.OwnerAddress],
	}
	if lat, lon, ok := parseLatLon(record[c.Latitude], record[c.Longitude]); ok {
		p.Geometry = &shp.Point{X: lon, Y: lat}
	}
	return p
}

// ReadDelimited reads a sep-delimited file with a header row (quoted fields
// allowed). Rows are mapped to properties by a worker pool; the returned
// records keep file order.
func ReadDelimited(path string, sep rune, cols Columns) ([]types.Property, error) {
	cols = cols.WithDefaults(DefaultColumns)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(bufio.NewReaderSize(f, 1024*1024))
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("file %s is empty", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if !hasColumn(header, cols.Address) {
		return nil, fmt.Errorf("file %s: missing address column %q", path, cols.Address)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	// Producer hands out row numbers; each worker writes only its own slots.
	props := make([]types.Property, len(rows))
	idxCh := make(chan int, 4096)

	workers := runtime.NumCPU()
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range idxCh {
				rec := make(map[string]string, len(header))
				for j, h := range header {
					if j < len(rows[i]) {
						rec[h] = strings.TrimSpace(rows[i][j])
					}
				}
				props[i] = cols.Property(rec)
			}
		}()
	}

	for i := range rows {
		idxCh <- i
	}
	close(idxCh)
	wg.Wait()

	return props, nil
}

func hasColumn(header []string, name string) bool {
	for _, h := range header {
		if h == name {
			return true
		}
	}
	return false
}

func parseLatLon(latStr, lonStr string) (float64, float64, bool) {
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	return lat, lon, err1 == nil && err2 == nil
}
