package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	shp "github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landlords/internal/dataset"
	"landlords/internal/owners"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadDelimitedPipe(t *testing.T) {
	path := writeFile(t, "units.txt", strings.Join([]string{
		"UNIT_ADDRESS|OWNER|OWNER_ADDRESS|LATITUDE|LONGITUDE",
		"12 Main St Apt 4, Boston, MA| X LLC |1 Office Pl|42.35|-71.06",
		"",
		"14 Main St, Boston, MA|X LLC|1 Office Pl||",
		"9 Elm St|Y Trust",
	}, "\n"))

	props, err := ReadDelimited(path, '|', Columns{})
	require.NoError(t, err)
	require.Len(t, props, 3)

	assert.Equal(t, "12 Main St Apt 4, Boston, MA", props[0].RawAddress)
	assert.Equal(t, "X LLC", props[0].OwnerName)
	assert.Equal(t, "1 Office Pl", props[0].OwnerAddress)
	assert.Equal(t, &shp.Point{X: -71.06, Y: 42.35}, props[0].Geometry)

	assert.Nil(t, props[1].Geometry)
	assert.Equal(t, "Y Trust", props[2].OwnerName)
	assert.Empty(t, props[2].OwnerAddress)
}

func TestReadDelimitedCSVQuotedOwner(t *testing.T) {
	path := writeFile(t, "units.csv",
		"addr,owner,mail\n"+
			"\"1 A St, Unit 2\",\"Smith, John LLC\",\"100 Box Rd\"\n")

	props, err := ReadDelimited(path, ',', Columns{Address: "addr", Owner: "owner", OwnerAddress: "mail"})
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, "1 A St, Unit 2", props[0].RawAddress)
	assert.Equal(t, "Smith, John LLC", props[0].OwnerName)
}

func TestReadDelimitedKeepsOrder(t *testing.T) {
	var b strings.Builder
	b.WriteString("UNIT_ADDRESS|OWNER|OWNER_ADDRESS\n")
	for i := 0; i < 5000; i++ {
		fmt.Fprintf(&b, "%d Main St|owner %d|box %d\n", i, i%7, i%11)
	}
	path := writeFile(t, "big.txt", b.String())

	props, err := ReadDelimited(path, '|', Columns{})
	require.NoError(t, err)
	require.Len(t, props, 5000)
	for i, p := range props {
		require.Equal(t, fmt.Sprintf("%d Main St", i), p.RawAddress)
	}
}

func TestReadDelimitedErrors(t *testing.T) {
	_, err := ReadDelimited(filepath.Join(t.TempDir(), "missing.txt"), '|', Columns{})
	assert.Error(t, err)

	_, err = ReadDelimited(writeFile(t, "empty.txt", ""), '|', Columns{})
	assert.ErrorContains(t, err, "is empty")

	_, err = ReadDelimited(writeFile(t, "noaddr.txt", "A|B\n1|2\n"), '|', Columns{})
	assert.ErrorContains(t, err, "missing address column")
}

func TestColumnsWithDefaults(t *testing.T) {
	c := Columns{Owner: "OWNER_NAME"}.WithDefaults(DefaultColumns)
	assert.Equal(t, "UNIT_ADDRESS", c.Address)
	assert.Equal(t, "OWNER_NAME", c.Owner)
	assert.Equal(t, "LONGITUDE", c.Longitude)
}

func writeShapefile(t *testing.T, rows [][3]string, shapes []shp.Shape) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "parcels.shp")
	w, err := shp.Create(path, shp.POINT)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{
		shp.StringField("UNIT_ADDR", 60),
		shp.StringField("OWNER", 60),
		shp.StringField("OWNER_ADDR", 60),
	}))
	for i, shape := range shapes {
		row := int(w.Write(shape))
		for f, v := range rows[i] {
			require.NoError(t, w.WriteAttribute(row, f, v))
		}
	}
	w.Close()

	// The writer names the attribute table "<base>dbf"; readers expect "<base>.dbf".
	base := strings.TrimSuffix(path, ".shp")
	require.NoError(t, os.Rename(base+"dbf", base+".dbf"))
	return path
}

func TestReadShapefile(t *testing.T) {
	path := writeShapefile(t,
		[][3]string{
			{"12 Main St #4, Boston, MA", "X LLC", "1 Office Pl"},
			{"14 Main St, Boston, MA", "X LLC", "1 Office Pl"},
		},
		[]shp.Shape{
			&shp.Point{X: 236000, Y: 900000},
			&shp.Point{X: 236100, Y: 900100},
		})

	props, err := ReadShapefile(path, Columns{})
	require.NoError(t, err)
	require.Len(t, props, 2)

	assert.Equal(t, "12 Main St #4, Boston, MA", props[0].RawAddress)
	assert.Equal(t, "X LLC", props[0].OwnerName)
	assert.Equal(t, "1 Office Pl", props[0].OwnerAddress)
	assert.Equal(t, &shp.Point{X: 236000, Y: 900000}, props[0].Geometry)
	assert.Equal(t, &shp.Point{X: 236100, Y: 900100}, props[1].Geometry)
}

func TestReadShapefilePaddedAttributesResolve(t *testing.T) {
	path := writeShapefile(t,
		[][3]string{
			{"1 A St #4", "X LLC", "1 Office Pl"},
			{"2 B St", "X LLC", "9 Other Pl"},
		},
		[]shp.Shape{
			&shp.Point{X: -71.06, Y: 42.35},
			&shp.Point{X: -71.07, Y: 42.36},
		})

	props, err := ReadShapefile(path, Columns{})
	require.NoError(t, err)
	require.Len(t, props, 2)
	assert.Equal(t, "1 A St #4", props[0].RawAddress)
	assert.Equal(t, "9 Other Pl", props[1].OwnerAddress)

	m, err := owners.Resolve("1 A St Unit 4", dataset.New(props))
	require.NoError(t, err)
	assert.Equal(t, "X LLC", m.OwnerName)
	assert.Equal(t, []string{"2 B St"}, m.Addresses)
}

func TestDBFString(t *testing.T) {
	assert.Equal(t, "1 A St", dbfString("1 A St\x00\x00\x00"))
	assert.Equal(t, "1 A St", dbfString("  1 A St   "))
	assert.Equal(t, "", dbfString("\x00\x00"))
}

func TestReadShapefileMissingAddressField(t *testing.T) {
	path := writeShapefile(t,
		[][3]string{{"1 A St", "X", "Y"}},
		[]shp.Shape{&shp.Point{X: 1, Y: 1}})

	_, err := ReadShapefile(path, Columns{Address: "SITE_ADDR"})
	assert.ErrorContains(t, err, "missing address field")
}
