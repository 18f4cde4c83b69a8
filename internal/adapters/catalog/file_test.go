package catalog_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alejandrodnm/f1optimiser/internal/adapters/catalog"
	"github.com/alejandrodnm/f1optimiser/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// --- JSON ---

func TestFileProvider_JSON(t *testing.T) {
	path := writeFixture(t, "race.json", `[
		{"name": "VER", "role": "driver", "price": 30, "expected_points": 25.5, "price_change": 0.2},
		{"name": "NOR", "is_driver": true, "price": 28, "xPts": 24},
		{"name": "McLaren", "is_constructor": true, "price": 30, "expected_points": 40}
	]`)

	cat, err := catalog.NewFileProvider(path).FetchCatalog(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, cat.Len())

	ver, ok := cat.Lookup("VER")
	require.True(t, ok)
	assert.Equal(t, domain.RoleDriver, ver.Role)
	assert.InDelta(t, 25.5, ver.ExpectedPoints, 1e-9)
	assert.InDelta(t, 0.2, ver.PriceChange, 1e-9)

	nor, ok := cat.Lookup("NOR")
	require.True(t, ok)
	assert.InDelta(t, 24.0, nor.ExpectedPoints, 1e-9, "xPts alias")

	assert.Len(t, cat.Drivers(), 2)
	assert.Len(t, cat.Constructors(), 1)
}

func TestFileProvider_JSON_MissingPoints(t *testing.T) {
	path := writeFixture(t, "race.json", `[{"name": "VER", "role": "driver", "price": 30}]`)

	_, err := catalog.NewFileProvider(path).FetchCatalog(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidCatalog)
}

func TestFileProvider_JSON_AmbiguousRole(t *testing.T) {
	path := writeFixture(t, "race.json", `[
		{"name": "VER", "is_driver": true, "is_constructor": true, "price": 30, "expected_points": 1}
	]`)

	_, err := catalog.NewFileProvider(path).FetchCatalog(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidCatalog)
}

func TestFileProvider_JSON_Malformed(t *testing.T) {
	path := writeFixture(t, "race.json", `[{"name": `)

	_, err := catalog.NewFileProvider(path).FetchCatalog(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode JSON")
}

// --- YAML ---

func TestFileProvider_YAML(t *testing.T) {
	path := writeFixture(t, "race.yml", `
- name: VER
  role: driver
  price: 30
  expected_points: 25
- name: Ferrari
  role: constructor
  price: 28
  xPts: 35
`)

	cat, err := catalog.NewFileProvider(path).FetchCatalog(context.Background())
	require.NoError(t, err)

	ferrari, ok := cat.Lookup("Ferrari")
	require.True(t, ok)
	assert.Equal(t, domain.RoleConstructor, ferrari.Role)
	assert.InDelta(t, 35.0, ferrari.ExpectedPoints, 1e-9)
}

func TestFileProvider_YAML_UnknownRole(t *testing.T) {
	path := writeFixture(t, "race.yaml", `
- name: VER
  role: pilot
  price: 30
  expected_points: 25
`)

	_, err := catalog.NewFileProvider(path).FetchCatalog(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidCatalog)
}

// --- CSV ---

func TestFileProvider_CSV_BooleanColumns(t *testing.T) {
	path := writeFixture(t, "race.csv", `name,is_driver,is_constructor,price,xPts,price_change
VER,true,false,30,25,0.1
HAM,true,false,20,15,-0.1
Ferrari,false,true,28,35,
`)

	cat, err := catalog.NewFileProvider(path).FetchCatalog(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, cat.Len())

	ham, ok := cat.Lookup("HAM")
	require.True(t, ok)
	assert.InDelta(t, -0.1, ham.PriceChange, 1e-9)

	ferrari, ok := cat.Lookup("Ferrari")
	require.True(t, ok)
	assert.Equal(t, domain.RoleConstructor, ferrari.Role)
	assert.Zero(t, ferrari.PriceChange)
}

func TestFileProvider_CSV_BadNumber(t *testing.T) {
	path := writeFixture(t, "race.csv", `name,role,price,expected_points
VER,driver,thirty,25
`)

	_, err := catalog.NewFileProvider(path).FetchCatalog(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), "price")
}

func TestFileProvider_CSV_NoNameColumn(t *testing.T) {
	path := writeFixture(t, "race.csv", "driver,price\nVER,30\n")

	_, err := catalog.NewFileProvider(path).FetchCatalog(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
}

func TestFileProvider_CSV_MissingPoints(t *testing.T) {
	path := writeFixture(t, "race.csv", "name,role,price\nVER,driver,30\n")

	_, err := catalog.NewFileProvider(path).FetchCatalog(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidCatalog)
}

func TestFileProvider_SampleData(t *testing.T) {
	cat, err := catalog.NewFileProvider("../../../data/projections.csv").FetchCatalog(context.Background())
	require.NoError(t, err)

	assert.Len(t, cat.Drivers(), 20)
	assert.Len(t, cat.Constructors(), 10)
}

// --- errores de archivo ---

func TestFileProvider_UnsupportedExtension(t *testing.T) {
	path := writeFixture(t, "race.txt", "VER 30 25\n")

	_, err := catalog.NewFileProvider(path).FetchCatalog(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported extension")
}

func TestFileProvider_MissingFile(t *testing.T) {
	_, err := catalog.NewFileProvider(filepath.Join(t.TempDir(), "nope.csv")).FetchCatalog(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
