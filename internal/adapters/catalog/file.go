package catalog

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alejandrodnm/f1optimiser/internal/domain"
)

// FileProvider implementa ports.CatalogProvider leyendo un archivo local.
// El formato se decide por extensión: .json, .yaml/.yml o .csv.
type FileProvider struct {
	path string
}

// NewFileProvider crea un provider para la ruta dada.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// FetchCatalog lee y valida el archivo.
func (p *FileProvider) FetchCatalog(_ context.Context) (*domain.Catalog, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return nil, fmt.Errorf("catalog.FetchCatalog: open %q: %w", p.path, err)
	}
	defer f.Close()

	var records []record
	switch ext := strings.ToLower(filepath.Ext(p.path)); ext {
	case ".json":
		records, err = decodeJSON(f)
	case ".yaml", ".yml":
		records, err = decodeYAML(f)
	case ".csv":
		records, err = decodeCSV(f)
	default:
		err = fmt.Errorf("unsupported extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog.FetchCatalog: %s: %w", p.path, err)
	}

	c, err := toCatalog(records)
	if err != nil {
		return nil, fmt.Errorf("catalog.FetchCatalog: %s: %w", p.path, err)
	}
	return c, nil
}

func decodeJSON(r io.Reader) ([]record, error) {
	var records []record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}
	return records, nil
}

func decodeYAML(r io.Reader) ([]record, error) {
	var records []record
	if err := yaml.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode YAML: %w", err)
	}
	return records, nil
}

// decodeCSV lee un CSV con cabecera. Columnas reconocidas: name, role,
// is_driver, is_constructor, price, expected_points|xPts, price_change.
func decodeCSV(r io.Reader) ([]record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	if _, ok := col["name"]; !ok {
		return nil, errors.New("CSV header has no 'name' column")
	}

	var records []record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV line %d: %w", line, err)
		}

		get := func(name string) string {
			if i, ok := col[name]; ok && i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}

		rec := record{Name: get("name"), Role: get("role")}
		if rec.IsDriver, err = parseBool(get("is_driver")); err != nil {
			return nil, fmt.Errorf("CSV line %d: is_driver: %w", line, err)
		}
		if rec.IsConstructor, err = parseBool(get("is_constructor")); err != nil {
			return nil, fmt.Errorf("CSV line %d: is_constructor: %w", line, err)
		}
		if rec.Price, err = parseFloat(get("price")); err != nil {
			return nil, fmt.Errorf("CSV line %d: price: %w", line, err)
		}
		if rec.PriceChange, err = parseFloat(get("price_change")); err != nil {
			return nil, fmt.Errorf("CSV line %d: price_change: %w", line, err)
		}
		for _, name := range []string{"expected_points", "xPts"} {
			if v := get(name); v != "" {
				pts, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return nil, fmt.Errorf("CSV line %d: %s: %w", line, name, err)
				}
				rec.ExpectedPoints = &pts
				break
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
