package statcat

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kestrel-spatial/tempo/internal/selectivity"
	"github.com/kestrel-spatial/tempo/internal/terr"
)

// SaveHistogram persists h under relationName, a caller-chosen label for
// what was sampled (e.g. "fleet.position" or "fleet.position#period" for a
// period-bounds histogram). A second save for the same relationName
// replaces the first.
func SaveHistogram(cat *Catalog, relationName string, axisNames []string, h *selectivity.Histogram, createdUnix int64) error {
	snap := h.Snapshot()

	extentMinJSON, err := json.Marshal(snap.ExtentMin)
	if err != nil {
		return fmt.Errorf("statcat: marshal extent min: %w", err)
	}
	extentMaxJSON, err := json.Marshal(snap.ExtentMax)
	if err != nil {
		return fmt.Errorf("statcat: marshal extent max: %w", err)
	}
	sizeJSON, err := json.Marshal(snap.Size)
	if err != nil {
		return fmt.Errorf("statcat: marshal size: %w", err)
	}
	valuesBlob, err := encodeValues(snap.Values)
	if err != nil {
		return fmt.Errorf("statcat: encode values: %w", err)
	}

	_, err = cat.Exec(`
		INSERT INTO temporal_histograms
			(relation_name, axes, extent_min_json, extent_max_json, size_json, values_blob, total_features, created_unix)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(relation_name) DO UPDATE SET
			axes = excluded.axes,
			extent_min_json = excluded.extent_min_json,
			extent_max_json = excluded.extent_max_json,
			size_json = excluded.size_json,
			values_blob = excluded.values_blob,
			total_features = excluded.total_features,
			created_unix = excluded.created_unix
	`, relationName, strings.Join(axisNames, ","), string(extentMinJSON), string(extentMaxJSON), string(sizeJSON), valuesBlob, snap.TotalFeatures, createdUnix)
	if err != nil {
		return fmt.Errorf("statcat: save histogram %q: %w", relationName, err)
	}
	return nil
}

// LoadHistogram reconstructs the histogram stored under relationName, using
// axes to resolve stored axis names back to live Axis extractors (axes
// aren't stored as closures; resolveAxes below maps the well-known spatial
// and period-bounds axis names).
func LoadHistogram(cat *Catalog, relationName string) (*selectivity.Histogram, error) {
	row := cat.QueryRow(`
		SELECT axes, extent_min_json, extent_max_json, size_json, values_blob, total_features
		FROM temporal_histograms WHERE relation_name = ?
	`, relationName)

	var axesCSV, extentMinJSON, extentMaxJSON, sizeJSON string
	var valuesBlob []byte
	var totalFeatures float64
	if err := row.Scan(&axesCSV, &extentMinJSON, &extentMaxJSON, &sizeJSON, &valuesBlob, &totalFeatures); err != nil {
		return nil, fmt.Errorf("statcat: load histogram %q: %w", relationName, err)
	}

	axes, err := resolveAxes(strings.Split(axesCSV, ","))
	if err != nil {
		return nil, err
	}

	var extentMin, extentMax []float64
	var size []int
	if err := json.Unmarshal([]byte(extentMinJSON), &extentMin); err != nil {
		return nil, fmt.Errorf("statcat: unmarshal extent min: %w", err)
	}
	if err := json.Unmarshal([]byte(extentMaxJSON), &extentMax); err != nil {
		return nil, fmt.Errorf("statcat: unmarshal extent max: %w", err)
	}
	if err := json.Unmarshal([]byte(sizeJSON), &size); err != nil {
		return nil, fmt.Errorf("statcat: unmarshal size: %w", err)
	}
	values, err := decodeValues(valuesBlob)
	if err != nil {
		return nil, fmt.Errorf("statcat: decode values: %w", err)
	}

	return selectivity.FromSnapshot(axes, selectivity.Snapshot{
		ExtentMin:     extentMin,
		ExtentMax:     extentMax,
		Size:          size,
		Values:        values,
		TotalFeatures: totalFeatures,
	}), nil
}

func resolveAxes(names []string) ([]selectivity.Axis, error) {
	out := make([]selectivity.Axis, 0, len(names))
	for _, name := range names {
		switch name {
		case "x":
			out = append(out, selectivity.AxisX)
		case "y":
			out = append(out, selectivity.AxisY)
		case "z":
			out = append(out, selectivity.AxisZ)
		case "t":
			out = append(out, selectivity.AxisT)
		case "lower":
			out = append(out, selectivity.AxisPeriodLower)
		case "upper":
			out = append(out, selectivity.AxisPeriodUpper)
		default:
			return nil, fmt.Errorf("statcat: unknown axis name %q: %w", name, terr.ErrInvalidInput)
		}
	}
	return out, nil
}

// encodeValues/decodeValues store the flattened density array as a
// fixed-width binary blob rather than JSON: histograms routinely carry
// thousands of float64 cells and the catalog is read far more often than
// written, so a compact binary encoding keeps row scans cheap.
func encodeValues(values []float64) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(values))); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.LittleEndian, values); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeValues(blob []byte) ([]float64, error) {
	r := bytes.NewReader(blob)
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	values := make([]float64, n)
	if err := binary.Read(r, binary.LittleEndian, values); err != nil {
		return nil, err
	}
	return values, nil
}
