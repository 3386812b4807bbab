package sim

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/sobench/sobench/internal/model"
)

// massMarker is the line in the starter summary that precedes the total mass
// block; the mass value is the first field four lines below it.
const massMarker = "TOTAL MASS AND MASS CENTER"

// ExtractMass reads the structural mass from a starter summary file. The
// returned value is the raw solver total; the rigid impactor mass and unit
// scale are applied by the state machine.
func ExtractMass(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open starter summary: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("failed to read starter summary: %w", err)
	}

	for i, line := range lines {
		if !strings.Contains(line, massMarker) {
			continue
		}
		if i+4 >= len(lines) {
			return 0, fmt.Errorf("starter summary truncated after mass marker at line %d", i+1)
		}
		fields := strings.Fields(lines[i+4])
		if len(fields) == 0 {
			return 0, fmt.Errorf("empty mass line below marker at line %d", i+1)
		}
		mass, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return 0, fmt.Errorf("failed to parse mass value %q: %w", fields[0], err)
		}
		return mass, nil
	}

	return 0, fmt.Errorf("mass marker %q not found in %s", massMarker, path)
}

// ResultTable is the solver's time-series output: one named column per
// tracked quantity, rows in time order. Column names are stored with
// embedded spaces removed, matching how they are keyed.
type ResultTable struct {
	Columns []string
	Rows    [][]float64
}

// LoadResultTable parses the delimited time-series artifact of a full run.
func LoadResultTable(path string) (*ResultTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open result table: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse result table: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("result table %s has no data rows", path)
	}

	columns := make([]string, len(records[0]))
	for i, name := range records[0] {
		columns[i] = strings.ReplaceAll(name, " ", "")
	}

	rows := make([][]float64, 0, len(records)-1)
	for lineNo, record := range records[1:] {
		if len(record) != len(columns) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", lineNo+2, len(record), len(columns))
		}
		row := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", lineNo+2, columns[j], err)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}

	return &ResultTable{Columns: columns, Rows: rows}, nil
}

// columnByKey returns the index of the n-th (zero-based) column whose name
// contains key. The solver writes a group of related columns per tracked
// entity; the third match carries the quantity of interest.
func (t *ResultTable) columnByKey(key string, n int) (int, error) {
	match := 0
	for i, name := range t.Columns {
		if strings.Contains(name, key) {
			if match == n {
				return i, nil
			}
			match++
		}
	}
	return 0, fmt.Errorf("no column match %d for key %q", n, key)
}

// Series returns a copy of one column's values.
func (t *ResultTable) Series(col int) []float64 {
	out := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[col]
	}
	return out
}

// trackedColumn is the index into the displacement column group holding the
// quantity of interest.
const trackedColumnOrdinal = 2

// Intrusion returns the peak absolute displacement of the tracked reference
// node, less the impactor's initial offset from the structure.
func (t *ResultTable) Intrusion(trackKey string, impactorOffset float64) (float64, error) {
	col, err := t.columnByKey(trackKey, trackedColumnOrdinal)
	if err != nil {
		return 0, err
	}

	var peak float64
	for _, row := range t.Rows {
		if v := math.Abs(row[col]); v > peak {
			peak = v
		}
	}
	return peak - impactorOffset, nil
}

// maxIntrusionIndex returns the row index where the tracked displacement
// peaks; force statistics only consider samples up to that point.
func (t *ResultTable) maxIntrusionIndex(trackKey string) (int, error) {
	col, err := t.columnByKey(trackKey, trackedColumnOrdinal)
	if err != nil {
		return 0, err
	}

	best, bestIdx := -1.0, 0
	for i, row := range t.Rows {
		if v := math.Abs(row[col]); v > best {
			best, bestIdx = v, i
		}
	}
	return bestIdx, nil
}

// ForceSeries extracts the impact force history up to the peak-intrusion
// sample. OpenRadioss cards store force directly; LS-Dyna cards store
// impulse, which is differentiated over the time column.
func (t *ResultTable) ForceSeries(trackKey, forceKey string, card model.MaterialCard) ([]float64, error) {
	forceCol, err := t.columnByKey(forceKey, trackedColumnOrdinal)
	if err != nil {
		return nil, err
	}
	maxIdx, err := t.maxIntrusionIndex(trackKey)
	if err != nil {
		return nil, err
	}

	values := make([]float64, maxIdx+1)
	for i := 0; i <= maxIdx; i++ {
		values[i] = t.Rows[i][forceCol]
	}

	if card == model.CardOpenRadioss {
		return values, nil
	}

	timeCol, err := t.columnByKey("time", 0)
	if err != nil {
		return nil, err
	}
	times := make([]float64, maxIdx+1)
	for i := 0; i <= maxIdx; i++ {
		times[i] = t.Rows[i][timeCol]
	}
	return Gradient(values, times), nil
}

// Gradient computes dy/dx with second-order central differences in the
// interior and one-sided differences at the ends, handling non-uniform
// spacing.
func Gradient(y, x []float64) []float64 {
	n := len(y)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	if n == 1 {
		return out
	}

	out[0] = (y[1] - y[0]) / (x[1] - x[0])
	out[n-1] = (y[n-1] - y[n-2]) / (x[n-1] - x[n-2])

	for i := 1; i < n-1; i++ {
		hd := x[i] - x[i-1]
		hs := x[i+1] - x[i]
		out[i] = (hd*hd*y[i+1] + (hs*hs-hd*hd)*y[i] - hs*hs*y[i-1]) /
			(hs * hd * (hd + hs))
	}
	return out
}

// PeakForce is the absolute value of the maximum of the force series.
func PeakForce(force []float64) float64 {
	if len(force) == 0 {
		return math.NaN()
	}
	peak := force[0]
	for _, v := range force[1:] {
		if v > peak {
			peak = v
		}
	}
	return math.Abs(peak)
}

// MeanForce is the absolute value of the mean of the force series.
func MeanForce(force []float64) float64 {
	if len(force) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range force {
		sum += v
	}
	return math.Abs(sum / float64(len(force)))
}
