package trajectory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Format identifies the column layout of a trajectory file.
type Format int

const (
	FormatPoints Format = iota // x,y,z
	FormatSurvey               // md,inc,azi
)

func (f Format) String() string {
	if f == FormatSurvey {
		return "survey"
	}
	return "points"
}

// ErrNoData is returned when a file holds no numeric rows.
var ErrNoData = errors.New("trajectory: no data rows")

// Table is the numeric content of a trajectory file.
type Table struct {
	Format Format
	Rows   [][3]float64
}

// Read parses a three-column CSV. Blank lines and lines starting with '#'
// are skipped. An optional header row selects the format: a first column
// named "md" (or "depth") means survey stations, anything else means points.
// Without a header the data is taken as points.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	t := &Table{Format: FormatPoints}
	row := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("trajectory: %w", err)
		}
		row++
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if len(rec) < 3 {
			return nil, fmt.Errorf("trajectory: row %d: want 3 columns, got %d", row, len(rec))
		}

		var vals [3]float64
		numeric := true
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
			if err != nil {
				numeric = false
				break
			}
			vals[i] = v
		}
		if !numeric {
			if row == 1 {
				t.Format = headerFormat(rec)
				continue
			}
			return nil, fmt.Errorf("trajectory: row %d: non-numeric value in %q", row, strings.Join(rec, ","))
		}
		t.Rows = append(t.Rows, vals)
	}
	if len(t.Rows) == 0 {
		return nil, ErrNoData
	}
	return t, nil
}

func headerFormat(rec []string) Format {
	switch strings.ToLower(strings.TrimSpace(rec[0])) {
	case "md", "depth", "measured_depth":
		return FormatSurvey
	}
	return FormatPoints
}

// Points converts the table into path control points, integrating survey
// stations from origin when needed. Consecutive duplicates are dropped.
func (t *Table) Points(origin v3.Vec) ([]v3.Vec, error) {
	var pts []v3.Vec
	switch t.Format {
	case FormatSurvey:
		stations := make([]Station, len(t.Rows))
		for i, r := range t.Rows {
			stations[i] = Station{MD: r[0], Inc: r[1], Azi: r[2]}
		}
		var err error
		pts, err = MinimumCurvature(stations, origin)
		if err != nil {
			return nil, err
		}
	default:
		pts = make([]v3.Vec, len(t.Rows))
		for i, r := range t.Rows {
			pts[i] = origin.Add(v3.Vec{X: r[0], Y: r[1], Z: r[2]})
		}
	}
	return DropCoincident(pts), nil
}

// MaxDogleg returns the sharpest dogleg severity between consecutive survey
// stations, in degrees per 30 units, and the measured depth of the deeper
// station. Point tables have no stations and report ok false.
func (t *Table) MaxDogleg() (severity, md float64, ok bool) {
	if t.Format != FormatSurvey || len(t.Rows) < 2 {
		return 0, 0, false
	}
	for i := 1; i < len(t.Rows); i++ {
		a, b := t.Rows[i-1], t.Rows[i]
		dls := DoglegSeverity(Station{a[0], a[1], a[2]}, Station{b[0], b[1], b[2]})
		if !ok || dls > severity {
			severity, md, ok = dls, b[0], true
		}
	}
	return severity, md, ok
}

// LoadTable reads a trajectory file.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("trajectory: %w", err)
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Load reads a trajectory file and returns its control points.
func Load(path string, origin v3.Vec) ([]v3.Vec, error) {
	t, err := LoadTable(path)
	if err != nil {
		return nil, err
	}
	return t.Points(origin)
}
