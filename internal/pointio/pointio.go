// Package pointio reads vector points for the dbscan command.
//
// CSV input has one point per row: an ID column followed by one or more
// coordinate columns. A first row in which no coordinate column is a number
// is treated as a header. JSON input is an array of {"id", "coords"}
// objects. Points without an ID get their 0-based position as ID, which must
// not clash with an ID given in the input.
package pointio

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/TrevorS/dbscan"
)

// Format names accepted by Read.
const (
	FormatAuto = "auto"
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// ErrMalformed is wrapped by every parse error.
var ErrMalformed = errors.New("malformed point data")

type jsonPoint struct {
	ID     string    `json:"id"`
	Coords []float64 `json:"coords"`
}

// Read parses points from r. With FormatAuto the format is JSON when the
// first non-space byte is '[' and CSV otherwise.
func Read(r io.Reader, format string) ([]dbscan.Point[[]float64], error) {
	br := bufio.NewReader(r)
	if format == FormatAuto || format == "" {
		format = sniff(br)
	}
	switch format {
	case FormatCSV:
		return readCSV(br)
	case FormatJSON:
		return readJSON(br)
	default:
		return nil, errors.Newf("unknown input format %q", format)
	}
}

func sniff(br *bufio.Reader) string {
	for n := 1; ; n++ {
		b, err := br.Peek(n)
		if len(b) < n {
			return FormatCSV
		}
		c := b[n-1]
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			if err != nil {
				return FormatCSV
			}
			continue
		}
		if c == '[' {
			return FormatJSON
		}
		return FormatCSV
	}
}

func readCSV(r io.Reader) ([]dbscan.Point[[]float64], error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var points []dbscan.Point[[]float64]
	for row := 0; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Mark(errors.Wrap(err, "failed to read CSV"), ErrMalformed)
		}
		line, _ := cr.FieldPos(0)
		if len(rec) < 2 {
			return nil, errors.Wrapf(ErrMalformed, "line %d: need an ID and at least one coordinate", line)
		}
		if row == 0 && isHeader(rec[1:]) {
			continue
		}
		coords, err := parseCoords(rec[1:])
		if err != nil {
			return nil, errors.Wrapf(ErrMalformed, "line %d: %v", line, err)
		}
		points = append(points, dbscan.Point[[]float64]{ID: strings.TrimSpace(rec[0]), Payload: coords})
	}
	if err := fillIDs(points); err != nil {
		return nil, err
	}
	return points, nil
}

// isHeader reports whether no field of a row's coordinate columns is a
// number. A row mixing numbers and text is a data row with a typo.
func isHeader(fields []string) bool {
	for _, f := range fields {
		if _, err := strconv.ParseFloat(strings.TrimSpace(f), 64); err == nil {
			return false
		}
	}
	return true
}

func parseCoords(fields []string) ([]float64, error) {
	coords := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, errors.Newf("coordinate %d: %q is not a number", i+1, f)
		}
		coords[i] = v
	}
	return coords, nil
}

func readJSON(r io.Reader) ([]dbscan.Point[[]float64], error) {
	var raw []jsonPoint
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to decode JSON points"), ErrMalformed)
	}
	points := make([]dbscan.Point[[]float64], len(raw))
	for i, p := range raw {
		if len(p.Coords) == 0 {
			return nil, errors.Wrapf(ErrMalformed, "point %d has no coordinates", i)
		}
		points[i] = dbscan.Point[[]float64]{ID: p.ID, Payload: p.Coords}
	}
	if err := fillIDs(points); err != nil {
		return nil, err
	}
	return points, nil
}

// fillIDs gives every point without an ID its 0-based position as ID. A
// generated ID that equals an ID given in the input is an error.
func fillIDs(points []dbscan.Point[[]float64]) error {
	given := make(map[string]int, len(points))
	for i, p := range points {
		if p.ID != "" {
			given[p.ID] = i
		}
	}
	for i := range points {
		if points[i].ID != "" {
			continue
		}
		id := strconv.Itoa(i)
		if j, taken := given[id]; taken {
			return errors.Wrapf(ErrMalformed, "point %d has no ID and its generated ID %q is used by point %d", i, id, j)
		}
		points[i].ID = id
	}
	return nil
}
