package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/san-kum/bifsim/internal/cont"
)

// Complex is a JSON-friendly complex number.
type Complex [2]float64

func toComplex(v []complex128) []Complex {
	out := make([]Complex, len(v))
	for i, c := range v {
		out[i] = Complex{real(c), imag(c)}
	}
	return out
}

func fromComplex(v []Complex) []complex128 {
	out := make([]complex128, len(v))
	for i, c := range v {
		out[i] = complex(c[0], c[1])
	}
	return out
}

type BifurcationRecord struct {
	Type        cont.BifurcationType `json:"type"`
	Index       int                  `json:"index"`
	Parameter   float64              `json:"parameter"`
	State       []float64            `json:"state"`
	Eigenvalues []Complex            `json:"eigenvalues"`
	Tangent     []float64            `json:"tangent,omitempty"`
	Period      *float64             `json:"period,omitempty"`
}

func bifurcationRecords(bps []cont.BifurcationPoint) []BifurcationRecord {
	out := make([]BifurcationRecord, len(bps))
	for i, bp := range bps {
		out[i] = BifurcationRecord{
			Type:        bp.Type,
			Index:       bp.Index,
			Parameter:   bp.Parameter,
			State:       bp.State,
			Eigenvalues: toComplex(bp.Eigenvalues),
			Tangent:     bp.Tangent,
			Period:      bp.Period,
		}
	}
	return out
}

func (r BifurcationRecord) point() cont.BifurcationPoint {
	return cont.BifurcationPoint{
		Type:        r.Type,
		Parameter:   r.Parameter,
		State:       r.State,
		Eigenvalues: fromComplex(r.Eigenvalues),
		Tangent:     r.Tangent,
		Period:      r.Period,
		Index:       r.Index,
	}
}

// WriteCSV writes one row per point. State columns are named by vars, or
// x0, x1, ... when vars is short. Eigenvalues follow as re/im column pairs.
func WriteCSV(w io.Writer, b *cont.Branch, vars []string) error {
	cw := csv.NewWriter(w)

	dim := 0
	if len(b.Points) > 0 {
		dim = len(b.Points[0].State)
	}

	header := []string{"index", "parameter"}
	for i := 0; i < dim; i++ {
		if i < len(vars) {
			header = append(header, vars[i])
		} else {
			header = append(header, fmt.Sprintf("x%d", i))
		}
	}
	header = append(header, "stable", "type", "bifurcation", "arclength", "residual")
	for i := 0; i < dim; i++ {
		header = append(header, fmt.Sprintf("re%d", i), fmt.Sprintf("im%d", i))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, pt := range b.Points {
		row := []string{strconv.Itoa(i), formatFloat(pt.Parameter)}
		for _, v := range pt.State {
			row = append(row, formatFloat(v))
		}
		row = append(row,
			strconv.FormatBool(pt.Stable),
			pt.Type.String(),
			pt.Bifurcation.String(),
			formatFloat(pt.Arclength),
			formatFloat(pt.Residual))
		for _, e := range pt.Eigenvalues {
			row = append(row, formatFloat(real(e)), formatFloat(imag(e)))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses the output of WriteCSV. Tangents are not stored in the
// table and come back nil.
func ReadCSV(r io.Reader) ([]cont.SolutionPoint, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []cont.SolutionPoint{}, nil
	}

	header := records[0]
	stableCol := slices.Index(header, "stable")
	if stableCol < 2 || len(header) < stableCol+5 {
		return nil, fmt.Errorf("points table: malformed header %v", header)
	}
	dim := stableCol - 2

	points := make([]cont.SolutionPoint, 0, len(records)-1)
	for line, rec := range records[1:] {
		if len(rec) < stableCol+5+2*dim {
			return nil, fmt.Errorf("points table line %d: %d fields, want %d", line+2, len(rec), stableCol+5+2*dim)
		}

		var p rowParser
		pt := cont.SolutionPoint{
			Parameter: p.float(rec[1]),
			State:     make([]float64, dim),
		}
		for i := 0; i < dim; i++ {
			pt.State[i] = p.float(rec[2+i])
		}
		pt.Stable = p.bool(rec[stableCol])
		pt.Type = p.pointType(rec[stableCol+1])
		pt.Bifurcation = p.bifurcation(rec[stableCol+2])
		pt.Arclength = p.float(rec[stableCol+3])
		pt.Residual = p.float(rec[stableCol+4])

		pt.Eigenvalues = make([]complex128, dim)
		for i := 0; i < dim; i++ {
			base := stableCol + 5 + 2*i
			pt.Eigenvalues[i] = complex(p.float(rec[base]), p.float(rec[base+1]))
		}

		if p.err != nil {
			return nil, fmt.Errorf("points table line %d: %w", line+2, p.err)
		}
		points = append(points, pt)
	}
	return points, nil
}

// rowParser keeps the first conversion error of a row.
type rowParser struct{ err error }

func (p *rowParser) float(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}

func (p *rowParser) bool(s string) bool {
	v, err := strconv.ParseBool(s)
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}

func (p *rowParser) pointType(s string) cont.PointType {
	v, err := cont.ParsePointType(s)
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}

func (p *rowParser) bifurcation(s string) cont.BifurcationType {
	v, err := cont.ParseBifurcationType(s)
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

type PointRecord struct {
	Parameter   float64              `json:"parameter"`
	State       []float64            `json:"state"`
	Stable      bool                 `json:"stable"`
	Type        string               `json:"type"`
	Eigenvalues []Complex            `json:"eigenvalues"`
	Bifurcation cont.BifurcationType `json:"bifurcation"`
	Tangent     []float64            `json:"tangent,omitempty"`
	Arclength   float64              `json:"arclength"`
	Residual    float64              `json:"residual"`
}

type ExportData struct {
	Metadata     RunMetadata         `json:"metadata"`
	Points       []PointRecord       `json:"points"`
	Bifurcations []BifurcationRecord `json:"bifurcations"`
}

// ExportJSON writes the run as a single JSON document.
func ExportJSON(w io.Writer, meta RunMetadata, b *cont.Branch) error {
	data := ExportData{
		Metadata:     meta,
		Points:       make([]PointRecord, len(b.Points)),
		Bifurcations: bifurcationRecords(b.Bifurcations),
	}
	for i, pt := range b.Points {
		data.Points[i] = PointRecord{
			Parameter:   pt.Parameter,
			State:       pt.State,
			Stable:      pt.Stable,
			Type:        pt.Type.String(),
			Eigenvalues: toComplex(pt.Eigenvalues),
			Bifurcation: pt.Bifurcation,
			Tangent:     pt.Tangent,
			Arclength:   pt.Arclength,
			Residual:    pt.Residual,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
