package fluid

import (
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// cell は空欄を欠損（NaN）として読み込む数値
type cell float64

func (c *cell) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*c = cell(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return errors.Wrapf(err, "invalid number %q", s)
	}
	*c = cell(v)
	return nil
}

type saturatedRow struct {
	Name           string  `csv:"name"`
	Temperature    float64 `csv:"temperature"`
	Pressure       cell    `csv:"pressure"`
	EnthalpyLiquid cell    `csv:"enthalpy_liquid"`
	EnthalpyVapor  cell    `csv:"enthalpy_vapor"`
	CpLiquid       cell    `csv:"cp_liquid"`
	CpVapor        cell    `csv:"cp_vapor"`
	DensityLiquid  cell    `csv:"density_liquid"`
	DensityVapor   cell    `csv:"density_vapor"`
}

type superheatedRow struct {
	Name        string  `csv:"name"`
	Pressure    float64 `csv:"pressure"`
	Temperature float64 `csv:"temperature"`
	Enthalpy    cell    `csv:"enthalpy"`
	Density     cell    `csv:"density"`
}

type glycolRow struct {
	Name          string  `csv:"name"`
	Concentration float64 `csv:"concentration"`
	Temperature   float64 `csv:"temperature"`
	SpecificHeat  cell    `csv:"specific_heat"`
	Density       cell    `csv:"density"`
	Conductivity  cell    `csv:"conductivity"`
	Viscosity     cell    `csv:"viscosity"`
}

func (r glycolRow) value(p Property) float64 {
	switch p {
	case SpecificHeat:
		return float64(r.SpecificHeat)
	case Density:
		return float64(r.Density)
	case Conductivity:
		return float64(r.Conductivity)
	default:
		return float64(r.Viscosity)
	}
}

// 物質名（大文字）ごとに出現順を保って行をまとめる。
func groupByName[T any](rows []T, name func(T) string) ([]string, map[string][]T) {
	var order []string
	groups := make(map[string][]T)
	for _, r := range rows {
		n := strings.ToUpper(strings.TrimSpace(name(r)))
		if _, ok := groups[n]; !ok {
			order = append(order, n)
		}
		groups[n] = append(groups[n], r)
	}
	return order, groups
}

// 重複を除いて昇順に並べる。
func uniqueSorted(xs []float64) []float64 {
	seen := make(map[float64]bool, len(xs))
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}
	sort.Float64s(out)
	return out
}

func indexOf(xs []float64) map[float64]int {
	m := make(map[float64]int, len(xs))
	for i, x := range xs {
		m[x] = i
	}
	return m
}

func nanDense(r, c int) *mat.Dense {
	d := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			d.Set(i, j, math.NaN())
		}
	}
	return d
}

/*
冷媒の表を読み込む。

	Args:
		saturated: 飽和域の CSV
		superheated: 過熱域の CSV（nil 可）

	Returns:
		冷媒の一覧（飽和域の CSV に現れた順）
*/
func readRefrigerants(saturated, superheated io.Reader) ([]*Refrigerant, error) {
	var satRows []saturatedRow
	if err := gocsv.Unmarshal(saturated, &satRows); err != nil {
		return nil, errors.Wrap(err, "read saturated refrigerant table")
	}

	var shRows []superheatedRow
	if superheated != nil {
		if err := gocsv.Unmarshal(superheated, &shRows); err != nil {
			return nil, errors.Wrap(err, "read superheated refrigerant table")
		}
	}
	_, shGroups := groupByName(shRows, func(r superheatedRow) string { return r.Name })

	order, satGroups := groupByName(satRows, func(r saturatedRow) string { return r.Name })
	out := make([]*Refrigerant, 0, len(order))
	for _, name := range order {
		r, err := buildRefrigerant(name, satGroups[name], shGroups[name])
		if err != nil {
			return nil, errors.WithMessagef(err, "refrigerant %s", name)
		}
		out = append(out, r)
	}
	return out, nil
}

func buildRefrigerant(name string, sat []saturatedRow, sh []superheatedRow) (*Refrigerant, error) {
	sort.SliceStable(sat, func(i, j int) bool { return sat[i].Temperature < sat[j].Temperature })

	n := len(sat)
	temps := make([]float64, n)
	cols := make([][]float64, 7)
	for k := range cols {
		cols[k] = make([]float64, n)
	}
	for i, row := range sat {
		temps[i] = row.Temperature
		cols[0][i] = float64(row.Pressure)
		cols[1][i] = float64(row.EnthalpyLiquid)
		cols[2][i] = float64(row.EnthalpyVapor)
		cols[3][i] = float64(row.CpLiquid)
		cols[4][i] = float64(row.CpVapor)
		cols[5][i] = float64(row.DensityLiquid)
		cols[6][i] = float64(row.DensityVapor)
	}

	r := &Refrigerant{Name: name}
	var err error
	if r.Pressure, err = NewTable1D(temps, cols[0]); err != nil {
		return nil, errors.WithMessage(err, propSatPressure)
	}
	if !r.Pressure.ascendingValues() {
		return nil, errors.New("saturation pressure must increase with temperature")
	}
	if r.Enthalpy, err = NewSatTable(temps, cols[1], cols[2]); err != nil {
		return nil, errors.WithMessage(err, propSatEnthalpy)
	}
	if r.SpecificHeat, err = NewSatTable(temps, cols[3], cols[4]); err != nil {
		return nil, errors.WithMessage(err, propSatCp)
	}
	if r.Density, err = NewSatTable(temps, cols[5], cols[6]); err != nil {
		return nil, errors.WithMessage(err, propSatDensity)
	}

	if len(sh) == 0 {
		return r, nil
	}

	ps := make([]float64, 0, len(sh))
	ts := make([]float64, 0, len(sh))
	for _, row := range sh {
		ps = append(ps, row.Pressure)
		ts = append(ts, row.Temperature)
	}
	r.SuperheatedPressures = uniqueSorted(ps)
	r.SuperheatedTemps = uniqueSorted(ts)
	if err := validateAxis(r.SuperheatedPressures); err != nil {
		return nil, errors.WithMessage(err, "superheated pressure")
	}
	if err := validateAxis(r.SuperheatedTemps); err != nil {
		return nil, errors.WithMessage(err, "superheated temperature")
	}

	pi, ti := indexOf(r.SuperheatedPressures), indexOf(r.SuperheatedTemps)
	r.SuperheatedEnthalpy = nanDense(len(pi), len(ti))
	r.SuperheatedDensity = nanDense(len(pi), len(ti))
	for _, row := range sh {
		i, j := pi[row.Pressure], ti[row.Temperature]
		r.SuperheatedEnthalpy.Set(i, j, float64(row.Enthalpy))
		r.SuperheatedDensity.Set(i, j, float64(row.Density))
	}
	return r, nil
}

/*
グリコールの濃度・温度に対する表を読み込む。

	Returns:
		表の一覧（CSV に現れた順）
*/
func readRawGlycols(in io.Reader) ([]*RawGlycol, error) {
	var rows []glycolRow
	if err := gocsv.Unmarshal(in, &rows); err != nil {
		return nil, errors.Wrap(err, "read glycol table")
	}

	order, groups := groupByName(rows, func(r glycolRow) string { return r.Name })
	out := make([]*RawGlycol, 0, len(order))
	for _, name := range order {
		g, err := buildRawGlycol(name, groups[name])
		if err != nil {
			return nil, errors.WithMessagef(err, "glycol %s", name)
		}
		out = append(out, g)
	}
	return out, nil
}

func buildRawGlycol(name string, rows []glycolRow) (*RawGlycol, error) {
	cs := make([]float64, 0, len(rows))
	ts := make([]float64, 0, len(rows))
	for _, row := range rows {
		cs = append(cs, row.Concentration)
		ts = append(ts, row.Temperature)
	}

	g := &RawGlycol{
		Name:           name,
		Concentrations: uniqueSorted(cs),
		Temps:          uniqueSorted(ts),
	}
	if len(g.Concentrations) > 1 {
		if err := validateAxis(g.Concentrations); err != nil {
			return nil, errors.WithMessage(err, "concentration")
		}
	}
	if err := validateAxis(g.Temps); err != nil {
		return nil, errors.WithMessage(err, "temperature")
	}

	ci, ti := indexOf(g.Concentrations), indexOf(g.Temps)
	for p := Property(0); p < numProperties; p++ {
		d := nanDense(len(ci), len(ti))
		present := false
		for _, row := range rows {
			v := row.value(p)
			if math.IsNaN(v) {
				continue
			}
			d.Set(ci[row.Concentration], ti[row.Temperature], v)
			present = true
		}
		if present {
			g.Data[p] = d
		}
	}
	return g, nil
}
