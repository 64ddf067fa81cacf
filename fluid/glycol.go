package fluid

import (
	"math"
	"strings"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

// グリコールの物性値の種類
type Property int

const (
	SpecificHeat Property = iota // 比熱, J/(kg K)
	Density                      // 密度, kg/m3
	Conductivity                 // 熱伝導率, W/(m K)
	Viscosity                    // 粘性係数, Pa s
	numProperties
)

func (p Property) String() string {
	switch p {
	case SpecificHeat:
		return "specific heat"
	case Density:
		return "density"
	case Conductivity:
		return "conductivity"
	case Viscosity:
		return "viscosity"
	default:
		return "unknown"
	}
}

// 混合液のもとになるグリコール
type GlycolSource int

const (
	Water GlycolSource = iota
	EthyleneGlycol
	PropyleneGlycol
	UserDefined
)

// 既定のデータに含まれる物質の名前
const (
	SteamName           = "STEAM"
	WaterName           = "WATER"
	EthyleneGlycolName  = "ETHYLENEGLYCOL"
	PropyleneGlycolName = "PROPYLENEGLYCOL"
)

func sourceOf(base string) GlycolSource {
	switch strings.ToUpper(base) {
	case WaterName:
		return Water
	case EthyleneGlycolName:
		return EthyleneGlycol
	case PropyleneGlycolName:
		return PropyleneGlycol
	default:
		return UserDefined
	}
}

/*
RawGlycol は濃度と温度に対する2次元のグリコールの物性値表

	Notes:
		Data の各要素は行を濃度、列を温度とする表で、物性値が与えられていない場合は nil。
*/
type RawGlycol struct {
	Name           string
	Concentrations []float64                // 濃度, -, [nc]
	Temps          []float64                // 温度, degree C, [nt]
	Data           [numProperties]*mat.Dense // 物性値, [nc, nt]
}

/*
Glycol は濃度を決めた混合液の物性値

	Notes:
		各物性値の表は濃度方向の補間を済ませた温度に対する1次元の表であり、
		与えられていない物性値は nil（0 とは区別する）。
*/
type Glycol struct {
	Name          string
	Source        GlycolSource
	Concentration float64 // 濃度, -

	props [numProperties]*Table1D
}

// Has は物性値 p が与えられているか否かを返す。
func (g *Glycol) Has(p Property) bool {
	return g.props[p] != nil
}

// Table は物性値 p の表を返す。与えられていない場合は nil。
func (g *Glycol) Table(p Property) *Table1D {
	return g.props[p]
}

/*
2次元の表を目標の濃度で補間し、温度に対する1次元の値を求める。

	Args:
		concs: 濃度, -, [nc]
		raw: 物性値, [nc, nt]
		target: 目標の濃度, -

	Returns:
		目標の濃度における物性値, [nt]
		濃度の範囲判定の結果

	Notes:
		濃度が表の範囲外の場合は最も近い濃度の値を用いる。
		挟む2つの濃度のいずれかが欠損している温度は欠損とする。
*/
func InterpValuesForGlycolConc(concs []float64, raw mat.Matrix, target float64) ([]float64, RangeStatus) {
	_, nt := raw.Dims()
	out := make([]float64, nt)

	row := func(i int) []float64 {
		for j := range out {
			out[j] = raw.At(i, j)
		}
		return out
	}

	last := len(concs) - 1
	switch {
	case target < concs[0]:
		return row(0), BelowRange
	case target > concs[last]:
		return row(last), AboveRange
	case last == 0:
		return row(0), InRange
	}

	i := FindArrayIndex(target, concs)
	if target == concs[i] {
		return row(i), InRange
	}
	for j := range out {
		lo, hi := raw.At(i, j), raw.At(i+1, j)
		if math.IsNaN(lo) || math.IsNaN(hi) {
			out[j] = math.NaN()
			continue
		}
		out[j] = GetInterpValueFast(target, concs[i], concs[i+1], lo, hi)
	}
	return out, InRange
}

func (s *Store) glycol(idx int) *Glycol {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.glycols[idx]
}

/*
グリコールの比熱を求める。

	Args:
		idx: グリコールの添字
		t: 温度, degree C

	Returns:
		比熱, J/(kg K)

	Notes:
		キャッシュが有効な場合はキャッシュを経由する。
*/
func (s *Store) SpecificHeat(idx int, t float64) float64 {
	if s.cache == nil {
		return s.glycolProperty(idx, SpecificHeat, t)
	}
	return s.cache.Get(idx, t, func() float64 {
		return s.glycolProperty(idx, SpecificHeat, t)
	})
}

// Density はグリコールの密度, kg/m3 を求める。
func (s *Store) Density(idx int, t float64) float64 {
	return s.glycolProperty(idx, Density, t)
}

// Conductivity はグリコールの熱伝導率, W/(m K) を求める。
func (s *Store) Conductivity(idx int, t float64) float64 {
	return s.glycolProperty(idx, Conductivity, t)
}

// Viscosity はグリコールの粘性係数, Pa s を求める。
func (s *Store) Viscosity(idx int, t float64) float64 {
	return s.glycolProperty(idx, Viscosity, t)
}

func (s *Store) glycolProperty(idx int, p Property, t float64) float64 {
	g := s.glycol(idx)
	tb := g.props[p]
	if tb == nil {
		if s.registry.Record(g.Name, p.String()+" not available") {
			log.Warn().
				Str("substance", g.Name).
				Str("property", p.String()).
				Msg("Glycol property was not supplied; returning 0")
		}
		return 0.0
	}

	v, status := tb.Lookup(t, s.degenerateTracker(g.Name, p.String()))
	s.warnRange(g.Name, p.String(), status, t, tb.Bounds.LowValue, tb.Bounds.HighValue)
	return v
}
