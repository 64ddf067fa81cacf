package fluid

import (
	"math"
	"sort"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

// 警告の集計に用いる物性値の名前
const (
	propSatPressure    = "saturation pressure"
	propSatTemperature = "saturation temperature"
	propSatEnthalpy    = "saturated enthalpy"
	propSatDensity     = "saturated density"
	propSatCp          = "saturated specific heat"
	propSHEnthalpy     = "superheated enthalpy"
	propSHDensity      = "superheated density"
	propSHPressure     = "superheated pressure"
)

/*
Refrigerant は冷媒（蒸気を含む）の物性値表

	Notes:
		飽和域の表はすべて温度に対する1次元の表であり、それぞれ有効範囲を持つ。
		過熱域の表は圧力を行、温度を列とする2次元の表であり、
		欠損（NaN）は二相域であることを表す。
*/
type Refrigerant struct {
	Name string

	Pressure     *Table1D  // 飽和圧力, Pa
	Enthalpy     *SatTable // 飽和液・飽和蒸気の比エンタルピー, J/kg
	SpecificHeat *SatTable // 飽和液・飽和蒸気の比熱, J/(kg K)
	Density      *SatTable // 飽和液・飽和蒸気の密度, kg/m3

	SuperheatedTemps     []float64  // 過熱域の温度, degree C, [nt]
	SuperheatedPressures []float64  // 過熱域の圧力, Pa, [np]
	SuperheatedEnthalpy  *mat.Dense // 過熱域の比エンタルピー, J/kg, [np, nt]
	SuperheatedDensity   *mat.Dense // 過熱域の密度, kg/m3, [np, nt]
}

func (r *Refrigerant) hasSuperheated() bool {
	return r.SuperheatedEnthalpy != nil && r.SuperheatedDensity != nil
}

func axisStatus(x float64, xs []float64) RangeStatus {
	return Bounds{LowValue: xs[0], HighValue: xs[len(xs)-1]}.Status(x)
}

func (s *Store) refrigerant(idx int) *Refrigerant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refrigerants[idx]
}

/*
飽和圧力を求める。

	Args:
		idx: 冷媒の添字
		t: 温度, degree C

	Returns:
		飽和圧力, Pa
*/
func (s *Store) SaturationPressure(idx int, t float64) float64 {
	r := s.refrigerant(idx)
	tb := r.Pressure

	v, status := tb.Lookup(t, s.degenerateTracker(r.Name, propSatPressure))
	s.warnRange(r.Name, propSatPressure, status, t, tb.Bounds.LowValue, tb.Bounds.HighValue)
	return v
}

/*
飽和温度を求める。

	Args:
		idx: 冷媒の添字
		p: 圧力, Pa

	Returns:
		飽和温度, degree C
*/
func (s *Store) SaturationTemperature(idx int, p float64) float64 {
	r := s.refrigerant(idx)
	tb := r.Pressure

	v, status := tb.Inverse(p, s.degenerateTracker(r.Name, propSatTemperature))
	s.warnRange(r.Name, propSatTemperature, status, p,
		tb.Values[tb.Bounds.LowIndex], tb.Values[tb.Bounds.HighIndex])
	return v
}

// SaturatedEnthalpy は乾き度 quality における比エンタルピー, J/kg を求める。
func (s *Store) SaturatedEnthalpy(idx int, t, quality float64) float64 {
	r := s.refrigerant(idx)
	return s.saturated(r.Name, propSatEnthalpy, r.Enthalpy, t, quality)
}

// SaturatedDensity は乾き度 quality における密度, kg/m3 を求める。
func (s *Store) SaturatedDensity(idx int, t, quality float64) float64 {
	r := s.refrigerant(idx)
	return s.saturated(r.Name, propSatDensity, r.Density, t, quality)
}

// SaturatedSpecificHeat は乾き度 quality における比熱, J/(kg K) を求める。
func (s *Store) SaturatedSpecificHeat(idx int, t, quality float64) float64 {
	r := s.refrigerant(idx)
	return s.saturated(r.Name, propSatCp, r.SpecificHeat, t, quality)
}

func (s *Store) saturated(name, prop string, st *SatTable, t, quality float64) float64 {
	if quality < 0.0 || quality > 1.0 {
		if s.registry.Record(name, prop+" quality out of range") {
			log.Warn().
				Str("substance", name).
				Str("property", prop).
				Float64("quality", quality).
				Msg("Quality outside [0, 1]; clamped")
		}
		quality = math.Max(0.0, math.Min(1.0, quality))
	}

	v, status := st.Lookup(t, quality, s.degenerateTracker(name, prop))
	s.warnRange(name, prop, status, t, st.Bounds.LowValue, st.Bounds.HighValue)
	return v
}

/*
過熱域の比エンタルピーを求める。

	Args:
		idx: 冷媒の添字
		t: 温度, degree C
		p: 圧力, Pa

	Returns:
		比エンタルピー, J/kg
*/
func (s *Store) SuperheatedEnthalpy(idx int, t, p float64) float64 {
	r := s.refrigerant(idx)
	return s.superheated(r, propSHEnthalpy, r.SuperheatedEnthalpy, r.Enthalpy, t, p)
}

// SuperheatedDensity は過熱域の密度, kg/m3 を求める。
func (s *Store) SuperheatedDensity(idx int, t, p float64) float64 {
	r := s.refrigerant(idx)
	return s.superheated(r, propSHDensity, r.SuperheatedDensity, r.Density, t, p)
}

/*
過熱域の表を双線形補間する。

	Notes:
		補間に用いる4点のいずれかが欠損している場合は二相域にあるとみなし、
		その温度における飽和蒸気の値を返す。
*/
func (s *Store) superheated(r *Refrigerant, prop string, grid *mat.Dense, sat *SatTable, t, p float64) float64 {
	if !r.hasSuperheated() {
		if s.registry.Record(r.Name, prop+" no superheated data") {
			log.Warn().
				Str("substance", r.Name).
				Str("property", prop).
				Msg("No superheated table; using saturated vapor value")
		}
		return sat.VaporAt(t)
	}

	ts, ps := r.SuperheatedTemps, r.SuperheatedPressures
	s.warnRange(r.Name, prop+" temperature", axisStatus(t, ts), t, ts[0], ts[len(ts)-1])
	s.warnRange(r.Name, prop+" pressure", axisStatus(p, ps), p, ps[0], ps[len(ps)-1])

	v, ok := bilinear(t, p, ts, ps, grid)
	if !ok {
		if s.registry.Record(r.Name, prop+" saturated region") {
			log.Warn().
				Str("substance", r.Name).
				Str("property", prop).
				Float64("temperature", t).
				Float64("pressure", p).
				Msg("Superheated query lies in the saturated region; using saturated vapor value")
		}
		return sat.VaporAt(t)
	}
	return v
}

/*
温度と比エンタルピーから過熱域の圧力を求める。

	Args:
		idx: 冷媒の添字
		t: 温度, degree C
		h: 比エンタルピー, J/kg

	Returns:
		圧力, Pa

	Notes:
		温度一定の下で比エンタルピーは圧力の増加に対して減少するので、
		各圧力における比エンタルピーを求め、h を挟む2つの圧力の間で補間する。
		値が2点以上得られない場合は飽和圧力を返す。
*/
func (s *Store) SuperheatedPressure(idx int, t, h float64) float64 {
	r := s.refrigerant(idx)
	if !r.hasSuperheated() {
		if s.registry.Record(r.Name, propSHPressure+" no superheated data") {
			log.Warn().
				Str("substance", r.Name).
				Msg("No superheated table; using saturation pressure")
		}
		return s.SaturationPressure(idx, t)
	}

	ts := r.SuperheatedTemps
	s.warnRange(r.Name, propSHPressure+" temperature", axisStatus(t, ts), t, ts[0], ts[len(ts)-1])

	it := FindArrayIndex(t, ts)
	np := len(r.SuperheatedPressures)

	// 比エンタルピーの昇順（圧力の降順）に並べる
	hs := make([]float64, 0, np)
	ps := make([]float64, 0, np)
	for i := np - 1; i >= 0; i-- {
		lo := r.SuperheatedEnthalpy.At(i, it)
		hi := r.SuperheatedEnthalpy.At(i, it+1)
		if math.IsNaN(lo) || math.IsNaN(hi) {
			continue
		}
		hs = append(hs, GetInterpValueFast(t, ts[it], ts[it+1], lo, hi))
		ps = append(ps, r.SuperheatedPressures[i])
	}

	if len(hs) < 2 || !sort.Float64sAreSorted(hs) {
		if s.registry.Record(r.Name, propSHPressure+" saturated region") {
			log.Warn().
				Str("substance", r.Name).
				Float64("temperature", t).
				Float64("enthalpy", h).
				Msg("Superheated pressure cannot be bracketed; using saturation pressure")
		}
		return s.SaturationPressure(idx, t)
	}

	s.warnRange(r.Name, propSHPressure+" enthalpy", axisStatus(h, hs), h, hs[0], hs[len(hs)-1])

	k := FindArrayIndex(h, hs)
	return GetInterpValue(h, hs[k], hs[k+1], ps[k], ps[k+1], s.degenerateTracker(r.Name, propSHPressure))
}
