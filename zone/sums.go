package zone

import (
	"gonum.org/v1/gonum/floats"
)

// 表面の対流熱伝達の基準温度
type ReferenceTemp int

const (
	ZoneMeanAirTemp   ReferenceTemp = iota // ゾーンの平均空気温度
	AdjacentAirTemp                        // 表面近傍の空気温度
	ZoneSupplyAirTemp                      // ゾーンへの給気温度
)

// SurfaceConvection は表面1つの対流熱伝達の入力
type SurfaceConvection struct {
	HConv   float64       // 対流熱伝達率, W/(m2 K)
	Area    float64       // 面積, m2
	Temp    float64       // 室内側表面温度, degree C
	RefType ReferenceTemp // 基準温度の種類
	RefTemp float64       // 表面近傍の空気温度（AdjacentAirTemp の場合）, degree C
}

// AirNode は空調系統の吹出口などの空気の出入り口
type AirNode struct {
	MassFlow float64 // 質量流量, kg/s
	Temp     float64 // 温度, degree C
	HumRat   float64 // 絶対湿度, kg/kg(DA)
}

// AirFlow は隙間風・換気・隣室からの混合などによる流入空気
type AirFlow struct {
	MassFlow float64 // 質量流量, kg/s
	Temp     float64 // 流入する空気の温度, degree C
	HumRat   float64 // 流入する空気の絶対湿度, kg/kg(DA)
}

/*
BalanceInputs はゾーンの熱・水分収支の入力（反復ごとに周辺の計算から与えられる）

	Notes:
		流量はすべて乗数を掛ける前の1ゾーン分の値とする。
*/
type BalanceInputs struct {
	Surfaces []SurfaceConvection // 表面の対流熱伝達

	Inlets []AirNode // 空調系統からの給気

	Infiltration AirFlow   // 隙間風
	Ventilation  AirFlow   // 自然換気・外気導入
	Mixing       []AirFlow // 隣室からの混合

	ExhaustMassFlow         float64 // 排気の質量流量, kg/s
	BalancedExhaustMassFlow float64 // 排気のうち他の流入とつり合う分の質量流量, kg/s

	ConvectiveGain float64 // 内部発熱（対流成分）, W
	LatentGain     float64 // 内部発湿（潜熱）, W

	NonAirSystemResponse float64 // 空気を介さない空調機器（放熱器等）の供給熱量, W
	SysDepLoadsLagged    float64 // 1反復前の空調系統に依存する熱量, W

	OutdoorTemp   float64 // 外気温度, degree C
	OutdoorHumRat float64 // 外気絶対湿度, kg/kg(DA)
}

// Sums はゾーンの熱収支の集計値
type Sums struct {
	SumIntGain float64 // 内部発熱, W
	SumHA      float64 // 室温を基準とする表面の対流熱伝達率×面積の合計, W/K
	SumHATsurf float64 // 対流熱伝達率×面積×表面温度の合計, W
	SumHATref  float64 // 室温以外を基準とする表面の対流熱伝達率×面積×基準温度の合計, W
	SumMCp     float64 // 流入空気の質量流量×比熱の合計, W/K
	SumMCpT    float64 // 流入空気の質量流量×比熱×温度の合計, W
	SumSysMCp  float64 // 給気の質量流量×比熱の合計, W/K
	SumSysMCpT float64 // 給気の質量流量×比熱×温度の合計, W
}

// 給気の質量流量で重み付けした給気温度。給気が無い場合は false。
func supplyAirTemp(inlets []AirNode) (float64, bool) {
	var m, mt float64
	for _, n := range inlets {
		m += n.MassFlow
		mt += n.MassFlow * n.Temp
	}
	if m <= 0.0 {
		return 0.0, false
	}
	return mt / m, true
}

/*
ゾーン（またはスペース）の熱収支の集計値を求める。

	Args:
		in: 収支の入力
		includeSystem: 空調系統の給気を集計に含めるか否か

	Returns:
		集計値

	Notes:
		基準温度が給気温度の表面は、給気が無い場合は室温を基準とする。
*/
func CalcZoneOrSpaceSums(in *BalanceInputs, includeSystem bool) Sums {
	s := Sums{SumIntGain: in.ConvectiveGain}

	n := len(in.Surfaces)
	ha := make([]float64, n)
	tsurf := make([]float64, n)
	tsup, hasSupply := supplyAirTemp(in.Inlets)

	for i, surf := range in.Surfaces {
		ha[i] = surf.HConv * surf.Area
		tsurf[i] = surf.Temp

		switch surf.RefType {
		case AdjacentAirTemp:
			s.SumHATref += ha[i] * surf.RefTemp
		case ZoneSupplyAirTemp:
			if hasSupply {
				s.SumHATref += ha[i] * tsup
			} else {
				s.SumHA += ha[i]
			}
		default:
			s.SumHA += ha[i]
		}
	}
	s.SumHATsurf = floats.Dot(ha, tsurf)

	flows := append([]AirFlow{in.Infiltration, in.Ventilation}, in.Mixing...)
	for _, f := range flows {
		mcp := f.MassFlow * PsyCpAirFnW(f.HumRat)
		s.SumMCp += mcp
		s.SumMCpT += mcp * f.Temp
	}

	if includeSystem {
		for _, node := range in.Inlets {
			mcp := node.MassFlow * PsyCpAirFnW(node.HumRat)
			s.SumSysMCp += mcp
			s.SumSysMCpT += mcp * node.Temp
		}
	}
	return s
}

// TempDepCoef は室温に比例する項の係数, W/K
func (s Sums) TempDepCoef() float64 {
	return s.SumHA + s.SumMCp + s.SumSysMCp
}

// TempIndCoef は室温に依存しない項, W（空気を介さない機器や1反復前の熱量を除く）
func (s Sums) TempIndCoef() float64 {
	return s.SumIntGain + s.SumHATsurf - s.SumHATref + s.SumMCpT + s.SumSysMCpT
}

/*
水分収支の係数を求める。

	Args:
		in: 収支の入力
		temp: 室温, degree C
		includeSystem: 空調系統の給気を含めるか否か

	Returns:
		a: 絶対湿度に比例する項の係数, kg/s
		b: 絶対湿度に依存しない項, kg/s

	Notes:
		排気のうち他の流入とつり合わない分は、外気の絶対湿度の空気が流入するものとみなす。
*/
func moistureCoefficients(in *BalanceInputs, temp float64, includeSystem bool) (a, b float64) {
	hg := PsyHgAirFnWTdb(0.0, temp)

	b = in.LatentGain / hg
	for _, f := range append([]AirFlow{in.Infiltration, in.Ventilation}, in.Mixing...) {
		a += f.MassFlow
		b += f.MassFlow * f.HumRat
	}

	unbalanced := in.ExhaustMassFlow - in.BalancedExhaustMassFlow
	if unbalanced > 0.0 {
		a += unbalanced
		b += unbalanced * in.OutdoorHumRat
	}

	if includeSystem {
		for _, node := range in.Inlets {
			a += node.MassFlow
			b += node.MassFlow * node.HumRat
		}
	}
	return a, b
}
