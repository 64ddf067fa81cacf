package zone

import (
	"math"
	"strings"

	"github.com/pkg/errors"
)

// 時間積分の方法
type Scheme int

const (
	ThirdOrderBackwardDifference Scheme = iota // 3次後退差分
	AnalyticalSolution                         // 解析解
	EulerMethod                                // オイラー法（1次陰解法）
)

func (s Scheme) String() string {
	switch s {
	case AnalyticalSolution:
		return "analytical"
	case EulerMethod:
		return "euler"
	default:
		return "third_order"
	}
}

// ParseScheme は積分方法の名前を解釈する。
func ParseScheme(s string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "third_order", "thirdorderbackwarddifference", "":
		return ThirdOrderBackwardDifference, nil
	case "analytical", "analyticalsolution":
		return AnalyticalSolution, nil
	case "euler", "eulermethod":
		return EulerMethod, nil
	default:
		return 0, errors.Errorf("unknown integration scheme %q", s)
	}
}

// History は過去の値, [0] が1ステップ前
type History [4]float64

// Fill はすべての履歴を v とする。
func (h *History) Fill(v float64) {
	for i := range h {
		h[i] = v
	}
}

// Push は v を最新の履歴として追加する。
func (h *History) Push(v float64) {
	copy(h[1:], h[:len(h)-1])
	h[0] = v
}

/*
Integrator は空気の熱収支（または水分収支）の時間積分を行う。

	Notes:
		収支式は airCap dX/dt = ind - dep X の形とし、温度と絶対湿度で共通に用いる。
			airCap: 空気の熱容量（水分容量）を時間間隔で除した値
			dep: X に比例する項の係数
			ind: X に依存しない項
*/
type Integrator interface {
	Scheme() Scheme

	// 状態値を target にするために必要な供給量
	LoadToSetpoint(target float64, h History, airCap, dep, ind float64) float64

	// 新しい状態値
	Solve(h History, airCap, dep, ind float64) float64

	// オンオフ制御の判定に前回確定時の運転状態を用いるか否か
	UsesSavedModes() bool
}

// NewIntegrator は積分方法に対応する Integrator を返す。
func NewIntegrator(s Scheme) Integrator {
	switch s {
	case AnalyticalSolution:
		return analytical{}
	case EulerMethod:
		return euler{}
	default:
		return thirdOrder{}
	}
}

type thirdOrder struct{}

func (thirdOrder) Scheme() Scheme { return ThirdOrderBackwardDifference }

func (thirdOrder) UsesSavedModes() bool { return true }

// 3次後退差分の過去の値の項
func thirdOrderHistory(h History) float64 {
	return 3.0*h[0] - 1.5*h[1] + h[2]/3.0
}

func (thirdOrder) LoadToSetpoint(target float64, h History, airCap, dep, ind float64) float64 {
	return (11.0/6.0*airCap+dep)*target - (ind + airCap*thirdOrderHistory(h))
}

func (thirdOrder) Solve(h History, airCap, dep, ind float64) float64 {
	return (ind + airCap*thirdOrderHistory(h)) / (11.0/6.0*airCap + dep)
}

type analytical struct{}

func (analytical) Scheme() Scheme { return AnalyticalSolution }

func (analytical) UsesSavedModes() bool { return false }

func decay(airCap, dep float64) float64 {
	return math.Exp(math.Min(maxExpArg, -dep/airCap))
}

func (analytical) LoadToSetpoint(target float64, h History, airCap, dep, ind float64) float64 {
	if dep == 0.0 {
		return airCap*(target-h[0]) - ind
	}
	e := decay(airCap, dep)
	return dep*(target-h[0]*e)/(1.0-e) - ind
}

func (analytical) Solve(h History, airCap, dep, ind float64) float64 {
	if dep == 0.0 {
		return h[0] + ind/airCap
	}
	return (h[0]-ind/dep)*decay(airCap, dep) + ind/dep
}

type euler struct{}

func (euler) Scheme() Scheme { return EulerMethod }

func (euler) UsesSavedModes() bool { return false }

func (euler) LoadToSetpoint(target float64, h History, airCap, dep, ind float64) float64 {
	return airCap*(target-h[0]) + dep*target - ind
}

func (euler) Solve(h History, airCap, dep, ind float64) float64 {
	return (airCap*h[0] + ind) / (airCap + dep)
}
