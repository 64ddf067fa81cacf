package comfort

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// 適用範囲外を表す値
const NotApplicable = -1.0

// 適応型快適温度のモデル
type Model int

const (
	None             Model = iota // 適応型快適温度を用いない
	ASH55Central                  // ASHRAE 55 中央値
	ASH55Upper90                  // ASHRAE 55 90%受容上限
	ASH55Upper80                  // ASHRAE 55 80%受容上限
	CEN15251Central               // CEN 15251 中央値
	CEN15251UpperI                // CEN 15251 カテゴリI上限
	CEN15251UpperII               // CEN 15251 カテゴリII上限
	CEN15251UpperIII              // CEN 15251 カテゴリIII上限
	numModels
)

var modelNames = [numModels]string{
	"none",
	"ash55_central",
	"ash55_upper_90",
	"ash55_upper_80",
	"cen15251_central",
	"cen15251_upper_i",
	"cen15251_upper_ii",
	"cen15251_upper_iii",
}

func (m Model) String() string {
	if m < 0 || m >= numModels {
		return "unknown"
	}
	return modelNames[m]
}

// ParseModel はモデル名を解釈する。空文字列は None とする。
func ParseModel(s string) (Model, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return None, nil
	}
	for m, name := range modelNames {
		if name == s {
			return Model(m), nil
		}
	}
	return None, errors.Errorf("unknown adaptive comfort model %q", s)
}

// 計算期間の種類
type EnvironmentKind int

const (
	RunPeriodWeather EnvironmentKind = iota // 気象データによる計算期間
	DesignDay                               // 設計日
	RunPeriodDesign                         // 設計用の計算期間
)

// SummerDesignDay は夏期設計日の外気条件
type SummerDesignDay struct {
	MaxDryBulb float64 // 最高乾球温度, degree C
	DailyRange float64 // 日較差, K
}

/*
AdaptiveComfortDailySchedule は日ごと・モデルごとの適応型快適温度の表

	Notes:
		計算期間ごとに Calculate で1回だけ作成し、以降は読み取りのみ行う。
		モデルの適用範囲外の日は NotApplicable (-1) とする。
*/
type AdaptiveComfortDailySchedule struct {
	mu sync.RWMutex

	days         [numModels][]float64 // モデルごとの日ごとの値, degree C, [365 or 366]
	summerDesign [numModels]float64   // モデルごとの夏期設計日の値, degree C
}

func NewAdaptiveComfortDailySchedule() *AdaptiveComfortDailySchedule {
	s := &AdaptiveComfortDailySchedule{}
	s.Reset()
	return s
}

// Reset は表を破棄し、すべての値を適用範囲外とする。
func (s *AdaptiveComfortDailySchedule) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for m := range s.days {
		s.days[m] = nil
		s.summerDesign[m] = NotApplicable
	}
}

/*
ASHRAE 55 の適応型快適温度を求める。

	Args:
		rm: 外気温度の移動平均, degree C

	Returns:
		中央値, 90%受容上限, 80%受容上限, degree C

	Notes:
		10 <= rm <= 33.5 の範囲外は NotApplicable
*/
func ash55(rm float64) (central, upper90, upper80 float64) {
	if rm >= 10.0 && rm <= 33.5 {
		return 0.31*rm + 17.8, 0.31*rm + 20.3, 0.31*rm + 21.3
	}
	return NotApplicable, NotApplicable, NotApplicable
}

/*
CEN 15251 の適応型快適温度を求める。

	Args:
		rm: 外気温度の移動平均, degree C

	Returns:
		中央値, カテゴリI, II, III の上限, degree C

	Notes:
		10 <= rm <= 30 の範囲外は NotApplicable
*/
func cen15251(rm float64) (central, upperI, upperII, upperIII float64) {
	if rm >= 10.0 && rm <= 30.0 {
		return 0.33*rm + 18.8, 0.33*rm + 20.8, 0.33*rm + 21.8, 0.33*rm + 22.8
	}
	return NotApplicable, NotApplicable, NotApplicable, NotApplicable
}

func fill(values *[numModels]float64, rmASH, rmCEN float64) {
	values[ASH55Central], values[ASH55Upper90], values[ASH55Upper80] = ash55(rmASH)
	values[CEN15251Central], values[CEN15251UpperI], values[CEN15251UpperII], values[CEN15251UpperIII] = cen15251(rmCEN)
}

/*
日ごとの適応型快適温度の表を作成する。

	Args:
		runningASH: ASHRAE 55 用の外気温度の移動平均, degree C, [365 or 366]
		runningCEN: CEN 15251 用の外気温度の移動平均, degree C, [365 or 366]
		env: 計算期間の種類
		dd: 夏期設計日の外気条件（nil 可）

	Notes:
		夏期設計日の値は計算期間が RunPeriodWeather または DesignDay の場合のみ求める。
		設計日の代表温度は (最高温度 + 最低温度) / 2 とする。
*/
func (s *AdaptiveComfortDailySchedule) Calculate(runningASH, runningCEN []float64, env EnvironmentKind, dd *SummerDesignDay) error {
	n := len(runningASH)
	if n != 365 && n != 366 {
		return errors.Errorf("running mean series must have 365 or 366 days, got %d", n)
	}
	if len(runningCEN) != n {
		return errors.Errorf("running mean series differ in length: %d and %d", n, len(runningCEN))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for m := range s.days {
		s.days[m] = make([]float64, n)
	}
	var values [numModels]float64
	for d := 0; d < n; d++ {
		fill(&values, runningASH[d], runningCEN[d])
		for m := ASH55Central; m < numModels; m++ {
			s.days[m][d] = values[m]
		}
	}
	for m := range s.days[None] {
		s.days[None][m] = NotApplicable
	}

	for m := range s.summerDesign {
		s.summerDesign[m] = NotApplicable
	}
	if dd != nil && (env == RunPeriodWeather || env == DesignDay) {
		avg := (dd.MaxDryBulb + (dd.MaxDryBulb - dd.DailyRange)) / 2.0
		fill(&s.summerDesign, avg, avg)
		s.summerDesign[None] = NotApplicable
		log.Debug().Float64("summer_design_day_mean", avg).Msg("Adaptive comfort design day values calculated")
	}
	return nil
}

/*
適応型快適温度を取り出す。

	Args:
		m: モデル
		dayOfYear: 通日（1始まり）
		designDay: 設計日の計算か否か

	Returns:
		適応型快適温度, degree C（適用範囲外または未計算の場合は NotApplicable）
*/
func (s *AdaptiveComfortDailySchedule) Value(m Model, dayOfYear int, designDay bool) float64 {
	if m <= None || m >= numModels {
		return NotApplicable
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if designDay {
		return s.summerDesign[m]
	}
	days := s.days[m]
	if dayOfYear < 1 || dayOfYear > len(days) {
		return NotApplicable
	}
	return days[dayOfYear-1]
}

// Days は表の日数を返す。未計算なら 0。
func (s *AdaptiveComfortDailySchedule) Days() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.days[ASH55Central])
}
