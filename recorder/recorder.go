package recorder

import (
	"io"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"zone_heat_balance/zone"
)

// 日時の書式
const dateTimeLayout = "2006-01-02 15:04:05"

// Row は出力ファイルの1行（ステップn、ゾーン1つ）
type Row struct {
	RunID    string `csv:"run_id"`
	Step     int    `csv:"step"`
	DateTime string `csv:"datetime"`
	Zone     string `csv:"zone"`

	OutdoorTemp float64 `csv:"t_o"`     // 外気温度, degree C
	MAT         float64 `csv:"t_r"`     // 室温, degree C
	RH          float64 `csv:"rh_r"`    // 相対湿度, %
	HumRat      float64 `csv:"x_r"`     // 絶対湿度, kg/kg(DA)
	HeatingSP   float64 `csv:"t_set_h"` // 暖房設定温度, degree C
	CoolingSP   float64 `csv:"t_set_c"` // 冷房設定温度, degree C
	DeadBand    bool    `csv:"deadband"`

	// 1ゾーン分
	LoadSingle        float64 `csv:"l_s_single"`       // 顕熱負荷, W
	LoadToHeatSingle  float64 `csv:"l_s_h_single"`     // 暖房設定温度への顕熱負荷, W
	LoadToCoolSingle  float64 `csv:"l_s_c_single"`     // 冷房設定温度への顕熱負荷, W
	MoistSingle       float64 `csv:"l_l_single"`       // 水分負荷, kg/s
	MoistToHumSingle  float64 `csv:"l_l_hum_single"`   // 加湿設定への水分負荷, kg/s
	MoistToDehumidify float64 `csv:"l_l_dehum_single"` // 除湿設定への水分負荷, kg/s

	// 乗数を掛けた値
	Load        float64 `csv:"l_s"`
	LoadToHeat  float64 `csv:"l_s_h"`
	LoadToCool  float64 `csv:"l_s_c"`
	Moist       float64 `csv:"l_l"`
	MoistToHum  float64 `csv:"l_l_hum"`
	MoistToDehm float64 `csv:"l_l_dehum"`

	Delivered        float64 `csv:"q_sup"`     // 空調機器の供給熱量, W
	HeatBalanceError float64 `csv:"q_err"`     // 空気の熱収支の残差, W
	HybridMultiplier float64 `csv:"c_mult_hm"` // 推定した熱容量倍率, -
}

// Recorder は計算結果を記録する。
type Recorder struct {
	YEAR     int
	runID    uuid.UUID
	stepSec  float64
	pressure float64
	rows     []*Row
}

/*
Recorder を作成する。

	Args:
		runID: 実行の識別子
		stepHours: 時間間隔, h
		pb: 大気圧, Pa（相対湿度の計算に用いる）
*/
func NewRecorder(runID uuid.UUID, stepHours, pb float64) *Recorder {
	return &Recorder{
		YEAR:     1989,
		runID:    runID,
		stepSec:  stepHours * 3600.0,
		pressure: pb,
	}
}

// ステップnの開始日時
func (r *Recorder) dateTime(n int) time.Time {
	start := time.Date(r.YEAR, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start.Add(time.Duration(float64(n) * r.stepSec * float64(time.Second)))
}

/*
ステップnの結果を記録する。

	Args:
		n: ステップ
		outdoorTemp: 外気温度, degree C
		reports: ゾーンごとの報告値
		delivered: ゾーンごとの空調機器の供給熱量, W（nil 可）
*/
func (r *Recorder) Record(n int, outdoorTemp float64, reports []zone.Report, delivered []float64) {
	dt := r.dateTime(n).Format(dateTimeLayout)
	for i, rp := range reports {
		row := &Row{
			RunID:       r.runID.String(),
			Step:        n,
			DateTime:    dt,
			Zone:        rp.Zone,
			OutdoorTemp: outdoorTemp,
			MAT:         rp.MAT,
			RH:          zone.PsyRhFnTdbWPb(rp.MAT, rp.HumRat, r.pressure) * 100.0,
			HumRat:      rp.HumRat,
			HeatingSP:   rp.HeatingSetpoint,
			CoolingSP:   rp.CoolingSetpoint,
			DeadBand:    rp.DeadBand,

			LoadSingle:        rp.Sensible.SingleTotal,
			LoadToHeatSingle:  rp.Sensible.SingleHeating,
			LoadToCoolSingle:  rp.Sensible.SingleCooling,
			MoistSingle:       rp.Moisture.SingleTotal,
			MoistToHumSingle:  rp.Moisture.SingleHeating,
			MoistToDehumidify: rp.Moisture.SingleCooling,

			Load:        rp.Sensible.Total,
			LoadToHeat:  rp.Sensible.Heating,
			LoadToCool:  rp.Sensible.Cooling,
			Moist:       rp.Moisture.Total,
			MoistToHum:  rp.Moisture.Heating,
			MoistToDehm: rp.Moisture.Cooling,

			HeatBalanceError: rp.HeatBalanceError,
			HybridMultiplier: rp.HybridMultiplier,
		}
		if i < len(delivered) {
			row.Delivered = delivered[i]
		}
		r.rows = append(r.rows, row)
	}
}

// Rows は記録した行を返す。
func (r *Recorder) Rows() []*Row {
	return r.rows
}

// Write は記録した結果を CSV で書き出す。
func (r *Recorder) Write(w io.Writer) error {
	return errors.Wrap(gocsv.Marshal(r.rows, w), "write results")
}

// Save は記録した結果をファイルに保存する。
func (r *Recorder) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create `%s`", path)
	}
	defer file.Close()

	log.Info().Str("path", path).Int("rows", len(r.rows)).Msg("Save calculation results")
	if err := r.Write(file); err != nil {
		return err
	}
	return errors.Wrapf(file.Close(), "close `%s`", path)
}
