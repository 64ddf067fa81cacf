package weather

import (
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"zone_heat_balance/comfort"
)

// 1年の日数
const (
	daysPerYear     = 365
	daysPerLeapYear = 366
)

// DataRow は気象データファイルの1行（1時間）
type DataRow struct {
	Month         int     `csv:"month"`
	Day           int     `csv:"day"`
	Hour          int     `csv:"hour"`           // 0～23
	DryBulb       float64 `csv:"dry_bulb"`       // 外気温度, degree C
	HumidityRatio float64 `csv:"humidity_ratio"` // 外気絶対湿度, g/kg(DA)
}

/*
Weather は外気条件

	Notes:
		1時間ごとのデータを時間間隔に合わせて補間して保持する。
		ステップ n の値は n 番目の時刻（0時始まり）の瞬時値とする。
*/
type Weather struct {
	itv Interval

	hourlyTemp   []float64 // 1時間ごとの外気温度, degree C
	hourlyHumRat []float64 // 1時間ごとの外気絶対湿度, kg/kg(DA)
	tempNs       []float64 // ステップnにおける外気温度, degree C, [n]
	humRatNs     []float64 // ステップnにおける外気絶対湿度, kg/kg(DA), [n]
}

/*
1時間ごとの気象データから外気条件を作成する。

	Args:
		temp: 1時間ごとの外気温度, degree C
		humRat: 1時間ごとの外気絶対湿度, kg/kg(DA)
		itv: 時間間隔

	Returns:
		外気条件

	Notes:
		データ数は24の倍数（1日単位）とする。
*/
func New(temp, humRat []float64, itv Interval) (*Weather, error) {
	if len(temp) == 0 || len(temp)%24 != 0 {
		return nil, errors.Errorf("weather data must cover whole days, got %d hours", len(temp))
	}
	if len(humRat) != len(temp) {
		return nil, errors.Errorf("weather columns differ in length: %d and %d", len(temp), len(humRat))
	}
	if floats.HasNaN(temp) || floats.HasNaN(humRat) {
		return nil, errors.New("weather data contains missing values")
	}

	return &Weather{
		itv:          itv,
		hourlyTemp:   temp,
		hourlyHumRat: humRat,
		tempNs:       interpolate(temp, itv),
		humRatNs:     interpolate(humRat, itv),
	}, nil
}

// WithInterval は同じ気象データを別の時間間隔に補間した外気条件を返す。
func (w *Weather) WithInterval(itv Interval) *Weather {
	if itv == w.itv {
		return w
	}
	return &Weather{
		itv:          itv,
		hourlyTemp:   w.hourlyTemp,
		hourlyHumRat: w.hourlyHumRat,
		tempNs:       interpolate(w.hourlyTemp, itv),
		humRatNs:     interpolate(w.hourlyHumRat, itv),
	}
}

/*
気象データを読み込む。

	Args:
		r: CSV（month, day, hour, dry_bulb, humidity_ratio）
		itv: 時間間隔

	Returns:
		外気条件
*/
func Load(r io.Reader, itv Interval) (*Weather, error) {
	var rows []*DataRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, errors.Wrap(err, "parse weather data")
	}

	temp := make([]float64, len(rows))
	humRat := make([]float64, len(rows))
	for i, row := range rows {
		temp[i] = row.DryBulb
		// g/kgDA から kg/kgDA へ単位変換を行う。
		humRat[i] = row.HumidityRatio / 1000.0
	}
	return New(temp, humRat, itv)
}

// LoadFile は気象データのファイルを読み込む。
func LoadFile(path string, itv Interval) (*Weather, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open weather data `%s`", path)
	}
	defer file.Close()

	log.Info().Str("path", path).Msg("Load weather data")
	w, err := Load(file, itv)
	if err != nil {
		return nil, errors.WithMessagef(err, "weather data `%s`", path)
	}
	return w, nil
}

/*
1時間ごとのデータを指定された間隔のデータに補間する。

	Args:
		data: 1時間ごとのデータ
		itv: 生成するデータの時間間隔

	Returns:
		指定する時間間隔に補間されたデータ

	Notes:
		最後の時刻と次の日（最初の時刻）の間は最初のデータで補間する。
*/
func interpolate(data []float64, itv Interval) []float64 {
	nalpha := itv.StepsPerHour()
	if nalpha == 1 {
		out := make([]float64, len(data))
		copy(out, data)
		return out
	}

	ndata := len(data)
	out := make([]float64, ndata*nalpha)
	off := 0
	for i := 0; i < ndata; i++ {
		next := data[(i+1)%ndata]
		for j := 0; j < nalpha; j++ {
			// 補間比率の係数
			alpha := 1.0 - float64(j)/float64(nalpha)
			out[off] = alpha*data[i] + (1.0-alpha)*next
			off++
		}
	}
	return out
}

// Interval は時間間隔を返す。
func (w *Weather) Interval() Interval {
	return w.itv
}

// Steps はデータのステップ数を返す。
func (w *Weather) Steps() int {
	return len(w.tempNs)
}

// Days はデータの日数を返す。
func (w *Weather) Days() int {
	return len(w.hourlyTemp) / 24
}

/*
ステップnにおける外気条件を取得する。

	Args:
		n: ステップ（データの長さを超える場合は先頭に戻る）

	Returns:
		temp: 外気温度, degree C
		humRat: 外気絶対湿度, kg/kg(DA)
*/
func (w *Weather) At(n int) (temp, humRat float64) {
	i := n % len(w.tempNs)
	if i < 0 {
		i += len(w.tempNs)
	}
	return w.tempNs[i], w.humRatNs[i]
}

// DailyMeans は日平均外気温度を返す, degree C, [日数]
func (w *Weather) DailyMeans() []float64 {
	days := w.Days()
	means := make([]float64, days)
	for d := 0; d < days; d++ {
		means[d] = stat.Mean(w.hourlyTemp[24*d:24*(d+1)], nil)
	}
	return means
}

/*
適応型快適温度の計算に用いる外気温度の移動平均を求める。

	Returns:
		ash: ASHRAE 55 の移動平均, degree C, [365 or 366]
		cen: CEN 15251 の移動平均, degree C, [365 or 366]

	Notes:
		1年に満たないデータは繰り返して1年分とする。
*/
func (w *Weather) RunningMeans() (ash, cen []float64) {
	daily := w.DailyMeans()

	n := daysPerYear
	if len(daily) == daysPerLeapYear {
		n = daysPerLeapYear
	}
	year := make([]float64, n)
	for d := range year {
		year[d] = daily[d%len(daily)]
	}
	return comfort.ASH55RunningMean(year), comfort.CEN15251RunningMean(year)
}

/*
夏期設計日の外気条件を求める。

	Returns:
		日平均外気温度が最も高い日の最高外気温度と日較差
*/
func (w *Weather) SummerDesignDay() comfort.SummerDesignDay {
	daily := w.DailyMeans()
	d := floats.MaxIdx(daily)
	hours := w.hourlyTemp[24*d : 24*(d+1)]
	tmax, tmin := floats.Max(hours), floats.Min(hours)
	return comfort.SummerDesignDay{MaxDryBulb: tmax, DailyRange: tmax - tmin}
}
