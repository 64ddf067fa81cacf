package schedule

import (
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"zone_heat_balance/zone"
)

// OptionalFloat は空欄を許す数値の列
type OptionalFloat struct {
	Value float64
	Valid bool
}

func (f *OptionalFloat) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*f = OptionalFloat{}
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = OptionalFloat{Value: v, Valid: true}
	return nil
}

func (f OptionalFloat) MarshalCSV() (string, error) {
	if !f.Valid {
		return "", nil
	}
	return strconv.FormatFloat(f.Value, 'f', -1, 64), nil
}

// Row はスケジュールファイルの1行
type Row struct {
	Zone           string        `csv:"zone"`
	Step           int           `csv:"step"`             // この値を適用し始めるステップ
	ControlType    float64       `csv:"control_type"`     // 制御種類（0～4）
	SingleHeat     float64       `csv:"single_heat"`      // 暖房のみの設定温度, degree C
	SingleCool     float64       `csv:"single_cool"`      // 冷房のみの設定温度, degree C
	SingleHeatCool float64       `csv:"single_heat_cool"` // 冷暖房の単一設定温度, degree C
	DualHeat       float64       `csv:"dual_heat"`        // 2設定温度の暖房設定温度, degree C
	DualCool       float64       `csv:"dual_cool"`        // 2設定温度の冷房設定温度, degree C
	HumidifyRH     OptionalFloat `csv:"humidify_rh"`      // 加湿設定相対湿度, %
	DehumidifyRH   OptionalFloat `csv:"dehumidify_rh"`    // 除湿設定相対湿度, %
	MeasuredTemp   OptionalFloat `csv:"measured_temp"`    // 実測室温, degree C
}

// Values はゾーンのスケジュールの現在値
type Values struct {
	Setpoints    zone.SetpointSchedules
	Humidistat   zone.HumidistatSetpoints
	MeasuredTemp float64 // 実測室温, degree C（無い場合は NaN）
}

func (r *Row) values() Values {
	v := Values{
		Setpoints: zone.SetpointSchedules{
			ControlType:    r.ControlType,
			SingleHeating:  r.SingleHeat,
			SingleCooling:  r.SingleCool,
			SingleHeatCool: r.SingleHeatCool,
			DualHeating:    r.DualHeat,
			DualCooling:    r.DualCool,
		},
		MeasuredTemp: math.NaN(),
	}
	if r.HumidifyRH.Valid && r.DehumidifyRH.Valid {
		v.Humidistat = zone.HumidistatSetpoints{
			Enabled:         true,
			HumidifyingRH:   r.HumidifyRH.Value,
			DehumidifyingRH: r.DehumidifyRH.Value,
		}
	}
	if r.MeasuredTemp.Valid {
		v.MeasuredTemp = r.MeasuredTemp.Value
	}
	return v
}

/*
Schedule はゾーンごとの設定温度・制御種類のスケジュール

	Notes:
		各行の値は次の行のステップまで適用する。
		最後の行の値は計算期間の終わりまで適用する。
*/
type Schedule struct {
	rows map[string][]*Row // ゾーン名ごとにステップ順に並べた行
}

// New は行からスケジュールを作成する。
func New(rows []*Row) (*Schedule, error) {
	s := &Schedule{rows: make(map[string][]*Row)}
	for i, r := range rows {
		if r.Zone == "" {
			return nil, errors.Errorf("row %d: zone name is empty", i+1)
		}
		if r.Step < 0 {
			return nil, errors.Errorf("row %d: negative step %d", i+1, r.Step)
		}
		s.rows[r.Zone] = append(s.rows[r.Zone], r)
	}
	for name, zr := range s.rows {
		sort.SliceStable(zr, func(i, j int) bool { return zr[i].Step < zr[j].Step })
		if zr[0].Step != 0 {
			return nil, errors.Errorf("zone %s: schedule must start at step 0, got %d", name, zr[0].Step)
		}
	}
	return s, nil
}

// Load は CSV からスケジュールを読み込む。
func Load(r io.Reader) (*Schedule, error) {
	var rows []*Row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, errors.Wrap(err, "parse schedule")
	}
	return New(rows)
}

// LoadFile はスケジュールファイルを読み込む。
func LoadFile(path string) (*Schedule, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open schedule `%s`", path)
	}
	defer file.Close()

	log.Info().Str("path", path).Msg("Load schedule")
	s, err := Load(file)
	if err != nil {
		return nil, errors.WithMessagef(err, "schedule `%s`", path)
	}
	return s, nil
}

// Constant は全ステップで同じ値のスケジュールを作成する。
func Constant(rows map[string]Row) *Schedule {
	s := &Schedule{rows: make(map[string][]*Row, len(rows))}
	for name, r := range rows {
		r := r
		r.Zone, r.Step = name, 0
		s.rows[name] = []*Row{&r}
	}
	return s
}

// Has はゾーンのスケジュールがあるか否かを返す。
func (s *Schedule) Has(zoneName string) bool {
	_, ok := s.rows[zoneName]
	return ok
}

/*
ステップnにおけるゾーンのスケジュールの値を取得する。

	Args:
		zoneName: ゾーン名
		n: ステップ

	Returns:
		スケジュールの値
*/
func (s *Schedule) At(zoneName string, n int) (Values, error) {
	zr, ok := s.rows[zoneName]
	if !ok {
		return Values{}, errors.Errorf("no schedule for zone %s", zoneName)
	}
	// n より後に始まる最初の行の1つ前
	i := sort.Search(len(zr), func(i int) bool { return zr[i].Step > n }) - 1
	if i < 0 {
		i = 0
	}
	return zr[i].values(), nil
}

// Save はスケジュールを CSV で書き出す。
func (s *Schedule) Save(w io.Writer) error {
	names := make([]string, 0, len(s.rows))
	for name := range s.rows {
		names = append(names, name)
	}
	sort.Strings(names)

	var rows []*Row
	for _, name := range names {
		rows = append(rows, s.rows[name]...)
	}
	return errors.Wrap(gocsv.Marshal(rows, w), "write schedule")
}
