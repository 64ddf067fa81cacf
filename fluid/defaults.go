package fluid

import (
	"bytes"
	"embed"
)

//go:embed data/*.csv
var defaultData embed.FS

// 既定の混合液（純水）
var defaultMixtures = []struct {
	name          string
	base          string
	concentration float64
}{
	{WaterName, WaterName, 0.0},
}

// 既定のデータを読み込む。
func (s *Store) loadDefaults() error {
	sat, err := defaultData.ReadFile("data/refrigerant_saturated.csv")
	if err != nil {
		return err
	}
	sh, err := defaultData.ReadFile("data/refrigerant_superheated.csv")
	if err != nil {
		return err
	}
	if err := s.LoadRefrigerantCSV(bytes.NewReader(sat), bytes.NewReader(sh)); err != nil {
		return err
	}

	gly, err := defaultData.ReadFile("data/glycol.csv")
	if err != nil {
		return err
	}
	if err := s.LoadGlycolCSV(bytes.NewReader(gly)); err != nil {
		return err
	}

	for _, m := range defaultMixtures {
		if _, err := s.AddGlycolMixture(m.name, m.base, m.concentration); err != nil {
			return err
		}
	}
	return nil
}
