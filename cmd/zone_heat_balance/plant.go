package main

import (
	"math"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"zone_heat_balance/fluid"
	"zone_heat_balance/internal/config"
	"zone_heat_balance/internal/recurring"
)

/*
物性値の表を用意する。

	Args:
		fc: 物性値の表の設定
		reg: 警告の集計先

	Returns:
		既定の表に利用者の表と混合液を加えた Store
*/
func newFluidStore(fc *config.FluidConfig, reg *recurring.Registry) (*fluid.Store, error) {
	size := 0
	if fc.Cache != nil && *fc.Cache {
		size = fc.CacheSize
	}
	store, err := fluid.NewStore(fluid.WithCacheSize(size), fluid.WithRegistry(reg))
	if err != nil {
		return nil, errors.WithMessage(err, "load default fluid properties")
	}

	if fc.RefrigerantSaturated != "" {
		sat, err := os.Open(fc.RefrigerantSaturated)
		if err != nil {
			return nil, errors.Wrap(err, "open saturated refrigerant table")
		}
		defer sat.Close()
		sh, err := os.Open(fc.RefrigerantSuperheated)
		if err != nil {
			return nil, errors.Wrap(err, "open superheated refrigerant table")
		}
		defer sh.Close()
		if err := store.LoadRefrigerantCSV(sat, sh); err != nil {
			return nil, errors.WithMessagef(err, "refrigerant tables `%s`, `%s`", fc.RefrigerantSaturated, fc.RefrigerantSuperheated)
		}
	}

	if fc.Glycol != "" {
		f, err := os.Open(fc.Glycol)
		if err != nil {
			return nil, errors.Wrap(err, "open glycol table")
		}
		defer f.Close()
		if err := store.LoadGlycolCSV(f); err != nil {
			return nil, errors.WithMessagef(err, "glycol table `%s`", fc.Glycol)
		}
	}

	for _, m := range fc.Mixtures {
		if _, err := store.AddGlycolMixture(m.Name, m.Glycol, m.Concentration); err != nil {
			return nil, errors.WithMessagef(err, "fluid mixture %s", m.Name)
		}
		log.Debug().Str("name", m.Name).Str("glycol", m.Glycol).Float64("concentration", m.Concentration).Msg("Fluid mixture added")
	}
	return store, nil
}

// 温水コイル
type hydronicCoil struct {
	fluid      *fluid.Handle
	flowRate   float64 // 体積流量, m3/s
	supplyTemp float64 // 往き温度, degree C
}

/*
温水コイルの最大加熱能力を求める。

	Args:
		store: 物性値の表
		zoneTemp: 室温, degree C

	Returns:
		最大加熱能力, W

	Notes:
		還り温度が室温まで下がる（温度効率1）とし、比熱は往き温度と室温の平均温度で求める。
*/
func (c *hydronicCoil) capacity(store *fluid.Store, zoneTemp float64) (float64, error) {
	idx, err := store.ResolveGlycol(c.fluid)
	if err != nil {
		return 0.0, err
	}
	dt := c.supplyTemp - zoneTemp
	if dt <= 0.0 {
		return 0.0, nil
	}
	rho := store.Density(idx, c.supplyTemp)
	cp := store.SpecificHeat(idx, (c.supplyTemp+zoneTemp)/2.0)
	return rho * c.flowRate * cp * dt, nil
}

// 蒸気コイル
type steamCoil struct {
	steam    *fluid.Handle
	massFlow float64 // 質量流量, kg/s
	temp     float64 // 飽和温度, degree C
}

/*
蒸気コイルの最大加熱能力を求める。

	Returns:
		最大加熱能力, W

	Notes:
		飽和蒸気が飽和水まで凝縮するときの放熱量とする。
*/
func (c *steamCoil) capacity(store *fluid.Store) (float64, error) {
	idx, err := store.ResolveRefrigerant(c.steam)
	if err != nil {
		return 0.0, err
	}
	hg := store.SaturatedEnthalpy(idx, c.temp, 1.0)
	hf := store.SaturatedEnthalpy(idx, c.temp, 0.0)
	return c.massFlow * (hg - hf), nil
}

/*
plant はゾーンの空調機器

	Notes:
		コイルがある場合の加熱能力はコイルの能力の合計とし、
		コイルが無い場合は理想空調機の能力とする（0 は無制限）。
*/
type plant struct {
	heatingCapacity float64 // W
	coolingCapacity float64 // W
	hydronic        *hydronicCoil
	steam           *steamCoil
}

func newPlant(zc *config.ZoneConfig) *plant {
	p := &plant{
		heatingCapacity: zc.IdealLoads.HeatingCapacity,
		coolingCapacity: zc.IdealLoads.CoolingCapacity,
	}
	if h := zc.Hydronic; h != nil {
		p.hydronic = &hydronicCoil{
			fluid:      fluid.NewHandle(h.Fluid),
			flowRate:   h.FlowRate,
			supplyTemp: h.SupplyTemp,
		}
	}
	if s := zc.SteamCoil; s != nil {
		p.steam = &steamCoil{
			steam:    fluid.NewHandle(fluid.SteamName),
			massFlow: s.MassFlow,
			temp:     s.Temp,
		}
	}
	return p
}

func limit(capacity float64) float64 {
	if capacity <= 0.0 {
		return math.Inf(1)
	}
	return capacity
}

/*
要求された顕熱負荷のうち供給できる熱量を求める。

	Args:
		store: 物性値の表
		load: 設定温度にするために必要な負荷, W（正: 加熱、負: 冷却）
		zoneTemp: 室温, degree C

	Returns:
		供給熱量, W
*/
func (p *plant) deliver(store *fluid.Store, load, zoneTemp float64) (float64, error) {
	switch {
	case load > 0.0:
		heatCap := limit(p.heatingCapacity)
		if p.hydronic != nil || p.steam != nil {
			heatCap = 0.0
			if p.hydronic != nil {
				q, err := p.hydronic.capacity(store, zoneTemp)
				if err != nil {
					return 0.0, errors.WithMessage(err, "hydronic coil")
				}
				heatCap += q
			}
			if p.steam != nil {
				q, err := p.steam.capacity(store)
				if err != nil {
					return 0.0, errors.WithMessage(err, "steam coil")
				}
				heatCap += q
			}
		}
		return math.Min(load, heatCap), nil
	case load < 0.0:
		return math.Max(load, -limit(p.coolingCapacity)), nil
	default:
		return 0.0, nil
	}
}
