package fluid

import (
	"math"
	"sync/atomic"
)

// 比熱キャッシュの既定のスロット数
const DefaultCacheSize = 1 << 16

// スロットの番地に用いる温度のビット（符号・指数部と仮数部の上位24ビット）
const cacheQuantizeShift = 28

type cacheEntry struct {
	tBits  uint64 // 温度のビット列
	glycol int    // グリコールの添字
	value  float64
}

/*
SpecificHeatCache はグリコールの比熱を温度で引く直接写像キャッシュ

	Notes:
		番地は量子化した温度とグリコールの添字の排他的論理和をマスクして求める。
		各スロットは1件のみ保持し、衝突時は黙って上書きする。
		スロットには温度のビット列そのものを保持し、一致した場合のみ値を返すので、
		キャッシュの有無で結果は変わらない。
		スロットの読み書きは atomic に1件単位で入れ替えるため、複数の goroutine から共有してよい。
*/
type SpecificHeatCache struct {
	slots  []atomic.Pointer[cacheEntry]
	mask   uint64
	hits   atomic.Int64
	misses atomic.Int64
}

// NewSpecificHeatCache は size 以上の2の冪のスロット数のキャッシュを作る。
func NewSpecificHeatCache(size int) *SpecificHeatCache {
	n := 1
	for n < size {
		n <<= 1
	}
	return &SpecificHeatCache{
		slots: make([]atomic.Pointer[cacheEntry], n),
		mask:  uint64(n - 1),
	}
}

func (c *SpecificHeatCache) slot(glycol int, tBits uint64) uint64 {
	return ((tBits >> cacheQuantizeShift) ^ uint64(glycol)) & c.mask
}

/*
キャッシュから値を取り出す。無ければ compute で求めて格納してから返す。

	Args:
		glycol: グリコールの添字
		t: 温度, degree C
		compute: キャッシュが無い場合の計算
*/
func (c *SpecificHeatCache) Get(glycol int, t float64, compute func() float64) float64 {
	bits := math.Float64bits(t)
	s := &c.slots[c.slot(glycol, bits)]

	if e := s.Load(); e != nil && e.tBits == bits && e.glycol == glycol {
		c.hits.Add(1)
		return e.value
	}

	c.misses.Add(1)
	v := compute()
	s.Store(&cacheEntry{tBits: bits, glycol: glycol, value: v})
	return v
}

// Stats はヒット数とミス数を返す。
func (c *SpecificHeatCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
