package fluid

import (
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"zone_heat_balance/internal/recurring"
)

// ErrSubstanceNotFound は物質名が表に無いことを表す。物性値を一切求められないため実行を継続できない。
var ErrSubstanceNotFound = errors.New("substance not found")

type Option func(*Store)

// WithCacheSize は比熱キャッシュのスロット数を指定する。0 以下でキャッシュを使わない。
func WithCacheSize(n int) Option {
	return func(s *Store) {
		s.cacheSize = n
	}
}

// WithRegistry は警告の集計先を指定する。
func WithRegistry(r *recurring.Registry) Option {
	return func(s *Store) {
		s.registry = r
	}
}

/*
Store は冷媒とグリコールの物性値表を保持する。

	Notes:
		物質名から添字への変換は初回のみ行い、以降は添字で問い合わせる。
		表は読み込み後に変更しないので、問い合わせは複数の goroutine から同時に行ってよい。
*/
type Store struct {
	mu sync.RWMutex

	refrigerants     []*Refrigerant
	refrigerantIndex map[string]int
	glycols          []*Glycol
	glycolIndex      map[string]int
	raw              map[string]*RawGlycol

	registry  *recurring.Registry
	cache     *SpecificHeatCache
	cacheSize int

	// Reset のたびに増やし、Handle に保持した添字を無効にする
	generation uint64
}

// NewStore は既定のデータ（蒸気、水、エチレングリコール、プロピレングリコール）を読み込んだ Store を作る。
func NewStore(opts ...Option) (*Store, error) {
	s := &Store{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = recurring.NewRegistry(recurring.DefaultSummaryEvery)
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	s.mu.Lock()
	s.refrigerants = nil
	s.refrigerantIndex = make(map[string]int)
	s.glycols = nil
	s.glycolIndex = make(map[string]int)
	s.raw = make(map[string]*RawGlycol)
	s.cache = nil
	if s.cacheSize > 0 {
		s.cache = NewSpecificHeatCache(s.cacheSize)
	}
	s.generation++
	s.mu.Unlock()

	if err := s.loadDefaults(); err != nil {
		return errors.WithMessage(err, "load default fluid properties")
	}
	return nil
}

/*
Store を読み込み直後の状態に戻す。

	Notes:
		利用者が追加した物質、混合液、キャッシュ、警告の集計をすべて破棄する。
		以前に解決した Handle は次回の問い合わせ時に再度解決される。
*/
func (s *Store) Reset() error {
	s.registry.Reset()
	return s.load()
}

// Registry は警告の集計先を返す。
func (s *Store) Registry() *recurring.Registry {
	return s.registry
}

// Summary は範囲外の問い合わせなどの警告を物質・物性値ごとに集計して返す。
func (s *Store) Summary() []recurring.Entry {
	return s.registry.Summary()
}

// Cache は比熱キャッシュを返す。キャッシュを使わない場合は nil。
func (s *Store) Cache() *SpecificHeatCache {
	return s.cache
}

func normalize(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// RefrigerantIndex は冷媒の添字を返す。
func (s *Store) RefrigerantIndex(name string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.refrigerantIndex[normalize(name)]
	if !ok {
		return 0, errors.Wrapf(ErrSubstanceNotFound, "refrigerant %q", name)
	}
	return idx, nil
}

// GlycolIndex は混合液の添字を返す。
func (s *Store) GlycolIndex(name string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.glycolIndex[normalize(name)]
	if !ok {
		return 0, errors.Wrapf(ErrSubstanceNotFound, "glycol %q", name)
	}
	return idx, nil
}

// AddRefrigerant は冷媒を追加する。同名の冷媒がある場合は置き換える。
func (s *Store) AddRefrigerant(r *Refrigerant) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.Name = normalize(r.Name)
	if idx, ok := s.refrigerantIndex[r.Name]; ok {
		s.refrigerants[idx] = r
		return idx
	}
	s.refrigerants = append(s.refrigerants, r)
	idx := len(s.refrigerants) - 1
	s.refrigerantIndex[r.Name] = idx
	return idx
}

// AddRawGlycol は濃度・温度に対するグリコールの表を追加する。同名の表がある場合は置き換える。
func (s *Store) AddRawGlycol(g *RawGlycol) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g.Name = normalize(g.Name)
	s.raw[g.Name] = g
}

/*
グリコールを指定の濃度で混合した混合液を追加する。

	Args:
		name: 混合液の名前
		base: もとになるグリコールの表の名前
		concentration: 濃度, -

	Returns:
		混合液の添字

	Notes:
		濃度が表の範囲外の場合は最も近い濃度の値を用い、警告を記録する。
		同名の混合液がある場合は置き換える。
*/
func (s *Store) AddGlycolMixture(name, base string, concentration float64) (int, error) {
	s.mu.RLock()
	raw, ok := s.raw[normalize(base)]
	s.mu.RUnlock()
	if !ok {
		return 0, errors.Wrapf(ErrSubstanceNotFound, "glycol table %q for mixture %q", base, name)
	}

	g := &Glycol{
		Name:          normalize(name),
		Source:        sourceOf(raw.Name),
		Concentration: concentration,
	}
	for p := Property(0); p < numProperties; p++ {
		if raw.Data[p] == nil {
			continue
		}
		values, status := InterpValuesForGlycolConc(raw.Concentrations, raw.Data[p], concentration)
		if status != InRange {
			if s.registry.Record(g.Name, p.String()+" concentration "+status.String()) {
				log.Warn().
					Str("substance", g.Name).
					Str("property", p.String()).
					Float64("concentration", concentration).
					Float64("low", raw.Concentrations[0]).
					Float64("high", raw.Concentrations[len(raw.Concentrations)-1]).
					Msg("Glycol concentration outside table range; using nearest concentration")
			}
		}
		if countPresent(values) < 2 {
			continue
		}
		tb, err := NewTable1D(append([]float64(nil), raw.Temps...), values)
		if err != nil {
			return 0, errors.WithMessagef(err, "glycol mixture %s %s", g.Name, p)
		}
		g.props[p] = tb
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if idx, ok := s.glycolIndex[g.Name]; ok {
		s.glycols[idx] = g
		return idx, nil
	}
	s.glycols = append(s.glycols, g)
	idx := len(s.glycols) - 1
	s.glycolIndex[g.Name] = idx
	return idx, nil
}

func countPresent(xs []float64) int {
	n := 0
	for _, x := range xs {
		if isPresent(x) {
			n++
		}
	}
	return n
}

// LoadRefrigerantCSV は利用者の冷媒の表を読み込み、既定の冷媒に追加または上書きする。
func (s *Store) LoadRefrigerantCSV(saturated, superheated io.Reader) error {
	refs, err := readRefrigerants(saturated, superheated)
	if err != nil {
		return err
	}
	for _, r := range refs {
		s.AddRefrigerant(r)
		log.Debug().Str("substance", r.Name).Msg("Refrigerant loaded")
	}
	return nil
}

// LoadGlycolCSV は利用者のグリコールの表を読み込み、既定の表に追加または上書きする。
func (s *Store) LoadGlycolCSV(in io.Reader) error {
	gs, err := readRawGlycols(in)
	if err != nil {
		return err
	}
	for _, g := range gs {
		s.AddRawGlycol(g)
		log.Debug().Str("substance", g.Name).Msg("Glycol table loaded")
	}
	return nil
}

/*
Handle は物質名と解決済みの添字を保持する。

	Notes:
		初回の問い合わせで名前を添字に解決し、以降は保持した添字を用いる。
		1つの Handle を複数の goroutine で共有しないこと。
*/
type Handle struct {
	Name string

	index      int
	generation uint64
}

func NewHandle(name string) *Handle {
	return &Handle{Name: name}
}

// ResolveRefrigerant は Handle を冷媒の添字に解決する。
func (s *Store) ResolveRefrigerant(h *Handle) (int, error) {
	return s.resolve(h, s.RefrigerantIndex)
}

// ResolveGlycol は Handle を混合液の添字に解決する。
func (s *Store) ResolveGlycol(h *Handle) (int, error) {
	return s.resolve(h, s.GlycolIndex)
}

func (s *Store) resolve(h *Handle, lookup func(string) (int, error)) (int, error) {
	s.mu.RLock()
	gen := s.generation
	s.mu.RUnlock()

	if h.generation == gen {
		return h.index, nil
	}
	idx, err := lookup(h.Name)
	if err != nil {
		return 0, err
	}
	h.index, h.generation = idx, gen
	return idx, nil
}

// 範囲外の問い合わせを記録し、初回のみ詳細を出力する。
func (s *Store) warnRange(substance, prop string, status RangeStatus, value, low, high float64) {
	if status == InRange {
		return
	}
	if s.registry.Record(substance, prop+" "+status.String()) {
		log.Warn().
			Str("substance", substance).
			Str("property", prop).
			Float64("value", value).
			Float64("low", low).
			Float64("high", high).
			Msg("Fluid property query outside table range; extrapolating from boundary")
	}
}

func (s *Store) degenerateTracker(substance, prop string) *recurring.Tracker {
	return s.registry.Tracker(substance, prop+" degenerate interpolation")
}
