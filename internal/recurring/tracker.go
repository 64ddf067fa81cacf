package recurring

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// 同一メッセージの要約を出力する間隔（発生回数）
const DefaultSummaryEvery = 100

// Key は警告の識別子（物質名と警告の種類の組）
type Key struct {
	Substance string
	Kind      string
}

/*
Tracker は同一種類の警告の発生回数を数え、出力を間引く。

	Notes:
		初回のみ詳細メッセージを出力させ、以降は summaryEvery 回ごとに
		「前回のメッセージ以降 N 回」という要約を出力する。
		カウンタは atomic であり、複数の goroutine から同時に呼び出してよい。
*/
type Tracker struct {
	key          Key
	messageIndex int
	summaryEvery int64
	count        atomic.Int64
}

/*
発生を1回記録する。

	Returns:
		詳細メッセージを出力すべきか否か（初回のみ true）
*/
func (t *Tracker) RecordOccurrence() bool {
	n := t.count.Add(1)
	if n == 1 {
		return true
	}
	if t.summaryEvery > 0 && (n-1)%t.summaryEvery == 0 {
		log.Warn().
			Str("substance", t.key.Substance).
			Str("kind", t.key.Kind).
			Int("message_index", t.messageIndex).
			Int64("since_last", t.summaryEvery).
			Int64("total", n).
			Msg("Recurring warning repeated since last message")
	}
	return false
}

// Count は記録された発生回数を返す。
func (t *Tracker) Count() int64 {
	return t.count.Load()
}

// MessageIndex は Registry 内でこの警告に割り当てられた番号を返す。
func (t *Tracker) MessageIndex() int {
	return t.messageIndex
}

// Entry は実行終了時の要約の1行
type Entry struct {
	Substance    string
	Kind         string
	MessageIndex int
	Count        int64
}

// Registry は (物質, 警告種類) ごとの Tracker を保持する。
type Registry struct {
	mu           sync.Mutex
	trackers     map[Key]*Tracker
	summaryEvery int64
	next         int
}

func NewRegistry(summaryEvery int) *Registry {
	return &Registry{
		trackers:     make(map[Key]*Tracker),
		summaryEvery: int64(summaryEvery),
	}
}

// Tracker は key に対応する Tracker を返す。無ければ作成する。
func (r *Registry) Tracker(substance, kind string) *Tracker {
	k := Key{Substance: substance, Kind: kind}

	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.trackers[k]; ok {
		return t
	}
	r.next++
	t := &Tracker{key: k, messageIndex: r.next, summaryEvery: r.summaryEvery}
	r.trackers[k] = t
	return t
}

// Record は Tracker(substance, kind).RecordOccurrence() の短縮形
func (r *Registry) Record(substance, kind string) bool {
	return r.Tracker(substance, kind).RecordOccurrence()
}

// Count は記録済みの発生回数を返す。未登録なら 0。
func (r *Registry) Count(substance, kind string) int64 {
	r.mu.Lock()
	t, ok := r.trackers[Key{Substance: substance, Kind: kind}]
	r.mu.Unlock()
	if !ok {
		return 0
	}
	return t.Count()
}

// Summary は発生した警告の一覧をメッセージ番号順に返す。
func (r *Registry) Summary() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]Entry, 0, len(r.trackers))
	for k, t := range r.trackers {
		n := t.Count()
		if n == 0 {
			continue
		}
		entries = append(entries, Entry{
			Substance:    k.Substance,
			Kind:         k.Kind,
			MessageIndex: t.messageIndex,
			Count:        n,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].MessageIndex < entries[j].MessageIndex
	})
	return entries
}

// LogSummary は実行終了時の要約を出力する。
func (r *Registry) LogSummary() {
	for _, e := range r.Summary() {
		log.Warn().
			Str("substance", e.Substance).
			Str("kind", e.Kind).
			Int64("count", e.Count).
			Msg("Recurring warning summary")
	}
}

// Reset は全ての Tracker を破棄する（次の実行の前に呼ぶ）。
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.trackers = make(map[Key]*Tracker)
	r.next = 0
}
