// Package draft — черновик заявки, который участник собирает кнопками +/-
// перед отправкой. Живёт только в памяти бота, ядро видит лишь итоговые строки.
package draft

import (
	"sync"
	"time"

	"github.com/Spok95/session-bot/internal/models"
)

// Builder — счётчики по типам сессий в порядке первого добавления. Не потокобезопасен,
// доступ идёт через Store.
type Builder struct {
	ActivityDate string
	MessageID    int
	counts       map[int64]int
	order        []int64
	touched      time.Time
}

func NewBuilder(activityDate string, now time.Time) *Builder {
	return &Builder{ActivityDate: activityDate, counts: make(map[int64]int), touched: now}
}

func (b *Builder) Inc(typeID int64, now time.Time) int {
	if _, ok := b.counts[typeID]; !ok {
		b.order = append(b.order, typeID)
	}
	b.counts[typeID]++
	b.touched = now
	return b.counts[typeID]
}

// Dec не опускает счётчик ниже нуля.
func (b *Builder) Dec(typeID int64, now time.Time) int {
	if b.counts[typeID] > 0 {
		b.counts[typeID]--
	}
	b.touched = now
	return b.counts[typeID]
}

func (b *Builder) Count(typeID int64) int { return b.counts[typeID] }

// Lines — строки с count > 0.
func (b *Builder) Lines() []models.SessionLine {
	out := make([]models.SessionLine, 0, len(b.order))
	for _, id := range b.order {
		if c := b.counts[id]; c > 0 {
			out = append(out, models.SessionLine{SessionTypeID: id, Count: c})
		}
	}
	return out
}

func (b *Builder) Expired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(b.touched) > ttl
}

// Key — черновик принадлежит участнику в конкретном чате: в группе у каждого свой.
type Key struct {
	ChatID int64
	UserID string
}

// Store — черновики по Key с ограниченным временем жизни.
type Store struct {
	mu    sync.Mutex
	ttl   time.Duration
	byKey map[Key]*Builder
}

func NewStore(ttl time.Duration) *Store {
	return &Store{ttl: ttl, byKey: make(map[Key]*Builder)}
}

// Start заводит новый черновик участника, его прежний черновик выбрасывается.
func (s *Store) Start(k Key, activityDate string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byKey[k] = NewBuilder(activityDate, now)
}

// SetMessage привязывает черновик к сообщению с кнопками.
func (s *Store) SetMessage(k Key, messageID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.byKey[k]; ok {
		b.MessageID = messageID
	}
}

// live — черновик участника, если он жив и относится к messageID
// (0 — сообщение не проверяется). Истёкший удаляется.
func (s *Store) live(k Key, messageID int, now time.Time) (*Builder, bool) {
	b, ok := s.byKey[k]
	if !ok {
		return nil, false
	}
	if b.Expired(now, s.ttl) {
		delete(s.byKey, k)
		return nil, false
	}
	if messageID != 0 && b.MessageID != 0 && b.MessageID != messageID {
		return nil, false
	}
	return b, true
}

// With вызывает fn для живого черновика участника, привязанного к messageID.
func (s *Store) With(k Key, messageID int, now time.Time, fn func(b *Builder)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.live(k, messageID, now)
	if !ok {
		return false
	}
	fn(b)
	return true
}

// Take забирает черновик для отправки. Кнопка со старого сообщения черновик не трогает.
func (s *Store) Take(k Key, messageID int, now time.Time) (*Builder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.live(k, messageID, now)
	if !ok {
		return nil, false
	}
	delete(s.byKey, k)
	return b, true
}

func (s *Store) Drop(k Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byKey, k)
}

// Sweep удаляет истёкшие черновики, возвращает сколько удалено.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, b := range s.byKey {
		if b.Expired(now, s.ttl) {
			delete(s.byKey, k)
			n++
		}
	}
	return n
}
