package app

import "sync"

// ChatLimiter обрабатывает апдейты одного чата строго по очереди: черновик
// и кнопки заявки не должны гоняться друг с другом. Разные чаты не блокируют друг друга.
type ChatLimiter struct {
	mu     sync.Mutex
	byChat map[int64]*chatSlot
}

type chatSlot struct {
	mu      sync.Mutex
	waiters int
}

func NewChatLimiter() *ChatLimiter {
	return &ChatLimiter{byChat: make(map[int64]*chatSlot)}
}

// lock ждёт очереди чата и возвращает unlock. Слот удаляется, когда его никто не ждёт.
func (l *ChatLimiter) lock(chatID int64) func() {
	l.mu.Lock()
	s, ok := l.byChat[chatID]
	if !ok {
		s = &chatSlot{}
		l.byChat[chatID] = s
	}
	s.waiters++
	l.mu.Unlock()

	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		l.mu.Lock()
		s.waiters--
		if s.waiters == 0 {
			delete(l.byChat, chatID)
		}
		l.mu.Unlock()
	}
}

// active — сколько чатов сейчас заняты или ждут.
func (l *ChatLimiter) active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byChat)
}
