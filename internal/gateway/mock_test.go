package gateway

import (
	"fmt"
	"sync"
)

type scrollCall struct {
	axis   string
	amount int
}

// mockInjector records calls and tracks a fake cursor.
type mockInjector struct {
	mu      sync.Mutex
	x, y    int
	moves   [][2]int
	clicks  []string
	scrolls []scrollCall

	positionErr error
	clickErr    error
	scrollPanic bool
}

func (m *mockInjector) Position() (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.positionErr != nil {
		return 0, 0, m.positionErr
	}
	return m.x, m.y, nil
}

func (m *mockInjector) MoveTo(x, y int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.moves = append(m.moves, [2]int{x, y})
	m.x, m.y = x, y
	return nil
}

func (m *mockInjector) Click(button string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clickErr != nil {
		return m.clickErr
	}
	m.clicks = append(m.clicks, button)
	return nil
}

func (m *mockInjector) Scroll(amount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scrollPanic {
		panic(fmt.Sprintf("scroll %d", amount))
	}
	m.scrolls = append(m.scrolls, scrollCall{"v", amount})
	return nil
}

func (m *mockInjector) HScroll(amount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scrolls = append(m.scrolls, scrollCall{"h", amount})
	return nil
}

func (m *mockInjector) clickCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clicks)
}
