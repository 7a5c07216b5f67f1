package notifications

import (
	"log/slog"
	"sync"
)

// Monitor tracks online/offline state and fires callbacks on the
// offline-to-online edge. State is fed by the surrounding application from
// its platform reachability signal; the monitor never polls or pings.
type Monitor struct {
	logger *slog.Logger

	mu       sync.Mutex
	online   bool
	onOnline []func()
}

// NewMonitor creates a monitor with the given initial state.
func NewMonitor(online bool, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{online: online, logger: logger}
}

// Online reports current connectivity.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// OnOnline registers a callback fired once per offline-to-online
// transition. Register before feeding state.
func (m *Monitor) OnOnline(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onOnline = append(m.onOnline, fn)
}

// SetOnline updates connectivity. Only the offline-to-online edge triggers
// the registered callbacks; repeated reports of the same state do nothing.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	wasOnline := m.online
	m.online = online
	callbacks := m.onOnline
	m.mu.Unlock()

	if online == wasOnline {
		return
	}

	if online {
		m.logger.Info("connectivity restored")
		for _, fn := range callbacks {
			fn()
		}
	} else {
		m.logger.Warn("connectivity lost, sends will be queued")
	}
}
