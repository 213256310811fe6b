package server

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/lawnchairsociety/questkeeper/internal/config"
)

var (
	ErrServerFull  = errors.New("HUD connection limit reached")
	ErrAddressFull = errors.New("too many HUD connections from this address")
)

// ConnLimiter caps the number of open HUD sockets, overall and per client
// address. A zero limit disables that check.
type ConnLimiter struct {
	limits config.ConnectionsConfig

	mu     sync.Mutex
	total  int
	byAddr map[string]int
}

// NewConnLimiter creates a limiter enforcing limits
func NewConnLimiter(limits config.ConnectionsConfig) *ConnLimiter {
	return &ConnLimiter{limits: limits, byAddr: make(map[string]int)}
}

// Admit reserves a socket for addr. The returned release frees the slot
// and is safe to call more than once.
func (l *ConnLimiter) Admit(addr string) (release func(), err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case l.limits.MaxTotal > 0 && l.total >= l.limits.MaxTotal:
		return nil, ErrServerFull
	case l.limits.MaxPerIP > 0 && l.byAddr[addr] >= l.limits.MaxPerIP:
		return nil, ErrAddressFull
	}
	l.total++
	l.byAddr[addr]++

	var once sync.Once
	return func() { once.Do(func() { l.free(addr) }) }, nil
}

func (l *ConnLimiter) free(addr string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.total--
	if l.byAddr[addr]--; l.byAddr[addr] <= 0 {
		delete(l.byAddr, addr)
	}
}

// Open returns the number of admitted sockets
func (l *ConnLimiter) Open() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// OpenFrom returns the number of admitted sockets for one address
func (l *ConnLimiter) OpenFrom(addr string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.byAddr[addr]
}

// clientAddr names the HUD client a request comes from. Behind a proxy the
// first X-Forwarded-For hop or X-Real-IP wins over the socket peer.
func clientAddr(r *http.Request) string {
	for _, header := range []string{"X-Forwarded-For", "X-Real-IP"} {
		first, _, _ := strings.Cut(r.Header.Get(header), ",")
		if addr := strings.TrimSpace(first); addr != "" {
			return addr
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
