package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ruslano69/mssqlclient/pkg/client"
)

// ErrPoolClosed is returned by Get after the pool has been closed.
var ErrPoolClosed = errors.New("pool: pool is closed")

// Dialer establishes one new session. The default dialer connects with the
// configured connection string; tests supply their own.
type Dialer func(ctx context.Context) (*client.Connection, error)

// item occupies one capacity slot. A nil conn means the slot is free and the
// next checkout may dial.
type item struct {
	conn     *client.Connection
	returned time.Time
}

// Pool is a fixed-capacity connection factory. At most MaxConns sessions are
// open at any time; Get blocks while all of them are checked out. Sessions
// returned in any state other than Ready are discarded, never reissued.
type Pool struct {
	cfg  Config
	dial Dialer

	// slots always holds exactly MaxConns items across the channel and the
	// checked-out population.
	slots chan item

	open      atomic.Int64
	idleCount atomic.Int64
	closed    atomic.Bool

	stop      chan struct{}
	closeOnce sync.Once
}

// New creates a pool that dials with the configured connection string.
func New(cfg Config) (*Pool, error) {
	connString := cfg.ConnString
	return NewWithDialer(cfg, func(ctx context.Context) (*client.Connection, error) {
		return client.Connect(ctx, connString)
	})
}

// NewWithDialer creates a pool over a custom dialer.
func NewWithDialer(cfg Config, dial Dialer) (*Pool, error) {
	if dial == nil {
		return nil, errors.New("pool: dialer is required")
	}
	cfg.normalize()

	p := &Pool{
		cfg:   cfg,
		dial:  dial,
		slots: make(chan item, cfg.MaxConns),
		stop:  make(chan struct{}),
	}
	for i := 0; i < cfg.MaxConns; i++ {
		p.slots <- item{}
	}

	if cfg.IdleTimeout > 0 {
		go p.sweep()
	}
	return p, nil
}

// Get checks a session out of the pool, dialing a new one if no idle session
// is available and capacity remains. Blocks until a slot frees up or ctx is
// done.
func (p *Pool) Get(ctx context.Context) (*client.Connection, error) {
	for {
		if p.closed.Load() {
			return nil, ErrPoolClosed
		}

		var it item
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case it = <-p.slots:
		}

		if p.closed.Load() {
			if it.conn != nil {
				p.idleCount.Add(-1)
				poolIdle.Dec()
				p.discard(it.conn)
			}
			p.slots <- item{}
			return nil, ErrPoolClosed
		}

		if it.conn != nil {
			p.idleCount.Add(-1)
			poolIdle.Dec()
			if it.conn.State() == client.StateReady {
				checkoutsTotal.Inc()
				return it.conn, nil
			}
			// Went bad while parked; drop it and dial into the freed slot.
			it.conn.Close()
			p.open.Add(-1)
			poolOpen.Dec()
			discardsTotal.Inc()
		}

		conn, err := p.dial(ctx)
		if err != nil {
			// Hand the slot back before reporting.
			p.slots <- item{}
			return nil, err
		}

		p.open.Add(1)
		poolOpen.Inc()
		dialsTotal.Inc()
		checkoutsTotal.Inc()
		log.Debug().Int64("open", p.open.Load()).Msg("pool dialed new session")
		return conn, nil
	}
}

// Put returns a session to the pool. Sessions that are not Ready (closed,
// mid-transaction) are discarded so a broken session is never reissued.
func (p *Pool) Put(conn *client.Connection) {
	if conn == nil {
		return
	}

	if p.closed.Load() || conn.State() != client.StateReady {
		if conn.State() != client.StateReady {
			discardsTotal.Inc()
		}
		p.discard(conn)
		p.slots <- item{}
		return
	}

	if p.idleCount.Load() >= int64(p.cfg.MaxIdle) {
		p.discard(conn)
		p.slots <- item{}
		return
	}

	p.idleCount.Add(1)
	poolIdle.Inc()
	p.slots <- item{conn: conn, returned: time.Now()}
}

// Close shuts the pool down and closes every idle session. Sessions checked
// out at the time of the call are closed when they are returned.
func (p *Pool) Close() error {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.stop)

		for i := 0; i < cap(p.slots); i++ {
			select {
			case it := <-p.slots:
				if it.conn != nil {
					p.idleCount.Add(-1)
					poolIdle.Dec()
				}
				p.discard(it.conn)
				p.slots <- item{}
			default:
			}
		}
		log.Debug().Msg("pool closed")
	})
	return nil
}

// Stats reports the number of open and idle sessions.
func (p *Pool) Stats() (open, idle int) {
	return int(p.open.Load()), int(p.idleCount.Load())
}

func (p *Pool) discard(conn *client.Connection) {
	if conn == nil {
		return
	}
	conn.Close()
	p.open.Add(-1)
	poolOpen.Dec()
}

// sweep closes idle sessions that have been parked longer than IdleTimeout.
func (p *Pool) sweep() {
	interval := p.cfg.IdleTimeout / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.evictExpired(time.Now())
		}
	}
}

func (p *Pool) evictExpired(now time.Time) {
	for i := 0; i < cap(p.slots); i++ {
		var it item
		select {
		case it = <-p.slots:
		default:
			return
		}

		if it.conn != nil && now.Sub(it.returned) > p.cfg.IdleTimeout {
			p.idleCount.Add(-1)
			poolIdle.Dec()
			p.discard(it.conn)
			evictionsTotal.Inc()
			log.Debug().Dur("idle", now.Sub(it.returned)).Msg("pool evicted idle session")
			it = item{}
		}
		p.slots <- it
	}
}
