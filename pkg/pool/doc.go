// Package pool implements a fixed-capacity connection factory over
// pkg/client sessions.
//
// Sizing is a hard cap: at most max_conns sessions exist at any moment and
// Get blocks while all of them are checked out. A session returned in any
// state other than Ready is closed and replaced instead of being reissued,
// and idle sessions are evicted after idle_timeout.
//
// Usage:
//
//	cfg, err := pool.LoadConfig("pool.yaml")
//	p, err := pool.New(*cfg)
//	defer p.Close()
//
//	conn, err := p.Get(ctx)
//	if err != nil { ... }
//	defer p.Put(conn)
package pool
