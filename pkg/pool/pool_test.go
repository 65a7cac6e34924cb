package pool

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ruslano69/mssqlclient/pkg/client"
)

// countingDialer opens embedded in-memory sessions and counts dials.
func countingDialer(dials *atomic.Int64) Dialer {
	return func(ctx context.Context) (*client.Connection, error) {
		dials.Add(1)
		return client.OpenDriver(ctx, "sqlite", ":memory:")
	}
}

func newTestPool(t *testing.T, cfg Config, dials *atomic.Int64) *Pool {
	t.Helper()
	p, err := NewWithDialer(cfg, countingDialer(dials))
	if err != nil {
		t.Fatalf("NewWithDialer failed: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestGetDialsThenReuses(t *testing.T) {
	var dials atomic.Int64
	p := newTestPool(t, Config{MaxConns: 2}, &dials)
	ctx := context.Background()

	conn, err := p.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if dials.Load() != 1 {
		t.Errorf("dials = %d, want 1", dials.Load())
	}
	p.Put(conn)

	again, err := p.Get(ctx)
	if err != nil {
		t.Fatalf("second Get failed: %v", err)
	}
	if again != conn {
		t.Error("idle session was not reused")
	}
	if dials.Load() != 1 {
		t.Errorf("dials after reuse = %d, want 1", dials.Load())
	}
	p.Put(again)

	open, idle := p.Stats()
	if open != 1 || idle != 1 {
		t.Errorf("stats = (%d open, %d idle), want (1, 1)", open, idle)
	}
}

func TestGetBlocksAtCapacity(t *testing.T) {
	var dials atomic.Int64
	p := newTestPool(t, Config{MaxConns: 1}, &dials)
	ctx := context.Background()

	conn, err := p.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if _, err := p.Get(waitCtx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Get at capacity: err = %v, want DeadlineExceeded", err)
	}

	p.Put(conn)
	again, err := p.Get(ctx)
	if err != nil {
		t.Fatalf("Get after Put failed: %v", err)
	}
	if again != conn {
		t.Error("freed session was not handed to the waiter")
	}
	p.Put(again)
}

func TestPutDiscardsBrokenSession(t *testing.T) {
	var dials atomic.Int64
	p := newTestPool(t, Config{MaxConns: 1}, &dials)
	ctx := context.Background()

	conn, err := p.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	conn.Close()
	p.Put(conn)

	if open, idle := p.Stats(); open != 0 || idle != 0 {
		t.Errorf("stats after discard = (%d open, %d idle), want (0, 0)", open, idle)
	}

	// The freed capacity dials a fresh session.
	fresh, err := p.Get(ctx)
	if err != nil {
		t.Fatalf("Get after discard failed: %v", err)
	}
	if fresh.State() != client.StateReady {
		t.Errorf("fresh session state = %v, want Ready", fresh.State())
	}
	if dials.Load() != 2 {
		t.Errorf("dials = %d, want 2", dials.Load())
	}
	p.Put(fresh)
}

func TestCloseShutsDownIdleSessions(t *testing.T) {
	var dials atomic.Int64
	p := newTestPool(t, Config{MaxConns: 2}, &dials)
	ctx := context.Background()

	conn, err := p.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	p.Put(conn)

	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if conn.State() != client.StateClosed {
		t.Errorf("idle session state after Close = %v, want Closed", conn.State())
	}
	if _, err := p.Get(ctx); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Get after Close: err = %v, want ErrPoolClosed", err)
	}
}

func TestEvictExpiredIdleSessions(t *testing.T) {
	var dials atomic.Int64
	p := newTestPool(t, Config{MaxConns: 2, IdleTimeout: time.Hour}, &dials)
	ctx := context.Background()

	conn, err := p.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	p.Put(conn)

	p.evictExpired(time.Now().Add(2 * time.Hour))

	if open, idle := p.Stats(); open != 0 || idle != 0 {
		t.Errorf("stats after eviction = (%d open, %d idle), want (0, 0)", open, idle)
	}
	if conn.State() != client.StateClosed {
		t.Errorf("evicted session state = %v, want Closed", conn.State())
	}
}

func TestCapIsNeverExceeded(t *testing.T) {
	var dials atomic.Int64
	p := newTestPool(t, Config{MaxConns: 2}, &dials)
	ctx := context.Background()

	var inUse, maxInUse atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				conn, err := p.Get(ctx)
				if err != nil {
					t.Errorf("Get failed: %v", err)
					return
				}
				n := inUse.Add(1)
				for {
					m := maxInUse.Load()
					if n <= m || maxInUse.CompareAndSwap(m, n) {
						break
					}
				}
				inUse.Add(-1)
				p.Put(conn)
			}
		}()
	}
	wg.Wait()

	if maxInUse.Load() > 2 {
		t.Errorf("max concurrent checkouts = %d, want <= 2", maxInUse.Load())
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pool.yaml")
	data := "conn_string: \"server=localhost;database=master\"\nmax_conns: 2\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.MaxConns != 2 {
		t.Errorf("MaxConns = %d, want 2", cfg.MaxConns)
	}
	if cfg.MaxIdle != 2 {
		t.Errorf("MaxIdle = %d, want 2 (defaults to max_conns)", cfg.MaxIdle)
	}
	if cfg.IdleTimeout != 5*time.Minute {
		t.Errorf("IdleTimeout = %v, want 5m", cfg.IdleTimeout)
	}
}

func TestLoadConfigEnvFallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pool.yaml")
	if err := os.WriteFile(path, []byte("max_conns: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("MSSQL_DB", "server=envhost;database=master")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.ConnString != "server=envhost;database=master" {
		t.Errorf("ConnString = %q", cfg.ConnString)
	}

	t.Setenv("MSSQL_DB", "")
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error when conn_string and MSSQL_DB are both empty")
	}
}
