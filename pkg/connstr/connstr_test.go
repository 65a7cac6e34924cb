package connstr

import (
	"errors"
	"strings"
	"testing"
)

func TestParse_AllKeys(t *testing.T) {
	cs, err := Parse(`server=tcp:localhost\SQL2017;database=master;user id=sa;password=secret;integratedsecurity=sspi;trustservercertificate=true;encrypt=true`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cs.Server != `tcp:localhost\SQL2017` {
		t.Errorf("Server = %q", cs.Server)
	}
	if cs.Database != "master" {
		t.Errorf("Database = %q", cs.Database)
	}
	if cs.User != "sa" || cs.Password != "secret" {
		t.Errorf("credentials = %q/%q", cs.User, cs.Password)
	}
	if !cs.IntegratedSecurity {
		t.Error("IntegratedSecurity should be true for sspi")
	}
	if !cs.TrustServerCertificate {
		t.Error("TrustServerCertificate should be true")
	}
	if !cs.Encrypt {
		t.Error("Encrypt should be true")
	}
}

func TestParse_KeySynonymsAndCase(t *testing.T) {
	cs, err := Parse(`Data Source=srv1;Initial Catalog=db1;UID=bob;PWD=x`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cs.Server != "srv1" || cs.Database != "db1" || cs.User != "bob" || cs.Password != "x" {
		t.Errorf("unexpected result: %+v", cs)
	}
}

func TestParse_TrustServerCertificateDefaultsTrue(t *testing.T) {
	cs, err := Parse("server=localhost")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !cs.TrustServerCertificate {
		t.Error("TrustServerCertificate must default to true")
	}
}

func TestParse_Malformed(t *testing.T) {
	if _, err := Parse("server=ok;garbage"); err == nil {
		t.Error("expected error for pair without '='")
	}
}

func TestDSN_MissingServer(t *testing.T) {
	cs := &ConnString{Database: "db"}
	if _, err := cs.DSN(); !errors.Is(err, ErrDataSourceNotSpecified) {
		t.Errorf("expected ErrDataSourceNotSpecified, got %v", err)
	}

	cs = &ConnString{Server: "   "}
	if _, err := cs.DSN(); !errors.Is(err, ErrDataSourceNotSpecified) {
		t.Errorf("expected ErrDataSourceNotSpecified for blank server, got %v", err)
	}
}

func TestDSN_RendersKnownKeys(t *testing.T) {
	cs := &ConnString{
		Server:                 "127.0.0.1,1433",
		Database:               "master",
		User:                   "sa",
		Password:               "pw",
		TrustServerCertificate: true,
	}

	dsn, err := cs.DSN()
	if err != nil {
		t.Fatalf("DSN failed: %v", err)
	}

	want := "server=tcp:127.0.0.1,1433;database=master;user id=sa;password=pw;trustservercertificate=true"
	if dsn != want {
		t.Errorf("DSN = %q, want %q", dsn, want)
	}
}

func TestResolveDataSource(t *testing.T) {
	tests := []struct {
		in   string
		want string // empty = only require success
	}{
		{`tcp:localhost,1433`, "tcp:127.0.0.1,1433"},
		{`tcp:172.18.71.36,1433`, "tcp:172.18.71.36,1433"},
		{`tcp:localhost`, "tcp:127.0.0.1"},
		{`tcp:localhost\Sql2017`, `tcp:127.0.0.1\Sql2017`},
		{`.`, "tcp:127.0.0.1"},
		{`.\Sql2017`, `tcp:127.0.0.1\Sql2017`},
		{`.,1433`, "tcp:127.0.0.1,1433"},
		{`.\Sql2017,1433`, `tcp:127.0.0.1\Sql2017,1433`},
	}

	for _, tt := range tests {
		got, err := ResolveDataSource(tt.in)
		if err != nil {
			t.Errorf("ResolveDataSource(%q) failed: %v", tt.in, err)
			continue
		}
		if tt.want != "" && got != tt.want {
			t.Errorf("ResolveDataSource(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveDataSource_HostNotFound(t *testing.T) {
	_, err := ResolveDataSource("no-such-host-3f9a1.invalid")
	var hnf *HostNotFoundError
	if !errors.As(err, &hnf) {
		t.Fatalf("expected HostNotFoundError, got %v", err)
	}
	if !strings.Contains(hnf.Error(), "no-such-host-3f9a1.invalid") {
		t.Errorf("error should name the host: %v", hnf)
	}
}

func TestAdjust(t *testing.T) {
	dsn, err := Adjust(`server=tcp:localhost,1433;database=master;integratedsecurity=sspi`)
	if err != nil {
		t.Fatalf("Adjust failed: %v", err)
	}
	want := "server=tcp:127.0.0.1,1433;database=master;integratedsecurity=sspi;trustservercertificate=true"
	if dsn != want {
		t.Errorf("Adjust = %q, want %q", dsn, want)
	}
}
