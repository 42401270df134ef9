package utils

import (
	"testing"
	"time"
)

func TestPostgresPoolConfig_Defaults(t *testing.T) {
	c := PostgresPoolConfig{}.withDefaults()
	if c.MaxOpenConns != 25 || c.MaxIdleConns != 25 {
		t.Fatalf("unexpected conn defaults: %+v", c)
	}
	if c.PingTimeout != 5*time.Second {
		t.Fatalf("unexpected ping timeout: %v", c.PingTimeout)
	}
}
