package health

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type DBChecker struct {
	db *gorm.DB
}

func NewDBChecker(db *gorm.DB) Checker {
	if db == nil {
		return nil
	}
	return &DBChecker{db: db}
}

func (c *DBChecker) Check(ctx context.Context) CheckResult {
	res := CheckResult{Name: "db", Healthy: true}
	if c.db == nil {
		res.Healthy = false
		res.Error = "db not configured"
		return res
	}
	sqlDB, err := c.db.DB()
	if err != nil {
		res.Healthy = false
		res.Error = err.Error()
		return res
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		res.Healthy = false
		res.Error = err.Error()
	}
	return res
}

type RedisChecker struct {
	client redis.UniversalClient
}

func NewRedisChecker(client redis.UniversalClient) Checker {
	if client == nil {
		return nil
	}
	return &RedisChecker{client: client}
}

func (c *RedisChecker) Check(ctx context.Context) CheckResult {
	res := CheckResult{Name: "redis", Healthy: true}
	if c.client == nil {
		res.Healthy = false
		res.Error = "redis not configured"
		return res
	}
	if err := c.client.Ping(ctx).Err(); err != nil {
		res.Healthy = false
		res.Error = err.Error()
	}
	return res
}

// IdentityChecker probes the identity service's public health endpoint.
// Readiness should fail before traffic lands on a resolver that can
// only fail closed.
type IdentityChecker struct {
	baseURL string
	anonKey string
	client  *http.Client
}

func NewIdentityChecker(baseURL, anonKey string, timeout time.Duration) Checker {
	if baseURL == "" || anonKey == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &IdentityChecker{
		baseURL: baseURL,
		anonKey: anonKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *IdentityChecker) Check(ctx context.Context) CheckResult {
	res := CheckResult{Name: "identity", Healthy: true}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/health", nil)
	if err != nil {
		res.Healthy = false
		res.Error = err.Error()
		return res
	}
	req.Header.Set("apikey", c.anonKey)
	resp, err := c.client.Do(req)
	if err != nil {
		res.Healthy = false
		res.Error = err.Error()
		return res
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		res.Healthy = false
		res.Error = fmt.Sprintf("identity health returned %d", resp.StatusCode)
	}
	return res
}
