/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/didip/tollbooth/v7"
	"github.com/didip/tollbooth/v7/limiter"
	"github.com/gin-gonic/gin"

	"github.com/blnkfinance/docflow/config"
)

const defaultCleanupInterval = 60 * time.Second

// RateLimitMiddleware limits each tenant to its own request budget. It must run
// after TenantMiddleware on tenant routes; elsewhere requests are keyed by client IP.
func RateLimitMiddleware(conf *config.Configuration) gin.HandlerFunc {
	lmt := newLimiter(conf.RateLimit)
	if lmt == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	limit := strconv.FormatFloat(lmt.GetMax(), 'f', -1, 64)
	return func(c *gin.Context) {
		c.Header("X-RateLimit-Limit", limit)
		if httpError := tollbooth.LimitByKeys(lmt, []string{rateLimitKey(c)}); httpError != nil {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": httpError.Message})
			return
		}
		c.Next()
	}
}

func newLimiter(conf config.RateLimitConfig) *limiter.Limiter {
	if conf.RequestsPerSecond == nil || conf.Burst == nil {
		return nil
	}

	ttl := defaultCleanupInterval
	if conf.CleanupIntervalSec != nil && *conf.CleanupIntervalSec > 0 {
		ttl = time.Duration(*conf.CleanupIntervalSec) * time.Second
	}

	lmt := tollbooth.NewLimiter(*conf.RequestsPerSecond, &limiter.ExpirableOptions{DefaultExpirationTTL: ttl})
	lmt.SetBurst(*conf.Burst)
	lmt.SetMessage("rate limit exceeded")
	return lmt
}

// rateLimitKey buckets requests by resolved tenant id, so the same tenant shares
// one budget whether it calls by id or by code.
func rateLimitKey(c *gin.Context) string {
	if t, ok := TenantFromContext(c); ok {
		return "tenant:" + t.TenantID
	}
	return "ip:" + c.ClientIP()
}
