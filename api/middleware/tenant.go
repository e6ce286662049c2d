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
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/blnkfinance/docflow/internal/apierror"
	"github.com/blnkfinance/docflow/internal/tenant"
	"github.com/blnkfinance/docflow/model"
)

const (
	ClientIDHeader   = "X-Client-ID"
	ClientNameHeader = "X-Client-Name"

	tenantKey = "docflow.tenant"
)

// TenantResolver finds a tenant by id or code.
type TenantResolver interface {
	ResolveTenant(ctx context.Context, idOrCode string) (*model.Tenant, error)
}

// TenantMiddleware resolves the calling tenant from X-Client-ID, falling back to
// X-Client-Name, and stores it on the gin and request contexts. Tenants that
// cannot write are limited to reads.
func TenantMiddleware(resolver TenantResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ref := strings.TrimSpace(c.GetHeader(ClientIDHeader))
		if ref == "" {
			ref = strings.TrimSpace(c.GetHeader(ClientNameHeader))
		}
		if ref == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "X-Client-ID or X-Client-Name header is required"})
			return
		}

		t, err := resolver.ResolveTenant(c.Request.Context(), ref)
		if err != nil {
			status := apierror.MapErrorToHTTPStatus(err)
			if status == http.StatusNotFound {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown tenant"})
				return
			}
			c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
			return
		}

		if !t.CanWrite() && c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "tenant " + t.TenantID + " is " + strings.ToLower(string(t.Status))})
			return
		}

		c.Set(tenantKey, t)
		c.Request = c.Request.WithContext(tenant.WithTenant(c.Request.Context(), t.TenantID))
		c.Next()
	}
}

// TenantFromContext returns the tenant stored by TenantMiddleware.
func TenantFromContext(c *gin.Context) (*model.Tenant, bool) {
	value, ok := c.Get(tenantKey)
	if !ok {
		return nil, false
	}
	t, ok := value.(*model.Tenant)
	return t, ok && t != nil
}
