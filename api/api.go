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

package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/blnkfinance/docflow"
	"github.com/blnkfinance/docflow/api/middleware"
	"github.com/blnkfinance/docflow/config"
	"github.com/blnkfinance/docflow/internal/apierror"
)

type Api struct {
	docflow *docflow.Docflow
	router  *gin.Engine
	limit   gin.HandlerFunc
}

func (a Api) Router() *gin.Engine {
	router := a.router

	admin := router.Group("/", a.limit)
	admin.POST("/tenants", a.CreateTenant)
	admin.GET("/tenants", a.GetAllTenants)
	admin.GET("/tenants/:id", a.GetTenant)
	admin.PUT("/tenants/:id/status", a.UpdateTenantStatus)
	admin.GET("/transformations", a.GetTransformations)

	// Tenant routes are limited after resolution so each tenant has its own budget.
	scoped := router.Group("/", middleware.TenantMiddleware(a.docflow), a.limit)

	scoped.POST("/interfaces", a.CreateInterface)
	scoped.GET("/interfaces", a.GetInterfaces)
	scoped.GET("/interfaces/:id", a.GetInterface)
	scoped.GET("/interfaces/:id/schema", a.GetInterfaceSchema)

	scoped.POST("/interfaces/:id/rules", a.CreateMappingRule)
	scoped.GET("/interfaces/:id/rules", a.GetMappingRules)
	scoped.PUT("/interfaces/:id/rules/import", a.ImportMappingRules)
	scoped.DELETE("/interfaces/:id/rules/:rule_id", a.DeleteMappingRule)

	scoped.POST("/documents", a.ProcessDocument)
	scoped.POST("/documents/queue", a.QueueDocument)
	scoped.POST("/documents/batch", a.ProcessBatch)

	scoped.GET("/outcomes", a.GetOutcomes)
	scoped.GET("/outcomes/:id", a.GetOutcome)

	scoped.GET("/schemas/structure", a.GetSchemaStructure)

	return a.router
}

func NewAPI(d *docflow.Docflow) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()
	r.Use(otelgin.Middleware(conf.ProjectName))
	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware(conf.Server.SecretKey))
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, "server running...")
	})

	return &Api{docflow: d, router: r, limit: middleware.RateLimitMiddleware(conf)}
}

func respondError(c *gin.Context, err error) {
	c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
}

// pagination reads limit and offset query parameters, defaulting to 20 and 0.
func pagination(c *gin.Context) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

func tenantID(c *gin.Context) (string, bool) {
	t, ok := middleware.TenantFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "tenant is required"})
		return "", false
	}
	return t.TenantID, true
}
