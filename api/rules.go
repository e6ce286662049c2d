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
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/blnkfinance/docflow"
	model2 "github.com/blnkfinance/docflow/api/model"
)

// maxRuleFileSize bounds the body of a rule import.
const maxRuleFileSize = 1 << 20

func (a Api) CreateMappingRule(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	var newRule model2.CreateMappingRule
	if err := c.ShouldBindJSON(&newRule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	if err := newRule.ValidateCreateMappingRule(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.docflow.Rules().CreateRule(c.Request.Context(), newRule.ToMappingRule(tenant, c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (a Api) GetMappingRules(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	resp, err := a.docflow.GetRules(c.Request.Context(), tenant, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) DeleteMappingRule(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	if err := a.docflow.Rules().DeleteRule(c.Request.Context(), tenant, c.Param("id"), c.Param("rule_id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ImportMappingRules replaces the interface's rules with a YAML or JSON rule file
// sent as the request body.
func (a Api) ImportMappingRules(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	content, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRuleFileSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := a.docflow.ImportRules(c.Request.Context(), tenant, c.Param("id"), content, importFormat(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func importFormat(c *gin.Context) string {
	if format := c.Query("format"); format != "" {
		return format
	}
	contentType := c.ContentType()
	switch {
	case strings.Contains(contentType, "json"):
		return docflow.ImportFormatJSON
	case strings.Contains(contentType, "yaml"):
		return docflow.ImportFormatYAML
	}
	return ""
}
