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

	"github.com/gin-gonic/gin"

	model2 "github.com/blnkfinance/docflow/api/model"
)

func (a Api) CreateInterface(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	var newInterface model2.CreateInterface
	if err := c.ShouldBindJSON(&newInterface); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	if err := newInterface.ValidateCreateInterface(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.docflow.CreateInterface(c.Request.Context(), newInterface.ToInterface(tenant))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (a Api) GetInterface(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	resp, err := a.docflow.GetInterface(c.Request.Context(), tenant, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) GetInterfaces(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	resp, err := a.docflow.GetInterfaces(c.Request.Context(), tenant)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetInterfaceSchema lists the elements of the schema bound to the interface.
func (a Api) GetInterfaceSchema(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	resp, err := a.docflow.GetSchemaStructure(c.Request.Context(), tenant, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetSchemaStructure lists the elements of any schema under the schema directory.
func (a Api) GetSchemaStructure(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path query parameter is required"})
		return
	}

	resp, err := a.docflow.Schemas().Structure(path, tenant)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) GetTransformations(c *gin.Context) {
	resp, err := a.docflow.Transformations(c.Query("document_type"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transformations": resp})
}
