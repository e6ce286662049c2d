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
	"github.com/blnkfinance/docflow/config"
)

// readSubmission accepts either a JSON ProcessDocument or a raw XML body with
// interface_id and file_name in the query string.
func readSubmission(c *gin.Context, tenantID string) (docflow.Submission, bool) {
	if strings.Contains(c.ContentType(), "xml") {
		content, err := io.ReadAll(io.LimitReader(c.Request.Body, maxDocumentBody()))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return docflow.Submission{}, false
		}
		doc := model2.ProcessDocument{InterfaceID: c.Query("interface_id"), FileName: c.Query("file_name"), Content: string(content)}
		if err := doc.ValidateProcessDocument(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
			return docflow.Submission{}, false
		}
		return toSubmission(tenantID, doc), true
	}

	var doc model2.ProcessDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return docflow.Submission{}, false
	}
	if err := doc.ValidateProcessDocument(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return docflow.Submission{}, false
	}
	return toSubmission(tenantID, doc), true
}

func toSubmission(tenantID string, doc model2.ProcessDocument) docflow.Submission {
	return docflow.Submission{
		TenantID:    tenantID,
		InterfaceID: doc.InterfaceID,
		FileName:    doc.FileName,
		Content:     []byte(doc.Content),
	}
}

// maxDocumentBody reads one byte past the configured limit so oversize
// documents still reach the size check.
func maxDocumentBody() int64 {
	conf, err := config.Fetch()
	if err != nil || conf.Processing.MaxDocumentSize <= 0 {
		return 10 << 20
	}
	return conf.Processing.MaxDocumentSize + 1
}

// ProcessDocument maps a document synchronously. Documents that fail mapping
// still answer 200 with an ERROR outcome.
func (a Api) ProcessDocument(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	sub, ok := readSubmission(c, tenant)
	if !ok {
		return
	}

	resp, err := a.docflow.ProcessDocument(c.Request.Context(), sub)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) QueueDocument(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}
	sub, ok := readSubmission(c, tenant)
	if !ok {
		return
	}

	resp, err := a.docflow.EnqueueDocument(c.Request.Context(), sub)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, resp)
}

func (a Api) ProcessBatch(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	var batch model2.ProcessBatch
	if err := c.ShouldBindJSON(&batch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	if err := batch.ValidateProcessBatch(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	subs := make([]docflow.Submission, len(batch.Documents))
	for i, doc := range batch.Documents {
		subs[i] = toSubmission(tenant, doc)
	}

	c.JSON(http.StatusOK, gin.H{"results": a.docflow.ProcessBatch(c.Request.Context(), subs)})
}

func (a Api) GetOutcome(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	resp, err := a.docflow.GetOutcome(c.Request.Context(), tenant, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) GetOutcomes(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	limit, offset := pagination(c)
	resp, err := a.docflow.GetOutcomes(c.Request.Context(), tenant, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
