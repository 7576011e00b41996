/*
Copyright 2025 Fathom Energy Authors.

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
	"github.com/sirupsen/logrus"

	model2 "github.com/fathomenergy/curvetrace/api/model"
)

// PreviewMerge reports what a merge would move and rename without mutating.
func (a Api) PreviewMerge(c *gin.Context) {
	var body model2.MergeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	if err := body.ValidateMergeRequest(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.service.PreviewMerge(c.Request.Context(), body.TempDefinitionID, body.TargetDefinitionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// MergeDefinitions folds the temp definition into the target definition.
func (a Api) MergeDefinitions(c *gin.Context) {
	var body model2.MergeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	if err := body.ValidateMergeRequest(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.service.MergeDefinitions(c.Request.Context(), body.TempDefinitionID, body.TargetDefinitionID)
	if err != nil {
		respondError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"temp_definition_id":   body.TempDefinitionID,
		"target_definition_id": body.TargetDefinitionID,
		"actor":                c.GetHeader("X-Actor"),
	}).Info("definitions merged")
	c.JSON(http.StatusOK, resp)
}
