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

	model2 "github.com/fathomenergy/curvetrace/api/model"
)

func (a Api) IngestDataRows(c *gin.Context) {
	id, passed := requiredParam(c, "id")
	if !passed {
		return
	}

	var body model2.IngestDataRows
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	if err := body.ValidateIngestDataRows(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	count, err := a.service.IngestDataRows(c.Request.Context(), id, body.ToDataRows())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ingested": count})
}

func (a Api) GetDataRows(c *gin.Context) {
	id, passed := requiredParam(c, "id")
	if !passed {
		return
	}

	limit, offset := paginate(c)
	resp, err := a.service.GetDataRows(id, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) SetGroupFreshness(c *gin.Context) {
	id, passed := requiredParam(c, "id")
	if !passed {
		return
	}

	var body model2.SetGroupFreshness
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	if err := body.ValidateSetGroupFreshness(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	err := a.service.SetGroupFreshness(c.Request.Context(), id, body.CurveType, body.Commodity, body.Start, body.End)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "group freshness window opened"})
}

func (a Api) SupersedeGroup(c *gin.Context) {
	id, passed := requiredParam(c, "id")
	if !passed {
		return
	}

	var body model2.SupersedeGroup
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	if err := body.ValidateSupersedeGroup(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	err := a.service.SupersedeGroup(c.Request.Context(), id, body.CurveType, body.Commodity, body.End)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "group freshness window closed"})
}

func (a Api) GetFreshGroups(c *gin.Context) {
	id, passed := requiredParam(c, "id")
	if !passed {
		return
	}

	resp, err := a.service.GetFreshGroups(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
