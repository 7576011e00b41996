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

func (a Api) CreateInstance(c *gin.Context) {
	var newInstance model2.CreateInstance
	if err := c.ShouldBindJSON(&newInstance); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := newInstance.ValidateCreateInstance(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.service.CreateInstance(c.Request.Context(), newInstance.ToRequest())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (a Api) GetInstance(c *gin.Context) {
	id, passed := requiredParam(c, "id")
	if !passed {
		return
	}

	resp, err := a.service.GetInstance(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) GetInstancesByDefinition(c *gin.Context) {
	id, passed := requiredParam(c, "id")
	if !passed {
		return
	}

	limit, offset := paginate(c)
	resp, err := a.service.GetInstancesByDefinition(id, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) UpdateInstanceStatus(c *gin.Context) {
	id, passed := requiredParam(c, "id")
	if !passed {
		return
	}

	var body model2.UpdateInstanceStatus
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	if err := body.ValidateUpdateInstanceStatus(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := a.service.UpdateInstanceStatus(c.Request.Context(), id, body.Status); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "instance status updated"})
}

func (a Api) DeleteInstance(c *gin.Context) {
	id, passed := requiredParam(c, "id")
	if !passed {
		return
	}

	if err := a.service.DeleteInstance(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{"instance_id": id, "actor": c.GetHeader("X-Actor")}).Info("instance deleted")
	c.JSON(http.StatusOK, gin.H{"message": "instance deleted"})
}

func (a Api) GetVersionHistory(c *gin.Context) {
	id, passed := requiredParam(c, "id")
	if !passed {
		return
	}

	resp, err := a.service.GetVersionHistory(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) RecordLineage(c *gin.Context) {
	id, passed := requiredParam(c, "id")
	if !passed {
		return
	}

	var body model2.RecordLineage
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	count, err := a.service.RecordLineage(c.Request.Context(), id, body.ToLineageRecords())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recorded": count})
}

func (a Api) GetLineage(c *gin.Context) {
	id, passed := requiredParam(c, "id")
	if !passed {
		return
	}

	resp, err := a.service.GetLineage(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
