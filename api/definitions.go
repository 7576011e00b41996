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
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	model2 "github.com/fathomenergy/curvetrace/api/model"
)

func paginate(c *gin.Context) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (a Api) CreateDefinition(c *gin.Context) {
	var newDefinition model2.CreateDefinition
	if err := c.ShouldBindJSON(&newDefinition); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := newDefinition.ValidateCreateDefinition(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.service.CreateDefinition(newDefinition.ToDefinition())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (a Api) GetDefinition(c *gin.Context) {
	id, passed := requiredParam(c, "id")
	if !passed {
		return
	}

	resp, err := a.service.GetDefinition(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) GetAllDefinitions(c *gin.Context) {
	limit, offset := paginate(c)
	resp, err := a.service.GetAllDefinitions(limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// FindDuplicateDefinitions lists every definition sharing the identity tuple
// of the given definition, canonical first.
func (a Api) FindDuplicateDefinitions(c *gin.Context) {
	id, passed := requiredParam(c, "id")
	if !passed {
		return
	}

	definition, err := a.service.GetDefinition(id)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := a.service.FindDuplicateDefinitions(definition)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) DeactivateDefinition(c *gin.Context) {
	id, passed := requiredParam(c, "id")
	if !passed {
		return
	}

	if err := a.service.DeactivateDefinition(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "definition deactivated"})
}

func (a Api) DeleteDefinition(c *gin.Context) {
	id, passed := requiredParam(c, "id")
	if !passed {
		return
	}

	if err := a.service.DeleteDefinition(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{"definition_id": id, "actor": c.GetHeader("X-Actor")}).Info("definition deleted")
	c.JSON(http.StatusOK, gin.H{"message": "definition deleted with dependents"})
}

func (a Api) GetDefinitionHistory(c *gin.Context) {
	id, passed := requiredParam(c, "id")
	if !passed {
		return
	}

	resp, err := a.service.GetDefinitionHistory(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) GetDefinitionHealth(c *gin.Context) {
	id, passed := requiredParam(c, "id")
	if !passed {
		return
	}

	var quality *float64
	if raw := c.Query("quality"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quality must be a number"})
			return
		}
		quality = &parsed
	}

	resp, err := a.service.DefinitionHealth(c.Request.Context(), id, quality)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) SetDefinitionInputs(c *gin.Context) {
	id, passed := requiredParam(c, "id")
	if !passed {
		return
	}

	var body model2.SetDefinitionInputs
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := a.service.SetDefinitionInputs(c.Request.Context(), id, body.ToDefinitionInputs()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "definition inputs replaced"})
}

func (a Api) GetDefinitionInputs(c *gin.Context) {
	id, passed := requiredParam(c, "id")
	if !passed {
		return
	}

	resp, err := a.service.GetDefinitionInputs(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
