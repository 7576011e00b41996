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
	"github.com/fathomenergy/curvetrace/model"
)

func (a Api) CreateSchedule(c *gin.Context) {
	var newSchedule model2.CreateSchedule
	if err := c.ShouldBindJSON(&newSchedule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	if err := newSchedule.ValidateCreateSchedule(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.service.CreateSchedule(newSchedule.ToSchedule())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (a Api) GetSchedule(c *gin.Context) {
	id, passed := requiredParam(c, "id")
	if !passed {
		return
	}

	resp, err := a.service.GetSchedule(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) GetAllSchedules(c *gin.Context) {
	limit, offset := paginate(c)
	resp, err := a.service.GetAllSchedules(limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) GetSchedulesByDefinition(c *gin.Context) {
	id, passed := requiredParam(c, "id")
	if !passed {
		return
	}

	resp, err := a.service.GetSchedulesByDefinition(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) GetScheduleOutlook(c *gin.Context) {
	id, passed := requiredParam(c, "id")
	if !passed {
		return
	}

	resp, err := a.service.GetScheduleOutlook(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) UpdateSchedule(c *gin.Context) {
	id, passed := requiredParam(c, "id")
	if !passed {
		return
	}

	var body model2.UpdateSchedule
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	if err := body.ValidateUpdateSchedule(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	schedule, err := a.service.GetSchedule(id)
	if err != nil {
		respondError(c, err)
		return
	}
	body.ApplyTo(schedule)

	if err := a.service.UpdateSchedule(schedule); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, schedule)
}

func (a Api) DeleteSchedule(c *gin.Context) {
	id, passed := requiredParam(c, "id")
	if !passed {
		return
	}

	if err := a.service.DeleteSchedule(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "schedule deleted"})
}

func (a Api) RecordScheduleRun(c *gin.Context) {
	id, passed := requiredParam(c, "id")
	if !passed {
		return
	}

	var body model2.RecordScheduleRun
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	if err := body.ValidateRecordScheduleRun(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	run, err := a.service.RecordScheduleRun(&model.ScheduleRun{
		ScheduleID: id,
		ExpectedAt: body.ExpectedAt,
		ActualAt:   body.ActualAt,
		Status:     body.Status,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, run)
}

func (a Api) GetScheduleRuns(c *gin.Context) {
	id, passed := requiredParam(c, "id")
	if !passed {
		return
	}

	limit, _ := paginate(c)
	resp, err := a.service.GetScheduleRuns(id, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) ResolveScheduleRun(c *gin.Context) {
	id, passed := requiredParam(c, "id")
	if !passed {
		return
	}
	runID, passed := requiredParam(c, "run_id")
	if !passed {
		return
	}

	var body model2.ResolveScheduleRun
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	if err := body.ValidateResolveScheduleRun(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := a.service.ResolveScheduleRun(id, runID, body.ActualAt); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "schedule run resolved"})
}
