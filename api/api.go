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

	"github.com/fathomenergy/curvetrace"
	"github.com/fathomenergy/curvetrace/api/middleware"
	"github.com/fathomenergy/curvetrace/config"
	"github.com/fathomenergy/curvetrace/internal/apierror"
)

type Api struct {
	service *curvetrace.Curvetrace
	router  *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.POST("/definitions", a.CreateDefinition)
	router.GET("/definitions/:id", a.GetDefinition)
	router.GET("/definitions", a.GetAllDefinitions)
	router.GET("/definitions/:id/duplicates", a.FindDuplicateDefinitions)
	router.PUT("/definitions/:id/deactivate", a.DeactivateDefinition)
	router.DELETE("/definitions/:id", a.DeleteDefinition)
	router.GET("/definitions/:id/instances", a.GetInstancesByDefinition)
	router.GET("/definitions/:id/history", a.GetDefinitionHistory)
	router.GET("/definitions/:id/fresh-groups", a.GetFreshGroups)
	router.GET("/definitions/:id/health", a.GetDefinitionHealth)
	router.GET("/definitions/:id/schedules", a.GetSchedulesByDefinition)
	router.GET("/definitions/:id/schedule-outlook", a.GetScheduleOutlook)
	router.PUT("/definitions/:id/inputs", a.SetDefinitionInputs)
	router.GET("/definitions/:id/inputs", a.GetDefinitionInputs)

	router.POST("/instances", a.CreateInstance)
	router.GET("/instances/:id", a.GetInstance)
	router.PUT("/instances/:id/status", a.UpdateInstanceStatus)
	router.DELETE("/instances/:id", a.DeleteInstance)
	router.POST("/instances/:id/data-rows", a.IngestDataRows)
	router.GET("/instances/:id/data-rows", a.GetDataRows)
	router.PUT("/instances/:id/freshness", a.SetGroupFreshness)
	router.PUT("/instances/:id/supersede-group", a.SupersedeGroup)
	router.POST("/instances/:id/lineage", a.RecordLineage)
	router.GET("/instances/:id/lineage", a.GetLineage)
	router.GET("/instances/:id/history", a.GetVersionHistory)

	router.POST("/schedules", a.CreateSchedule)
	router.GET("/schedules/:id", a.GetSchedule)
	router.GET("/schedules", a.GetAllSchedules)
	router.PUT("/schedules/:id", a.UpdateSchedule)
	router.DELETE("/schedules/:id", a.DeleteSchedule)
	router.POST("/schedules/:id/runs", a.RecordScheduleRun)
	router.GET("/schedules/:id/runs", a.GetScheduleRuns)
	router.PUT("/schedules/:id/runs/:run_id/resolve", a.ResolveScheduleRun)

	router.POST("/merge/preview", a.PreviewMerge)
	router.POST("/merge", a.MergeDefinitions)
	return a.router
}

func NewAPI(service *curvetrace.Curvetrace) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()
	r.Use(middleware.RateLimitMiddleware(conf))
	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware())
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{service: service, router: r}
}

// respondError maps service errors onto HTTP statuses so NOT_FOUND, CONFLICT
// and TRANSIENT come back as 404, 409 and 503 rather than a blanket 400.
func respondError(c *gin.Context, err error) {
	c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
}

func requiredParam(c *gin.Context, name string) (string, bool) {
	value, passed := c.Params.Get(name)
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " is required. pass " + name + " in the route /:" + name})
		return "", false
	}
	return value, true
}
