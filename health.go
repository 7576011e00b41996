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

package curvetrace

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fathomenergy/curvetrace/internal/cache"
	"github.com/fathomenergy/curvetrace/model"
)

// healthHistoryWindow is how many recent runs feed the compliance component.
const healthHistoryWindow = 12

// DefinitionHealth scores a definition's curve 0-100 from freshness,
// delivery compliance and data quality. The scoring itself is a pure
// function; this method assembles its inputs from the definition's most
// recent instance, its first schedule and that schedule's run history, and
// caches the result.
func (c *Curvetrace) DefinitionHealth(ctx context.Context, definitionID string, quality *float64) (*model.HealthScore, error) {
	key := cache.Key("health", definitionID)
	if c.cache != nil && quality == nil {
		var cached model.HealthScore
		if err := c.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	lastInstance, err := c.datasource.GetLastInstance(definitionID)
	if err != nil {
		return nil, err
	}
	schedules, err := c.datasource.GetSchedulesByDefinition(definitionID)
	if err != nil {
		return nil, err
	}

	input := model.HealthInput{Now: time.Now(), Quality: quality}
	if lastInstance != nil {
		received := lastInstance.ForecastRunAt
		input.LastReceived = &received
	}
	if len(schedules) > 0 {
		schedule := schedules[0]
		if due := model.NextDue(&schedule, lastInstance); !due.IsZero() {
			input.NextExpected = &due
		}
		runs, err := c.datasource.GetScheduleRuns(schedule.ScheduleID, healthHistoryWindow)
		if err != nil {
			return nil, err
		}
		input.History = runs
	}

	score := model.ComputeHealth(input)
	if c.cache != nil && quality == nil {
		if err := c.cache.Set(ctx, key, score, healthTTL); err != nil {
			logrus.WithField("definition_id", definitionID).Warnf("health cache set failed: %v", err)
		}
	}
	return &score, nil
}
