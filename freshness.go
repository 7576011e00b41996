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
	"github.com/fathomenergy/curvetrace/internal/retry"
	"github.com/fathomenergy/curvetrace/model"
)

// IngestDataRows loads a batch of forecast data rows under an instance.
func (c *Curvetrace) IngestDataRows(ctx context.Context, instanceID string, rows []model.DataRow) (int, error) {
	instance, err := c.datasource.GetInstanceByID(instanceID)
	if err != nil {
		return 0, err
	}
	count, err := c.datasource.InsertDataRows(ctx, instanceID, rows)
	if err != nil {
		return 0, err
	}
	c.invalidateDefinitionProjections(ctx, instance.DefinitionID)
	return count, nil
}

// SetGroupFreshness opens the freshness window for one (curveType, commodity)
// group on an instance, closing every predecessor window for the same group
// at exactly the new start. Freshness is tracked per group, not per instance:
// a partial refresh supersedes only the groups it actually delivers.
func (c *Curvetrace) SetGroupFreshness(ctx context.Context, instanceID, curveType, commodity string, start time.Time, end *time.Time) error {
	instance, err := c.datasource.GetInstanceByID(instanceID)
	if err != nil {
		return err
	}
	err = retry.Transient(ctx, "set-group-freshness", func() error {
		return c.datasource.SetGroupFreshness(ctx, instanceID, curveType, commodity, start, end)
	})
	if err != nil {
		return err
	}
	c.invalidateDefinitionProjections(ctx, instance.DefinitionID)
	return nil
}

// SupersedeGroup closes a group's open window without a replacement, for
// curves withdrawn from service.
func (c *Curvetrace) SupersedeGroup(ctx context.Context, instanceID, curveType, commodity string, end time.Time) error {
	instance, err := c.datasource.GetInstanceByID(instanceID)
	if err != nil {
		return err
	}
	if err := c.datasource.SupersedeGroup(ctx, instanceID, curveType, commodity, end); err != nil {
		return err
	}
	c.invalidateDefinitionProjections(ctx, instance.DefinitionID)
	return nil
}

// GetFreshGroups answers "which data is current right now" per group under a
// definition, through the projection cache when one is configured.
func (c *Curvetrace) GetFreshGroups(ctx context.Context, definitionID string) ([]model.FreshGroup, error) {
	key := cache.Key("fresh-groups", definitionID)
	var groups []model.FreshGroup
	if c.cache != nil {
		if err := c.cache.Get(ctx, key, &groups); err == nil {
			return groups, nil
		}
	}

	groups, err := c.datasource.GetFreshGroups(definitionID)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		if err := c.cache.Set(ctx, key, groups, freshGroupTTL); err != nil {
			logrus.WithField("definition_id", definitionID).Warnf("fresh-group cache set failed: %v", err)
		}
	}
	return groups, nil
}

func (c *Curvetrace) GetDataRows(instanceID string, limit, offset int) ([]model.DataRow, error) {
	return c.datasource.GetDataRows(instanceID, limit, offset)
}
