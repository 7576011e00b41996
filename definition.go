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

	"github.com/sirupsen/logrus"

	"github.com/fathomenergy/curvetrace/internal/cache"
	"github.com/fathomenergy/curvetrace/model"
)

// invalidateDefinitionProjections drops the cached read projections that a
// mutation under this definition can stale out.
func (c *Curvetrace) invalidateDefinitionProjections(ctx context.Context, definitionID string) {
	if c.cache == nil {
		return
	}
	for _, key := range []string{
		cache.Key("fresh-groups", definitionID),
		cache.Key("health", definitionID),
	} {
		if err := c.cache.Delete(ctx, key); err != nil {
			logrus.WithField("key", key).Warnf("cache invalidation failed: %v", err)
		}
	}
}

// CreateDefinition registers a new curve definition. Duplicate identity
// tuples are permitted; they surface through FindDuplicateDefinitions and are
// resolved by a merge, so here they only warrant a warning.
func (c *Curvetrace) CreateDefinition(definition model.Definition) (model.Definition, error) {
	created, err := c.datasource.CreateDefinition(definition)
	if err != nil {
		return model.Definition{}, err
	}

	duplicates, err := c.datasource.FindDefinitionsByIdentity(&created)
	if err == nil && len(duplicates) > 1 {
		logrus.WithFields(logrus.Fields{
			"definition_id": created.DefinitionID,
			"identity_key":  created.IdentityKey(),
			"count":         len(duplicates),
		}).Warn("definition identity already registered, merge recommended")
	}

	return created, nil
}

func (c *Curvetrace) GetDefinition(id string) (*model.Definition, error) {
	return c.datasource.GetDefinitionByID(id)
}

func (c *Curvetrace) GetAllDefinitions(limit, offset int) ([]model.Definition, error) {
	return c.datasource.GetAllDefinitions(limit, offset)
}

// FindDuplicateDefinitions returns every definition sharing the given
// identity tuple, canonical (oldest) first.
func (c *Curvetrace) FindDuplicateDefinitions(definition *model.Definition) ([]model.Definition, error) {
	return c.datasource.FindDefinitionsByIdentity(definition)
}

func (c *Curvetrace) DeactivateDefinition(ctx context.Context, id string) error {
	if err := c.datasource.DeactivateDefinition(id); err != nil {
		return err
	}
	c.invalidateDefinitionProjections(ctx, id)
	return nil
}

// DeleteDefinition hard-deletes a definition and everything it owns. Admin
// operation; ordinary retirement goes through DeactivateDefinition.
func (c *Curvetrace) DeleteDefinition(ctx context.Context, id string) error {
	if err := c.datasource.DeleteDefinition(ctx, id); err != nil {
		return err
	}
	c.invalidateDefinitionProjections(ctx, id)
	return nil
}
