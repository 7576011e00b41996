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

	"github.com/fathomenergy/curvetrace/database"
	"github.com/fathomenergy/curvetrace/internal/retry"
	"github.com/fathomenergy/curvetrace/model"
)

// CreateInstance publishes a new forecast instance, superseding the current
// ACTIVE one for the same delivery period atomically. The store reports
// serialization conflicts as transient, so the whole operation retries from
// scratch; an idempotency key on the request makes those retries safe even
// past an ambiguous commit.
func (c *Curvetrace) CreateInstance(ctx context.Context, req *database.CreateInstanceRequest) (*model.Instance, error) {
	var instance *model.Instance
	err := retry.Transient(ctx, "create-instance", func() error {
		var err error
		instance, err = c.datasource.CreateInstance(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	c.invalidateDefinitionProjections(ctx, req.DefinitionID)
	return instance, nil
}

func (c *Curvetrace) GetInstance(id string) (*model.Instance, error) {
	return c.datasource.GetInstanceByID(id)
}

func (c *Curvetrace) GetInstancesByDefinition(definitionID string, limit, offset int) ([]model.Instance, error) {
	return c.datasource.GetInstancesByDefinition(definitionID, limit, offset)
}

// UpdateInstanceStatus moves an instance through its lifecycle. Supersession
// is not reachable this way for ACTIVE instances with successors; that path
// runs inside CreateInstance.
func (c *Curvetrace) UpdateInstanceStatus(ctx context.Context, id string, status string) error {
	instance, err := c.datasource.GetInstanceByID(id)
	if err != nil {
		return err
	}
	err = retry.Transient(ctx, "update-instance-status", func() error {
		return c.datasource.UpdateInstanceStatus(ctx, id, status)
	})
	if err != nil {
		return err
	}
	c.invalidateDefinitionProjections(ctx, instance.DefinitionID)
	return nil
}

func (c *Curvetrace) DeleteInstance(ctx context.Context, id string) error {
	instance, err := c.datasource.GetInstanceByID(id)
	if err != nil {
		return err
	}
	if err := c.datasource.DeleteInstance(ctx, id); err != nil {
		return err
	}
	c.invalidateDefinitionProjections(ctx, instance.DefinitionID)
	return nil
}

// GetVersionHistory returns the append-only change chain of one instance.
func (c *Curvetrace) GetVersionHistory(instanceID string) ([]model.VersionHistoryEntry, error) {
	return c.datasource.GetVersionHistory(instanceID)
}

// GetDefinitionHistory returns the change chain across every instance of a
// definition, oldest first.
func (c *Curvetrace) GetDefinitionHistory(definitionID string) ([]model.VersionHistoryEntry, error) {
	return c.datasource.GetDefinitionHistory(definitionID)
}
