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

	"github.com/fathomenergy/curvetrace/model"
)

// RecordLineage records the fundamental inputs an instance was built from.
// With an empty input list the instance inherits the definition's default
// inputs, stamped with the instance's forecast run time.
func (c *Curvetrace) RecordLineage(ctx context.Context, instanceID string, inputs []model.LineageRecord) (int, error) {
	if len(inputs) == 0 {
		instance, err := c.datasource.GetInstanceByID(instanceID)
		if err != nil {
			return 0, err
		}
		defaults, err := c.datasource.GetDefinitionInputs(instance.DefinitionID)
		if err != nil {
			return 0, err
		}
		for _, input := range defaults {
			inputs = append(inputs, model.LineageRecord{
				InputType:      input.InputType,
				Source:         input.Source,
				Identifier:     input.Source,
				InputTimestamp: instance.ForecastRunAt,
				UsageType:      input.UsageType,
			})
		}
		if len(inputs) == 0 {
			return 0, nil
		}
	}
	return c.datasource.RecordLineage(ctx, instanceID, inputs)
}

func (c *Curvetrace) GetLineage(instanceID string) ([]model.LineageRecord, error) {
	return c.datasource.GetLineage(instanceID)
}

// SetDefinitionInputs replaces a definition's default input set.
func (c *Curvetrace) SetDefinitionInputs(ctx context.Context, definitionID string, inputs []model.DefinitionInput) error {
	return c.datasource.SetDefinitionInputs(ctx, definitionID, inputs)
}

func (c *Curvetrace) GetDefinitionInputs(definitionID string) ([]model.DefinitionInput, error) {
	return c.datasource.GetDefinitionInputs(definitionID)
}
