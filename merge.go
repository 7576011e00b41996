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

	"github.com/fathomenergy/curvetrace/internal/retry"
	"github.com/fathomenergy/curvetrace/model"
)

// PreviewMerge reports what merging the temp definition into the target
// would move and rename, without mutating anything.
func (c *Curvetrace) PreviewMerge(ctx context.Context, tempID, targetID string) (*model.MergePlan, error) {
	return c.datasource.PreviewMerge(ctx, tempID, targetID)
}

// MergeDefinitions folds a temporary duplicate definition into its canonical
// target. The store runs the whole fold in one transaction and surfaces lock
// conflicts as transient, so the operation retries from scratch.
func (c *Curvetrace) MergeDefinitions(ctx context.Context, tempID, targetID string) (*model.MergeResult, error) {
	var result *model.MergeResult
	err := retry.Transient(ctx, "merge-definitions", func() error {
		var err error
		result, err = c.datasource.MergeDefinitions(ctx, tempID, targetID)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.invalidateDefinitionProjections(ctx, tempID)
	c.invalidateDefinitionProjections(ctx, targetID)

	logrus.WithFields(logrus.Fields{
		"temp_definition_id":   tempID,
		"target_definition_id": targetID,
		"instances_moved":      result.InstancesMoved,
	}).Info("merge committed")
	return result, nil
}
