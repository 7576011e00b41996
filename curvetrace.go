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
	"embed"
	"time"

	"github.com/fathomenergy/curvetrace/config"
	"github.com/fathomenergy/curvetrace/database"
	"github.com/fathomenergy/curvetrace/internal/cache"
)

// Curvetrace is the forecast-curve versioning service: definitions, their
// versioned instances, group freshness windows, schedules, lineage and the
// merge of duplicate definitions.
type Curvetrace struct {
	datasource database.IDataSource
	cache      cache.Cache
}

//go:embed sql/*.sql
var SQLFiles embed.FS

// Cache TTLs for the read projections. Mutations invalidate eagerly; the TTL
// only bounds staleness after missed invalidations.
const (
	freshGroupTTL = 5 * time.Minute
	healthTTL     = 10 * time.Minute
)

// NewCurvetrace initializes the service with the provided datasource. The
// Redis-backed projection cache is optional; with no Redis configured every
// read goes straight to the store.
func NewCurvetrace(db database.IDataSource) (*Curvetrace, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	var projectionCache cache.Cache
	if configuration.Redis.Dns != "" {
		projectionCache, err = cache.NewCache()
		if err != nil {
			return nil, err
		}
	}

	return &Curvetrace{datasource: db, cache: projectionCache}, nil
}
