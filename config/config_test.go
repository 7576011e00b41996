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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "curvetrace.json")
	err := os.WriteFile(path, []byte(content), 0644)
	assert.NoError(t, err)
	return path
}

func TestInitConfig_FromFile(t *testing.T) {
	path := writeConfigFile(t, `{
		"project_name": "curvetrace-test",
		"server": {"port": "6001"},
		"data_source": {"dns": "postgres://localhost:5432/curvetrace"},
		"redis": {"dns": "localhost:6379"}
	}`)

	err := InitConfig(path)
	assert.NoError(t, err)

	cnf, err := Fetch()
	assert.NoError(t, err)
	assert.Equal(t, "curvetrace-test", cnf.ProjectName)
	assert.Equal(t, "6001", cnf.Server.Port)
	assert.Equal(t, "postgres://localhost:5432/curvetrace", cnf.DataSource.Dns)
}

func TestInitConfig_Defaults(t *testing.T) {
	path := writeConfigFile(t, `{"data_source": {"dns": "postgres://localhost:5432/curvetrace"}}`)

	err := InitConfig(path)
	assert.NoError(t, err)

	cnf, err := Fetch()
	assert.NoError(t, err)
	assert.Equal(t, "Curvetrace Server", cnf.ProjectName)
	assert.Equal(t, DEFAULT_PORT, cnf.Server.Port)
	assert.NotNil(t, cnf.RateLimit.CleanupIntervalSec)
}

func TestInitConfig_MissingDataSource(t *testing.T) {
	path := writeConfigFile(t, `{"project_name": "broken"}`)
	err := InitConfig(path)
	assert.Error(t, err)
}

func TestInitConfig_EnvOverride(t *testing.T) {
	path := writeConfigFile(t, `{
		"server": {"port": "6001"},
		"data_source": {"dns": "postgres://localhost:5432/curvetrace"}
	}`)

	t.Setenv("CURVETRACE_SERVER_PORT", "7001")
	err := InitConfig(path)
	assert.NoError(t, err)

	cnf, err := Fetch()
	assert.NoError(t, err)
	assert.Equal(t, "7001", cnf.Server.Port)
}

func TestInitConfig_SecureRequiresSecretKey(t *testing.T) {
	path := writeConfigFile(t, `{
		"data_source": {"dns": "postgres://localhost:5432/curvetrace"},
		"server": {"secure": true}
	}`)

	err := InitConfig(path)
	assert.Error(t, err)
}

func TestRateLimitDefaults(t *testing.T) {
	path := writeConfigFile(t, `{
		"data_source": {"dns": "postgres://localhost:5432/curvetrace"},
		"rate_limit": {"requests_per_second": 10}
	}`)

	err := InitConfig(path)
	assert.NoError(t, err)

	cnf, err := Fetch()
	assert.NoError(t, err)
	assert.NotNil(t, cnf.RateLimit.Burst)
	assert.Equal(t, 20, *cnf.RateLimit.Burst)
}

func TestMockConfig(t *testing.T) {
	MockConfig(&Configuration{ProjectName: "mocked"})
	cnf, err := Fetch()
	assert.NoError(t, err)
	assert.Equal(t, "mocked", cnf.ProjectName)
}
