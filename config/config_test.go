/*
Copyright 2024 Inlet Authors.

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
	path := filepath.Join(t.TempDir(), "inlet.json")
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestInitConfigFromFile(t *testing.T) {
	path := writeConfigFile(t, `{
		"project_name": "Inlet Test",
		"server": {"port": "6001"},
		"data_source": {"dns": "postgres://localhost/inlet"}
	}`)

	assert.NoError(t, InitConfig(path))

	cnf, err := Fetch()
	assert.NoError(t, err)
	assert.Equal(t, "Inlet Test", cnf.ProjectName)
	assert.Equal(t, "6001", cnf.Server.Port)
	assert.Equal(t, "postgres://localhost/inlet", cnf.DataSource.Dns)
}

func TestInitConfigDefaults(t *testing.T) {
	path := writeConfigFile(t, `{
		"data_source": {"dns": "postgres://localhost/inlet"}
	}`)

	assert.NoError(t, InitConfig(path))

	cnf, err := Fetch()
	assert.NoError(t, err)
	assert.Equal(t, "Inlet Server", cnf.ProjectName)
	assert.Equal(t, DEFAULT_PORT, cnf.Server.Port)
	assert.Nil(t, cnf.RateLimit.RequestsPerSecond)
	assert.Nil(t, cnf.RateLimit.Burst)
	assert.NotNil(t, cnf.RateLimit.CleanupIntervalSec)
}

func TestInitConfigMissingDataSource(t *testing.T) {
	path := writeConfigFile(t, `{"project_name": "Inlet Test"}`)

	assert.Error(t, InitConfig(path))
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `{
		"server": {"port": "6001"},
		"data_source": {"dns": "postgres://localhost/inlet"}
	}`)

	t.Setenv("INLET_SERVER_PORT", "7001")

	assert.NoError(t, InitConfig(path))

	cnf, err := Fetch()
	assert.NoError(t, err)
	assert.Equal(t, "7001", cnf.Server.Port)
}

func TestRateLimitDefaults(t *testing.T) {
	path := writeConfigFile(t, `{
		"data_source": {"dns": "postgres://localhost/inlet"},
		"rate_limit": {"requests_per_second": 10}
	}`)

	assert.NoError(t, InitConfig(path))

	cnf, err := Fetch()
	assert.NoError(t, err)
	assert.NotNil(t, cnf.RateLimit.Burst)
	assert.Equal(t, 20, *cnf.RateLimit.Burst)
}

func TestMockConfig(t *testing.T) {
	MockConfig(&Configuration{ProjectName: "Mocked"})

	cnf, err := Fetch()
	assert.NoError(t, err)
	assert.Equal(t, "Mocked", cnf.ProjectName)
}
