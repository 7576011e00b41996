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
	"github.com/fathomenergy/curvetrace/model"
)

type MockCurvetrace struct {
	Curvetrace
	mockGetDefinition func(string) (*model.Definition, error)
	mockGetInstance   func(string) (*model.Instance, error)
}

func (m *MockCurvetrace) GetDefinition(id string) (*model.Definition, error) {
	if m.mockGetDefinition != nil {
		return m.mockGetDefinition(id)
	}
	return m.Curvetrace.GetDefinition(id)
}

func (m *MockCurvetrace) GetInstance(id string) (*model.Instance, error) {
	if m.mockGetInstance != nil {
		return m.mockGetInstance(id)
	}
	return m.Curvetrace.GetInstance(id)
}
