// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package utils provides small helpers shared across the retrieval packages.
package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureStateDir ensures the .policyengine state directory exists at the given
// base path. If basePath is empty or ".", it creates ./.policyengine in the
// current directory; otherwise {basePath}/.policyengine.
//
// Used by the embedded chromem vector store to root its persisted state
// under a predictable directory rather than wherever persist_path happens
// to point.
//
// Returns the full path to the directory and any error.
func EnsureStateDir(basePath string) (string, error) {
	var dir string
	if basePath == "" || basePath == "." {
		dir = ".policyengine"
	} else {
		dir = filepath.Join(basePath, ".policyengine")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create state directory at '%s': %w", dir, err)
	}

	return dir, nil
}
