// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package windows

import (
	"context"
	"path/filepath"
	"strings"
	"time"
)

// loadTimeoutSeconds bounds how long a Parquet read may take.
const loadTimeoutSeconds = 120

// dataExtensions are the file types the open dialog offers.
var dataExtensions = []string{".csv", ".tsv", ".parquet", ".json"}

// createTimeoutContext returns a context that expires after timeoutSeconds
// (60 seconds if <= 0).
func createTimeoutContext(timeoutSeconds int) (context.Context, context.CancelFunc) {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 60
	}
	return context.WithTimeout(context.Background(), time.Duration(timeoutSeconds)*time.Second)
}

// exportFileName suggests a name for exporting source in format ext.
func exportFileName(source, ext string) string {
	if source == "" {
		return "records" + ext
	}
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_curated" + ext
}
