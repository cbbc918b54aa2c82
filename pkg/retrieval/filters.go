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

package retrieval

import "github.com/nithin8919/policyengine/pkg/query"

// fieldMappings is the logical-filter-to-physical-payload-field table,
// reproducing the original field_mappings.py FIELD_MAPPINGS dict. An
// absent or empty field list means the logical filter does not apply to
// that vertical: it neither restricts nor excludes results there.
var fieldMappings = map[string]map[query.Vertical][]string{
	"sections": {
		query.VerticalLegal: {"section", "sections", "mentioned_sections"},
		query.VerticalGO: {"mentioned_sections"},
		query.VerticalJudicial: {"mentioned_sections"},
		query.VerticalData: nil,
		query.VerticalSchemes: nil,
	},
	"go_number": {
		query.VerticalGO: {"go_number"},
		query.VerticalLegal: {"mentioned_gos"},
		query.VerticalJudicial: {"mentioned_gos"},
		query.VerticalData: nil,
		query.VerticalSchemes: nil,
	},
	"year": {
		query.VerticalLegal: {"year"},
		query.VerticalGO: {"year"},
		query.VerticalJudicial: {"year"},
		query.VerticalData: {"year"},
		query.VerticalSchemes: {"year"},
	},
	"department": {
		query.VerticalGO: {"department", "departments"},
		query.VerticalLegal: nil,
		query.VerticalJudicial: nil,
		query.VerticalData: {"departments"},
		query.VerticalSchemes: {"departments"},
	},
	"case_number": {
		query.VerticalJudicial: {"case_number"},
		query.VerticalLegal: nil,
		query.VerticalGO: nil,
		query.VerticalData: nil,
		query.VerticalSchemes: nil,
	},
	"scheme_name": {
		query.VerticalSchemes: {"scheme_name"},
		query.VerticalGO: {"schemes", "mentioned_schemes"},
		query.VerticalLegal: nil,
		query.VerticalJudicial: nil,
		query.VerticalData: nil,
	},
}

// MappedFields returns the physical payload fields a logical filter
// resolves to in a vertical. A filter field absent from the table falls
// back to a direct same-name mapping (original get_mapped_fields default).
func MappedFields(logical string, vertical query.Vertical) []string {
	byVertical, known := fieldMappings[logical]
	if !known {
		return []string{logical}
	}
	return byVertical[vertical]
}

// BuildFilterVariants expands the plan's logical filters into the set of
// physical single-field filter maps that must each be searched and unioned
// for a vertical. The vector.Provider contract only ANDs distinct map keys
// so OR-ing across *different* physical field names for the same
// logical filter (e.g. "section" OR "sections" OR "mentioned_sections")
// cannot be expressed in one call; each physical field becomes its own
// filter map to search and the results are merged by the caller.
//
// Multiple distinct logical filters (e.g. both "year" and "go_number") are
// combined as an AND within a single variant, since Provider already ANDs
// map keys; only the per-logical-filter physical-field disjunction needs
// the union-of-calls treatment. When that produces more than one physical
// field for a given logical filter, the search is replicated once per
// physical field choice while holding the other logical filters fixed, and
// the cross product across logical filters with multiple mapped fields is
// flattened into the returned variant list.
func BuildFilterVariants(filters map[string][]string, vertical query.Vertical) []map[string]any {
	if len(filters) == 0 {
		return []map[string]any{nil}
	}

	// base accumulates logical filters whose mapping resolved to exactly
	// one physical field (or which are absent from this vertical, and so
	// are dropped); multi collects the ones with >1 physical field,
	// each needing its own branch of the union.
	base := map[string]any{}
	var multi []struct {
		values []string
		fields []string
	}

	for logical, values := range filters {
		if len(values) == 0 {
			continue
		}
		fields := MappedFields(logical, vertical)
		if len(fields) == 0 {
			continue // inapplicable to this vertical
		}
		if len(fields) == 1 {
			base[fields[0]] = filterValue(values)
			continue
		}
		multi = append(multi, struct {
			values []string
			fields []string
		}{values, fields})
	}

	variants := []map[string]any{base}
	for _, m := range multi {
		var next []map[string]any
		for _, v := range variants {
			for _, f := range m.fields {
				branch := cloneFilterMap(v)
				branch[f] = filterValue(m.values)
				next = append(next, branch)
			}
		}
		variants = next
	}
	return variants
}

func filterValue(values []string) any {
	if len(values) == 1 {
		return values[0]
	}
	return values
}

func cloneFilterMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}
