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

package answer

import (
	"strings"

	"github.com/nithin8919/policyengine/pkg/query"
)

// synthesisPrompts reproduces mode_config.py's SYNTHESIS_PROMPTS templates
// verbatim in substance, keyed by query.SynthesisStyle instead of a string
// dict lookup with a "concise" default.
var synthesisPrompts = map[query.SynthesisStyle]string{
	query.SynthesisConcise: `Answer the question directly and concisely using the provided context.

	Question: {{query}}

	Context:
	{{context}}

	Provide a clear, factual answer with inline citations [1], [2], etc.`,

	query.SynthesisDeepPolicy: `Provide a comprehensive policy analysis using the chain-of-thought approach:

	1. Constitutional Foundation
	2. Relevant Acts & Rules
	3. Government Orders (implementation)
	4. Judicial Precedents
	5. Data Evidence
	6. Practical Recommendations

	Question: {{query}}

	Context from all verticals:
	{{context}}

	Synthesize a deep, integrated policy perspective with citations.`,

	query.SynthesisExploratory: `Generate creative ideas and insights based on the context provided.

	Topic: {{query}}

	Context (global models, data, schemes):
	{{context}}

	Provide:
	- Novel ideas
	- Global best practices
	- Ground realities in AP
	- Innovative approaches
	- Feasibility considerations`,
}

// BuildPrompt fills a mode's synthesis template with the question and the
// assembled context block. Unknown styles fall back to concise, matching
// get_synthesis_prompt's dict.get default.
func BuildPrompt(style query.SynthesisStyle, queryText, context string) string {
	template, ok := synthesisPrompts[style]
	if !ok {
		template = synthesisPrompts[query.SynthesisConcise]
	}
	prompt := strings.ReplaceAll(template, "{{query}}", queryText)
	prompt = strings.ReplaceAll(prompt, "{{context}}", context)
	return prompt
}
