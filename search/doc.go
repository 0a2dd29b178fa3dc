// Copyright 2025 Poiesic Systems
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


// Package search provides full-text relevance search over conversations.
//
// The Engine scans a live corpus on every call; there is no index to build
// or keep fresh. A query is parsed into weighted terms:
//   - Quoted phrases, matched as case-insensitive substrings
//   - Keywords, matched on word boundaries with stop words removed
//
// Messages are ranked with logarithmic term frequency, a boost for early
// matches and a boost for short texts. Conversations combine a double-weighted
// title score with the mean score of their messages. Suggestions complete a
// partial word from titles and recent messages.
package search
