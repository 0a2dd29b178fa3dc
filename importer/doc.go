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


// Package importer loads conversation transcripts into a repository.
//
// Transcripts are JSON documents holding conversations and their messages.
// The Importer writes each conversation on a worker pool:
//   - Conversations already present (same title and creation time) are skipped
//   - Transaction conflicts are retried with exponential backoff
//   - A conversation whose messages cannot be stored is soft-deleted
//
// Failures are counted in the ImportReport and logged; they do not abort
// the rest of the import.
package importer
