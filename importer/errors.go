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


package importer

import "errors"

var (
	// ErrRepositoryRequired is returned when a conversation repository is not provided.
	ErrRepositoryRequired = errors.New("conversation repository required")

	// ErrInvalidMaxAttempts is returned when the retry attempt count is <= 0.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrInvalidTranscript is returned when a transcript cannot be decoded.
	ErrInvalidTranscript = errors.New("invalid transcript")

	// ErrMissingCreatedAt is returned when neither a conversation nor any of
	// its messages carries a timestamp.
	ErrMissingCreatedAt = errors.New("conversation has no timestamp")
)
