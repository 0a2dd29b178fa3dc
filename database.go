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


package recall

import (
	"log/slog"

	"github.com/poiesic/recall/importer"
	"github.com/poiesic/recall/search"
	"github.com/poiesic/recall/storage"
	"github.com/poiesic/recall/storage/badger"
)

// Database bundles a BadgerDB store with the search engine and importer
// that work against it.
type Database struct {
	backend  *badger.Backend
	convRepo *badger.ConversationRepository
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	inMemory bool
	logger   *slog.Logger
}

// WithInMemory keeps the whole database in memory; the path is ignored.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithDatabaseLogger sets the logger used when closing.
// Default is slog.Default().
func WithDatabaseLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	// Create conversation repository
	convRepo, err := badger.NewConversationRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:  backend,
		convRepo: convRepo,
		logger:   options.logger,
	}, nil
}

func (db *Database) Close() error {
	// Close repository
	if err := db.convRepo.Close(); err != nil {
		db.logger.Error("error closing conversation repository", "err", err)
		return err
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) ConversationRepository() storage.ConversationRepository {
	return db.convRepo
}

func (db *Database) NewEngine(opts ...search.Option) (*search.Engine, error) {
	return search.NewEngine(db.convRepo, opts...)
}

func (db *Database) NewImporter(opts ...importer.Option) (*importer.Importer, error) {
	return importer.NewImporter(db.convRepo, opts...)
}
