package repositories

import (
	"fmt"
	"github.com/glebarez/sqlite"
	"github.com/maxaizer/jobmatch/internal/docstore"
	"github.com/maxaizer/jobmatch/internal/entities"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DbContext struct {
	DB *gorm.DB
}

func NewDbContext(connectionString string) (*DbContext, error) {
	db, err := gorm.Open(sqlite.Open(connectionString), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}

	return &DbContext{DB: db}, nil
}

// Migrate creates the credential accounts table and, when documents live in sqlite too,
// the documents table.
func (c *DbContext) Migrate(withDocuments bool) error {
	err := c.DB.AutoMigrate(entities.Account{})
	if err != nil {
		return fmt.Errorf("failed to migrate Account entity: %w", err)
	}

	if !withDocuments {
		return nil
	}

	if err = c.Documents().Migrate(); err != nil {
		return fmt.Errorf("failed to migrate documents: %w", err)
	}

	if err = c.DB.Exec("CREATE INDEX IF NOT EXISTS idx_documents_collection_created " +
		"ON documents (collection, json_extract(data, '$.createdAt'))").
		Error; err != nil {
		return fmt.Errorf("failed to create documents index: %w", err)
	}

	return nil
}

func (c *DbContext) Documents() *docstore.SQLStore {
	return docstore.NewSQLStore(c.DB)
}

func (c *DbContext) Close() error {
	db, err := c.DB.DB()
	if err != nil {
		return err
	}

	return db.Close()
}
