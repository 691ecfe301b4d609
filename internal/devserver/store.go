package devserver

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/zulandar/pdfchat/internal/attachment"
	"github.com/zulandar/pdfchat/internal/models"
	"gorm.io/gorm"
)

// Store keeps uploaded files on disk and their catalog rows in the database.
type Store struct {
	db  *gorm.DB
	dir string
}

// NewStore creates a Store writing files under dir.
func NewStore(db *gorm.DB, dir string) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("devserver: db is required")
	}
	if dir == "" {
		return nil, fmt.Errorf("devserver: storage dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("devserver: create storage dir: %w", err)
	}
	return &Store{db: db, dir: dir}, nil
}

// Replace saves files and makes them the active set, deactivating every
// previously active document.
func (s *Store) Replace(files []attachment.File) ([]models.Document, error) {
	docs := make([]models.Document, 0, len(files))
	for _, f := range files {
		path := filepath.Join(s.dir, uuid.NewString()+"_"+f.Name)
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			removeFiles(docs)
			return nil, fmt.Errorf("devserver: save %s: %w", f.Name, err)
		}
		docs = append(docs, models.Document{
			Filename: f.Name,
			FilePath: path,
			Readable: f.IsPDF(),
			Active:   true,
		})
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Document{}).Where("active = ?", true).
			Update("active", false).Error; err != nil {
			return err
		}
		return tx.Create(&docs).Error
	})
	if err != nil {
		// Files without a catalog row would never be purged.
		removeFiles(docs)
		return nil, fmt.Errorf("devserver: record documents: %w", err)
	}
	return docs, nil
}

// removeFiles deletes the stored files of docs, ignoring errors.
func removeFiles(docs []models.Document) {
	for _, d := range docs {
		os.Remove(d.FilePath)
	}
}

// Active returns the documents from the most recent upload, oldest first.
func (s *Store) Active() ([]models.Document, error) {
	var docs []models.Document
	if err := s.db.Where("active = ?", true).Order("id ASC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("devserver: list active: %w", err)
	}
	return docs, nil
}

// Purge deletes documents uploaded before cutoff along with their files.
// Missing files are ignored. It returns the number of rows removed.
func (s *Store) Purge(cutoff time.Time) (int, error) {
	var stale []models.Document
	if err := s.db.Where("upload_date < ?", cutoff).Find(&stale).Error; err != nil {
		return 0, fmt.Errorf("devserver: find stale: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}
	ids := make([]uint, len(stale))
	for i, d := range stale {
		ids[i] = d.ID
		if err := os.Remove(d.FilePath); err != nil && !os.IsNotExist(err) {
			return 0, fmt.Errorf("devserver: remove %s: %w", d.FilePath, err)
		}
	}
	if err := s.db.Delete(&models.Document{}, ids).Error; err != nil {
		return 0, fmt.Errorf("devserver: delete stale: %w", err)
	}
	return len(stale), nil
}
