package models

import "time"

// Document records a file accepted by the development backend.
type Document struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	Filename   string    `gorm:"type:text;not null"`
	FilePath   string    `gorm:"type:text;not null"`
	Readable   bool      `gorm:"default:false"`
	Active     bool      `gorm:"default:false;index"`
	UploadDate time.Time `gorm:"autoCreateTime;index"`
}
