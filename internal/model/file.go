package model

import "time"

// File represents metadata for an uploaded file.
// The binary itself lives in external storage (object store or local disk);
// this record is a pointer plus descriptive metadata and is never updated in place.
type File struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"originalname"`
	Filename     string    `json:"filename"` // storage public identifier
	Path         string    `json:"path"`     // secure URL (cloud) or local path
	MimeType     string    `json:"mimetype"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
