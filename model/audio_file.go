package model

import "time"

// Classification results as reported back to the client. No other
// values are ever written to the result column.
const (
	ResultDeepfake  = "deepfake"
	ResultAuthentic = "authentic"
)

// AudioFile is the metadata record for one uploaded blob. The blob itself
// lives in the object store under a key equal to ID, so the two are always
// a 1:1 pair. Records are written once at upload time and never mutated.
type AudioFile struct {
	ID string `gorm:"primaryKey" json:"id"`

	// Weak reference to the owning user. Lookup-only, no cascading
	// delete, may be empty for rows predating authentication
	UserID string `gorm:"index" json:"userId,omitempty"`

	// Original file name as sent by the client
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`

	// Simulated classification, assigned at upload time
	Confidence int    `json:"confidence"`
	Result     string `json:"result"`

	UploadDate time.Time `gorm:"not null;index" json:"uploadDate"`
}
