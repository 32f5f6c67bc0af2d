// Package store persists upload sessions, image variants, products, and
// product-image links through GORM, and runs the schema migrations that
// create their tables.
package store

import "time"

// UploadStatus is the upload session's position in the state graph:
// uploading -> assembling -> complete, with failed reachable from any
// non-terminal state.
type UploadStatus string

const (
	StatusUploading  UploadStatus = "uploading"
	StatusAssembling UploadStatus = "assembling"
	StatusComplete   UploadStatus = "complete"
	StatusFailed     UploadStatus = "failed"
)

// UploadSession is the row backing one client-chosen upload_id.
type UploadSession struct {
	ID               uint64       `gorm:"primaryKey;autoIncrement"`
	UploadID         string       `gorm:"type:uuid;uniqueIndex;not null"`
	OriginalFilename string       `gorm:"not null"`
	DeclaredSize     int64        `gorm:"column:declared_size"`
	FileSize         int64        `gorm:"column:file_size"`
	FileChecksum     string       `gorm:"column:file_checksum"` // hex MD5, set at completion
	MIMEType         string       `gorm:"column:mime_type"`
	Status           UploadStatus `gorm:"type:varchar(16);not null;default:uploading"`
	Path             string       `gorm:"column:path"` // canonical relative blob path, set once assembled
	LastError        string       `gorm:"column:last_error"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (UploadSession) TableName() string { return "upload_sessions" }

// ImageVariant identifies the fixed set of derived renditions plus the
// untouched source.
type ImageVariant string

const (
	VariantOriginal ImageVariant = "original"
	Variant256      ImageVariant = "256"
	Variant512      ImageVariant = "512"
	Variant1024     ImageVariant = "1024"
)

// Image is one variant produced from an upload.
type Image struct {
	ID         uint64       `gorm:"primaryKey;autoIncrement"`
	UploadID   string       `gorm:"type:uuid;not null;index:idx_images_upload_variant,unique,priority:1"`
	Variant    ImageVariant `gorm:"type:varchar(16);not null;index:idx_images_upload_variant,unique,priority:2"`
	Path       string       `gorm:"not null"`
	MIMEType   string       `gorm:"column:mime_type;not null"`
	Width      int          `gorm:"not null"`
	Height     int          `gorm:"not null"`
	Checksum   string       `gorm:"not null"` // hex MD5 of the encoded bytes
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Image) TableName() string { return "images" }

// Product is the minimal slice of the external catalog entity the
// resolver needs: lookup by SKU and the denormalized primary image.
type Product struct {
	ID              uint64  `gorm:"primaryKey;autoIncrement"`
	SKU             string  `gorm:"uniqueIndex;not null"`
	PrimaryImageID  *uint64 `gorm:"column:primary_image_id"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Product) TableName() string { return "products" }

// ProductImageLink is the many-to-many join row between products and
// images, carrying the is_primary flag.
type ProductImageLink struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	ProductID uint64 `gorm:"not null;index:idx_link_product_image,unique,priority:1"`
	ImageID   uint64 `gorm:"not null;index:idx_link_product_image,unique,priority:2"`
	IsPrimary bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
}

func (ProductImageLink) TableName() string { return "product_image_links" }

// JobStatus tracks one upload's processing-job attempt sequence.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// Job is the durable record of the variant-pipeline attempt sequence
// for one upload, surviving process restarts so at-least-once
// execution can be audited and resumed.
type Job struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	UploadID     string    `gorm:"type:uuid;uniqueIndex;not null"`
	AttemptsUsed int       `gorm:"not null;default:0"`
	MaxAttempts  int       `gorm:"not null;default:3"`
	Status       JobStatus `gorm:"type:varchar(16);not null;default:pending"`
	LastError    string    `gorm:"column:last_error"`
	ScheduledAt  time.Time `gorm:"column:scheduled_at"`
	LockedAt     *time.Time `gorm:"column:locked_at"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Job) TableName() string { return "jobs" }
