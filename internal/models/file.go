package models

// OwnerKind enumerates the entities that can own attachments.
type OwnerKind string

const (
	OwnerExpense OwnerKind = "expense"
)

// Valid reports whether k is a known owner kind.
func (k OwnerKind) Valid() bool {
	return k == OwnerExpense
}

// Owner identifies the entity an attachment belongs to.
type Owner struct {
	Kind OwnerKind
	ID   string
}

// File is an uploaded attachment. The blob lives in the file store under StoragePath.
type File struct {
	Base
	FileName     string    `gorm:"size:255;not null" json:"file_name"`
	ContentType  string    `gorm:"size:100;not null" json:"content_type"`
	StoragePath  string    `gorm:"size:500;not null" json:"-"`
	Size         int64     `gorm:"not null" json:"size"`
	UploadedByID string    `gorm:"type:uuid;not null" json:"uploaded_by_id"`
	OwnerKind    OwnerKind `gorm:"type:varchar(30);not null;index:idx_files_owner" json:"owner_kind"`
	OwnerID      string    `gorm:"type:uuid;not null;index:idx_files_owner" json:"owner_id"`
}

// Owner returns the owner reference of the file.
func (f *File) Owner() Owner {
	return Owner{Kind: f.OwnerKind, ID: f.OwnerID}
}

// SetOwner points the file at o.
func (f *File) SetOwner(o Owner) {
	f.OwnerKind = o.Kind
	f.OwnerID = o.ID
}
