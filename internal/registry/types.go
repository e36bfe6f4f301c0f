package registry

import (
	"bytes"
	"fmt"
	"time"
)

// dateLayout is the wire format for date-only fields (issue/expiry dates).
const dateLayout = "2006-01-02"

// Date is a calendar date with JSON encoding "2006-01-02". The zero value
// marshals to null; optional fields use *Date so absent and present-but-null
// both decode to nil.
type Date struct {
	time.Time
}

// NewDate builds a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}

	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}

	t, err := time.Parse(`"`+dateLayout+`"`, string(data))
	if err != nil {
		return fmt.Errorf("invalid date %s: %w", data, err)
	}

	d.Time = t

	return nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}

	return d.Format(dateLayout)
}

// Mine is a physical site record. Read-only from this subsystem.
type Mine struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	LeaseNumber string    `json:"lease_number"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DocumentMetadata is a registered compliance document. Created by the
// metadata API on registration; immutable thereafter from this subsystem's
// perspective. StoragePath always references an object written before the
// record was created (write-before-register ordering).
type DocumentMetadata struct {
	ID               string    `json:"id"`
	DocumentName     string    `json:"document_name"`
	StoragePath      string    `json:"storage_path"`
	MineID           string    `json:"mine_id"`
	CategoryID       int       `json:"category_id"`
	AuthorityID      int       `json:"authority_id"`
	IssueDate        *Date     `json:"issue_date"`
	ExpiryDate       *Date     `json:"expiry_date"`
	OriginalFilename string    `json:"original_filename"`
	FileType         string    `json:"file_type"`
	FileSizeBytes    int64     `json:"file_size_bytes"`
	UploadedAt       time.Time `json:"uploaded_at"`
}

// LookupOption is one entry of a static lookup list (document categories,
// issuing authorities).
type LookupOption struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CreateDocumentRequest is the registration payload for POST /documents/.
// StoragePath must be the exact key the object store returned in phase 1.
type CreateDocumentRequest struct {
	DocumentName     string `json:"document_name"`
	StoragePath      string `json:"storage_path"`
	MineID           string `json:"mine_id"`
	CategoryID       int    `json:"category_id"`
	AuthorityID      int    `json:"authority_id"`
	IssueDate        *Date  `json:"issue_date"`
	ExpiryDate       *Date  `json:"expiry_date"`
	OriginalFilename string `json:"original_filename"`
	FileType         string `json:"file_type"`
	FileSizeBytes    int64  `json:"file_size_bytes"`
}
