package entity

// UploadInput is one received file plus the caller form fields.
type UploadInput struct {
	Data      []byte
	FileName  string
	MimeType  string
	Params    map[string]string
	UserAgent string
	ClientIP  string
}
