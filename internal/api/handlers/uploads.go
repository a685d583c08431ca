package handlers

import (
	"context"
	"io"
)

// PhotoUploader is the slice of the S3 uploader the photo endpoints depend on.
type PhotoUploader interface {
	UploadFile(ctx context.Context, file io.Reader, objectKey, contentType string) (string, error)
}
