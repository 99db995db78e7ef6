package handler

import (
	"fmt"
	"io"
	"mime/multipart"

	"omr-eval/internal/domain"
)

// readFormFile loads an uploaded multipart file into memory. Uploads are
// already bounded by the server's body limit.
func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, domain.NewInternalError("failed to open uploaded file", err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.NewInternalError(fmt.Sprintf("failed to read uploaded file %s", fh.Filename), err)
	}
	return content, nil
}
