package handler

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"objgate/internal/service"
)

// readFormFiles loads every part of the multipart field into memory.
// At most maxFiles parts are accepted.
func readFormFiles(c *fiber.Ctx, field string, maxFiles int) ([]service.FileInput, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errMalformedForm, err)
	}
	headers := form.File[field]
	if len(headers) == 0 {
		return nil, errFileRequired
	}
	if maxFiles > 0 && len(headers) > maxFiles {
		return nil, fmt.Errorf("%w: at most %d files allowed in %q", errTooManyFiles, maxFiles, field)
	}

	files := make([]service.FileInput, 0, len(headers))
	for _, fh := range headers {
		body, err := readPart(fh)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
		}
		files = append(files, service.FileInput{
			Field:       field,
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Body:        body,
		})
	}
	return files, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
