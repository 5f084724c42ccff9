package forms

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"

	_ "golang.org/x/image/webp"
)

// MaxImageSize bounds a single attachment.
const MaxImageSize = 5 << 20

var errInvalidImage = errors.New("Upload a valid image. The file you uploaded was either not an image or a corrupted image.")

// Upload is an image that decoded successfully.
type Upload struct {
	Filename    string
	ContentType string
	Ext         string
	Size        int64
	Width       int
	Height      int
	Data        []byte
}

func (u *Upload) Reader() io.Reader {
	return bytes.NewReader(u.Data)
}

// ReadUpload reads a multipart file and checks that it is a gif, jpeg, png or webp image.
func ReadUpload(fh *multipart.FileHeader) (*Upload, error) {
	if fh.Size > MaxImageSize {
		return nil, fmt.Errorf("Image must be at most %d MB.", MaxImageSize>>20)
	}
	src, err := fh.Open()
	if err != nil {
		return nil, errInvalidImage
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, MaxImageSize+1))
	if err != nil || len(data) == 0 {
		return nil, errInvalidImage
	}
	if len(data) > MaxImageSize {
		return nil, fmt.Errorf("Image must be at most %d MB.", MaxImageSize>>20)
	}
	return DecodeUpload(fh.Filename, data)
}

// DecodeUpload validates raw image bytes.
func DecodeUpload(filename string, data []byte) (*Upload, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, errInvalidImage
	}

	ext := "." + format
	if format == "jpeg" {
		ext = ".jpg"
	}
	switch format {
	case "gif", "jpeg", "png", "webp":
	default:
		return nil, errInvalidImage
	}

	return &Upload{
		Filename:    filename,
		ContentType: "image/" + format,
		Ext:         ext,
		Size:        int64(len(data)),
		Width:       cfg.Width,
		Height:      cfg.Height,
		Data:        data,
	}, nil
}
