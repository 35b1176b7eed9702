// Package uploads pushes product images to the hosted asset store.
package uploads

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// ImageUploader stores an image and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, file io.Reader) (string, error)
}

type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinary(cloudinaryURL string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to init cloudinary: %w", err)
	}
	return &CloudinaryUploader{cld: cld}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, file io.Reader) (string, error) {
	// Unique public ID so re-uploads of identically named files never clash.
	resp, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID: uuid.New().String(),
		Folder:   "greencart/products",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return resp.SecureURL, nil
}
