// Package usecase implements the business logic for the logoassets feature.
package usecase

import "errors"

var (
	// ErrAssetNotFound is returned when a logo asset cannot be found for the user.
	ErrAssetNotFound = errors.New("logo asset not found")

	// ErrUnsupportedImage is returned when the uploaded data cannot be decoded as an image.
	ErrUnsupportedImage = errors.New("unsupported image data")

	// ErrEmptyName is returned when an asset is registered without a display name.
	ErrEmptyName = errors.New("asset name is required")
)
