package usecase

import "errors"

// ErrEmptyImage は画像データが空の場合に返されます。
var ErrEmptyImage = errors.New("image data is empty")

// ErrImageTooLarge は画像サイズが上限を超えた場合に返されます。
var ErrImageTooLarge = errors.New("image size exceeds the maximum")

// ErrUnsupportedImage は復号できない画像データの場合に返されます。
var ErrUnsupportedImage = errors.New("unsupported image data")
