package usecase

import "errors"

// ErrEmptySlide はスライド画像データが空の場合に返されます。
var ErrEmptySlide = errors.New("slide image data is empty")

// ErrSlideTooLarge はスライド画像が上限を超えた場合に返されます。
var ErrSlideTooLarge = errors.New("slide image exceeds the maximum size")

// ErrUnsupportedSlide は復号できないスライド画像の場合に返されます。
var ErrUnsupportedSlide = errors.New("unsupported slide image data")

// ErrJobNotFound はジョブが存在しない（または他ユーザーのものである）場合に返されます。
var ErrJobNotFound = errors.New("job not found")

// ErrVersionNotFound はジョブに紐づく生成結果が存在しない場合に返されます。
var ErrVersionNotFound = errors.New("slide version not found")

// ErrImageNotReady はジョブが画像を出力できる状態にない場合に返されます。
var ErrImageNotReady = errors.New("generated image is not ready")
