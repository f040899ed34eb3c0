package entity

import "errors"

var (
	// ErrEmptyImage は画像データが空の場合のエラーです。
	ErrEmptyImage = errors.New("image data is empty")
	// ErrImageTooLarge は画像が上限サイズを超える場合のエラーです。
	ErrImageTooLarge = errors.New("image exceeds maximum size")
	// ErrUnsupportedImage はPNG・JPEG以外の画像が渡された場合のエラーです。
	ErrUnsupportedImage = errors.New("image must be png or jpeg")
)
