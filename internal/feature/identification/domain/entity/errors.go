package entity

import "errors"

var (
	// ErrUndecodableImage は画像をデコードできない場合のエラーです。
	ErrUndecodableImage = errors.New("image could not be decoded")
	// ErrUnknownStrategy は未対応の識別方式が指定された場合のエラーです。
	ErrUnknownStrategy = errors.New("unknown identification strategy")
	// ErrStrategyUnavailable は識別方式が既知だが、このプロセスで利用できない場合のエラーです（OCR未設定など）。
	ErrStrategyUnavailable = errors.New("identification strategy unavailable")
)
