package usecase

import "errors"

// ErrEmptyDeck はデッキデータが空の場合に返されます。
var ErrEmptyDeck = errors.New("deck data is empty")

// ErrDeckTooLarge はデッキサイズが上限を超えた場合に返されます。
var ErrDeckTooLarge = errors.New("deck size exceeds the maximum")

// ErrInvalidDeck は展開または解析できないデッキデータの場合に返されます。
var ErrInvalidDeck = errors.New("invalid deck data")
