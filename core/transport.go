package core

import "context"

// Markup selects the reply keyboard attached to an outgoing text message.
type Markup int

const (
	MarkupNone Markup = iota
	MarkupMainMenu
	MarkupQuantity
)

// Transport covers chat operations whose failure must abort a run.
type Transport interface {
	SendText(ctx context.Context, chatId int64, text string, markup Markup) (int, error)
	SendMediaGroup(ctx context.Context, chatId int64, images [][]byte) error
}

// Cosmetic covers best-effort chat operations. Implementations log failures and never return them.
type Cosmetic interface {
	EditText(ctx context.Context, chatId int64, messageId int, text string)
	DeleteMessage(ctx context.Context, chatId int64, messageId int)
}

// ImageSource produces one image payload per call.
type ImageSource interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Handle identifies one temporary storage allocation.
type Handle string

type TempStorage interface {
	Put(data []byte) (Handle, error)
	Release(h Handle) error
}
