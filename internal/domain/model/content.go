package model

import (
	"time"

	"telegram-file-gate/internal/domain"
)

type FileKind string

const (
	FileKindDocument FileKind = "document"
	FileKindVideo    FileKind = "video"
	FileKindAudio    FileKind = "audio"
	FileKindPhoto    FileKind = "photo"
)

// ContentItem is an opaque reference to a file held by Telegram.
// Immutable once stored; TGFileID is the platform handle used for delivery.
type ContentItem struct {
	ID         string // ULID
	TGFileID   string
	UniqueID   string
	Kind       FileKind
	Name       string
	AddedBy    int64
	AddedAt    time.Time
}

func NewContentItem(id, tgFileID, uniqueID string, kind FileKind, name string, addedBy int64, now time.Time) (*ContentItem, error) {
	if id == "" || tgFileID == "" || kind == "" || addedBy <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &ContentItem{
		ID:       id,
		TGFileID: tgFileID,
		UniqueID: uniqueID,
		Kind:     kind,
		Name:     name,
		AddedBy:  addedBy,
		AddedAt:  now,
	}, nil
}

// DeliveryItem is one unit of content handed to the delivery collaborator.
// Exactly one of File or (ChannelID, MessageID) is meaningful, selected by Kind.
type DeliveryItem struct {
	Kind      DeliveryKind
	File      *ContentItem
	ChannelID int64
	MessageID int
}

type DeliveryKind string

const (
	DeliveryKindFile DeliveryKind = "file"
	DeliveryKindPost DeliveryKind = "post"
)
