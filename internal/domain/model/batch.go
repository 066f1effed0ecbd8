package model

import (
	"time"

	"telegram-file-gate/internal/domain"
)

type BatchKind string

const (
	BatchKindCustom BatchKind = "custom" // admin-curated file set
	BatchKindRange  BatchKind = "range"  // contiguous channel post range
)

// Batch is a frozen ordered sequence of delivery items minted under one code
// pair. The item list is resolved once, at mint time, and never re-expanded.
type Batch struct {
	ID        string // ULID
	Kind      BatchKind
	Items     []DeliveryItem
	CreatedBy int64
	CreatedAt time.Time
}

// NewRangeBatch expands a channel post range into a frozen item sequence.
// start == end is a one-item batch. maxPosts bounds the expansion.
func NewRangeBatch(id string, channelID int64, startID, endID, maxPosts int, createdBy int64, now time.Time) (*Batch, error) {
	if id == "" || channelID == 0 || startID <= 0 || createdBy <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if endID < startID {
		return nil, domain.ErrRangeInvalid
	}
	total := endID - startID + 1
	if total > maxPosts {
		return nil, domain.ErrRangeTooLarge
	}
	items := make([]DeliveryItem, 0, total)
	for mid := startID; mid <= endID; mid++ {
		items = append(items, DeliveryItem{Kind: DeliveryKindPost, ChannelID: channelID, MessageID: mid})
	}
	return &Batch{ID: id, Kind: BatchKindRange, Items: items, CreatedBy: createdBy, CreatedAt: now}, nil
}

// NewCustomBatch freezes a curated file list in submission order.
func NewCustomBatch(id string, files []*ContentItem, createdBy int64, now time.Time) (*Batch, error) {
	if id == "" || createdBy <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if len(files) == 0 {
		return nil, domain.ErrEmptySession
	}
	items := make([]DeliveryItem, 0, len(files))
	for _, f := range files {
		items = append(items, DeliveryItem{Kind: DeliveryKindFile, File: f})
	}
	return &Batch{ID: id, Kind: BatchKindCustom, Items: items, CreatedBy: createdBy, CreatedAt: now}, nil
}

// BatchSession is the ephemeral per-admin staging list accumulated before a
// custom batch is minted. At most one active session per admin.
type BatchSession struct {
	AdminID   int64     `json:"admin_id"`
	FileIDs   []string  `json:"file_ids"`
	StartedAt time.Time `json:"started_at"`
}
