package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const nextSequenceSQL = `INSERT INTO order_sequences (kind, day, seq) VALUES (?, ?, 1)
ON CONFLICT (kind, day) DO UPDATE SET seq = order_sequences.seq + 1
RETURNING seq`

// GormSequenceCounter hands out per-kind per-day order sequences from the
// order_sequences table. The upsert is atomic on both PostgreSQL and sqlite.
type GormSequenceCounter struct {
	db *gorm.DB
}

// NewGormSequenceCounter creates a new GormSequenceCounter
func NewGormSequenceCounter(db *gorm.DB) *GormSequenceCounter {
	return &GormSequenceCounter{db: db}
}

// Next returns the next sequence value for kind on day, starting at 1
func (c *GormSequenceCounter) Next(ctx context.Context, kind string, day time.Time) (int64, error) {
	var seq int64
	if err := c.db.WithContext(ctx).Raw(nextSequenceSQL, kind, day.Format("20060102")).Scan(&seq).Error; err != nil {
		return 0, fmt.Errorf("next %s sequence: %w", kind, err)
	}
	if seq <= 0 {
		return 0, fmt.Errorf("next %s sequence: no value returned", kind)
	}
	return seq, nil
}
