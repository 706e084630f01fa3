// Package gormsource produces records from a gorm query, one page at a time.
//
//	q := db.Model(&Order{}).Where("customer_id = ?", id).Order("created_at DESC")
//	seq, _ := cacheseq.New[Order](gormsource.New[Order](q, 200), cacheseq.Options{Name: "orders"})
package gormsource

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/unkn0wn-root/cacheseq"
)

// New pages db with OFFSET/LIMIT. db should be a fully scoped query (model,
// conditions, ordering); when it has no ORDER BY, primary key order is
// applied so page boundaries are stable. pageSize <= 0 selects
// cacheseq.DefaultPageSize.
func New[T any](db *gorm.DB, pageSize int) cacheseq.Producer[T] {
	return cacheseq.Paged[T](Pages[T](db), pageSize)
}

// Pages returns the PageFunc behind New, for callers composing their own producer.
func Pages[T any](db *gorm.DB) cacheseq.PageFunc[T] {
	return func(ctx context.Context, offset, limit int) ([]T, error) {
		q := db.WithContext(ctx)
		if _, ordered := q.Statement.Clauses["ORDER BY"]; !ordered {
			q = q.Order(clause.OrderByColumn{Column: clause.Column{Table: clause.CurrentTable, Name: clause.PrimaryKey}})
		}
		var page []T
		if err := q.Offset(offset).Limit(limit).Find(&page).Error; err != nil {
			return nil, err
		}
		return page, nil
	}
}
