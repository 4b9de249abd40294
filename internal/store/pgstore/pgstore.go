// Package pgstore keeps entity records in PostgreSQL as jsonb documents.
package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apperrors"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/identity"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/models"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/schema"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/store"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Backend struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Backend {
	return &Backend{db: db}
}

// Migrate creates the entity_records table.
func (b *Backend) Migrate() error {
	return b.db.AutoMigrate(&models.EntityRecord{})
}

func (b *Backend) Insert(ctx context.Context, records []store.Record) error {
	rows := make([]models.EntityRecord, 0, len(records))
	for _, r := range records {
		row, err := toRow(r)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(rows, 100).Error
	})
}

func (b *Backend) Get(ctx context.Context, kind string, owner uuid.UUID, id string) (store.Record, error) {
	rid, err := uuid.Parse(id)
	if err != nil {
		return store.Record{}, apperrors.NotFound(kind, id)
	}

	var row models.EntityRecord
	err = b.db.WithContext(ctx).
		Scopes(identity.ForOwner(owner)).
		Where("kind = ? AND id = ?", kind, rid).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.Record{}, apperrors.NotFound(kind, id)
	}
	if err != nil {
		return store.Record{}, err
	}
	return fromRow(row)
}

func (b *Backend) Replace(ctx context.Context, record store.Record, prevVersion int) error {
	data, err := json.Marshal(record.Fields)
	if err != nil {
		return fmt.Errorf("marshal %s fields: %w", record.Kind, err)
	}

	result := b.db.WithContext(ctx).Model(&models.EntityRecord{}).
		Scopes(identity.ForOwner(record.Owner)).
		Where("kind = ? AND id = ? AND version = ?", record.Kind, record.ID, prevVersion).
		Updates(map[string]interface{}{
			"data":       datatypes.JSON(data),
			"version":    record.Version,
			"updated_at": record.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := b.Get(ctx, record.Kind, record.Owner, record.ID); err != nil {
			return err
		}
		return &apperrors.ConflictError{Kind: record.Kind, ID: record.ID, Version: prevVersion}
	}
	return nil
}

func (b *Backend) Find(ctx context.Context, q store.Query) ([]store.Record, error) {
	tx := b.db.WithContext(ctx).
		Scopes(identity.ForOwner(q.Owner)).
		Where("kind = ?", q.Kind)

	for name, value := range q.Criteria {
		switch name {
		case schema.FieldID:
			rid, err := uuid.Parse(fmt.Sprint(value))
			if err != nil {
				return nil, nil
			}
			tx = tx.Where("id = ?", rid)
		case schema.FieldCreatedDate, schema.FieldUpdatedDate, schema.FieldVersion:
			// matched by the store
		default:
			encoded, err := json.Marshal(value)
			if err != nil {
				return nil, fmt.Errorf("encode criteria %s: %w", name, err)
			}
			tx = tx.Where("data -> ?::text = ?::jsonb", name, string(encoded))
		}
	}

	var rows []models.EntityRecord
	if err := tx.Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]store.Record, 0, len(rows))
	for _, row := range rows {
		r, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (b *Backend) DeleteOwner(ctx context.Context, owner uuid.UUID) error {
	return b.db.WithContext(ctx).Scopes(identity.ForOwner(owner)).Delete(&models.EntityRecord{}).Error
}

func (b *Backend) Ping(ctx context.Context) error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func toRow(r store.Record) (models.EntityRecord, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return models.EntityRecord{}, fmt.Errorf("record id %q is not a UUID: %w", r.ID, err)
	}
	data, err := json.Marshal(r.Fields)
	if err != nil {
		return models.EntityRecord{}, fmt.Errorf("marshal %s fields: %w", r.Kind, err)
	}
	return models.EntityRecord{
		ID:        id,
		Kind:      r.Kind,
		OwnerID:   r.Owner,
		Data:      datatypes.JSON(data),
		Version:   r.Version,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

func fromRow(row models.EntityRecord) (store.Record, error) {
	var fields map[string]any
	if err := json.Unmarshal(row.Data, &fields); err != nil {
		return store.Record{}, fmt.Errorf("decode %s %s: %w", row.Kind, row.ID, err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return store.Record{
		ID:        row.ID.String(),
		Kind:      row.Kind,
		Owner:     row.OwnerID,
		Fields:    fields,
		Version:   row.Version,
		CreatedAt: store.Timestamp(row.CreatedAt),
		UpdatedAt: store.Timestamp(row.UpdatedAt),
	}, nil
}
