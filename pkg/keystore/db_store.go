package keystore

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ Store = (*DBStore)(nil)

// KeyRecord is one stored identity.
type KeyRecord struct {
	Address   string `gorm:"column:address;primaryKey;size:66"`
	Secret    string `gorm:"column:secret;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (KeyRecord) TableName() string {
	return "key_records"
}

// String never includes the secret.
func (r KeyRecord) String() string {
	return fmt.Sprintf("KeyRecord{address: %s, secret: %s}", r.Address, maskedSecret)
}

// DBStore keeps identities in a SQL database. Unlike Keystore it is safe for concurrent use.
type DBStore struct {
	db *gorm.DB
}

// NewDBStore wraps db. The key_records table must already exist, see database.Connect.
func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) Put(ctx context.Context, address, secret string) error {
	rec := KeyRecord{Address: address, Secret: secret}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{"secret", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, errors.Wrapf(err, "failed to store key %s", address))
	}
	return nil
}

func (s *DBStore) Get(ctx context.Context, address string) (string, error) {
	var rec KeyRecord
	err := s.db.WithContext(ctx).Where("address = ?", address).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, address)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrIO, errors.Wrapf(err, "failed to load key %s", address))
	}
	return rec.Secret, nil
}

func (s *DBStore) Delete(ctx context.Context, address string) error {
	res := s.db.WithContext(ctx).Where("address = ?", address).Delete(&KeyRecord{})
	if res.Error != nil {
		return fmt.Errorf("%w: %w", ErrIO, errors.Wrapf(res.Error, "failed to delete key %s", address))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, address)
	}
	return nil
}

func (s *DBStore) List(ctx context.Context) ([]string, error) {
	var addrs []string
	if err := s.db.WithContext(ctx).Model(&KeyRecord{}).Order("address").Pluck("address", &addrs).Error; err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, errors.Wrap(err, "failed to list keys"))
	}
	return addrs, nil
}
