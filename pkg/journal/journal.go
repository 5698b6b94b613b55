// Package journal keeps a local record of executed transactions.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/snehendu098/ghost/pkg/log"
	"github.com/snehendu098/ghost/pkg/rpc"
)

var (
	// ErrNotFound is returned when no record has the requested digest.
	ErrNotFound = fmt.Errorf("record not found")
	// ErrStorage is returned when the database fails.
	ErrStorage = fmt.Errorf("journal storage failed")
)

// ExecutionRecord is one executed transaction.
type ExecutionRecord struct {
	ID              string         `gorm:"column:id;primaryKey;size:36"`
	Digest          string         `gorm:"column:digest;size:64;not null;uniqueIndex:idx_execution_records_digest"`
	Sender          string         `gorm:"column:sender;size:66;not null;index:idx_execution_records_sender"`
	Status          string         `gorm:"column:status;size:16;not null"`
	Error           string         `gorm:"column:error;not null"`
	ComputationCost uint64         `gorm:"column:computation_cost;not null"`
	StorageCost     uint64         `gorm:"column:storage_cost;not null"`
	StorageRebate   uint64         `gorm:"column:storage_rebate;not null"`
	Effects         datatypes.JSON `gorm:"column:effects"`
	Events          datatypes.JSON `gorm:"column:events"`
	CreatedAt       time.Time      `gorm:"column:created_at"`
}

func (ExecutionRecord) TableName() string {
	return "execution_records"
}

func (r ExecutionRecord) Success() bool {
	return r.Status == "success"
}

// GasTotal is the net fee charged, floored at zero.
func (r ExecutionRecord) GasTotal() uint64 {
	return rpc.GasCostSummary{
		ComputationCost: rpc.Uint64(r.ComputationCost),
		StorageCost:     rpc.Uint64(r.StorageCost),
		StorageRebate:   rpc.Uint64(r.StorageRebate),
	}.Total()
}

type SortType string

const (
	SortTypeAscending  SortType = "asc"
	SortTypeDescending SortType = "desc"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListOptions pages through records. The zero value returns the newest DefaultLimit records.
type ListOptions struct {
	Sender string
	Offset uint32
	Limit  uint32
	Sort   SortType
}

func (o ListOptions) apply(db *gorm.DB) *gorm.DB {
	sort := SortTypeDescending
	if o.Sort == SortTypeAscending {
		sort = SortTypeAscending
	}
	db = db.Order(clause.OrderByColumn{
		Column: clause.Column{Name: "created_at"},
		Desc:   sort == SortTypeDescending,
	}).Order(clause.OrderByColumn{
		Column: clause.Column{Name: "id"},
		Desc:   sort == SortTypeDescending,
	})

	limit := int(o.Limit)
	if limit == 0 {
		limit = DefaultLimit
	} else if limit > MaxLimit {
		limit = MaxLimit
	}
	db = db.Offset(int(o.Offset)).Limit(limit)

	if o.Sender != "" {
		db = db.Where("sender = ?", strings.ToLower(o.Sender))
	}
	return db
}

// Journal stores execution records. It is safe for concurrent use.
type Journal struct {
	db      *gorm.DB
	metrics *Metrics
	now     func() time.Time
}

type Option func(*Journal)

func WithMetrics(m *Metrics) Option {
	return func(j *Journal) {
		j.metrics = m
	}
}

// WithClock replaces time.Now for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(j *Journal) {
		j.now = now
	}
}

// New wraps db. The execution_records table must already exist, see database.Connect.
func New(db *gorm.DB, opts ...Option) *Journal {
	j := &Journal{db: db, now: time.Now}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Record stores resp. Recording a digest that is already present is a no-op.
func (j *Journal) Record(ctx context.Context, sender string, resp *rpc.TransactionResponse) error {
	if resp == nil || resp.Digest == "" {
		return fmt.Errorf("%w: response without digest", ErrStorage)
	}

	effects, err := json.Marshal(resp.Effects)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, errors.Wrap(err, "failed to encode effects"))
	}
	events, err := json.Marshal(resp.Events)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, errors.Wrap(err, "failed to encode events"))
	}

	gas := resp.Effects.GasUsed
	rec := ExecutionRecord{
		ID:              uuid.NewString(),
		Digest:          resp.Digest,
		Sender:          strings.ToLower(sender),
		Status:          resp.Effects.Status.Status,
		Error:           resp.Effects.Status.Error,
		ComputationCost: uint64(gas.ComputationCost),
		StorageCost:     uint64(gas.StorageCost),
		StorageRebate:   uint64(gas.StorageRebate),
		Effects:         datatypes.JSON(effects),
		Events:          datatypes.JSON(events),
		CreatedAt:       j.now().UTC(),
	}

	res := j.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "digest"}},
		DoNothing: true,
	}).Create(&rec)
	if res.Error != nil {
		return fmt.Errorf("%w: %w", ErrStorage, errors.Wrapf(res.Error, "failed to record %s", resp.Digest))
	}
	if res.RowsAffected > 0 {
		j.metrics.recorded(rec.Status)
		log.FromContext(ctx).WithName("journal").Debug("recorded execution", "digest", rec.Digest, "status", rec.Status)
	}
	return nil
}

func (j *Journal) Get(ctx context.Context, digest string) (*ExecutionRecord, error) {
	var rec ExecutionRecord
	err := j.db.WithContext(ctx).Where("digest = ?", digest).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, digest)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, errors.Wrapf(err, "failed to load %s", digest))
	}
	return &rec, nil
}

func (j *Journal) List(ctx context.Context, opts ListOptions) ([]ExecutionRecord, error) {
	var recs []ExecutionRecord
	if err := opts.apply(j.db.WithContext(ctx)).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, errors.Wrap(err, "failed to list records"))
	}
	return recs, nil
}

// Response rebuilds the node response that produced rec.
func (r ExecutionRecord) Response() (*rpc.TransactionResponse, error) {
	resp := &rpc.TransactionResponse{Digest: r.Digest}
	if len(r.Effects) > 0 {
		if err := json.Unmarshal(r.Effects, &resp.Effects); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStorage, errors.Wrap(err, "failed to decode effects"))
		}
	}
	if len(r.Events) > 0 {
		if err := json.Unmarshal(r.Events, &resp.Events); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStorage, errors.Wrap(err, "failed to decode events"))
		}
	}
	return resp, nil
}
