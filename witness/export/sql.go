// Copyright 2026 The bears Authors
// This file is part of the bears library.
//
// The bears library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The bears library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the bears library. If not, see <http://www.gnu.org/licenses/>.

package export

import (
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jinzhu/gorm"

	"github.com/bearshares/bears/witness"
)

// SQLConfig configures the SQL sink, mirroring the field names of
// datasync/dbsyncer's DBConfig (DBHost/DBPort/DBUser/DBPassword/DBName plus
// pool tuning knobs).
type SQLConfig struct {
	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

func (c SQLConfig) dsn() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// reserveRatioRow is the gorm model for the reserve-ratio snapshot table.
type reserveRatioRow struct {
	BlockNumber         uint64 `gorm:"primary_key"`
	AverageBlockSize    uint64
	CurrentReserveRatio uint64
	MaxVirtualBandwidth string
	BlockSize           uint64
}

func (reserveRatioRow) TableName() string { return "witness_reserve_ratio" }

// bandwidthEventRow is the gorm model for the bandwidth-update event table.
type bandwidthEventRow struct {
	ID                uint64 `gorm:"primary_key;AUTO_INCREMENT"`
	BlockNumber       uint64
	Account           string
	Kind              string
	AverageBandwidth  string
	LifetimeBandwidth string
	LastUpdate        time.Time
	TrxSize           uint64
}

func (bandwidthEventRow) TableName() string { return "witness_bandwidth_event" }

// SQLSink persists snapshots and bandwidth events through gorm, the way
// dbsyncer persists chain data into a relational database.
type SQLSink struct {
	db *gorm.DB
}

// NewSQLSink opens the connection and migrates the sink's two tables.
func NewSQLSink(cfg SQLConfig) (*SQLSink, error) {
	db, err := gorm.Open("mysql", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("export: failed to open database: %w", err)
	}
	db.DB().SetMaxIdleConns(cfg.MaxIdleConns)
	db.DB().SetMaxOpenConns(cfg.MaxOpenConns)
	db.DB().SetConnMaxLifetime(cfg.ConnMaxLifetime)
	if err := db.AutoMigrate(&reserveRatioRow{}, &bandwidthEventRow{}).Error; err != nil {
		db.Close()
		return nil, fmt.Errorf("export: failed to migrate schema: %w", err)
	}
	return &SQLSink{db: db}, nil
}

// WriteSnapshot implements witness.ExportSink.
func (s *SQLSink) WriteSnapshot(blockNumber uint64, snap witness.ExportSnapshot) error {
	row := reserveRatioRow{
		BlockNumber:         blockNumber,
		AverageBlockSize:    snap.AverageBlockSize,
		CurrentReserveRatio: snap.CurrentReserveRatio,
		MaxVirtualBandwidth: snap.MaxVirtualBandwidth.String(),
		BlockSize:           snap.BlockSize,
	}
	return s.db.Create(&row).Error
}

// WriteBandwidthEvents implements witness.ExportSink.
func (s *SQLSink) WriteBandwidthEvents(blockNumber uint64, events []witness.BandwidthUpdateEvent) error {
	for _, ev := range events {
		row := bandwidthEventRow{
			BlockNumber:       blockNumber,
			Account:           ev.Account,
			Kind:              ev.Kind.String(),
			AverageBandwidth:  ev.AverageBandwidth.String(),
			LifetimeBandwidth: ev.LifetimeBandwidth.String(),
			LastUpdate:        ev.LastUpdate,
			TrxSize:           ev.TrxSize,
		}
		if err := s.db.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *SQLSink) Close() error { return s.db.Close() }
