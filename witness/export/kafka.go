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

// Package export implements the optional block-data-export collaborator: a
// factory that, per applied block, exposes the reserve-ratio snapshot and
// the list of bandwidth-update events. Two sinks are provided,
// mirroring the two repository backends klaytn's chaindatafetcher and
// dbsyncer packages support: a Kafka topic and a SQL table.
package export

import (
	"encoding/json"
	"fmt"

	"github.com/Shopify/sarama"

	"github.com/bearshares/bears/witness"
)

const (
	defaultReserveRatioTopic = "witness.reserve_ratio"
	defaultBandwidthTopic    = "witness.bandwidth"
)

// KafkaConfig configures the Kafka sink, mirroring
// datasync/chaindatafetcher/kafka.KafkaConfig.
type KafkaConfig struct {
	SaramaConfig      *sarama.Config
	Brokers           []string
	ReserveRatioTopic string
	BandwidthTopic    string
}

// DefaultKafkaConfig mirrors kafka.GetDefaultKafkaConfig's defaults.
func DefaultKafkaConfig() *KafkaConfig {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Version = sarama.MaxVersion
	return &KafkaConfig{
		SaramaConfig:      cfg,
		ReserveRatioTopic: defaultReserveRatioTopic,
		BandwidthTopic:    defaultBandwidthTopic,
	}
}

// KafkaSink publishes snapshots and bandwidth events as JSON messages onto
// two Kafka topics via a synchronous sarama producer.
type KafkaSink struct {
	cfg      *KafkaConfig
	producer sarama.SyncProducer
}

// NewKafkaSink dials the configured brokers and returns a ready sink.
func NewKafkaSink(cfg *KafkaConfig) (*KafkaSink, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers, cfg.SaramaConfig)
	if err != nil {
		return nil, fmt.Errorf("export: failed to create kafka producer: %w", err)
	}
	return &KafkaSink{cfg: cfg, producer: producer}, nil
}

// WriteSnapshot implements witness.ExportSink.
func (s *KafkaSink) WriteSnapshot(blockNumber uint64, snap witness.ExportSnapshot) error {
	payload, err := json.Marshal(struct {
		BlockNumber uint64 `json:"block_number"`
		witness.ExportSnapshot
	}{blockNumber, snap})
	if err != nil {
		return err
	}
	_, _, err = s.producer.SendMessage(&sarama.ProducerMessage{
		Topic: s.cfg.ReserveRatioTopic,
		Value: sarama.ByteEncoder(payload),
	})
	return err
}

// WriteBandwidthEvents implements witness.ExportSink.
func (s *KafkaSink) WriteBandwidthEvents(blockNumber uint64, events []witness.BandwidthUpdateEvent) error {
	for _, ev := range events {
		payload, err := json.Marshal(struct {
			BlockNumber uint64 `json:"block_number"`
			witness.BandwidthUpdateEvent
		}{blockNumber, ev})
		if err != nil {
			return err
		}
		if _, _, err := s.producer.SendMessage(&sarama.ProducerMessage{
			Topic: s.cfg.BandwidthTopic,
			Value: sarama.ByteEncoder(payload),
		}); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying producer.
func (s *KafkaSink) Close() error { return s.producer.Close() }
