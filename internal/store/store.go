// Package store persists the device library in a sqlite database.
package store

import (
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/edp1096/spkline/internal/logger"
	"github.com/edp1096/spkline/pkg/catalog"
)

var ErrNotFound = errors.New("device not found")

type Store struct {
	DB  *gorm.DB
	log *logger.Logger
}

// Open opens or creates the library at path. ":memory:" gives a private
// in-memory library.
func Open(path string, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Nop()
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("opening device library %s: %w", path, err)
	}
	if path == ":memory:" {
		// Every pooled connection would open its own empty database.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&SpeakerRecord{}, &CableRecord{}, &AmplifierRecord{}); err != nil {
		return nil, fmt.Errorf("migrating device library: %w", err)
	}
	return &Store{DB: db, log: log.With("component", "store")}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save upserts every record of db in one transaction.
func (s *Store) Save(db *catalog.Database) error {
	if db == nil {
		return nil
	}
	upsert := clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		for _, sp := range db.Speakers {
			if sp == nil {
				continue
			}
			rec := speakerRecord(sp)
			if err := tx.Clauses(upsert).Create(&rec).Error; err != nil {
				return fmt.Errorf("saving speaker %q: %w", sp.ID, err)
			}
		}
		for _, c := range db.Cables {
			if c == nil {
				continue
			}
			rec := cableRecord(c)
			if err := tx.Clauses(upsert).Create(&rec).Error; err != nil {
				return fmt.Errorf("saving cable %q: %w", c.ID, err)
			}
		}
		for _, a := range db.Amplifiers {
			if a == nil {
				continue
			}
			rec := amplifierRecord(a)
			if err := tx.Clauses(upsert).Create(&rec).Error; err != nil {
				return fmt.Errorf("saving amplifier %q: %w", a.ID, err)
			}
		}
		s.log.Debug("device library saved",
			"speakers", len(db.Speakers),
			"cables", len(db.Cables),
			"amplifiers", len(db.Amplifiers),
		)
		return nil
	})
}

// Load reads the whole library.
func (s *Store) Load() (*catalog.Database, error) {
	var (
		speakers []SpeakerRecord
		cables   []CableRecord
		amps     []AmplifierRecord
	)
	if err := s.DB.Find(&speakers).Error; err != nil {
		return nil, fmt.Errorf("loading speakers: %w", err)
	}
	if err := s.DB.Find(&cables).Error; err != nil {
		return nil, fmt.Errorf("loading cables: %w", err)
	}
	if err := s.DB.Find(&amps).Error; err != nil {
		return nil, fmt.Errorf("loading amplifiers: %w", err)
	}

	db := catalog.NewDatabase()
	for _, r := range speakers {
		db.PutSpeaker(r.speaker())
	}
	for _, r := range cables {
		db.PutCable(r.cable())
	}
	for _, r := range amps {
		db.PutAmplifier(r.amplifier())
	}
	return db, nil
}

// Seed writes the built-in database when the library is empty and reports
// whether it did.
func (s *Store) Seed() (bool, error) {
	n, err := s.Count()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if err := s.Save(catalog.Default()); err != nil {
		return false, err
	}
	s.log.Info("device library seeded with defaults")
	return true, nil
}

// Count is the total number of records over all tables.
func (s *Store) Count() (int64, error) {
	var total int64
	for _, model := range []any{&SpeakerRecord{}, &CableRecord{}, &AmplifierRecord{}} {
		var n int64
		if err := s.DB.Model(model).Count(&n).Error; err != nil {
			return 0, fmt.Errorf("counting devices: %w", err)
		}
		total += n
	}
	return total, nil
}

// Delete removes one record. kind is speakers, cables or amplifiers.
func (s *Store) Delete(kind, id string) error {
	var model any
	switch kind {
	case "speakers":
		model = &SpeakerRecord{}
	case "cables":
		model = &CableRecord{}
	case "amplifiers":
		model = &AmplifierRecord{}
	default:
		return fmt.Errorf("unknown device table %q", kind)
	}
	res := s.DB.Where("id = ?", id).Delete(model)
	if res.Error != nil {
		return fmt.Errorf("deleting %s %q: %w", kind, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
	}
	return nil
}
