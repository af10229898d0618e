package store

import (
	"strconv"
	"strings"
	"time"

	"github.com/edp1096/spkline/pkg/catalog"
)

type SpeakerRecord struct {
	ID          string `gorm:"primaryKey"`
	Brand       string
	Model       string
	Impedance   float64
	ZMin        float64
	WattageRMS  float64
	WattagePeak float64
	MaxSPL      float64
	Taps        string // semicolon separated watts
	Type        string
	Category    string
	UpdatedAt   time.Time
}

func (SpeakerRecord) TableName() string { return "speakers" }

type CableRecord struct {
	ID          string `gorm:"primaryKey"`
	Brand       string
	Model       string
	Resistance  float64
	Capacitance float64
	Inductance  *float64
	UpdatedAt   time.Time
}

func (CableRecord) TableName() string { return "cables" }

type AmplifierRecord struct {
	ID             string `gorm:"primaryKey"`
	Brand          string
	Model          string
	DF             float64
	DFRatedAt      float64
	MinLoad        float64
	MinLoadBridge  float64
	Watt8          float64
	Watt4          float64
	Watt2          float64
	WattBridge8    float64
	WattBridge4    float64
	Watt100V       float64 `gorm:"column:watt_100v"`
	MaxVoltagePeak float64
	ChannelsLowZ   int
	ChannelsCV     int `gorm:"column:channels_100v"`
	UpdatedAt      time.Time
}

func (AmplifierRecord) TableName() string { return "amplifiers" }

func joinTaps(taps []float64) string {
	parts := make([]string, len(taps))
	for i, t := range taps {
		parts[i] = strconv.FormatFloat(t, 'f', -1, 64)
	}
	return strings.Join(parts, ";")
}

func splitTaps(s string) []float64 {
	if s == "" {
		return nil
	}
	var taps []float64
	for _, part := range strings.Split(s, ";") {
		if v, err := strconv.ParseFloat(part, 64); err == nil {
			taps = append(taps, v)
		}
	}
	return taps
}

func speakerRecord(s *catalog.Speaker) SpeakerRecord {
	return SpeakerRecord{
		ID: s.ID, Brand: s.Brand, Model: s.Model,
		Impedance: s.Impedance, ZMin: s.ZMin,
		WattageRMS: s.WattageRMS, WattagePeak: s.WattagePeak, MaxSPL: s.MaxSPL,
		Taps: joinTaps(s.Taps), Type: string(s.Type), Category: s.Category,
	}
}

func (r SpeakerRecord) speaker() *catalog.Speaker {
	return &catalog.Speaker{
		ID: r.ID, Brand: r.Brand, Model: r.Model,
		Impedance: r.Impedance, ZMin: r.ZMin,
		WattageRMS: r.WattageRMS, WattagePeak: r.WattagePeak, MaxSPL: r.MaxSPL,
		Taps: splitTaps(r.Taps), Type: catalog.SpeakerType(r.Type), Category: r.Category,
	}
}

func cableRecord(c *catalog.Cable) CableRecord {
	return CableRecord{
		ID: c.ID, Brand: c.Brand, Model: c.Model,
		Resistance: c.Resistance, Capacitance: c.Capacitance, Inductance: c.Inductance,
	}
}

func (r CableRecord) cable() *catalog.Cable {
	return &catalog.Cable{
		ID: r.ID, Brand: r.Brand, Model: r.Model,
		Resistance: r.Resistance, Capacitance: r.Capacitance, Inductance: r.Inductance,
	}
}

func amplifierRecord(a *catalog.Amplifier) AmplifierRecord {
	return AmplifierRecord{
		ID: a.ID, Brand: a.Brand, Model: a.Model,
		DF: a.DF, DFRatedAt: a.DFRatedAt, MinLoad: a.MinLoad, MinLoadBridge: a.MinLoadBridge,
		Watt8: a.Watt8, Watt4: a.Watt4, Watt2: a.Watt2,
		WattBridge8: a.WattBridge8, WattBridge4: a.WattBridge4, Watt100V: a.Watt100V,
		MaxVoltagePeak: a.MaxVoltagePeak, ChannelsLowZ: a.ChannelsLowZ, ChannelsCV: a.ChannelsCV,
	}
}

func (r AmplifierRecord) amplifier() *catalog.Amplifier {
	return &catalog.Amplifier{
		ID: r.ID, Brand: r.Brand, Model: r.Model,
		DF: r.DF, DFRatedAt: r.DFRatedAt, MinLoad: r.MinLoad, MinLoadBridge: r.MinLoadBridge,
		Watt8: r.Watt8, Watt4: r.Watt4, Watt2: r.Watt2,
		WattBridge8: r.WattBridge8, WattBridge4: r.WattBridge4, Watt100V: r.Watt100V,
		MaxVoltagePeak: r.MaxVoltagePeak, ChannelsLowZ: r.ChannelsLowZ, ChannelsCV: r.ChannelsCV,
	}
}
