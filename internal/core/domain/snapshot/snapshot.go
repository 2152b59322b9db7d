// internal/core/domain/snapshot/snapshot.go
package snapshot

import (
	"encoding/json"
	"time"

	"crypto-market-scanner/internal/core/domain/analysis/movers_analyzer"
	"crypto-market-scanner/internal/core/domain/analysis/volatility_analyzer"
)

// Snapshot - неизменяемый результат одного скана.
// Все методы возвращают копии внутренних данных.
type Snapshot struct {
	scanID         string
	timestamp      time.Time
	topVolatility  []volatility_analyzer.Entry
	moverIntervals []string
	movers         map[string]movers_analyzer.MoversForInterval
}

// New собирает Snapshot, копируя входные данные.
// Интервалы без данных получают пустые списки.
func New(scanID string, ts time.Time, volatility []volatility_analyzer.Entry,
	intervals []string, movers map[string]movers_analyzer.MoversForInterval) *Snapshot {

	s := &Snapshot{
		scanID:         scanID,
		timestamp:      ts,
		topVolatility:  copyVolatility(volatility),
		moverIntervals: append([]string(nil), intervals...),
		movers:         make(map[string]movers_analyzer.MoversForInterval, len(intervals)),
	}
	for _, interval := range intervals {
		m, ok := movers[interval]
		if !ok {
			m = movers_analyzer.MoversForInterval{Interval: interval}
		}
		s.movers[interval] = copyMovers(m)
	}
	return s
}

// ScanID возвращает идентификатор скана
func (s *Snapshot) ScanID() string { return s.scanID }

// Timestamp возвращает время скана
func (s *Snapshot) Timestamp() time.Time { return s.timestamp }

// TopVolatility возвращает рейтинг волатильности по убыванию
func (s *Snapshot) TopVolatility() []volatility_analyzer.Entry {
	return copyVolatility(s.topVolatility)
}

// MoverIntervals возвращает интервалы в порядке конфигурации
func (s *Snapshot) MoverIntervals() []string {
	return append([]string(nil), s.moverIntervals...)
}

// Movers возвращает лидеров для интервала
func (s *Snapshot) Movers(interval string) (movers_analyzer.MoversForInterval, bool) {
	m, ok := s.movers[interval]
	if !ok {
		return movers_analyzer.MoversForInterval{}, false
	}
	return copyMovers(m), true
}

// MoversByInterval возвращает копию всех списков лидеров
func (s *Snapshot) MoversByInterval() map[string]movers_analyzer.MoversForInterval {
	out := make(map[string]movers_analyzer.MoversForInterval, len(s.movers))
	for k, v := range s.movers {
		out[k] = copyMovers(v)
	}
	return out
}

// IsEmpty возвращает true если ни один рейтинг не содержит записей
func (s *Snapshot) IsEmpty() bool {
	if len(s.topVolatility) > 0 {
		return false
	}
	for _, m := range s.movers {
		if len(m.Gainers) > 0 || len(m.Losers) > 0 {
			return false
		}
	}
	return true
}

// snapshotJSON - формат хранения в Redis
type snapshotJSON struct {
	ScanID         string                                       `json:"scan_id"`
	Timestamp      time.Time                                    `json:"timestamp"`
	TopVolatility  []volatility_analyzer.Entry                  `json:"top_volatility"`
	MoverIntervals []string                                     `json:"mover_intervals"`
	Movers         map[string]movers_analyzer.MoversForInterval `json:"movers"`
}

// MarshalJSON реализует json.Marshaler
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshotJSON{
		ScanID:         s.scanID,
		Timestamp:      s.timestamp,
		TopVolatility:  s.topVolatility,
		MoverIntervals: s.moverIntervals,
		Movers:         s.movers,
	})
}

// UnmarshalJSON реализует json.Unmarshaler
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var raw snapshotJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = *New(raw.ScanID, raw.Timestamp, raw.TopVolatility, raw.MoverIntervals, raw.Movers)
	return nil
}

func copyVolatility(in []volatility_analyzer.Entry) []volatility_analyzer.Entry {
	out := make([]volatility_analyzer.Entry, len(in))
	copy(out, in)
	return out
}

func copyMovers(m movers_analyzer.MoversForInterval) movers_analyzer.MoversForInterval {
	gainers := make([]movers_analyzer.ChangeEntry, len(m.Gainers))
	copy(gainers, m.Gainers)
	losers := make([]movers_analyzer.ChangeEntry, len(m.Losers))
	copy(losers, m.Losers)
	return movers_analyzer.MoversForInterval{Interval: m.Interval, Gainers: gainers, Losers: losers}
}
