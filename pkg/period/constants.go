package period

import "time"

// Интервалы свечей, которые принимает Binance /api/v3/klines
const (
	Period1m  = "1m"
	Period3m  = "3m"
	Period5m  = "5m"
	Period15m = "15m"
	Period30m = "30m"
	Period1h  = "1h"
	Period2h  = "2h"
	Period4h  = "4h"
	Period6h  = "6h"
	Period8h  = "8h"
	Period12h = "12h"
	Period1d  = "1d"
	Period3d  = "3d"
	Period1w  = "1w"
)

// Все поддерживаемые периоды в порядке возрастания
var AllPeriods = []string{
	Period1m, Period3m, Period5m, Period15m, Period30m,
	Period1h, Period2h, Period4h, Period6h, Period8h, Period12h,
	Period1d, Period3d, Period1w,
}

var periodDurations = map[string]time.Duration{
	Period1m:  1 * time.Minute,
	Period3m:  3 * time.Minute,
	Period5m:  5 * time.Minute,
	Period15m: 15 * time.Minute,
	Period30m: 30 * time.Minute,
	Period1h:  1 * time.Hour,
	Period2h:  2 * time.Hour,
	Period4h:  4 * time.Hour,
	Period6h:  6 * time.Hour,
	Period8h:  8 * time.Hour,
	Period12h: 12 * time.Hour,
	Period1d:  24 * time.Hour,
	Period3d:  72 * time.Hour,
	Period1w:  7 * 24 * time.Hour,
}

// Дефолтные значения сканера
const (
	DefaultVolatilityPeriod = Period1m
	DefaultMoverPeriods     = "1h,4h,1d"
)
