// internal/delivery/console/renderer.go
package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"crypto-market-scanner/internal/core/domain/analysis/movers_analyzer"
	"crypto-market-scanner/internal/core/domain/snapshot"
	"crypto-market-scanner/internal/utils"
	"crypto-market-scanner/pkg/period"
)

const (
	// highlightTop - сколько первых строк волатильности выделяется
	highlightTop = 3

	colorYellow = "\033[33m"
	colorReset  = "\033[0m"
	separator   = "══════════════════════════════════════════════════"
)

// Renderer печатает снимок текстовыми таблицами
type Renderer struct {
	mu                 sync.Mutex
	out                io.Writer
	color              bool
	volatilityInterval string
	formatter          *utils.MarketDataFormatter
}

// NewRenderer создает рендерер; out == nil означает stdout
func NewRenderer(out io.Writer, volatilityInterval string, color bool) *Renderer {
	if out == nil {
		out = os.Stdout
	}
	return &Renderer{
		out:                out,
		color:              color,
		volatilityInterval: volatilityInterval,
		formatter:          &utils.MarketDataFormatter{},
	}
}

// Name возвращает имя получателя снимков
func (r *Renderer) Name() string {
	return "console"
}

// Deliver печатает снимок
func (r *Renderer) Deliver(ctx context.Context, snap *snapshot.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := io.WriteString(r.out, r.Render(snap))
	return err
}

// Render возвращает текст отчета
func (r *Renderer) Render(snap *snapshot.Snapshot) string {
	var b strings.Builder

	fmt.Fprintln(&b, separator)
	fmt.Fprintf(&b, "📊 Отчет о волатильности и лидерах рынка\n")
	fmt.Fprintf(&b, "🕒 %s\n", r.formatter.FormatTimestamp(snap.Timestamp()))
	fmt.Fprintln(&b, separator)

	r.renderVolatility(&b, snap)

	for _, interval := range snap.MoverIntervals() {
		movers, _ := snap.Movers(interval)
		r.renderMovers(&b, movers)
	}

	fmt.Fprintln(&b, separator)
	return b.String()
}

func (r *Renderer) renderVolatility(b *strings.Builder, snap *snapshot.Snapshot) {
	entries := snap.TopVolatility()
	fmt.Fprintf(b, "\n⚡ Топ-%d по волатильности (%s)\n", len(entries), period.FormatPeriodForDisplay(r.volatilityInterval))

	if len(entries) == 0 {
		fmt.Fprintln(b, "   нет данных")
		return
	}

	for i, e := range entries {
		line := fmt.Sprintf("%3d. %-14s %10s", i+1, e.Symbol, r.formatter.FormatScore(e.Score))
		if r.color && i < highlightTop {
			line = colorYellow + line + colorReset
		}
		fmt.Fprintln(b, line)
	}
}

func (r *Renderer) renderMovers(b *strings.Builder, m movers_analyzer.MoversForInterval) {
	title := period.FormatPeriodForDisplay(m.Interval)

	fmt.Fprintf(b, "\n🚀 Лидеры роста (%s)\n", title)
	r.renderChanges(b, m.Gainers)

	fmt.Fprintf(b, "\n📉 Лидеры падения (%s)\n", title)
	r.renderChanges(b, m.Losers)
}

func (r *Renderer) renderChanges(b *strings.Builder, entries []movers_analyzer.ChangeEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(b, "   нет данных")
		return
	}
	for i, e := range entries {
		emoji, change := r.formatter.FormatChange(e.ChangePct)
		fmt.Fprintf(b, "%3d. %s %-14s %10s\n", i+1, emoji, e.Symbol, change)
	}
}
