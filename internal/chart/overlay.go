// Package chart builds indicator overlays for candlestick renderers.
// Rendering itself happens outside this module; the overlay is plain JSON.
package chart

import (
	"fmt"
	"time"

	"github.com/wonny/stockrank/internal/contracts"
	"github.com/wonny/stockrank/internal/s2_signals"
)

// Panel 0 is the price pane; volume, RSI and MACD stack below it in that order
const PricePanel = 0

const (
	rsiUpperGuide = 70.0
	rsiLowerGuide = 30.0
)

var (
	smaColors = []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd"}
	emaColors = []string{"#e377c2", "#7f7f7f", "#bcbd22", "#17becf", "#aec7e8"}
)

const (
	colorBandsOuter  = "#aaaaaa"
	colorBandsMid    = "#888888"
	colorRSI         = "#7f00ff"
	colorGuide       = "gray"
	colorMACDLine    = "#2962FF"
	colorMACDSignal  = "#FF6D00"
	colorPositive    = "#26A69A"
	colorNegative    = "#EF5350"
	colorSwingHigh   = colorPositive
	colorSwingLow    = colorNegative
	macdFast         = 12
	macdSlow         = 26
	macdSignalPeriod = 9
	bandsK           = 2.0
)

// Indicators selects what to overlay. Zero values disable an indicator.
type Indicators struct {
	SMA       []int `json:"sma,omitempty"`
	EMA       []int `json:"ema,omitempty"`
	Bollinger int   `json:"bbands,omitempty"`
	RSI       int   `json:"rsi,omitempty"`
	MACD      bool  `json:"macd,omitempty"`
	Momentum  int   `json:"momentum,omitempty"` // swing window
	Volume    bool  `json:"volume"`
}

// DefaultIndicators returns the overlay used when nothing is requested
func DefaultIndicators() Indicators {
	return Indicators{Volume: true}
}

// Candle is one OHLCV bar
type Candle struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// Line is an indicator series aligned with the candles; undefined points encode as null
type Line struct {
	Name   string          `json:"name"`
	Panel  int             `json:"panel"`
	Color  string          `json:"color"`
	Style  string          `json:"style"` // solid, dashed, dotted
	Width  float64         `json:"width"`
	Values []contracts.Num `json:"values"`
}

// Histogram is a bar series colored by sign
type Histogram struct {
	Name   string          `json:"name"`
	Panel  int             `json:"panel"`
	Values []contracts.Num `json:"values"`
	Colors []string        `json:"colors"`
}

// Marker flags a swing point on the price pane
type Marker struct {
	Position int     `json:"position"`
	Date     string  `json:"date"`
	Value    float64 `json:"value"`
	Shape    string  `json:"shape"` // "v" above swing highs, "^" below swing lows
	Color    string  `json:"color"`
}

// Overlay is everything a candlestick renderer needs for one ticker
type Overlay struct {
	Ticker     string      `json:"ticker"`
	Candles    []Candle    `json:"candles"`
	Volume     bool        `json:"volume"`
	Panels     int         `json:"panels"`
	Lines      []Line      `json:"lines"`
	Histograms []Histogram `json:"histograms"`
	Markers    []Marker    `json:"markers"`
}

// BuildOverlay computes the requested indicator series over the full price history
func BuildOverlay(series contracts.Series, ind Indicators) (*Overlay, error) {
	if series.Len() == 0 {
		return nil, fmt.Errorf("chart %s: %w", series.Ticker, contracts.ErrNoData)
	}

	closes := series.Closes()
	ov := &Overlay{
		Ticker:     series.Ticker,
		Candles:    candles(series),
		Volume:     ind.Volume,
		Lines:      []Line{},
		Histograms: []Histogram{},
		Markers:    []Marker{},
	}

	nextPanel := PricePanel + 1
	if ind.Volume {
		nextPanel++
	}

	for i, period := range ind.SMA {
		if period <= 0 {
			continue
		}
		ov.Lines = append(ov.Lines, Line{
			Name:   fmt.Sprintf("SMA_%d", period),
			Panel:  PricePanel,
			Color:  smaColors[i%len(smaColors)],
			Style:  "solid",
			Width:  1.0,
			Values: s2_signals.SMA(closes, period),
		})
	}

	for i, period := range ind.EMA {
		if period <= 0 {
			continue
		}
		ov.Lines = append(ov.Lines, Line{
			Name:   fmt.Sprintf("EMA_%d", period),
			Panel:  PricePanel,
			Color:  emaColors[i%len(emaColors)],
			Style:  "dashed",
			Width:  1.0,
			Values: s2_signals.EMA(closes, period),
		})
	}

	if ind.Bollinger > 0 {
		bands := s2_signals.BollingerBands(closes, ind.Bollinger, bandsK)
		ov.Lines = append(ov.Lines,
			Line{Name: "BB_Upper", Panel: PricePanel, Color: colorBandsOuter, Style: "solid", Width: 0.7, Values: bands.Upper},
			Line{Name: "BB_Mid", Panel: PricePanel, Color: colorBandsMid, Style: "dotted", Width: 0.7, Values: bands.Mid},
			Line{Name: "BB_Lower", Panel: PricePanel, Color: colorBandsOuter, Style: "solid", Width: 0.7, Values: bands.Lower},
		)
	}

	if ind.RSI > 0 {
		ov.Lines = append(ov.Lines,
			Line{Name: fmt.Sprintf("RSI_%d", ind.RSI), Panel: nextPanel, Color: colorRSI, Style: "solid", Width: 1.0, Values: s2_signals.RSI(closes, ind.RSI)},
			guide("RSI_70", nextPanel, rsiUpperGuide, len(closes)),
			guide("RSI_30", nextPanel, rsiLowerGuide, len(closes)),
		)
		nextPanel++
	}

	if ind.MACD {
		m := s2_signals.MACD(closes, macdFast, macdSlow, macdSignalPeriod)
		ov.Lines = append(ov.Lines,
			Line{Name: "MACD", Panel: nextPanel, Color: colorMACDLine, Style: "solid", Width: 1.0, Values: m.Line},
			Line{Name: "MACD_Signal", Panel: nextPanel, Color: colorMACDSignal, Style: "solid", Width: 1.0, Values: m.Signal},
		)
		ov.Histograms = append(ov.Histograms, Histogram{
			Name:   "MACD_Hist",
			Panel:  nextPanel,
			Values: m.Histogram,
			Colors: signColors(m.Histogram),
		})
		nextPanel++
	}

	if ind.Momentum > 0 {
		ov.Markers = swingMarkers(series, ind.Momentum)
	}

	ov.Panels = nextPanel
	return ov, nil
}

func candles(series contracts.Series) []Candle {
	out := make([]Candle, len(series.Bars))
	for i, b := range series.Bars {
		out[i] = Candle{
			Date:   b.Date.Format(time.DateOnly),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		}
	}
	return out
}

func guide(name string, panel int, level float64, n int) Line {
	values := make([]contracts.Num, n)
	for i := range values {
		values[i] = contracts.Some(level)
	}
	return Line{Name: name, Panel: panel, Color: colorGuide, Style: "dashed", Width: 0.5, Values: values}
}

// signColors colors undefined histogram points as non-negative
func signColors(values []contracts.Num) []string {
	out := make([]string, len(values))
	for i, v := range values {
		if v.Or(0) >= 0 {
			out[i] = colorPositive
		} else {
			out[i] = colorNegative
		}
	}
	return out
}

// swingMarkers places highs at the bar high and lows at the bar low
func swingMarkers(series contracts.Series, window int) []Marker {
	swings := s2_signals.DetectSwings(series.Highs(), series.Lows(), window)
	markers := make([]Marker, 0, len(swings.Highs)+len(swings.Lows))

	for _, p := range swings.Highs {
		markers = append(markers, Marker{
			Position: p.Position,
			Date:     series.Bars[p.Position].Date.Format(time.DateOnly),
			Value:    series.Bars[p.Position].High,
			Shape:    "v",
			Color:    colorSwingHigh,
		})
	}
	for _, p := range swings.Lows {
		markers = append(markers, Marker{
			Position: p.Position,
			Date:     series.Bars[p.Position].Date.Format(time.DateOnly),
			Value:    series.Bars[p.Position].Low,
			Shape:    "^",
			Color:    colorSwingLow,
		})
	}
	return markers
}
