package s1_universe

import (
	"regexp"
	"strings"
	"time"

	"github.com/wonny/stockrank/internal/contracts"
)

// 특수문자 포함 심볼 (클래스주, 우선주, 워런트 표기)
var specialChars = regexp.MustCompile(`[.$\-]`)

// "test" as a standalone word
var testWord = regexp.MustCompile(`(?i)\btest\b`)

// Exclusion reasons
const (
	ReasonSpecialChar = "special character in symbol"
	ReasonTooLong     = "symbol longer than max length"
	ReasonKeyword     = "non-common-stock name"
	ReasonTestIssue   = "test issue"
	ReasonEmpty       = "empty symbol"
)

// Builder filters raw listings down to common stocks
type Builder struct {
	config Config
}

// Config holds universe filter criteria
type Config struct {
	MaxSymbolLength int      `yaml:"max_symbol_length"` // 5
	ExcludeKeywords []string `yaml:"exclude_keywords"`  // 이름 부분 문자열 (대소문자 무시)
}

// DefaultConfig returns the common-stock filter
func DefaultConfig() Config {
	return Config{
		MaxSymbolLength: 5,
		ExcludeKeywords: []string{"warrant", "unit", "right", "preferred"},
	}
}

// NewBuilder creates a new Universe Builder
func NewBuilder(config Config) *Builder {
	return &Builder{config: config}
}

// Filter splits listings into the universe and excluded symbols
// ⭐ SSOT: S1 유니버스 필터링
func (b *Builder) Filter(tickers []contracts.Ticker) *contracts.Universe {
	universe := &contracts.Universe{
		Date:       time.Now().UTC(),
		Tickers:    make([]contracts.Ticker, 0, len(tickers)),
		Excluded:   make(map[string]string),
		TotalCount: len(tickers),
	}

	for _, t := range tickers {
		if reason := b.checkExclusion(t); reason != "" {
			universe.Excluded[t.Symbol] = reason
			continue
		}
		universe.Tickers = append(universe.Tickers, t)
	}

	return universe
}

// checkExclusion returns why a listing is excluded, or "" when it passes
func (b *Builder) checkExclusion(t contracts.Ticker) string {
	// 우선순위 순서로 체크

	// 1. 빈 심볼
	if t.Symbol == "" {
		return ReasonEmpty
	}

	// 2. 특수문자
	if specialChars.MatchString(t.Symbol) {
		return ReasonSpecialChar
	}

	// 3. 심볼 길이
	if b.config.MaxSymbolLength > 0 && len(t.Symbol) > b.config.MaxSymbolLength {
		return ReasonTooLong
	}

	// 4. 종목명 키워드
	name := strings.ToLower(t.Name)
	for _, kw := range b.config.ExcludeKeywords {
		if strings.Contains(name, strings.ToLower(kw)) {
			return ReasonKeyword + " (" + kw + ")"
		}
	}

	// 5. 테스트 종목
	if testWord.MatchString(t.Name) {
		return ReasonTestIssue
	}

	return "" // 통과
}
