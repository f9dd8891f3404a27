package keeper

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/gobwas/glob"
)

// MatchMode определяет способ сравнения ключа поиска со строкой
type MatchMode string

const (
	MatchExact    MatchMode = "exact"
	MatchContains MatchMode = "contains"
	MatchRegex    MatchMode = "regex"
	MatchFuzzy    MatchMode = "fuzzy"
	MatchGlob     MatchMode = "glob"
)

// FuzzyThreshold - минимальное сходство Jaro-Winkler для нечеткого совпадения
const FuzzyThreshold = 0.85

var MatchModes = []MatchMode{MatchExact, MatchContains, MatchRegex, MatchFuzzy, MatchGlob}

func ParseMatchMode(s string) (MatchMode, error) {
	mode := MatchMode(strings.ToLower(s))
	for _, m := range MatchModes {
		if m == mode {
			return mode, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMatch, s)
}

type Matcher interface {
	Match(target string) bool
}

type matchFunc func(string) bool

func (f matchFunc) Match(target string) bool {
	return f(target)
}

func NewMatcher(mode MatchMode, key string) (Matcher, error) {
	lowered := strings.ToLower(key)

	switch mode {
	case MatchExact, "":
		return matchFunc(func(target string) bool {
			return strings.ToLower(target) == lowered
		}), nil

	case MatchContains:
		return matchFunc(func(target string) bool {
			return strings.Contains(strings.ToLower(target), lowered)
		}), nil

	case MatchRegex:
		re, err := regexp.Compile(key)
		if err != nil {
			return nil, fmt.Errorf("ошибка в регулярном выражении %q: %w", key, err)
		}
		return matchFunc(re.MatchString), nil

	case MatchFuzzy:
		jw := metrics.NewJaroWinkler()
		jw.CaseSensitive = false
		return matchFunc(func(target string) bool {
			return strutil.Similarity(lowered, target, jw) >= FuzzyThreshold
		}), nil

	case MatchGlob:
		g, err := glob.Compile(lowered)
		if err != nil {
			return nil, fmt.Errorf("ошибка в шаблоне %q: %w", key, err)
		}
		return matchFunc(func(target string) bool {
			return g.Match(strings.ToLower(target))
		}), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownMatch, mode)
}
