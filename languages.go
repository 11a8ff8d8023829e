package bearchat

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language is one of the languages the pipeline can translate between.
// The set is closed: supporting another language means adding a constant and
// a row to the languages table.
type Language int

const (
	Chinese Language = iota + 1
	English
	Japanese
	Korean
	Thai
	Vietnamese
)

var languages = map[Language]language.Tag{
	Chinese:    language.Chinese,
	English:    language.English,
	Japanese:   language.Japanese,
	Korean:     language.Korean,
	Thai:       language.Thai,
	Vietnamese: language.Vietnamese,
}

// englishNames renders language names for the translation instruction.
var englishNames = display.Languages(language.English)

// Languages returns all supported languages in declaration order.
func Languages() []Language {
	return []Language{Chinese, English, Japanese, Korean, Thai, Vietnamese}
}

// ParseLanguage parses a short code such as "zh" or "ja". Region subtags and
// case are ignored ("zh-CN", "ZH_cn" both parse as Chinese).
func ParseLanguage(code string) (Language, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(code), "_", "-")
	tag, err := language.Parse(normalized)
	if err != nil {
		return 0, fmt.Errorf("unsupported language %q: %w", code, err)
	}
	base, _ := tag.Base()
	for _, l := range Languages() {
		if b, _ := languages[l].Base(); b == base {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unsupported language %q", code)
}

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	_, ok := languages[l]
	return ok
}

// Tag returns the BCP 47 tag for l.
func (l Language) Tag() language.Tag {
	return languages[l]
}

// Code returns the short code used in cache keys and settings ("zh", "ja", ...).
func (l Language) Code() string {
	if !l.Valid() {
		return "und"
	}
	return languages[l].String()
}

// Name returns the English name of the language, as used in prompts.
func (l Language) Name() string {
	if !l.Valid() {
		return "Unknown"
	}
	return englishNames.Name(languages[l])
}

// NativeName returns the language's name in the language itself.
func (l Language) NativeName() string {
	if !l.Valid() {
		return "Unknown"
	}
	return display.Self.Name(languages[l])
}

func (l Language) String() string {
	return l.Code()
}

// DistinctTarget returns to, or a substitute when it equals from: English,
// or Chinese when the source is already English.
func DistinctTarget(from, to Language) Language {
	if from != to {
		return to
	}
	if from == English {
		return Chinese
	}
	return English
}
