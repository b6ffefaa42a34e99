package i18n

import (
	"strings"
	"sync"
)

// Message codes for the default failure messages produced by lightschema.
const (
	ExpectedLiteral     = "expected_literal"
	ExpectedNone        = "expected_none"
	ExpectedInt         = "expected_int"
	ExpectedFloat       = "expected_float"
	ExpectedString      = "expected_string"
	ExpectedBoolean     = "expected_boolean"
	ExpectedArray       = "expected_array"
	ExpectedTuple       = "expected_tuple"
	ExpectedTupleLength = "expected_tuple_length"
	ExpectedObject      = "expected_object"
	NumberMin           = "number_min"
	NumberMax           = "number_max"
	StringMin           = "string_min"
	StringMax           = "string_max"
	ArrayMin            = "array_min"
	ArrayMax            = "array_max"
	ExprFailed          = "expr_failed"
	Required            = "required"
	AtLeastOne          = "at_least_one"
	Duplicate           = "duplicate"
)

// Translator retrieves localized messages for message codes.
// data provides values substituted into {name} placeholders (for example
// "literal" or "min").
type Translator interface {
	Message(code string, data map[string]string) string
}

var catalogs = map[string]map[string]string{
	"en": {
		ExpectedLiteral:     "Expected {literal}",
		ExpectedNone:        "Expected null or undefined",
		ExpectedInt:         "Expected integer",
		ExpectedFloat:       "Expected float",
		ExpectedString:      "Expected string",
		ExpectedBoolean:     "Expected boolean",
		ExpectedArray:       "Expected array",
		ExpectedTuple:       "Expected tuple",
		ExpectedTupleLength: "Expected tuple of length {length}",
		ExpectedObject:      "Expected object",
		NumberMin:           "Number must be greater than or equal to {min}",
		NumberMax:           "Number must be less than or equal to {max}",
		StringMin:           "String must be at least {min} characters long",
		StringMax:           "String must be at most {max} characters long",
		ArrayMin:            "Array must have at least {min} elements",
		ArrayMax:            "Array must have at most {max} elements",
		ExprFailed:          "Value must satisfy {expr}",
		Required:            "Value is required",
		AtLeastOne:          "At least 1 item is required",
		Duplicate:           "Duplicate value {key} (first at index {first})",
	},
	"ja": {
		ExpectedLiteral:     "{literal} が必要です",
		ExpectedNone:        "null または未定義である必要があります",
		ExpectedInt:         "整数が必要です",
		ExpectedFloat:       "数値が必要です",
		ExpectedString:      "文字列が必要です",
		ExpectedBoolean:     "真偽値が必要です",
		ExpectedArray:       "配列が必要です",
		ExpectedTuple:       "タプルが必要です",
		ExpectedTupleLength: "長さ {length} のタプルが必要です",
		ExpectedObject:      "オブジェクトが必要です",
		NumberMin:           "{min} 以上の数値である必要があります",
		NumberMax:           "{max} 以下の数値である必要があります",
		StringMin:           "{min} 文字以上である必要があります",
		StringMax:           "{max} 文字以下である必要があります",
		ArrayMin:            "{min} 個以上の要素が必要です",
		ArrayMax:            "{max} 個以下の要素である必要があります",
		ExprFailed:          "{expr} を満たす必要があります",
		Required:            "必須です",
		AtLeastOne:          "1 件以上の要素が必要です",
		Duplicate:           "値 {key} が重複しています (最初はインデックス {first})",
	},
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	tmpl, ok := catalogs[t.lang][code]
	if !ok {
		tmpl, ok = catalogs["en"][code]
	}
	if !ok {
		return code
	}
	return expand(tmpl, data)
}

func expand(tmpl string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(tmpl, "{") {
		return tmpl
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if _, ok := catalogs[lang]; !ok {
		lang = "en"
	}
	SetTranslator(dictTranslator{lang: lang})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). nil restores the English dictionary.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
