/*
Package locale holds the locale information table used by the string-map build
and implements fallback-chain resolution.

Every locale that can appear as a build target must be present in the table (or
be added to it via LoadFile); each entry carries at least the text direction for
that locale. Fallback resolution itself is purely syntactic and works on any
locale code.
*/
package locale

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/language"
)

// Fallback is the locale guaranteed to have a complete translation set. Every
// fallback chain ends with it.
const Fallback = "en"

// Info describes a single locale.
type Info struct {
	Name      string `json:"name"`
	Direction string `json:"direction"`
}

// IsRTL reports whether text in this locale runs right to left.
func (i Info) IsRTL() bool {
	return i.Direction == "rtl"
}

// Table maps locale codes (e.g. 'en', 'zh_CN') to their Info.
type Table map[string]Info

// Get looks up a locale in the table.
func (t Table) Get(code string) (Info, bool) {
	info, ok := t[code]
	return info, ok
}

// IsRTL reports whether the given locale is right-to-left. Unknown locales are
// treated as left-to-right.
func (t Table) IsRTL(code string) bool {
	return t[code].IsRTL()
}

// Codes returns every locale code in the table, in no particular order.
func (t Table) Codes() []string {
	codes := make([]string, 0, len(t))
	for code := range t {
		codes = append(codes, code)
	}
	return codes
}

// Validate checks that a locale is usable as a build target: it must be
// syntactically valid and present in the table.
func (t Table) Validate(code string) error {
	if code == "" {
		return errors.New("locale: empty locale code")
	}
	if _, err := language.Parse(strings.ReplaceAll(code, "_", "-")); err != nil {
		return fmt.Errorf("locale: '%v' is not a valid locale code: %w", code, err)
	}
	if _, ok := t[code]; !ok {
		return fmt.Errorf("locale: unsupported locale '%v'", code)
	}
	return nil
}

// LoadFile merges locale entries from a JSON file into the table. The file
// maps locale codes to {"name": ..., "direction": ...} objects; entries
// override any built-in entry with the same code.
func (t Table) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var extra map[string]Info
	if err := json.Unmarshal(data, &extra); err != nil {
		return fmt.Errorf("locale: could not parse '%v': %w", path, err)
	}

	for code, info := range extra {
		t[code] = info
	}
	return nil
}

// Fallbacks resolves the ordered list of locales to try when looking up a
// string for the given locale: the locale itself, then its two-character
// language family (when distinct from both the locale and the fallback), then
// the fallback locale.
//
// Examples: zh_CN -> [zh_CN zh en]; es -> [es en]; en -> [en].
func Fallbacks(code string) []string {
	if code == Fallback {
		return []string{Fallback}
	}

	chain := []string{code}
	if family := Family(code); family != code && family != Fallback {
		chain = append(chain, family)
	}
	return append(chain, Fallback)
}

// Family returns the two-character language-family form of a locale, e.g.
// 'zh' for 'zh_CN'. Codes of two characters or fewer are their own family.
func Family(code string) string {
	if len(code) <= 2 {
		return code
	}
	return code[:2]
}

// Default returns the built-in locale table. Callers own the returned map and
// may extend it via LoadFile.
func Default() Table {
	t := make(Table, len(builtin))
	for code, info := range builtin {
		t[code] = info
	}
	return t
}

var builtin = Table{
	"ar":    {Name: "Arabic", Direction: "rtl"},
	"ar_MA": {Name: "Arabic, Morocco", Direction: "rtl"},
	"ar_SA": {Name: "Arabic, Saudi Arabia", Direction: "rtl"},
	"bg":    {Name: "Bulgarian", Direction: "ltr"},
	"bn":    {Name: "Bengali", Direction: "ltr"},
	"cs":    {Name: "Czech", Direction: "ltr"},
	"da":    {Name: "Danish", Direction: "ltr"},
	"de":    {Name: "German", Direction: "ltr"},
	"el":    {Name: "Greek", Direction: "ltr"},
	"en":    {Name: "English", Direction: "ltr"},
	"en_CA": {Name: "English, Canada", Direction: "ltr"},
	"en_GB": {Name: "English, United Kingdom", Direction: "ltr"},
	"es":    {Name: "Spanish", Direction: "ltr"},
	"es_ES": {Name: "Spanish, Spain", Direction: "ltr"},
	"es_MX": {Name: "Spanish, Mexico", Direction: "ltr"},
	"es_PE": {Name: "Spanish, Peru", Direction: "ltr"},
	"et":    {Name: "Estonian", Direction: "ltr"},
	"eu":    {Name: "Basque", Direction: "ltr"},
	"fa":    {Name: "Persian", Direction: "rtl"},
	"fi":    {Name: "Finnish", Direction: "ltr"},
	"fr":    {Name: "French", Direction: "ltr"},
	"fr_CA": {Name: "French, Canada", Direction: "ltr"},
	"gl":    {Name: "Galician", Direction: "ltr"},
	"he":    {Name: "Hebrew", Direction: "rtl"},
	"hi":    {Name: "Hindi", Direction: "ltr"},
	"hr":    {Name: "Croatian", Direction: "ltr"},
	"hu":    {Name: "Hungarian", Direction: "ltr"},
	"id":    {Name: "Indonesian", Direction: "ltr"},
	"it":    {Name: "Italian", Direction: "ltr"},
	"ja":    {Name: "Japanese", Direction: "ltr"},
	"ka":    {Name: "Georgian", Direction: "ltr"},
	"kk":    {Name: "Kazakh", Direction: "ltr"},
	"km":    {Name: "Khmer", Direction: "ltr"},
	"ko":    {Name: "Korean", Direction: "ltr"},
	"lt":    {Name: "Lithuanian", Direction: "ltr"},
	"lv":    {Name: "Latvian", Direction: "ltr"},
	"mk":    {Name: "Macedonian", Direction: "ltr"},
	"mn":    {Name: "Mongolian", Direction: "ltr"},
	"ms":    {Name: "Malay", Direction: "ltr"},
	"nb":    {Name: "Norwegian Bokmal", Direction: "ltr"},
	"nl":    {Name: "Dutch", Direction: "ltr"},
	"pl":    {Name: "Polish", Direction: "ltr"},
	"ps":    {Name: "Pashto", Direction: "rtl"},
	"pt":    {Name: "Portuguese", Direction: "ltr"},
	"pt_BR": {Name: "Portuguese, Brazil", Direction: "ltr"},
	"ro":    {Name: "Romanian", Direction: "ltr"},
	"ru":    {Name: "Russian", Direction: "ltr"},
	"sk":    {Name: "Slovak", Direction: "ltr"},
	"sl":    {Name: "Slovenian", Direction: "ltr"},
	"sr":    {Name: "Serbian", Direction: "ltr"},
	"sv":    {Name: "Swedish", Direction: "ltr"},
	"th":    {Name: "Thai", Direction: "ltr"},
	"tr":    {Name: "Turkish", Direction: "ltr"},
	"uk":    {Name: "Ukrainian", Direction: "ltr"},
	"ur":    {Name: "Urdu", Direction: "rtl"},
	"vi":    {Name: "Vietnamese", Direction: "ltr"},
	"zh_CN": {Name: "Chinese, Simplified", Direction: "ltr"},
	"zh_HK": {Name: "Chinese, Hong Kong", Direction: "ltr"},
	"zh_TW": {Name: "Chinese, Traditional", Direction: "ltr"},
}
