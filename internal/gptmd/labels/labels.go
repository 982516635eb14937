// Package labels holds the fixed, user-visible strings of a rendered document.
package labels

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Labels represents the structure of a TOML labels file
type Labels struct {
	User      string `toml:"user"`
	Assistant string `toml:"assistant"`
	// TimeLine is a template; {{time}} is replaced by the formatted time.
	TimeLine    string `toml:"time_line"`
	UnknownTime string `toml:"unknown_time"`
	Reasoning   string `toml:"reasoning"`
	CodeTitle   string `toml:"code_title"`
}

var presets = map[string]Labels{
	"en": {
		User:        "# User",
		Assistant:   "# ChatGPT",
		TimeLine:    "> Time: {{time}}",
		UnknownTime: "Unknown time",
		Reasoning:   "Thinking",
		CodeTitle:   "Code reasoning",
	},
	"zh": {
		User:        "# 用户",
		Assistant:   "# ChatGPT",
		TimeLine:    "> 时间：{{time}}",
		UnknownTime: "未知时间",
		Reasoning:   "思考",
		CodeTitle:   "代码推理",
	},
}

// DefaultLang is the preset used when none is configured.
const DefaultLang = "en"

// Preset returns the built-in labels for lang.
func Preset(lang string) (Labels, error) {
	if lang == "" {
		lang = DefaultLang
	}
	l, ok := presets[strings.ToLower(lang)]
	if !ok {
		return Labels{}, fmt.Errorf("unsupported label language: %s (available: %s)", lang, strings.Join(Langs(), ", "))
	}
	return l, nil
}

// Langs returns the names of the built-in presets.
func Langs() []string {
	langs := make([]string, 0, len(presets))
	for k := range presets {
		langs = append(langs, k)
	}
	sort.Strings(langs)
	return langs
}

// overlay mirrors Labels with optional fields so a file can override only some of them.
type overlay struct {
	User        *string `toml:"user"`
	Assistant   *string `toml:"assistant"`
	TimeLine    *string `toml:"time_line"`
	UnknownTime *string `toml:"unknown_time"`
	Reasoning   *string `toml:"reasoning"`
	CodeTitle   *string `toml:"code_title"`
}

// LoadFile loads a labels file and applies the fields it sets on top of base
func LoadFile(filePath string, base Labels) (Labels, error) {
	var o overlay
	if _, err := toml.DecodeFile(filePath, &o); err != nil {
		return Labels{}, fmt.Errorf("error decoding labels file: %w", err)
	}

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&base.User, o.User)
	set(&base.Assistant, o.Assistant)
	set(&base.TimeLine, o.TimeLine)
	set(&base.UnknownTime, o.UnknownTime)
	set(&base.Reasoning, o.Reasoning)
	set(&base.CodeTitle, o.CodeTitle)
	return base, nil
}

// FormatTimeLine fills the time line template
func (l Labels) FormatTimeLine(formatted string) string {
	return strings.ReplaceAll(l.TimeLine, "{{time}}", formatted)
}

// Header returns the heading for a message role.
func (l Labels) Header(isUser bool) string {
	if isUser {
		return l.User
	}
	return l.Assistant
}
