// Package i18n holds the reader's chrome labels.
package i18n

import (
	"os"
	"strings"

	"golang.org/x/text/language"
)

// Labels is the text shown by the header and the table of contents.
type Labels struct {
	Lang      string
	Contents  string
	ShowTOC   string
	HideTOC   string
	FontUp    string
	FontDown  string
	FontSize  string // format with the px size
	Loading   string
	NoChapter string
	Quit      string
	Help      string
}

var (
	english = Labels{
		Lang:      "en",
		Contents:  "Contents",
		ShowTOC:   "Show contents",
		HideTOC:   "Hide contents",
		FontUp:    "A+",
		FontDown:  "A-",
		FontSize:  "%dpx",
		Loading:   "Loading…",
		NoChapter: "No chapters",
		Quit:      "quit",
		Help:      "help",
	}
	chinese = Labels{
		Lang:      "zh",
		Contents:  "目录",
		ShowTOC:   "显示目录",
		HideTOC:   "隐藏目录",
		FontUp:    "字号+",
		FontDown:  "字号-",
		FontSize:  "%d像素",
		Loading:   "加载中…",
		NoChapter: "没有章节",
		Quit:      "退出",
		Help:      "帮助",
	}
)

var matcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Chinese,
})

// For returns the labels best matching locale, a BCP 47 tag or a POSIX
// locale such as "zh_CN.UTF-8". English is the fallback.
func For(locale string) Labels {
	tag, _, _ := matcher.Match(parse(locale))
	base, _ := tag.Base()
	if base.String() == "zh" {
		return chinese
	}
	return english
}

// Detect uses locale if set, otherwise LC_ALL, LC_MESSAGES and LANG in that order.
func Detect(locale string) Labels {
	if locale != "" {
		return For(locale)
	}
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(key); v != "" {
			return For(v)
		}
	}
	return english
}

func parse(locale string) language.Tag {
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}
	locale = strings.ReplaceAll(locale, "_", "-")
	tag, err := language.Parse(locale)
	if err != nil {
		return language.Und
	}
	return tag
}
