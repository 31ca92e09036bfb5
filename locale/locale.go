// Package locale selects the UI language and translates user-facing messages.
// Messages are looked up by context and msgid, as with gettext's pgettext.
package locale

import (
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"qrtoolkit/failure"
)

var supported = []language.Tag{
	language.English,
	language.Japanese,
}

var matcher = language.NewMatcher(supported)

type entry struct {
	ctx, id string
	ja      string
}

var entries = []entry{
	{"error", "The content is too long to encode. Shorten the input and try again.", "内容が長すぎるためエンコードできません。入力を短くしてからもう一度お試しください。"},
	{"error", "Rendering failed: %v", "描画に失敗しました: %v"},
	{"error", "The image size is too small for this content. Increase the size and try again.", "この内容には画像サイズが小さすぎます。サイズを大きくしてからもう一度お試しください。"},
	{"error", "Insufficient memory to render an image of this size.", "この大きさの画像を描画するにはメモリが不足しています。"},
	{"error", "Could not write %q: %v", "%q に書き込めませんでした: %v"},
	{"error", "Internal error: %v", "内部エラー: %v"},
	{"gui", "Saved %q", "%q を保存しました"},
	{"gui", "Copied to clipboard", "クリップボードにコピーしました"},
}

var (
	cat   *catalog.Builder
	known = map[string]struct{}{}

	mu      sync.RWMutex
	printer *message.Printer
	current language.Tag
)

func key(msgctxt, msgid string) string {
	return msgctxt + "\x04" + msgid
}

func init() {
	cat = catalog.NewBuilder(catalog.Fallback(language.English))
	for _, e := range entries {
		k := key(e.ctx, e.id)
		known[k] = struct{}{}
		if err := cat.SetString(language.English, k, e.id); err != nil {
			panic(err)
		}
		if err := cat.SetString(language.Japanese, k, e.ja); err != nil {
			panic(err)
		}
	}
	SetLanguage(Detect())
}

// Detect returns the language configured in the environment, or "en".
func Detect() string {
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v := os.Getenv(name)
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		if i := strings.IndexAny(v, ".@"); i >= 0 {
			v = v[:i]
		}
		return strings.ReplaceAll(v, "_", "-")
	}
	return "en"
}

// SetLanguage switches the catalogue language. Unknown or malformed names
// select the closest supported language.
func SetLanguage(name string) language.Tag {
	t, err := language.Parse(name)
	if err != nil {
		t = language.English
	}
	_, idx, _ := matcher.Match(t)
	tag := supported[idx]

	mu.Lock()
	defer mu.Unlock()
	current = tag
	printer = message.NewPrinter(tag, message.Catalog(cat))
	return tag
}

// Language returns the active language.
func Language() language.Tag {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Pgettext translates msgid in the context msgctxt and formats it with a.
func Pgettext(msgctxt, msgid string, a ...any) string {
	k := key(msgctxt, msgid)
	mu.RLock()
	p := printer
	mu.RUnlock()
	if _, ok := known[k]; !ok {
		return p.Sprintf(msgid, a...)
	}
	return p.Sprintf(k, a...)
}

// Message returns the text shown to the user for f.
func Message(f *failure.Failure) string {
	if f == nil {
		return ""
	}
	switch f.Kind {
	case failure.EncodingCapacityExceeded:
		return Pgettext("error", "The content is too long to encode. Shorten the input and try again.")
	case failure.ResourceExhausted:
		return Pgettext("error", "Insufficient memory to render an image of this size.")
	case failure.IO:
		return Pgettext("error", "Could not write %q: %v", f.Path, f.Err)
	case failure.InvalidRequest:
		return Pgettext("error", "Internal error: %v", f.Err)
	case failure.Cancelled:
		return ""
	default:
		if errors.Is(f.Err, failure.ErrSizeTooSmall) {
			return Pgettext("error", "The image size is too small for this content. Increase the size and try again.")
		}
		return Pgettext("error", "Rendering failed: %v", f.Err)
	}
}
