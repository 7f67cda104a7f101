package icons

import (
	"embed"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"sync"

	"alfreds-toolbox/infrastructure/logger"
)

//go:embed assets
var embedded embed.FS

const (
	flagClass    = "at-flag-icon"
	browserClass = "at-browser-icon"
	globeIcon    = "globe"
	defaultIcon  = "browser-default"
)

var (
	svgOpenTag    = regexp.MustCompile(`<svg(.*?)>`)
	sizeAttribute = regexp.MustCompile(`\s(width|height)="[^"]*"`)
	whitespace    = regexp.MustCompile(`\s+`)
)

var browserAliases = map[string]string{
	"microsoft edge":    "edge",
	"edge":              "edge",
	"chrome":            "chrome",
	"firefox":           "firefox",
	"safari":            "safari",
	"opera":             "opera",
	"samsung internet":  "samsung",
	"ie":                "ie",
	"internet explorer": "ie",
}

// Library loads inline SVG icons for the dashboard. Files in the override
// directory win over the embedded set.
type Library struct {
	sources []fs.FS
	mu      sync.RWMutex
	cache   map[string]string
}

func NewLibrary(overrideDir string) *Library {
	sources := []fs.FS{}
	if overrideDir != "" {
		sources = append(sources, os.DirFS(overrideDir))
	}
	if sub, err := fs.Sub(embedded, "assets"); err == nil {
		sources = append(sources, sub)
	}
	return &Library{sources: sources, cache: make(map[string]string)}
}

// Flag returns the flag for an ISO country code, or the globe icon.
func (l *Library) Flag(code string) string {
	return l.icon("flags", strings.ToLower(strings.TrimSpace(code)), globeIcon, flagClass)
}

// Browser returns the icon for a browser name as reported by the Data API.
func (l *Library) Browser(name string) string {
	slug, ok := browserAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		slug = defaultIcon
	}
	return l.icon("browsers", slug, defaultIcon, browserClass)
}

func (l *Library) icon(dir, name, fallback, class string) string {
	cacheKey := dir + "/" + name
	l.mu.RLock()
	svg, ok := l.cache[cacheKey]
	l.mu.RUnlock()
	if ok {
		return svg
	}

	raw, err := l.read(dir + "/" + name + ".svg")
	if err != nil {
		raw, err = l.read(dir + "/" + fallback + ".svg")
	}
	if err != nil {
		logger.GetLogger().WithField("icon", cacheKey).WithField("error", err).Warn("Icon not found")
		return ""
	}

	svg = Clean(string(raw), class)
	l.mu.Lock()
	l.cache[cacheKey] = svg
	l.mu.Unlock()
	return svg
}

func (l *Library) read(path string) ([]byte, error) {
	var lastErr error = fs.ErrNotExist
	for _, src := range l.sources {
		data, err := fs.ReadFile(src, path)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// Clean tags the root <svg> element with class, drops its fixed size so CSS
// controls it, and collapses whitespace for embedding in JSON.
func Clean(svg, class string) string {
	replaced := false
	svg = svgOpenTag.ReplaceAllStringFunc(svg, func(tag string) string {
		if replaced {
			return tag
		}
		replaced = true
		attrs := strings.TrimSuffix(strings.TrimPrefix(tag, "<svg"), ">")
		selfClosing := strings.HasSuffix(attrs, "/")
		attrs = strings.TrimSuffix(attrs, "/")
		attrs = sizeAttribute.ReplaceAllString(attrs, "")
		out := "<svg" + attrs + ` class="` + class + `"`
		if selfClosing {
			out += "/"
		}
		return out + ">"
	})
	return strings.TrimSpace(whitespace.ReplaceAllString(svg, " "))
}
