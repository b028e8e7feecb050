package checker

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/khanhnv2901/insec/internal/domain/scan"
	consts "github.com/khanhnv2901/insec/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/insec/internal/shared/errors"
)

// TitleSignal carries the extracted page title.
type TitleSignal struct {
	Title string
}

// TitleProbe fetches the page body and extracts the first <title>.
type TitleProbe struct {
	Fetcher  Fetcher
	Timeout  time.Duration
	MaxBytes int64
}

// NewTitleProbe creates a title probe with default timeout and body limit.
func NewTitleProbe(f Fetcher) *TitleProbe {
	return &TitleProbe{
		Fetcher:  f,
		Timeout:  consts.TitleProbeTimeout,
		MaxBytes: consts.TitleBodyLimitBytes,
	}
}

// Name returns the name of this probe
func (p *TitleProbe) Name() string {
	return ProbeTitle
}

// Run fetches the target page. Non-2xx responses and bodies over MaxBytes are
// treated as unavailable.
func (p *TitleProbe) Run(ctx context.Context, target scan.Target) Result[TitleSignal] {
	ctx, cancel := withTimeout(ctx, p.Timeout)
	defer cancel()

	limit := p.MaxBytes
	if limit <= 0 {
		limit = consts.TitleBodyLimitBytes
	}

	resp, err := p.Fetcher.Fetch(ctx, target.URL(), limit)
	if err != nil {
		return Unavailable[TitleSignal](p.Name(), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Unavailable[TitleSignal](p.Name(), fmt.Errorf("%w: status %d", sharedErrors.ErrUnexpectedStatus, resp.StatusCode))
	}
	if resp.Truncated {
		return Unavailable[TitleSignal](p.Name(), fmt.Errorf("%w: more than %d bytes", sharedErrors.ErrResponseTooLarge, limit))
	}

	title, ok := ExtractTitle(resp.Body)
	if !ok {
		return Unavailable[TitleSignal](p.Name(), sharedErrors.ErrTitleNotFound)
	}
	return Success(p.Name(), TitleSignal{Title: title})
}

// ExtractTitle returns the trimmed text of the first <title> element,
// truncated to consts.MaxTitleRunes. Empty titles count as missing.
func ExtractTitle(body []byte) (string, bool) {
	z := html.NewTokenizer(bytes.NewReader(body))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return "", false
		case html.StartTagToken:
			name, _ := z.TagName()
			if string(name) != "title" {
				continue
			}
			// <title> is RCDATA, so its whole content arrives as one text token.
			if z.Next() != html.TextToken {
				return "", false
			}
			title := strings.TrimSpace(string(z.Text()))
			if title == "" {
				return "", false
			}
			return truncateRunes(title, consts.MaxTitleRunes), true
		}
	}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}
