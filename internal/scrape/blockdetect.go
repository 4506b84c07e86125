package scrape

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// BlockType describes the kind of anti-bot response detected.
type BlockType string

const (
	BlockNone         BlockType = ""
	BlockCloudflare   BlockType = "cloudflare"
	BlockCaptcha      BlockType = "captcha"
	BlockForbidden    BlockType = "http_forbidden"
	BlockRateLimit    BlockType = "rate_limit"
	BlockBotCheck     BlockType = "bot_detected"
	BlockAccessDenied BlockType = "access_denied"
	BlockJSShell      BlockType = "js_required"
	BlockEmpty        BlockType = "empty_response"
)

// Hard reports whether the block needs a different engine rather than a
// later retry.
func (b BlockType) Hard() bool {
	switch b {
	case BlockCloudflare, BlockCaptcha, BlockForbidden, BlockBotCheck, BlockAccessDenied:
		return true
	}
	return false
}

type signature struct {
	marker string
	block  BlockType
}

// Strong markers only appear on challenge pages.
var strongSignatures = []signature{
	{"checking your browser", BlockCloudflare},
	{"cf-browser-verification", BlockCloudflare},
	{"cf-challenge", BlockCloudflare},
	{"g-recaptcha", BlockCaptcha},
	{"h-captcha", BlockCaptcha},
	{"recaptcha", BlockCaptcha},
	{"hcaptcha", BlockCaptcha},
}

// Weak markers are ignored on pages that look like product pages.
var weakSignatures = []signature{
	{"captcha", BlockCaptcha},
	{"just a moment", BlockCloudflare},
	{"attention required", BlockCloudflare},
	{"too many requests", BlockRateLimit},
	{"rate limited", BlockRateLimit},
	{"are you a robot", BlockBotCheck},
	{"robot check", BlockBotCheck},
	{"verify you are human", BlockBotCheck},
	{"prove you are human", BlockBotCheck},
	{"bot detected", BlockBotCheck},
	{"suspicious activity", BlockBotCheck},
	{"access denied", BlockAccessDenied},
	{"access has been blocked", BlockAccessDenied},
	{"403 forbidden", BlockForbidden},
	{"enable javascript", BlockJSShell},
	{"please enable cookies", BlockJSShell},
}

var (
	tagRe        = regexp.MustCompile(`(?s)<[^>]*>`)
	specRowRe    = regexp.MustCompile(`(?i)<(?:tr|dt|li)\b`)
	mdTableRowRe = regexp.MustCompile(`(?m)^\s*\|.*\|.*\|\s*$`)
)

// DetectBlock inspects a response for anti-bot protection. resp may be nil
// for content returned by a rendering service.
func DetectBlock(resp *http.Response, body []byte) (bool, BlockType) {
	if resp != nil {
		switch {
		case resp.StatusCode == http.StatusForbidden:
			if isCloudflare(resp.Header) {
				return true, BlockCloudflare
			}
			return true, BlockForbidden
		case resp.StatusCode == http.StatusTooManyRequests:
			return true, BlockRateLimit
		case resp.StatusCode == http.StatusServiceUnavailable:
			if isCloudflare(resp.Header) {
				return true, BlockCloudflare
			}
			return true, BlockRateLimit
		case resp.StatusCode >= 520 && resp.StatusCode <= 524:
			return true, BlockCloudflare
		}
	}

	lower := strings.ToLower(string(body))
	if strings.TrimSpace(lower) == "" {
		return false, BlockNone
	}
	product := LikelyProductPage(body)
	if !product {
		for _, s := range strongSignatures {
			if strings.Contains(lower, s.marker) {
				return true, s.block
			}
		}
		for _, s := range weakSignatures {
			if strings.Contains(lower, s.marker) {
				return true, s.block
			}
		}
	}

	if len(strings.TrimSpace(tagRe.ReplaceAllString(lower, " "))) == 0 {
		return true, BlockEmpty
	}
	if len(body) < 2000 && strings.Contains(lower, "<noscript") && strings.Contains(lower, "javascript") {
		return true, BlockJSShell
	}
	return false, BlockNone
}

func isCloudflare(h http.Header) bool {
	return h.Get("cf-ray") != "" || h.Get("cf-cache-status") != "" ||
		strings.EqualFold(h.Get("server"), "cloudflare")
}

// LikelyProductPage reports whether body carries enough structured rows to be
// a real specification page.
func LikelyProductPage(body []byte) bool {
	if len(body) < 200 {
		return false
	}
	rows := len(specRowRe.FindAllIndex(body, 8)) + len(mdTableRowRe.FindAllIndex(body, 8))
	return rows >= 4
}

// AntiBotError reports that a fetch was refused by anti-bot protection.
type AntiBotError struct {
	URL    string
	Engine string
	Block  BlockType
}

func (e *AntiBotError) Error() string {
	return fmt.Sprintf("%s: anti-bot protection (%s) at %s", e.Engine, e.Block, e.URL)
}

var antiBotMessages = []string{
	"anti-bot",
	"captcha",
	"cloudflare",
	"access denied",
	"forbidden",
	"status 403",
	"status 429",
	"too many requests",
	"bot detected",
	"verify you are human",
}

// IsAntiBot reports whether err stems from anti-bot protection, either as an
// *AntiBotError in the chain or by its message.
func IsAntiBot(err error) bool {
	if err == nil {
		return false
	}
	var ab *AntiBotError
	if errors.As(err, &ab) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, m := range antiBotMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
