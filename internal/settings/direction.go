package settings

import (
	"fmt"
	"unicode"
)

// TextDirection controls how question and answer text is laid out.
type TextDirection string

const (
	TextAuto TextDirection = "auto"
	TextLTR  TextDirection = "ltr"
	TextRTL  TextDirection = "rtl"
)

// ParseTextDirection validates a text direction setting.
func ParseTextDirection(s string) (TextDirection, error) {
	switch TextDirection(s) {
	case TextAuto, TextLTR, TextRTL:
		return TextDirection(s), nil
	}
	return "", fmt.Errorf("invalid text direction %q: want auto, ltr or rtl", s)
}

// isRTL covers the Hebrew and Arabic blocks, including Arabic
// presentation forms.
func isRTL(r rune) bool {
	switch {
	case r >= 0x0590 && r <= 0x05FF,
		r >= 0x0600 && r <= 0x06FF,
		r >= 0x0750 && r <= 0x077F,
		r >= 0x08A0 && r <= 0x08FF,
		r >= 0xFB50 && r <= 0xFDFF,
		r >= 0xFE70 && r <= 0xFEFF:
		return true
	}
	return false
}

// DetectTextDirection returns rtl when more than half of the non-space
// characters in text are right-to-left script, otherwise ltr.
func DetectTextDirection(text string) TextDirection {
	var total, rtl int
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if isRTL(r) {
			rtl++
		}
	}
	if total > 0 && rtl*2 > total {
		return TextRTL
	}
	return TextLTR
}

// ResolveTextDirection applies the setting to text: auto detects, anything
// else is returned as is.
func ResolveTextDirection(text string, setting TextDirection) TextDirection {
	if setting == TextAuto || setting == "" {
		return DetectTextDirection(text)
	}
	return setting
}
