package render

import (
	"fmt"
	"os"
	"strings"

	"shorts-factory/config"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// wrapCaption breaks text into lines of at most maxChars runes on word
// boundaries. A single word longer than maxChars gets its own line.
func wrapCaption(text string, maxChars int) []string {
	words := strings.Fields(text)
	if maxChars <= 0 {
		return []string{strings.Join(words, " ")}
	}

	var lines []string
	var line strings.Builder
	lineLen := 0
	for _, w := range words {
		wl := len([]rune(w))
		if lineLen > 0 && lineLen+1+wl > maxChars {
			lines = append(lines, line.String())
			line.Reset()
			lineLen = 0
		}
		if lineLen > 0 {
			line.WriteByte(' ')
			lineLen++
		}
		line.WriteString(w)
		lineLen += wl
	}
	if lineLen > 0 {
		lines = append(lines, line.String())
	}
	return lines
}

// writeCaptionFile stores the wrapped caption for drawtext's textfile option.
// The text is drawn as-is: captionKwArgs turns off drawtext expansion.
func writeCaptionFile(dir, text string, maxChars int) (string, error) {
	f, err := os.CreateTemp(dir, "caption_*.txt")
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := f.WriteString(strings.Join(wrapCaption(text, maxChars), "\n")); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write caption: %w", err)
	}
	return f.Name(), nil
}

// optionEscaper escapes a filter option value. ffmpeg-go adds the
// filtergraph level of escaping on top but leaves values untouched.
var optionEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, ":", `\:`, "=", `\=`)

// captionKwArgs styles the caption: centered on the frame for the whole clip
func captionKwArgs(rc config.RenderConfig, textFile string) ffmpeg.KwArgs {
	kw := ffmpeg.KwArgs{
		"textfile":     textFile,
		"expansion":    "none",
		"fontsize":     rc.FontSize,
		"fontcolor":    rc.FontColor,
		"borderw":      2,
		"bordercolor":  "black",
		"line_spacing": 8,
		"x":            "(w-text_w)/2",
		"y":            "(h-text_h)/2",
	}
	if rc.FontFile != "" {
		kw["fontfile"] = rc.FontFile
	} else if rc.Font != "" {
		kw["font"] = rc.Font
	}
	for k, v := range kw {
		if s, ok := v.(string); ok {
			kw[k] = optionEscaper.Replace(s)
		}
	}
	return kw
}
