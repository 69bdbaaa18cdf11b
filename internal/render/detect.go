// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"regexp"
	"strings"

	"github.com/jeranaias/emlinh-tui/internal/model"
)

// Phrase detection for replies that announce a video without a structured
// reference. Patterns run against the formatted body, first match wins.

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`🆔 <strong>Video ID:</strong> (\d+)`),
	regexp.MustCompile(`/videos/(\d+)`),
	regexp.MustCompile(`(?i)Video ID[:\s]+(\d+)`),
	regexp.MustCompile(`tại đây:\s*/videos/(\d+)`),
}

var videoTitlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`<strong>Chủ đề:</strong> ([^<]+)`),
	regexp.MustCompile(`(?i)chủ đề ([^!]+)`),
	regexp.MustCompile(`(?i)về ([^!]+)`),
}

// detectVideo finds an announced video in a formatted body.
func detectVideo(body string) *model.VideoRef {
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(body); m != nil {
			return &model.VideoRef{ID: model.ID(m[1]), Title: detectTitle(body)}
		}
	}
	return nil
}

func detectTitle(body string) string {
	for _, re := range videoTitlePatterns {
		if m := re.FindStringSubmatch(body); m != nil {
			if title := strings.TrimSpace(m[1]); title != "" {
				return title
			}
		}
	}
	return DefaultVideoTitle
}

// DetectVideo reports the video announced in raw text, if any.
func DetectVideo(text string) (model.VideoRef, bool) {
	ref := detectVideo(formatInline(text))
	if ref == nil {
		return model.VideoRef{}, false
	}
	return *ref, true
}

// HasVideoKeywords reports whether text could announce a video.
func HasVideoKeywords(text string) bool {
	return strings.Contains(text, "/videos/") ||
		strings.Contains(text, "Video ID") ||
		strings.Contains(strings.ToLower(text), "video") ||
		strings.Contains(text, "tại đây")
}
