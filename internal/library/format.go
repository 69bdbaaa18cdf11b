// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package library

import (
	"math"
	"strconv"

	"github.com/jeranaias/emlinh-tui/internal/model"
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize renders bytes with 1024 steps and at most two decimals.
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(sizeUnits) {
		i = len(sizeUnits) - 1
	}
	v := float64(bytes) / math.Pow(1024, float64(i))
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[i]
}

// FileSizeText is FormatFileSize, or "N/A" for unknown sizes.
func FileSizeText(v model.Video) string {
	if v.FileSize <= 0 {
		return "N/A"
	}
	return FormatFileSize(v.FileSize)
}

// StatusText is the Vietnamese label of a video status.
func StatusText(status string) string {
	switch status {
	case model.VideoRendering:
		return "Đang render"
	case model.VideoCompleted:
		return "Hoàn thành"
	case model.VideoFailed:
		return "Thất bại"
	default:
		return status
	}
}

// DateText formats a creation date as dd/mm/yyyy.
func DateText(t model.Timestamp) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("02/01/2006")
}
