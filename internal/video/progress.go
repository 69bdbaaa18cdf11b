// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package video

import (
	"strconv"
	"strings"

	"github.com/jeranaias/emlinh-tui/internal/model"
	"github.com/jeranaias/emlinh-tui/internal/util"
)

// stepText is the status line for each pipeline step.
var stepText = map[string]string{
	model.StepRequestReceived:  "📨 Đã nhận yêu cầu tạo video...",
	model.StepInitializing:     "🚀 Đang khởi tạo...",
	model.StepGeneratingScript: "📝 Đang tạo kịch bản...",
	model.StepScriptCompleted:  "✅ Đã tạo xong kịch bản",
	model.StepCreatingRecord:   "💾 Đang lưu thông tin video...",
	model.StepStartingTTS:      "🎤 Đang tạo giọng nói...",
	model.StepStartingRender:   "🎬 Đang render video...",
	model.StepFinalizing:       "🔧 Đang hoàn thiện...",
	model.StepCompleted:        "🎉 Hoàn thành!",
	model.StepFailed:           "❌ Tạo video thất bại",
}

// DefaultStepText is shown for unknown steps without a message.
const DefaultStepText = "⏳ Đang xử lý..."

// scriptPreviewLen is the number of runes of the script shown.
const scriptPreviewLen = 100

// StepText returns the status line for a step.
func StepText(step, message string) string {
	if text, ok := stepText[step]; ok {
		return text
	}
	if message != "" {
		return message
	}
	return DefaultStepText
}

// FormatProgress builds the typing-indicator text for an event.
func FormatProgress(ev model.ProgressEvent) string {
	var b strings.Builder
	b.WriteString(StepText(ev.Step, ev.Message))

	if ev.Progress > 0 {
		b.WriteString(" (")
		b.WriteString(strconv.FormatFloat(ev.Progress, 'f', -1, 64))
		b.WriteString("%)")
	}
	if preview := strings.TrimSpace(ev.Data.ScriptPreview); preview != "" {
		b.WriteString("\n\n📄 Nội dung: ")
		b.WriteString(util.TruncateText(preview, scriptPreviewLen))
	}
	if ev.Data.AudioFile != "" {
		b.WriteString("\n🎵 File âm thanh: ")
		b.WriteString(ev.Data.AudioFile)
	}
	return b.String()
}

// CompletedMessage is the chat message for a finished video.
func CompletedMessage(videoID model.ID, topic string) string {
	var b strings.Builder
	b.WriteString("🎬 Video đã được tạo thành công!\n")
	if topic != "" {
		b.WriteString("**Chủ đề:** " + topic + "\n")
	}
	b.WriteString("🆔 Video ID: " + videoID.String() + "\n")
	b.WriteString("🔗 Xem tại đây: /videos/" + videoID.String())
	return b.String()
}
