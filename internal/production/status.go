// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package production

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jeranaias/emlinh-tui/internal/api"
	"github.com/jeranaias/emlinh-tui/internal/util"
)

// Job statuses shared by render and speech jobs.
const (
	StatusStarting  = "starting"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Render statuses.
const StatusRendering = "rendering"

// Speech statuses.
const (
	StatusGeneratingSpeech  = "generating_speech"
	StatusConvertingWAV     = "converting_to_wav"
	StatusConvertingOGG     = "converting_to_ogg"
	StatusGeneratingLipSync = "generating_lip_sync"
)

// MaxTTSChars is the longest text the speech service accepts.
const MaxTTSChars = 4000

// NoAudio is the audio file name for a silent render.
const NoAudio = "None"

// Toast texts.
const (
	ToastRenderDone = "Render hoàn thành!"
	ToastTTSDone    = "TTS hoàn thành thành công!"
	UnknownStatus   = "Không xác định"
	UnknownError    = "Unknown error"
)

var (
	ErrNoComposition = errors.New("Vui lòng chọn composition")
	ErrEmptyText     = errors.New("Vui lòng nhập text để chuyển đổi")
	ErrTextTooLong   = fmt.Errorf("Text quá dài (tối đa %d ký tự)", MaxTTSChars)
)

var renderStatusText = map[string]string{
	StatusStarting:  "Đang khởi động",
	StatusRendering: "Đang render",
	StatusCompleted: "Hoàn thành",
	StatusFailed:    "Thất bại",
}

var ttsStatusText = map[string]string{
	StatusStarting:          "Đang khởi động",
	StatusGeneratingSpeech:  "Đang tạo speech",
	StatusConvertingWAV:     "Chuyển đổi WAV",
	StatusConvertingOGG:     "Chuyển đổi OGG",
	StatusGeneratingLipSync: "Tạo lip-sync",
	StatusCompleted:         "Hoàn thành",
	StatusFailed:            "Thất bại",
}

// RenderStatusText is the label of a render status.
func RenderStatusText(status string) string {
	if t, ok := renderStatusText[status]; ok {
		return t
	}
	return UnknownStatus
}

// TTSStatusText is the label of a speech status.
func TTSStatusText(status string) string {
	if t, ok := ttsStatusText[status]; ok {
		return t
	}
	return UnknownStatus
}

// IsTerminal reports whether a job with status will not change again.
func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusFailed
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidateRender checks a render request before it is sent.
func ValidateRender(req api.RenderRequest) error {
	if strings.TrimSpace(req.CompositionID) == "" {
		return ErrNoComposition
	}
	return nil
}

// ValidateTTS checks the text of a speech request. The limit counts
// characters, not bytes.
func ValidateTTS(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyText
	}
	if utf8.RuneCountInString(text) > MaxTTSChars {
		return ErrTextTooLong
	}
	return nil
}

// NewRenderRequest fills the defaults a render form starts with.
func NewRenderRequest(composition string, duration float64, audio, background, output string) api.RenderRequest {
	if strings.TrimSpace(audio) == "" {
		audio = NoAudio
	}
	return api.RenderRequest{
		CompositionID: strings.TrimSpace(composition),
		Props: api.RenderProps{
			DurationInSeconds: duration,
			AudioFileName:     audio,
			BackgroundScene:   background,
		},
		OutputName: strings.TrimSpace(output),
	}
}

// =============================================================================
// FORMATTING
// =============================================================================

// ttsPreviewLen is the number of runes of speech text shown in lists.
const ttsPreviewLen = 50

// FormatRender is the one-line progress of a render job.
func FormatRender(job api.RenderJob) string {
	return formatLine(RenderStatusText(job.Status), job.Status, job.Progress, job.Error)
}

// FormatTTS is the one-line progress of a speech job.
func FormatTTS(job api.TTSJob) string {
	return formatLine(TTSStatusText(job.Status), job.Status, job.Progress, job.Error)
}

func formatLine(label, status string, progress int, errText string) string {
	switch status {
	case StatusCompleted:
		return label
	case StatusFailed:
		if errText == "" {
			errText = UnknownError
		}
		return label + ": " + errText
	}
	return fmt.Sprintf("%s · %d%%", label, progress)
}

// TTSPreview shortens speech text for job lists.
func TTSPreview(text string) string {
	return util.TruncateText(strings.TrimSpace(text), ttsPreviewLen)
}

// AudioLabel is the display name of an audio file entry.
func AudioLabel(name string) string {
	if name == NoAudio {
		return "Không có audio"
	}
	return name
}
