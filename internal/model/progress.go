// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// Steps emitted by the video production pipeline, in pipeline order.
const (
	StepRequestReceived  = "request_received"
	StepInitializing     = "initializing"
	StepGeneratingScript = "generating_script"
	StepScriptCompleted  = "script_completed"
	StepCreatingRecord   = "creating_record"
	StepStartingTTS      = "starting_tts"
	StepStartingRender   = "starting_render"
	StepFinalizing       = "finalizing"
	StepCompleted        = "completed"
	StepFailed           = "failed"
)

// ProgressData carries optional step details.
type ProgressData struct {
	ScriptPreview string `json:"script_preview,omitempty"`
	AudioFile     string `json:"audio_file,omitempty"`
	VideoID       ID     `json:"video_id,omitempty"`
	Topic         string `json:"topic,omitempty"`
}

// ProgressEvent is a video_progress notification. It is applied to the
// view and then dropped.
type ProgressEvent struct {
	JobID    ID           `json:"job_id"`
	Step     string       `json:"step"`
	Message  string       `json:"message"`
	Progress float64      `json:"progress"`
	Data     ProgressData `json:"data"`
	Error    string       `json:"error,omitempty"`
}

// IsTerminal reports whether the event ends its job.
func (e ProgressEvent) IsTerminal() bool {
	return e.Step == StepCompleted || e.Step == StepFailed
}
