// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sort"

	"github.com/jeranaias/emlinh-tui/internal/model"
)

// =============================================================================
// RENDER TYPES
// =============================================================================

// Composition is a render template known to the backend.
type Composition struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// RenderProps are the composition inputs of a render.
type RenderProps struct {
	DurationInSeconds float64 `json:"durationInSeconds"`
	AudioFileName     string  `json:"audioFileName"`
	BackgroundScene   string  `json:"backgroundScene"`
}

// RenderRequest is the body of POST /api/video/render.
type RenderRequest struct {
	CompositionID string      `json:"composition_id"`
	Props         RenderProps `json:"props"`
	OutputName    string      `json:"output_name,omitempty"`
}

// RenderJob is the state of one render. ID is filled from the job map key.
type RenderJob struct {
	ID            string          `json:"id,omitempty"`
	Status        string          `json:"status"`
	Progress      int             `json:"progress"`
	CompositionID string          `json:"composition_id"`
	OutputPath    string          `json:"output_path,omitempty"`
	Error         string          `json:"error,omitempty"`
	StartTime     model.Timestamp `json:"start_time"`
	EndTime       model.Timestamp `json:"end_time"`
}

// =============================================================================
// SPEECH TYPES
// =============================================================================

// TTSRequest is the body of POST /api/tts/generate.
type TTSRequest struct {
	Text     string `json:"text"`
	Filename string `json:"filename"`
}

// TTSJob is the state of one speech generation.
type TTSJob struct {
	ID        string          `json:"id,omitempty"`
	Status    string          `json:"status"`
	Progress  int             `json:"progress"`
	Text      string          `json:"text,omitempty"`
	Filename  string          `json:"filename,omitempty"`
	Error     string          `json:"error,omitempty"`
	WavPath   string          `json:"wav_path,omitempty"`
	JSONPath  string          `json:"json_path,omitempty"`
	StartTime model.Timestamp `json:"start_time"`
	EndTime   model.Timestamp `json:"end_time"`
}

// JobStarted is the reply to a render or speech request.
type JobStarted struct {
	JobID   string `json:"job_id"`
	Message string `json:"message,omitempty"`
}

type compositionsResponse struct {
	Compositions []Composition `json:"compositions"`
}

type audioFilesResponse struct {
	AudioFiles []string `json:"audio_files"`
}

type renderJobsResponse struct {
	Jobs map[string]RenderJob `json:"jobs"`
}

type renderStatusResponse struct {
	Status *RenderJob `json:"status"`
}

type ttsJobsResponse struct {
	Jobs map[string]TTSJob `json:"jobs"`
}

type ttsStatusResponse struct {
	Status *TTSJob `json:"status"`
}

type voicesResponse struct {
	Voices []string `json:"voices"`
}

// =============================================================================
// RENDER
// =============================================================================

// Compositions lists the render templates.
func (c *Client) Compositions(ctx context.Context) ([]Composition, error) {
	var out compositionsResponse
	if err := c.do(ctx, http.MethodGet, "/api/video/compositions", nil, &out); err != nil {
		return nil, err
	}
	return out.Compositions, nil
}

// AudioFiles lists the narration files a render can use. "None" means
// no audio.
func (c *Client) AudioFiles(ctx context.Context) ([]string, error) {
	var out audioFilesResponse
	if err := c.do(ctx, http.MethodGet, "/api/video/audio-files", nil, &out); err != nil {
		return nil, err
	}
	return out.AudioFiles, nil
}

// StartRender queues a render.
func (c *Client) StartRender(ctx context.Context, req RenderRequest) (*JobStarted, error) {
	return c.startJob(ctx, "/api/video/render", req)
}

// RenderStatus returns one render job.
func (c *Client) RenderStatus(ctx context.Context, jobID string) (*RenderJob, error) {
	var out renderStatusResponse
	if err := c.do(ctx, http.MethodGet, "/api/video/status/"+url.PathEscape(jobID), nil, &out); err != nil {
		return nil, unknownJob(err)
	}
	if out.Status == nil {
		return nil, ErrNotFound
	}
	out.Status.ID = jobID
	return out.Status, nil
}

// RenderJobs returns every render job, newest first.
func (c *Client) RenderJobs(ctx context.Context) ([]RenderJob, error) {
	var out renderJobsResponse
	if err := c.do(ctx, http.MethodGet, "/api/video/jobs", nil, &out); err != nil {
		return nil, err
	}
	jobs := make([]RenderJob, 0, len(out.Jobs))
	for id, job := range out.Jobs {
		job.ID = id
		jobs = append(jobs, job)
	}
	sort.SliceStable(jobs, func(i, j int) bool {
		return newerFirst(jobs[i].StartTime, jobs[j].StartTime, jobs[i].ID, jobs[j].ID)
	})
	return jobs, nil
}

// =============================================================================
// SPEECH
// =============================================================================

// StartTTS queues a speech generation.
func (c *Client) StartTTS(ctx context.Context, req TTSRequest) (*JobStarted, error) {
	return c.startJob(ctx, "/api/tts/generate", req)
}

// TTSStatus returns one speech job.
func (c *Client) TTSStatus(ctx context.Context, jobID string) (*TTSJob, error) {
	var out ttsStatusResponse
	if err := c.do(ctx, http.MethodGet, "/api/tts/status/"+url.PathEscape(jobID), nil, &out); err != nil {
		return nil, unknownJob(err)
	}
	if out.Status == nil {
		return nil, ErrNotFound
	}
	out.Status.ID = jobID
	return out.Status, nil
}

// TTSJobs returns every speech job, newest first.
func (c *Client) TTSJobs(ctx context.Context) ([]TTSJob, error) {
	var out ttsJobsResponse
	if err := c.do(ctx, http.MethodGet, "/api/tts/jobs", nil, &out); err != nil {
		return nil, err
	}
	jobs := make([]TTSJob, 0, len(out.Jobs))
	for id, job := range out.Jobs {
		job.ID = id
		jobs = append(jobs, job)
	}
	sort.SliceStable(jobs, func(i, j int) bool {
		return newerFirst(jobs[i].StartTime, jobs[j].StartTime, jobs[i].ID, jobs[j].ID)
	})
	return jobs, nil
}

// Voices lists the narration voices.
func (c *Client) Voices(ctx context.Context) ([]string, error) {
	var out voicesResponse
	if err := c.do(ctx, http.MethodGet, "/api/tts/voices", nil, &out); err != nil {
		return nil, err
	}
	return out.Voices, nil
}

func (c *Client) startJob(ctx context.Context, path string, req interface{}) (*JobStarted, error) {
	var out JobStarted
	if err := c.do(ctx, http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	if out.JobID == "" {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "response has no job_id"}
	}
	return &out, nil
}

// unknownJob turns the 404 a status route sends for a forgotten job into
// a not-found error, keeping the backend message.
func unknownJob(err error) error {
	var ce *ClientError
	if errors.As(err, &ce) && ce.StatusCode == http.StatusNotFound && ce.Type == ErrTypeBackend {
		return &ClientError{Type: ErrTypeNotFound, Message: ce.Message, StatusCode: ce.StatusCode}
	}
	return err
}

// newerFirst orders by start time descending, then by id for equal times.
func newerFirst(a, b model.Timestamp, idA, idB string) bool {
	if !a.Equal(b.Time) {
		return a.After(b.Time)
	}
	return idA > idB
}
