// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/jeranaias/emlinh-tui/internal/app"
	"github.com/jeranaias/emlinh-tui/internal/model"
	"github.com/jeranaias/emlinh-tui/internal/video"
)

// ErrJobFailed is returned when the backend reports a failed video job.
var ErrJobFailed = errors.New("video job failed")

// jobResult is the --json payload of video create and video wait.
type jobResult struct {
	JobID     model.ID `json:"job_id"`
	SessionID string   `json:"session_id"`
	Topic     string   `json:"topic,omitempty"`
	Status    string   `json:"status"`
	VideoID   model.ID `json:"video_id,omitempty"`
	Error     string   `json:"error,omitempty"`
}

func newVideoCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "video",
		Short: "Create videos and follow their progress",
	}
	cmd.AddCommand(newVideoCreateCmd(rt), newVideoWaitCmd(rt))
	return cmd
}

// =============================================================================
// VIDEO CREATE
// =============================================================================

func newVideoCreateCmd(rt *runtime) *cobra.Command {
	var (
		req       video.CreateRequest
		sessionID string
		wait      bool
		timeout   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "create <topic>",
		Short: "Start a video job",
		Example: heredoc.Doc(`
			emlinh video create "Giới thiệu quán cà phê mới"
			emlinh video create --duration 30 --voice alloy --wait "Mẹo học tiếng Anh"
		`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Topic = strings.TrimSpace(strings.Join(args, " "))
			if req.Topic == "" {
				return &ValidationError{Field: "topic", Reason: "must not be empty", Example: `emlinh video create "Chủ đề"`}
			}
			if req.Duration < 0 {
				return &ValidationError{Field: "duration", Value: fmt.Sprint(req.Duration), Reason: "must be positive", Example: "--duration 15"}
			}
			return runVideoCreate(cmd.Context(), rt, req, sessionID, wait, timeout)
		},
	}
	f := cmd.Flags()
	f.IntVar(&req.Duration, "duration", 0, "length in seconds (default from config)")
	f.StringVar(&req.Composition, "composition", "", "render composition")
	f.StringVar(&req.Background, "background", "", "background scene")
	f.StringVar(&req.Voice, "voice", "", "narration voice")
	f.StringVarP(&sessionID, "session", "s", "", "attach the job to a stored conversation")
	f.BoolVarP(&wait, "wait", "w", false, "follow progress until the job finishes")
	f.DurationVar(&timeout, "timeout", 15*time.Minute, "give up waiting after this long")
	return cmd
}

func runVideoCreate(ctx context.Context, rt *runtime, req video.CreateRequest, sessionID string, wait bool, timeout time.Duration) error {
	a, err := rt.openApp(wait)
	if err != nil {
		return err
	}
	defer a.Close()

	a.Session.Init(sessionID)
	if wait {
		a.Start(ctx)
		awaitConnection(ctx, rt, a)
	}

	msg, ok := runSync(a.Video.CreateVideo(req)).(video.CreateResultMsg)
	if !ok {
		return errNothingSent
	}
	a.Video.HandleCreateResult(msg)
	if msg.Err != nil {
		return msg.Err
	}

	res := jobResult{
		JobID:     msg.Response.JobID,
		SessionID: a.Session.SessionID(),
		Topic:     req.Topic,
		Status:    "started",
	}
	if !wait {
		if rt.jsonOut {
			return rt.printJSON("video create", res)
		}
		fmt.Fprintln(rt.out, SuccessStyle.Render("✓ Đang tạo video: "+req.Topic))
		fmt.Fprintln(rt.out, RenderField("Job", res.JobID.String()))
		fmt.Fprintln(rt.out, RenderField("Session", res.SessionID))
		fmt.Fprintln(rt.errOut, DimStyle.Render(waitHint(res.JobID, res.SessionID)))
		return nil
	}
	return followJob(ctx, rt, a, res, timeout)
}

func waitHint(job model.ID, sessionID string) string {
	return fmt.Sprintf("theo dõi: emlinh video wait %s --session %s", job, sessionID)
}

// =============================================================================
// VIDEO WAIT
// =============================================================================

func newVideoWaitCmd(rt *runtime) *cobra.Command {
	var (
		sessionID string
		timeout   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "wait <job_id>",
		Short: "Follow the progress of a running job",
		Long: heredoc.Doc(`
			Join the session room of a job and print its progress until it
			completes or fails. Progress is only published to the room of the
			session the job was created in.
		`),
		Example: "emlinh video wait 7f3c9a --session session_1718000000000_abc123xyz",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(sessionID) == "" {
				return ErrMissingArgument("session", "--session session_...")
			}
			a, err := rt.openApp(true)
			if err != nil {
				return err
			}
			defer a.Close()

			a.Session.Init(sessionID)
			job := model.ID(strings.TrimSpace(args[0]))
			a.Video.Tracker().Start(job)
			a.Start(cmd.Context())
			return followJob(cmd.Context(), rt, a, jobResult{JobID: job, SessionID: a.Session.SessionID()}, timeout)
		},
	}
	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "session the job belongs to (required)")
	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Minute, "give up after this long")
	return cmd
}

// awaitConnection blocks until the socket is up or the connect timeout
// passes. Jobs created before the room is joined could lose early steps.
func awaitConnection(ctx context.Context, rt *runtime, a *app.App) {
	timer := time.NewTimer(rt.cfg.ConnectTimeout())
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			fmt.Fprintln(rt.errOut, WarningStyle.Render("realtime chưa kết nối, tiếp tục tạo video"))
			return
		case msg := <-a.Updates():
			if c, ok := msg.(app.ConnectionMsg); ok && c.Connected {
				return
			}
		}
	}
}

// followJob prints progress for the tracked job until a terminal step.
func followJob(ctx context.Context, rt *runtime, a *app.App, res jobResult, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var last string
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("waiting for job %s: %w", res.JobID, context.DeadlineExceeded)
			}
			return ctx.Err()

		case msg := <-a.Updates():
			switch m := msg.(type) {
			case app.ConnectionMsg:
				if m.Err != nil && !rt.jsonOut {
					fmt.Fprintln(rt.errOut, WarningStyle.Render("realtime: "+m.Err.Error()))
				}

			case video.ProgressMsg:
				ev := m.Event
				if !a.Video.HandleProgress(ev) {
					continue
				}
				if text := video.FormatProgress(ev); text != last && !rt.jsonOut {
					fmt.Fprintln(rt.out, DimStyle.Render("… ")+text)
					last = text
				}
				if ev.IsTerminal() {
					return finishJob(rt, a, res, ev)
				}
			}
		}
	}
}

func finishJob(rt *runtime, a *app.App, res jobResult, ev model.ProgressEvent) error {
	res.Status = ev.Step
	res.VideoID = ev.Data.VideoID
	if res.Topic == "" {
		res.Topic = ev.Data.Topic
	}
	var err error
	if ev.Step == model.StepFailed {
		res.Error = ev.Message
		if res.Error == "" {
			res.Error = ev.Error
		}
		err = fmt.Errorf("%w: %s", ErrJobFailed, res.Error)
	}

	if rt.jsonOut {
		if perr := rt.printJSON("video wait", res); perr != nil {
			return perr
		}
		return err
	}
	if err != nil {
		return err
	}
	if reply := a.Transcript.LastAIMessage(); reply != nil && reply.Video != nil {
		term, terr := rt.terminal(false)
		if terr == nil {
			printMessage(rt.out, term, reply, false)
			return nil
		}
	}
	fmt.Fprintln(rt.out, SuccessStyle.Render("✓ "+video.ToastCreated))
	return nil
}
