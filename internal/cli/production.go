// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/jeranaias/emlinh-tui/internal/api"
	"github.com/jeranaias/emlinh-tui/internal/library"
	"github.com/jeranaias/emlinh-tui/internal/production"
)

// ttsRecent is how many speech jobs tts jobs shows by default.
const ttsRecent = 3

// newClient builds a backend client from the loaded configuration.
func (r *runtime) newClient() (*api.Client, error) {
	if err := r.setupLogging(true); err != nil {
		return nil, err
	}
	return api.NewClientWithConfig(&api.ClientConfig{
		BaseURL:           r.cfg.Server.BaseURL,
		Timeout:           r.cfg.Timeout(),
		RequestsPerSecond: r.cfg.Server.RequestsPerSecond,
	}), nil
}

// requestCtx bounds one JSON request by the configured timeout.
func (r *runtime) requestCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, r.cfg.Timeout())
}

// pollFlags are shared by every command that can follow a job.
type pollFlags struct {
	wait     bool
	interval time.Duration
	timeout  time.Duration
}

func (p *pollFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&p.wait, "wait", "w", false, "poll until the job finishes")
	cmd.Flags().DurationVar(&p.interval, "interval", production.DefaultInterval, "time between status checks")
	cmd.Flags().DurationVar(&p.timeout, "timeout", 15*time.Minute, "give up waiting after this long")
}

func (p *pollFlags) context(parent context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, p.timeout)
}

// progressPrinter prints each new progress line once.
func progressPrinter(rt *runtime) func(string) {
	var last string
	return func(line string) {
		if rt.jsonOut || line == last {
			return
		}
		last = line
		fmt.Fprintln(rt.out, DimStyle.Render("… ")+line)
	}
}

// =============================================================================
// RENDER
// =============================================================================

func newRenderCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a composition with chosen props",
		Long: heredoc.Doc(`
			Manual production tools: list the compositions and narration files
			the backend knows, start a render and follow it until the output
			file is written.
		`),
	}
	cmd.AddCommand(
		newRenderCompositionsCmd(rt),
		newRenderAudioCmd(rt),
		newRenderStartCmd(rt),
		newRenderStatusCmd(rt),
		newRenderJobsCmd(rt),
	)
	return cmd
}

func newRenderCompositionsCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "compositions",
		Short: "List render compositions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := rt.newClient()
			if err != nil {
				return err
			}
			ctx, cancel := rt.requestCtx(cmd.Context())
			defer cancel()
			comps, err := client.Compositions(ctx)
			if err != nil {
				return err
			}
			if rt.jsonOut {
				return rt.printJSON("render compositions", comps)
			}
			if len(comps) == 0 {
				fmt.Fprintln(rt.out, DimStyle.Render("Không có composition nào"))
				return nil
			}
			for _, c := range comps {
				fmt.Fprintf(rt.out, "%s  %s\n", ValueStyle.Render(c.ID), DimStyle.Render(c.Description))
			}
			return nil
		},
	}
}

func newRenderAudioCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "audio",
		Short: "List narration files a render can use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := rt.newClient()
			if err != nil {
				return err
			}
			ctx, cancel := rt.requestCtx(cmd.Context())
			defer cancel()
			files, err := client.AudioFiles(ctx)
			if err != nil {
				return err
			}
			if rt.jsonOut {
				return rt.printJSON("render audio", files)
			}
			for _, f := range files {
				fmt.Fprintln(rt.out, production.AudioLabel(f))
			}
			return nil
		},
	}
}

func newRenderStartCmd(rt *runtime) *cobra.Command {
	var (
		duration          float64
		audio, background string
		output            string
		poll              pollFlags
	)
	cmd := &cobra.Command{
		Use:   "start <composition>",
		Short: "Start a render",
		Example: heredoc.Doc(`
			emlinh render start Scene-Landscape
			emlinh render start Scene-Portrait --duration 30 --audio tts_speech_1.wav --wait
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := rt.newClient()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("duration") {
				duration = float64(rt.cfg.Video.Duration)
			}
			if !cmd.Flags().Changed("background") {
				background = rt.cfg.Video.Background
			}
			if duration <= 0 {
				return &ValidationError{Field: "duration", Value: fmt.Sprint(duration), Reason: "must be positive", Example: "--duration 15"}
			}
			req := production.NewRenderRequest(args[0], duration, audio, background, output)
			if err := production.ValidateRender(req); err != nil {
				return &ValidationError{Field: "composition", Reason: err.Error(), Example: "emlinh render compositions"}
			}

			ctx, cancel := rt.requestCtx(cmd.Context())
			started, err := client.StartRender(ctx, req)
			cancel()
			if err != nil {
				return err
			}
			if !poll.wait {
				if rt.jsonOut {
					return rt.printJSON("render start", started)
				}
				fmt.Fprintln(rt.out, SuccessStyle.Render("✓ "+startedText(started.Message, "Bắt đầu render video thành công")))
				fmt.Fprintln(rt.out, RenderField("Job", started.JobID))
				fmt.Fprintln(rt.errOut, DimStyle.Render("theo dõi: emlinh render status --wait "+started.JobID))
				return nil
			}
			return followRender(cmd.Context(), rt, client, started.JobID, poll)
		},
	}
	f := cmd.Flags()
	f.Float64Var(&duration, "duration", 0, "length in seconds (default from config)")
	f.StringVar(&audio, "audio", "", "narration file (default: no audio)")
	f.StringVar(&background, "background", "", "background scene (default from config)")
	f.StringVarP(&output, "output", "o", "", "output file name")
	poll.register(cmd)
	return cmd
}

func newRenderStatusCmd(rt *runtime) *cobra.Command {
	var poll pollFlags
	cmd := &cobra.Command{
		Use:   "status <job_id>",
		Short: "Show or follow a render job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := rt.newClient()
			if err != nil {
				return err
			}
			id := strings.TrimSpace(args[0])
			if poll.wait {
				return followRender(cmd.Context(), rt, client, id, poll)
			}
			ctx, cancel := rt.requestCtx(cmd.Context())
			defer cancel()
			job, err := client.RenderStatus(ctx, id)
			if err != nil {
				return err
			}
			if rt.jsonOut {
				return rt.printJSON("render status", job)
			}
			printRenderJob(rt.out, *job)
			return nil
		},
	}
	poll.register(cmd)
	return cmd
}

func followRender(parent context.Context, rt *runtime, client *api.Client, id string, poll pollFlags) error {
	ctx, cancel := poll.context(parent)
	defer cancel()
	show := progressPrinter(rt)
	job, err := production.Poller[api.RenderJob]{
		Fetch: func(ctx context.Context) (*api.RenderJob, error) {
			rctx, rcancel := rt.requestCtx(ctx)
			defer rcancel()
			return client.RenderStatus(rctx, id)
		},
		OnUpdate: func(j api.RenderJob) { show(production.FormatRender(j)) },
		Interval: poll.interval,
		Logger:   rt.logger,
	}.Run(ctx)
	if err != nil {
		return err
	}

	var failed error
	if job.Status == production.StatusFailed {
		failed = fmt.Errorf("%w: %s", ErrJobFailed, production.FailureText(*job))
	}
	if rt.jsonOut {
		if perr := rt.printJSON("render status", job); perr != nil {
			return perr
		}
		return failed
	}
	if failed != nil {
		return failed
	}
	fmt.Fprintln(rt.out, SuccessStyle.Render("✓ "+production.ToastRenderDone))
	fmt.Fprintln(rt.out, RenderField("Tệp", job.OutputPath))
	return nil
}

func newRenderJobsCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "List render jobs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := rt.newClient()
			if err != nil {
				return err
			}
			ctx, cancel := rt.requestCtx(cmd.Context())
			defer cancel()
			jobs, err := client.RenderJobs(ctx)
			if err != nil {
				return err
			}
			if rt.jsonOut {
				return rt.printJSON("render jobs", jobs)
			}
			if len(jobs) == 0 {
				fmt.Fprintln(rt.out, DimStyle.Render("Chưa có render job nào"))
				return nil
			}
			for i, j := range jobs {
				if i > 0 {
					fmt.Fprintln(rt.out)
				}
				printRenderJob(rt.out, j)
			}
			return nil
		},
	}
}

func printRenderJob(w io.Writer, j api.RenderJob) {
	fmt.Fprintf(w, "%s  %s\n", TitleStyle.Render(j.CompositionID), RenderVideoStatus(jobColor(j.Status), production.FormatRender(j)))
	fmt.Fprintln(w, RenderField("Job", j.ID))
	if j.OutputPath != "" {
		fmt.Fprintln(w, RenderField("Tệp", j.OutputPath))
	}
	fmt.Fprintln(w, RenderField("Bắt đầu", library.DateText(j.StartTime)))
	if !j.EndTime.IsZero() {
		fmt.Fprintln(w, RenderField("Kết thúc", library.DateText(j.EndTime)))
	}
}

// jobColor maps job statuses onto the library status palette.
func jobColor(status string) string {
	switch status {
	case production.StatusCompleted, production.StatusFailed:
		return status
	}
	return "rendering"
}

func startedText(msg, fallback string) string {
	if strings.TrimSpace(msg) == "" {
		return fallback
	}
	return msg
}

// =============================================================================
// TTS
// =============================================================================

func newTTSCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tts",
		Short: "Generate narration audio from text",
	}
	cmd.AddCommand(
		newTTSGenerateCmd(rt),
		newTTSStatusCmd(rt),
		newTTSJobsCmd(rt),
		newTTSVoicesCmd(rt),
	)
	return cmd
}

func newTTSGenerateCmd(rt *runtime) *cobra.Command {
	var (
		filename string
		poll     pollFlags
	)
	cmd := &cobra.Command{
		Use:   "generate <text>",
		Short: "Start a speech generation",
		Example: heredoc.Doc(`
			emlinh tts generate "Xin chào, hôm nay chúng ta nói về cà phê" --file intro --wait
			cat script.txt | emlinh tts generate -
		`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if text == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				text = string(data)
			}
			text = strings.TrimSpace(text)
			if err := production.ValidateTTS(text); err != nil {
				return &ValidationError{Field: "text", Reason: err.Error(), Example: `emlinh tts generate "Xin chào"`}
			}
			client, err := rt.newClient()
			if err != nil {
				return err
			}

			ctx, cancel := rt.requestCtx(cmd.Context())
			started, err := client.StartTTS(ctx, api.TTSRequest{Text: text, Filename: strings.TrimSpace(filename)})
			cancel()
			if err != nil {
				return err
			}
			if !poll.wait {
				if rt.jsonOut {
					return rt.printJSON("tts generate", started)
				}
				fmt.Fprintln(rt.out, SuccessStyle.Render("✓ "+startedText(started.Message, "Bắt đầu tạo speech thành công")))
				fmt.Fprintln(rt.out, RenderField("Job", started.JobID))
				fmt.Fprintln(rt.errOut, DimStyle.Render("theo dõi: emlinh tts status --wait "+started.JobID))
				return nil
			}
			return followTTS(cmd.Context(), rt, client, started.JobID, poll)
		},
	}
	cmd.Flags().StringVarP(&filename, "file", "f", "", "output file name without extension")
	poll.register(cmd)
	return cmd
}

func newTTSStatusCmd(rt *runtime) *cobra.Command {
	var poll pollFlags
	cmd := &cobra.Command{
		Use:   "status <job_id>",
		Short: "Show or follow a speech job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := rt.newClient()
			if err != nil {
				return err
			}
			id := strings.TrimSpace(args[0])
			if poll.wait {
				return followTTS(cmd.Context(), rt, client, id, poll)
			}
			ctx, cancel := rt.requestCtx(cmd.Context())
			defer cancel()
			job, err := client.TTSStatus(ctx, id)
			if err != nil {
				return err
			}
			if rt.jsonOut {
				return rt.printJSON("tts status", job)
			}
			printTTSJob(rt.out, *job)
			return nil
		},
	}
	poll.register(cmd)
	return cmd
}

func followTTS(parent context.Context, rt *runtime, client *api.Client, id string, poll pollFlags) error {
	ctx, cancel := poll.context(parent)
	defer cancel()
	show := progressPrinter(rt)
	job, err := production.Poller[api.TTSJob]{
		Fetch: func(ctx context.Context) (*api.TTSJob, error) {
			rctx, rcancel := rt.requestCtx(ctx)
			defer rcancel()
			return client.TTSStatus(rctx, id)
		},
		OnUpdate: func(j api.TTSJob) { show(production.FormatTTS(j)) },
		Interval: poll.interval,
		Logger:   rt.logger,
	}.Run(ctx)
	if err != nil {
		return err
	}

	var failed error
	if job.Status == production.StatusFailed {
		failed = fmt.Errorf("%w: %s", ErrJobFailed, production.FailureText(*job))
	}
	if rt.jsonOut {
		if perr := rt.printJSON("tts status", job); perr != nil {
			return perr
		}
		return failed
	}
	if failed != nil {
		return failed
	}
	fmt.Fprintln(rt.out, SuccessStyle.Render("✓ "+production.ToastTTSDone))
	if job.WavPath != "" {
		fmt.Fprintln(rt.out, RenderField("Tệp", job.WavPath))
	}
	fmt.Fprintln(rt.errOut, DimStyle.Render("dùng cho render: emlinh render audio"))
	return nil
}

func newTTSJobsCmd(rt *runtime) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List recent speech jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return &ValidationError{Field: "limit", Value: fmt.Sprint(limit), Reason: "must not be negative", Example: "--limit 10"}
			}
			client, err := rt.newClient()
			if err != nil {
				return err
			}
			ctx, cancel := rt.requestCtx(cmd.Context())
			defer cancel()
			jobs, err := client.TTSJobs(ctx)
			if err != nil {
				return err
			}
			if limit > 0 && len(jobs) > limit {
				jobs = jobs[:limit]
			}
			if rt.jsonOut {
				return rt.printJSON("tts jobs", jobs)
			}
			if len(jobs) == 0 {
				fmt.Fprintln(rt.out, DimStyle.Render("Chưa có TTS job nào"))
				return nil
			}
			for i, j := range jobs {
				if i > 0 {
					fmt.Fprintln(rt.out)
				}
				printTTSJob(rt.out, j)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", ttsRecent, "number of jobs to show (0 for all)")
	return cmd
}

func printTTSJob(w io.Writer, j api.TTSJob) {
	name := j.Filename
	if name == "" {
		name = "TTS Job"
	}
	fmt.Fprintf(w, "%s  %s\n", TitleStyle.Render(name), RenderVideoStatus(jobColor(j.Status), production.FormatTTS(j)))
	fmt.Fprintln(w, RenderField("Job", j.ID))
	if preview := production.TTSPreview(j.Text); preview != "" {
		fmt.Fprintln(w, DimStyle.Render(preview))
	}
	fmt.Fprintln(w, RenderField("Bắt đầu", library.DateText(j.StartTime)))
}

func newTTSVoicesCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List narration voices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := rt.newClient()
			if err != nil {
				return err
			}
			ctx, cancel := rt.requestCtx(cmd.Context())
			defer cancel()
			voices, err := client.Voices(ctx)
			if err != nil {
				return err
			}
			if rt.jsonOut {
				return rt.printJSON("tts voices", voices)
			}
			for _, v := range voices {
				fmt.Fprintln(rt.out, v)
			}
			return nil
		},
	}
}
