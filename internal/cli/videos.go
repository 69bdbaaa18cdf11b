// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/jeranaias/emlinh-tui/internal/api"
	"github.com/jeranaias/emlinh-tui/internal/app"
	"github.com/jeranaias/emlinh-tui/internal/library"
	"github.com/jeranaias/emlinh-tui/internal/model"
	"github.com/jeranaias/emlinh-tui/internal/util"
)

// videoList is the --json payload of videos list.
type videoList struct {
	Videos     []model.Video    `json:"videos"`
	Pagination model.Pagination `json:"pagination"`
}

func newVideosCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "videos",
		Aliases: []string{"library"},
		Short:   "Browse the video library",
	}
	cmd.AddCommand(
		newVideosListCmd(rt),
		newVideosShowCmd(rt),
		newVideosDeleteCmd(rt),
		newVideosDownloadCmd(rt),
	)
	return cmd
}

// =============================================================================
// LIST
// =============================================================================

func newVideosListCmd(rt *runtime) *cobra.Command {
	var (
		page, perPage  int
		status, search string
		order          string
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List one page of videos",
		Example: heredoc.Doc(`
			emlinh videos list
			emlinh videos list --status completed --sort title
			emlinh videos list --search "cà phê" --page 2
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validStatus(status) {
				return &ValidationError{Field: "status", Value: status, Reason: "unknown status", Example: "--status completed"}
			}
			a, err := rt.openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()
			if perPage <= 0 {
				perPage = rt.cfg.Library.PerPage
			}

			b := library.NewBrowser(library.Options{
				Store:          a.Client,
				Notifier:       a.Notifier,
				Logger:         a.Logger,
				PerPage:        perPage,
				SearchDebounce: time.Millisecond,
				Timeout:        rt.cfg.Timeout(),
			})
			b.SetSort(library.ParseSort(order))
			b.SetStatus(status)
			if search != "" {
				if msg, ok := runSync(b.SetSearch(search)).(library.SearchMsg); ok {
					b.HandleSearch(msg)
				}
			}
			loaded, ok := runSync(b.GoToPage(page)).(library.PageMsg)
			if !ok {
				return errNothingSent
			}
			b.HandlePage(loaded)
			if loaded.Err != nil {
				return loaded.Err
			}

			if rt.jsonOut {
				return rt.printJSON("videos list", videoList{Videos: b.Visible(), Pagination: b.Pagination()})
			}
			printVideoList(rt.out, b)
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVarP(&page, "page", "p", 1, "page number")
	f.IntVar(&perPage, "per-page", 0, "videos per page (default from config)")
	f.StringVar(&status, "status", "", "rendering, completed or failed")
	f.StringVar(&search, "search", "", "fuzzy filter on title and topic")
	f.StringVar(&order, "sort", "newest", "newest, oldest or title")
	return cmd
}

func validStatus(s string) bool {
	for _, v := range library.Statuses {
		if v == s {
			return true
		}
	}
	return false
}

func printVideoList(w io.Writer, b *library.Browser) {
	if text := b.EmptyText(); text != "" {
		fmt.Fprintln(w, DimStyle.Render(text))
		if text == library.EmptyText {
			fmt.Fprintln(w, DimStyle.Render(library.EmptyHint))
		}
		return
	}
	for _, v := range b.Visible() {
		fmt.Fprintf(w, "%-8s %s  %s\n",
			v.ID,
			RenderVideoStatus(v.Status, fmt.Sprintf("%-12s", library.StatusText(v.Status))),
			util.TruncateText(v.Title, 48),
		)
		fmt.Fprintln(w, DimStyle.Render(fmt.Sprintf("         %s · %ds · %s", library.DateText(v.CreatedAt), v.Duration, library.FileSizeText(v))))
	}
	p := b.Pagination()
	fmt.Fprintln(w, RenderSeparator())
	fmt.Fprintln(w, DimStyle.Render(fmt.Sprintf("Trang %d/%d · %d video · sắp xếp: %s", max(p.Page, 1), max(p.Pages, 1), p.Total, b.Sort())))
}

// =============================================================================
// SHOW
// =============================================================================

func newVideosShowCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show the details of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			msg, ok := runSync(a.Library.Detail(model.ID(args[0]))).(library.DetailMsg)
			if !ok {
				return errNothingSent
			}
			if msg.Err != nil {
				return msg.Err
			}
			if rt.jsonOut {
				return rt.printJSON("videos show", msg.Video)
			}
			printVideo(rt.out, msg.Video, a.Client)
			return nil
		},
	}
}

func printVideo(w io.Writer, v *model.Video, client *api.Client) {
	fmt.Fprintln(w, TitleStyle.Render(v.Title))
	fmt.Fprintln(w, RenderSeparator())
	fmt.Fprintln(w, RenderField("ID", v.ID.String()))
	fmt.Fprintln(w, RenderField("Trạng thái", RenderVideoStatus(v.Status, library.StatusText(v.Status))))
	fmt.Fprintln(w, RenderField("Chủ đề", v.Topic))
	fmt.Fprintln(w, RenderField("Thời lượng", fmt.Sprintf("%ds", v.Duration)))
	fmt.Fprintln(w, RenderField("Kích thước", library.FileSizeText(*v)))
	fmt.Fprintln(w, RenderField("Bố cục", v.Composition))
	fmt.Fprintln(w, RenderField("Nền", v.Background))
	fmt.Fprintln(w, RenderField("Giọng đọc", v.Voice))
	fmt.Fprintln(w, RenderField("Ngày tạo", library.DateText(v.CreatedAt)))
	if v.SessionID != "" {
		fmt.Fprintln(w, RenderField("Phiên chat", v.SessionID))
	}
	if v.Status == model.VideoCompleted {
		fmt.Fprintln(w, RenderField("Tệp", client.FileURL(v.ID)))
	}
	if script := strings.TrimSpace(v.Script); script != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, LabelStyle.Render("Kịch bản"))
		fmt.Fprintln(w, script)
	}
}

// =============================================================================
// DELETE
// =============================================================================

func newVideosDeleteCmd(rt *runtime) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a video",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := model.ID(args[0])
			if !yes {
				ok, err := confirm(cmd.InOrStdin(), rt.errOut, fmt.Sprintf("Xóa video %s?", id))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(rt.errOut, DimStyle.Render("Đã hủy"))
					return nil
				}
			}

			a, err := rt.openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			msg, ok := runSync(a.Library.Delete(id)).(library.DeletedMsg)
			if !ok {
				return errNothingSent
			}
			if msg.Err != nil {
				return msg.Err
			}
			if rt.jsonOut {
				return rt.printJSON("videos delete", map[string]interface{}{"id": id, "deleted": true})
			}
			fmt.Fprintln(rt.out, SuccessStyle.Render("✓ "+library.ToastDeleted))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation")
	return cmd
}

// confirm asks a yes/no question on w and reads the answer from r. End
// of input counts as no.
func confirm(r io.Reader, w io.Writer, question string) (bool, error) {
	fmt.Fprint(w, WarningStyle.Render(question)+" [y/N] ")
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		if err == io.EOF {
			return false, nil
		}
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "c", "có":
		return true, nil
	}
	return false, nil
}

// =============================================================================
// DOWNLOAD
// =============================================================================

func newVideosDownloadCmd(rt *runtime) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Download the video file",
		Example: heredoc.Doc(`
			emlinh videos download 42
			emlinh videos download 42 --dir ~/Videos
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()
			if dir == "" {
				dir = rt.cfg.Video.DownloadDir
			}
			return runDownload(cmd, rt, a, model.ID(args[0]), dir)
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "o", "", "target directory (default from config)")
	return cmd
}

func runDownload(cmd *cobra.Command, rt *runtime, a *app.App, id model.ID, dir string) error {
	showBar := !rt.jsonOut && IsTTY()
	lastPct := -1
	report := func(p library.DownloadProgress) {
		if !showBar {
			return
		}
		pct := int(p.Fraction() * 100)
		if p.Total > 0 && pct == lastPct {
			return
		}
		lastPct = pct
		if p.Total > 0 {
			fmt.Fprintf(rt.errOut, "\r%s %3d%% %s / %s", DimStyle.Render("↓"), pct,
				library.FormatFileSize(p.Written), library.FormatFileSize(p.Total))
		} else {
			fmt.Fprintf(rt.errOut, "\r%s %s", DimStyle.Render("↓"), library.FormatFileSize(p.Written))
		}
	}

	path, err := library.Download(cmd.Context(), a.Client, id, dir, report)
	if showBar {
		fmt.Fprintln(rt.errOut)
	}
	if err != nil {
		return err
	}
	if rt.jsonOut {
		return rt.printJSON("videos download", map[string]interface{}{"id": id, "path": path})
	}
	fmt.Fprintln(rt.out, SuccessStyle.Render("✓ Đã tải video về: ")+path)
	return nil
}
