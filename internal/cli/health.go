// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// healthResult is the --json payload of health.
type healthResult struct {
	BaseURL   string `json:"base_url"`
	Status    string `json:"status"`
	Database  string `json:"database"`
	LatencyMS int64  `json:"latency_ms"`
}

func newHealthCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := rt.newClient()
			if err != nil {
				return err
			}

			ctx, cancel := rt.requestCtx(cmd.Context())
			defer cancel()
			start := time.Now()
			resp, err := client.Health(ctx)
			if err != nil {
				return err
			}
			res := healthResult{
				BaseURL:   client.BaseURL(),
				Status:    resp.Status,
				Database:  resp.Database,
				LatencyMS: time.Since(start).Milliseconds(),
			}
			if rt.jsonOut {
				return rt.printJSON("health", res)
			}
			fmt.Fprintln(rt.out, SuccessStyle.Render("✓ Backend đang hoạt động"))
			fmt.Fprintln(rt.out, RenderField("URL", res.BaseURL))
			fmt.Fprintln(rt.out, RenderField("Trạng thái", res.Status))
			fmt.Fprintln(rt.out, RenderField("Cơ sở dữ liệu", res.Database))
			fmt.Fprintln(rt.out, RenderField("Độ trễ", fmt.Sprintf("%dms", res.LatencyMS)))
			return nil
		},
	}
}
