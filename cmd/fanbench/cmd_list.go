// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianFanout/cmd/fanbench/config"
	"github.com/AleutianAI/AleutianFanout/pkg/ux"
	"github.com/AleutianAI/AleutianFanout/services/fanout"
)

// runList prints every registered strategy in launch order.
func runList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	painter := ux.NewPainter(out)
	fmt.Fprintln(out, painter.Paint(ux.Styles.Title,
		fmt.Sprintf("%-28s %-11s %s", "NAME", "ENUMERATION", "SCHEDULING")))
	registry := fanout.NewDefaultRegistry()
	for _, s := range registry.Strategies() {
		fmt.Fprintf(out, "%-28s %-11s %s\n", s.Name, s.Enumeration, s.Scheduling)
	}
	fmt.Fprintln(out, painter.Paint(ux.Styles.Muted, fmt.Sprintf("%d strategies", registry.Count())))
	return nil
}

// runInit writes the default configuration, to fanbench.yaml unless a path
// is given.
func runInit(cmd *cobra.Command, args []string) error {
	path := "fanbench.yaml"
	if len(args) == 1 {
		path = args[0]
	}
	if err := config.WriteDefault(path); err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s Wrote default configuration to %s\n",
		ux.NewPainter(out).Paint(ux.Styles.Success, string(ux.IconSuccess)), abs)
	return nil
}
