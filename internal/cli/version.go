// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"runtime"

	"github.com/jeranaias/aptui/internal/archipelago"
)

// VersionCmd prints version information.
type VersionCmd struct{}

// Run implements the version command.
func (c *VersionCmd) Run(g *Globals) error {
	fmt.Fprintln(g.Stdout, TitleStyle.Render("aptui")+" "+ValueStyle.Render(Version))
	fmt.Fprintln(g.Stdout, RenderField("Commit", GitCommit))
	fmt.Fprintln(g.Stdout, RenderField("Built", BuildDate))
	v := archipelago.ClientVersion
	fmt.Fprintln(g.Stdout, RenderField("Protocol", fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Build)))
	fmt.Fprintln(g.Stdout, RenderField("Go", runtime.Version()))
	return nil
}
