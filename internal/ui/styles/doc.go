// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the color palette and the command-bar theme.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection. Status helpers pair every color with an ASCII indicator so output
stays readable under NO_COLOR.

# Key Types

  - Theme: Styles of the command bar input, status line and completion list

# Usage

	theme := styles.NewTheme()
	fmt.Println(theme.Prompt.Render("> "))

	fmt.Println(styles.RenderError("command \"foo\" not found"))
*/
package styles
