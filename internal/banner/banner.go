package banner

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/chiranjeevipattigidi/hipBLASLt/internal/tui/styles"
)

func GetString() string {
	renderer := lipgloss.DefaultRenderer()

	style := renderer.NewStyle().
		Foreground(styles.ColorBanner).
		Bold(true)

	ascii := `
    __    _       ____  __    ___   _____ __   __
   / /_  (_)___  / __ )/ /   /   | / ___// /  / /_
  / __ \/ / __ \/ __  / /   / /| | \__ \/ /  / __/
 / / / / / /_/ / /_/ / /___/ ___ |___/ / /__/ /_
/_/ /_/_/ .___/_____/_____/_/  |_/____/____/\__/ bench
       /_/`

	return "\n" + style.Render(ascii) + "\n"
}
