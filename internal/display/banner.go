package display

import (
	"fmt"
	"os"
)

// PrintBanner prints the ASCII art banner.
func PrintBanner() {
	fmt.Fprint(os.Stdout, ` _                           __  __           _
| |    __ _ _ __  ___  ___  |  \/  | __ _ ___| |_ ___ _ __
| |   / _`+"`"+` | '_ \/ __|/ _ \ | |\/| |/ _`+"`"+` / __| __/ _ \ '__|
| |__| (_| | |_) \__ \  __/ | |  | | (_| \__ \ ||  __/ |
|_____\__,_| .__/|___/\___| |_|  |_|\__,_|___/\__\___|_|
           |_|
`)
}
