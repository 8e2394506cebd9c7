// Package viz provides the interactive terminal board for maze playback.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [NewInteractiveApp]: preset menu and run settings, then the board
//   - [Model]: the board view over one session, live or replaying a stored run
//   - Theme selection with 5 built-in color schemes
//
// # Key Bindings
//
//	Enter/S - Simulate with the selected algorithm (replay a stored run)
//	Space   - Pause/Continue playback
//	N       - New maze
//	A       - Cycle algorithm
//	T       - Cycle color themes
//	W       - Save the last run to the data directory
//	?       - Show help overlay
//
// The board redraws at 30 frames per second; playback itself runs on the
// sequencer's own timers, so a slow terminal never slows the search down.
package viz
