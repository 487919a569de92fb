// Package viz renders continuation branches in the terminal.
//
//   - [BranchPlot]: asciigraph bifurcation diagram of one state component
//   - [Summary]: styled text report of a branch and its bifurcations
//   - [Browser]: Bubble Tea model for stepping through the points of a branch
//
// # Browser keys
//
//	up/down, j/k   - Move one point
//	pgup/pgdown    - Move one page
//	g/G            - First/last point
//	n/N            - Next/previous bifurcation
//	t              - Cycle color themes
//	q              - Quit
package viz
