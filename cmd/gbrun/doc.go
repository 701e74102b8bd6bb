// Package main is gbrun, a command that runs GoodBarber pages through the
// sandbox and reports every dispatch they make.
//
// Usage:
//
//	gbrun [flags] <pattern>...
//
// Patterns are doublestar globs ("pages/**/*.html"). HTML files run their
// inline scripts against their own DOM; .js files run as a bare script.
//
// Flags:
//
//	-fixtures file   host simulator fixtures (YAML)
//	-debug-mode m    production, alert or suppress
//	-desktop         desktop fallback for request, location and preferences
//	-json            print one JSON record per page instead of log lines
//	-timeout d       per-page timeout
//
// The exit status is 1 when a page fails and 2 on usage errors.
package main
