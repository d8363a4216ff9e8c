// Package logging is the gallery's leveled logger: printf-style Debug,
// Info, Warn and Error rendered through charmbracelet/log.
//
// LOG_LEVEL selects debug, info, warn or error; DEBUG=true forces debug.
// Printf and Println bypass the level and are used for access logs.
package logging
