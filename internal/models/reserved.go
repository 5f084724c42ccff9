package models

import "strings"

// reservedUsernames collide with top-level routes that share the /:username/ prefix.
var reservedUsernames = map[string]struct{}{
	"new":         {},
	"group":       {},
	"auth":        {},
	"static":      {},
	"media":       {},
	"metrics":     {},
	"healthz":     {},
	"rss.xml":     {},
	"sitemap.xml": {},
	"robots.txt":  {},
}

func IsReservedUsername(name string) bool {
	_, ok := reservedUsernames[strings.ToLower(name)]
	return ok
}
