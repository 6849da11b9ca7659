// Package projects stores MapProxy configuration files ("projects") as YAML
// documents inside a single directory. Every call goes to disk: nothing is
// cached between requests, so readers always observe the current file. Writes
// replace the whole file through a temp file + rename in the same directory.
package projects
