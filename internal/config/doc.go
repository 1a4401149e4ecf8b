// Package config assembles the settings of the secret keeper server and
// CLI.
//
// Sources are merged field by field, and a field keeps the value of the
// first source that sets it: environment, then command-line flags, then
// the JSON file named by CONFIG or -c, then built-in defaults.
//
// The server calls [GetStructuredConfig]. The CLI calls [GetClientConfig],
// which skips flag parsing because cobra owns the CLI's flags.
package config
