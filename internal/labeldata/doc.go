// Package labeldata holds the inputs of a label render: templates of
// percentage-based regions, and rule sets mapping a jurisdiction and region
// label to the text that fills the region.
//
// Templates and rule sets are read once per session and treated as
// read-only afterwards; renders may share them across goroutines as long as
// nobody mutates them.
//
// Both document kinds are accepted as JSON or YAML.
package labeldata
