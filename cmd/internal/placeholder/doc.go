// Package placeholder describes loading skeletons shown while deferred page
// content is fetched.
//
// A Spec names a skeleton kind and how many item placeholders it repeats.
// Specs are immutable values; equal arguments to Describe give equal Specs.
// Page layouts group Specs per page and are loaded from YAML at startup,
// where an invalid entry fails fast.
package placeholder
