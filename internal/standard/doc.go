// Package standard plans the Equal, Hash and String methods of generated
// values and partials from the per-property fragments, honoring methods the
// user type already implements.
package standard
