// Package assemble turns a datatype and the strategies of its properties
// into the builder, value, partial and partial builder descriptors handed to
// the source emitter.
package assemble
