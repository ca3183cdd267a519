// Package splitwrap holds the types shared by all splitwrap packages: the
// error classes of a build run and the include hint cache interface.
//
// A build run resolves a set of declaration files, splits them into a fixed
// number of binding modules, merges addon fragments into the modules that
// own them, generates every module and compiles the modules in parallel.
// The pipeline lives in package compiler and its subpackages; the
// command-line tool is cmd/splitwrap.
package splitwrap
