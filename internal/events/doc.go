// Package events lets services announce domain facts, such as a recorded
// review, without knowing which components react to them.
package events
