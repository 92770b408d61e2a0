package utils

import (
	"fmt"
	"log"
	"runtime/debug"
)

// GoSafe runs fn in a new goroutine and recovers from any panic it raises.
func GoSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("recovered from panic in goroutine: %v\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}

// Recover converts a panic raised by fn into an error.
func Recover(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
