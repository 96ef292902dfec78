/*
Package jsi embeds the QuickJS engine: evaluate script, exchange values with it,
expose Go functions and classes to scripts, and check or map script values into
typed Go data.

Every engine value is held through a reference-counted handle. Handles returned
by a Context are owned by the caller and released with Free; handles still live
when the Context is closed are released by Close.
*/
package jsi

/*
#cgo CFLAGS: -I${SRCDIR}/deps/include
#cgo darwin,amd64 LDFLAGS: -L${SRCDIR}/deps/libs/darwin_amd64 -lquickjs -lm
#cgo darwin,arm64 LDFLAGS: -L${SRCDIR}/deps/libs/darwin_arm64 -lquickjs -lm
#cgo linux,amd64 LDFLAGS: -L${SRCDIR}/deps/libs/linux_amd64 -lquickjs -lm
#cgo linux,arm64 LDFLAGS: -L${SRCDIR}/deps/libs/linux_arm64 -lquickjs -lm
#cgo windows,amd64 LDFLAGS: -L${SRCDIR}/deps/libs/windows_amd64 -lquickjs -lm
*/
import "C"
