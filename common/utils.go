package common

import (
	"log"
	"runtime"

	"github.com/dustin/go-humanize"
)

// HandleError logs err together with the caller's location and reports
// whether there was an error at all.
func HandleError(err error) (b bool) {
	if err != nil {
		// skip 1 so the caller is logged, not this function
		_, fn, line, _ := runtime.Caller(1)
		log.Printf("[error] %s:%d %v", fn, line, err)
		b = true
	}
	return
}

func Must(err error) {
	if err != nil {
		panic(err)
	}
}

// FormatBytes renders a byte count with IEC unit suffixes, 1048576 -> "1.0 MiB".
func FormatBytes(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}
