package engine

import (
	"errors"
	"os"
	"strings"

	"github.com/c2h5oh/datasize"
	"golang.org/x/time/rate"
)

func rateLimiter(rstr string) (*rate.Limiter, error) {
	var rateSize int
	rstr = strings.ToLower(strings.TrimSpace(rstr))
	switch rstr {
	case "low":
		// ~50k/s
		rateSize = 50000
	case "medium":
		// ~500k/s
		rateSize = 500000
	case "high":
		// ~1500k/s
		rateSize = 1500000
	case "unlimited", "0", "":
		return rate.NewLimiter(rate.Inf, 0), nil
	default:
		v, err := parseSize(rstr)
		if err != nil {
			return nil, err
		}
		if v > 2147483647 {
			return nil, errors.New("exceeds int value")
		}
		rateSize = int(v)
	}
	return rate.NewLimiter(rate.Limit(rateSize), rateSize*3), nil
}

// parseSize reads human sizes such as "512kb" or "10 MB" as bytes.
func parseSize(s string) (int64, error) {
	var v datasize.ByteSize
	if err := v.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, err
	}
	return int64(v.Bytes()), nil
}

func mkdir(dirpath string) error {
	st, err := os.Stat(dirpath)
	if errors.Is(err, os.ErrNotExist) {
		return os.MkdirAll(dirpath, os.ModePerm)
	}
	if err != nil {
		return err
	}
	if !st.IsDir() {
		return errors.New("path exists but is not a directory: " + dirpath)
	}
	return nil
}
