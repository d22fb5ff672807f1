package cio

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	envRingEntries       = "CIO_RING_ENTRIES"
	envRingWaitTimeout   = "CIO_RING_WAIT_TIMEOUT"
	envParallelAcceptors = "CIO_PARALLEL_ACCEPTORS"
	envMaxGoroutines     = "CIO_MAX_GOROUTINES"
	envCloseTimeout      = "CIO_CLOSE_TIMEOUT"
)

// WithEnv reads configuration from the process environment, loading the
// given dotenv files first when any are named. Unset keys leave their
// option at its current value.
func WithEnv(filenames ...string) Option {
	return func(options *Options) (err error) {
		if len(filenames) > 0 {
			if err = godotenv.Load(filenames...); err != nil {
				return fmt.Errorf("cio: load env file failed: %w", err)
			}
		}
		if v, has := os.LookupEnv(envRingEntries); has {
			n, nErr := strconv.Atoi(v)
			if nErr != nil {
				return fmt.Errorf("cio: parse %s failed: %w", envRingEntries, nErr)
			}
			if err = WithRingEntries(n)(options); err != nil {
				return
			}
		}
		if v, has := os.LookupEnv(envRingWaitTimeout); has {
			d, dErr := time.ParseDuration(v)
			if dErr != nil {
				return fmt.Errorf("cio: parse %s failed: %w", envRingWaitTimeout, dErr)
			}
			if err = WithRingWaitTimeout(d)(options); err != nil {
				return
			}
		}
		if v, has := os.LookupEnv(envParallelAcceptors); has {
			n, nErr := strconv.Atoi(v)
			if nErr != nil {
				return fmt.Errorf("cio: parse %s failed: %w", envParallelAcceptors, nErr)
			}
			if err = WithParallelAcceptors(n)(options); err != nil {
				return
			}
		}
		if v, has := os.LookupEnv(envMaxGoroutines); has {
			n, nErr := strconv.Atoi(v)
			if nErr != nil {
				return fmt.Errorf("cio: parse %s failed: %w", envMaxGoroutines, nErr)
			}
			if err = WithMaxGoroutines(n)(options); err != nil {
				return
			}
		}
		if v, has := os.LookupEnv(envCloseTimeout); has {
			d, dErr := time.ParseDuration(v)
			if dErr != nil {
				return fmt.Errorf("cio: parse %s failed: %w", envCloseTimeout, dErr)
			}
			if err = WithCloseTimeout(d)(options); err != nil {
				return
			}
		}
		return
	}
}
