package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("BRANCHPULSE_TEST_MODE") == "" {
			_ = os.Setenv("BRANCHPULSE_TEST_MODE", "1")
		}
	})
}
